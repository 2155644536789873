package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoerce(t *testing.T) {
	assert.Equal(t, 5.0, Coerce(10, 0, 5))
	assert.Equal(t, 0.0, Coerce(-1, 0, 5))
	assert.Equal(t, 3.0, Coerce(3, 0, 5))
}

func TestCoerceInt(t *testing.T) {
	assert.Equal(t, 255, CoerceInt(300, 1, 255))
	assert.Equal(t, 1, CoerceInt(0, 1, 255))
	assert.Equal(t, 128, CoerceInt(128, 1, 255))
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, 128, RoundHalfUp(127.5))
	assert.Equal(t, 127, RoundHalfUp(127.4))
	assert.Equal(t, 50, RoundHalfUp(50.0))
}

func TestAvgInt(t *testing.T) {
	assert.Equal(t, 30.0, AvgInt([]int{20, 30, 40}))
}

func TestUpdateSimpleMovingAvg(t *testing.T) {
	// GIVEN
	avg := 50.0

	// WHEN
	avg = UpdateSimpleMovingAvg(avg, 10, 60)

	// THEN
	assert.InDelta(t, 51.0, avg, 1e-9)
}

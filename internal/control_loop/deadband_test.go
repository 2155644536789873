package control_loop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeadbandSuppressesSmallChange(t *testing.T) {
	// GIVEN
	suppressor := NewDeadbandSuppressor(3)

	// WHEN
	result := suppressor.Suppress(45, 47)

	// THEN
	assert.Equal(t, 45.0, result)
}

func TestDeadbandPassesLargeChange(t *testing.T) {
	// GIVEN
	suppressor := NewDeadbandSuppressor(3)

	// WHEN
	result := suppressor.Suppress(45, 49)

	// THEN
	assert.Equal(t, 49.0, result)
}

func TestDeadbandBoundaryIsSuppressed(t *testing.T) {
	// GIVEN
	suppressor := NewDeadbandSuppressor(3)

	// WHEN
	result := suppressor.Suppress(45, 48)

	// THEN
	assert.Equal(t, 45.0, result)
}

func TestDeadbandWorksInBothDirections(t *testing.T) {
	// GIVEN
	suppressor := NewDeadbandSuppressor(3)

	// WHEN / THEN
	assert.Equal(t, 45.0, suppressor.Suppress(45, 43))
	assert.Equal(t, 40.0, suppressor.Suppress(45, 40))
}

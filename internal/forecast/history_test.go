package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHistoryEvictsOldestOnOverflow(t *testing.T) {
	// GIVEN
	h := NewHistory(3)

	// WHEN
	for i := 0; i < 5; i++ {
		h.Append(testOrigin.Add(time.Duration(i)*time.Second), float64(i))
	}

	// THEN
	assert.Equal(t, 3, h.Len())
	samples := h.Window(3)
	assert.Equal(t, 2.0, samples[0].Value)
	assert.Equal(t, 4.0, samples[2].Value)
}

func TestHistoryDropsOutOfOrderSamples(t *testing.T) {
	// GIVEN
	h := NewHistory(10)
	h.Append(testOrigin.Add(10*time.Second), 20)

	// WHEN
	h.Append(testOrigin, 99)

	// THEN
	assert.Equal(t, 1, h.Len())
	assert.Equal(t, 20.0, h.Window(1)[0].Value)
}

func TestHistoryShrinkingCapacityTrimsFront(t *testing.T) {
	// GIVEN
	h := NewHistory(5)
	for i := 0; i < 5; i++ {
		h.Append(testOrigin.Add(time.Duration(i)*time.Second), float64(i))
	}

	// WHEN
	h.SetCapacity(2)

	// THEN
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, 3.0, h.Window(2)[0].Value)
}

func TestHistoryWindowLargerThanContent(t *testing.T) {
	// GIVEN
	h := NewHistory(10)
	h.Append(testOrigin, 20)

	// WHEN
	samples := h.Window(5)

	// THEN
	assert.Len(t, samples, 1)
}

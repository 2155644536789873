package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testOrigin = time.Date(2024, 5, 12, 10, 0, 0, 0, time.UTC)

func historyOf(values map[int]float64, order []int) *History {
	h := NewHistory(100)
	for _, offset := range order {
		h.Append(testOrigin.Add(time.Duration(offset)*time.Second), values[offset])
	}
	return h
}

func TestForecastLinearRise(t *testing.T) {
	// GIVEN
	h := historyOf(map[int]float64{
		0:  20,
		10: 22,
		20: 24,
	}, []int{0, 10, 20})

	// WHEN
	result := Compute(h, 24, 3, 20, 24)

	// THEN
	assert.InDelta(t, 0.2, result.Slope, 1e-9)
	assert.InDelta(t, 28, result.Value, 1e-9)
}

func TestForecastSteadyTemperature(t *testing.T) {
	// GIVEN
	h := historyOf(map[int]float64{
		0:  50,
		10: 50,
		20: 50,
	}, []int{0, 10, 20})

	// WHEN
	result := Compute(h, 24, 3, 30, 50)

	// THEN
	assert.InDelta(t, 0, result.Slope, 1e-9)
	assert.InDelta(t, 50, result.Value, 1e-9)
}

func TestForecastTooFewSamples(t *testing.T) {
	// GIVEN
	h := historyOf(map[int]float64{
		0:  20,
		10: 25,
	}, []int{0, 10})

	// WHEN
	result := Compute(h, 24, 3, 30, 25)

	// THEN
	assert.Equal(t, 25.0, result.Value)
	assert.Equal(t, 0.0, result.Slope)
}

func TestForecastNoTimeSpread(t *testing.T) {
	// GIVEN
	h := NewHistory(100)
	h.Append(testOrigin, 20)
	h.Append(testOrigin, 22)
	h.Append(testOrigin, 24)

	// WHEN
	result := Compute(h, 24, 3, 30, 24)

	// THEN
	assert.Equal(t, 24.0, result.Value)
	assert.Equal(t, 0.0, result.Slope)
}

func TestForecastWindowUsesMostRecentSamples(t *testing.T) {
	// GIVEN
	// an old cooling phase followed by a recent linear rise
	h := NewHistory(100)
	h.Append(testOrigin.Add(-100*time.Second), 80)
	h.Append(testOrigin.Add(-90*time.Second), 70)
	h.Append(testOrigin, 20)
	h.Append(testOrigin.Add(10*time.Second), 22)
	h.Append(testOrigin.Add(20*time.Second), 24)

	// WHEN
	result := Compute(h, 3, 3, 20, 24)

	// THEN
	assert.InDelta(t, 0.2, result.Slope, 1e-9)
	assert.InDelta(t, 28, result.Value, 1e-9)
}

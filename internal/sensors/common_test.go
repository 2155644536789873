package sensors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type scriptedSensor struct {
	values    []float64
	errs      []error
	reads     int
	movingAvg float64
}

func (s *scriptedSensor) GetId() string { return "scripted" }

func (s *scriptedSensor) GetValue() (float64, error) {
	i := s.reads
	if i >= len(s.values) {
		i = len(s.values) - 1
	}
	s.reads++
	return s.values[i], s.errs[i]
}

func (s *scriptedSensor) GetMovingAvg() float64    { return s.movingAvg }
func (s *scriptedSensor) SetMovingAvg(avg float64) { s.movingAvg = avg }

func TestCachedSensorReusesReadingWithinTtl(t *testing.T) {
	// GIVEN
	delegate := &scriptedSensor{values: []float64{50, 60}, errs: []error{nil, nil}}
	cached := NewCachedSensor(delegate, time.Minute, 40, 10)

	// WHEN
	first := cached.Read()
	second := cached.Read()

	// THEN
	assert.Equal(t, 50.0, first)
	assert.Equal(t, 50.0, second)
	assert.Equal(t, 1, delegate.reads)
}

func TestCachedSensorFallsBackToSeedBeforeFirstRead(t *testing.T) {
	// GIVEN
	delegate := &scriptedSensor{values: []float64{0}, errs: []error{ErrSensorUnavailable}}
	cached := NewCachedSensor(delegate, time.Minute, 40, 10)

	// WHEN
	value := cached.Read()

	// THEN
	assert.Equal(t, 40.0, value)
}

func TestCachedSensorKeepsLastKnownValueOnFailure(t *testing.T) {
	// GIVEN
	delegate := &scriptedSensor{
		values: []float64{55, 0},
		errs:   []error{nil, ErrSensorUnavailable},
	}
	cached := NewCachedSensor(delegate, time.Nanosecond, 40, 10)

	// WHEN
	first := cached.Read()
	time.Sleep(time.Millisecond)
	second := cached.Read()

	// THEN
	assert.Equal(t, 55.0, first)
	assert.Equal(t, 55.0, second)
}

func TestCachedSensorUpdatesMovingAverage(t *testing.T) {
	// GIVEN
	delegate := &scriptedSensor{values: []float64{60}, errs: []error{nil}, movingAvg: 50}
	cached := NewCachedSensor(delegate, time.Minute, 40, 10)

	// WHEN
	cached.Read()

	// THEN
	assert.InDelta(t, 51.0, cached.GetMovingAvg(), 1e-9)
}

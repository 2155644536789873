package sensors

import (
	"errors"
	"time"

	"github.com/dynfan/dynfan/internal/ui"
	"github.com/dynfan/dynfan/internal/util"
)

// ErrSensorUnavailable indicates a source could not produce a reading.
// Never fatal; the cached wrapper degrades to the last known value.
var ErrSensorUnavailable = errors.New("sensor unavailable")

type Sensor interface {
	GetId() string

	// GetValue returns the current value of this sensor
	GetValue() (float64, error)

	// GetMovingAvg returns the moving average of this sensor's value
	GetMovingAvg() float64
	SetMovingAvg(avg float64)
}

// CachedSensor wraps a Sensor with a short TTL cache so the loop never
// re-samples faster than the sensor subsystem updates, and with a last-known
// fallback so a failing source degrades instead of erroring.
type CachedSensor struct {
	delegate Sensor
	ttl      time.Duration
	window   int

	lastValue float64
	lastTime  time.Time
}

// NewCachedSensor seeds the cache with a conservative fallback value that is
// returned until the first successful read.
func NewCachedSensor(delegate Sensor, ttl time.Duration, fallback float64, window int) *CachedSensor {
	if window < 1 {
		window = 1
	}
	return &CachedSensor{
		delegate:  delegate,
		ttl:       ttl,
		window:    window,
		lastValue: fallback,
	}
}

func (s *CachedSensor) GetId() string {
	return s.delegate.GetId()
}

func (s *CachedSensor) GetMovingAvg() float64 {
	return s.delegate.GetMovingAvg()
}

// Read returns the current temperature, the cached one within the TTL, or
// the last known value when the source fails.
func (s *CachedSensor) Read() float64 {
	if !s.lastTime.IsZero() && time.Since(s.lastTime) < s.ttl {
		return s.lastValue
	}

	value, err := s.delegate.GetValue()
	if err != nil {
		ui.Debug("Sensor %s unavailable, reusing %.0f°C: %v", s.delegate.GetId(), s.lastValue, err)
		return s.lastValue
	}

	s.lastValue = value
	s.lastTime = time.Now()
	s.delegate.SetMovingAvg(util.UpdateSimpleMovingAvg(s.delegate.GetMovingAvg(), s.window, value))
	return value
}

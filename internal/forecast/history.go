package forecast

import "time"

// Sample is one timestamped temperature reading. Immutable once created.
type Sample struct {
	Time  time.Time
	Value float64
}

// History is a bounded, ordered buffer of samples per temperature channel.
// The oldest samples are evicted once the capacity is reached.
type History struct {
	capacity int
	samples  []Sample
}

func NewHistory(capacity int) *History {
	if capacity < 2 {
		capacity = 2
	}
	return &History{
		capacity: capacity,
		samples:  make([]Sample, 0, capacity),
	}
}

// Append pushes a sample, trimming from the front on overflow.
// Samples older than the newest entry are dropped to keep timestamps non-decreasing.
func (h *History) Append(t time.Time, value float64) {
	if n := len(h.samples); n > 0 && t.Before(h.samples[n-1].Time) {
		return
	}
	h.samples = append(h.samples, Sample{Time: t, Value: value})
	if len(h.samples) > h.capacity {
		h.samples = h.samples[len(h.samples)-h.capacity:]
	}
}

// SetCapacity adjusts the bound, trimming the oldest samples if necessary.
func (h *History) SetCapacity(capacity int) {
	if capacity < 2 {
		capacity = 2
	}
	h.capacity = capacity
	if len(h.samples) > capacity {
		h.samples = h.samples[len(h.samples)-capacity:]
	}
}

func (h *History) Len() int {
	return len(h.samples)
}

// Window returns the most recent n samples (all of them if fewer exist).
func (h *History) Window(n int) []Sample {
	if n >= len(h.samples) {
		return h.samples
	}
	return h.samples[len(h.samples)-n:]
}

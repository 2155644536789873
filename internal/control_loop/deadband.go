package control_loop

import "math"

// DeadbandSuppressor rejects small, noise-driven target changes: a proposed
// target within the deadband of the previously applied value is replaced by
// that previous value, so no fan-speed churn is generated.
type DeadbandSuppressor struct {
	deadband float64
}

func NewDeadbandSuppressor(deadband float64) *DeadbandSuppressor {
	return &DeadbandSuppressor{deadband: deadband}
}

// Suppress returns previous when |proposed - previous| <= deadband,
// otherwise the proposed value unchanged.
func (d *DeadbandSuppressor) Suppress(previous float64, proposed float64) float64 {
	if math.Abs(proposed-previous) <= d.deadband {
		return previous
	}
	return proposed
}

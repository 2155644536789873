package forecast

import "math"

// Result is the per-channel, per-iteration forecast. Never persisted.
type Result struct {
	// Value is the projected temperature at now + horizon
	Value float64
	// Slope is the fitted temperature change in °C per second
	Slope float64
}

// Compute fits an ordinary least squares line over at most the window most
// recent samples and extrapolates it by horizonSeconds. With fewer than
// minPoints samples, or no usable time spread, it falls back to
// (currentValue, 0). No clamping to physical bounds happens here.
func Compute(h *History, window int, minPoints int, horizonSeconds float64, currentValue float64) Result {
	fallback := Result{Value: currentValue, Slope: 0}

	if minPoints < 2 {
		minPoints = 2
	}
	samples := h.Window(window)
	if len(samples) < minPoints {
		return fallback
	}

	origin := samples[0].Time
	n := float64(len(samples))

	var sumX, sumY, sumXY, sumXX float64
	for _, s := range samples {
		x := s.Time.Sub(origin).Seconds()
		y := s.Value
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if math.Abs(denom) < 1e-9 {
		return fallback
	}

	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	lastX := samples[len(samples)-1].Time.Sub(origin).Seconds()
	value := intercept + slope*(lastX+horizonSeconds)

	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fallback
	}

	return Result{Value: value, Slope: slope}
}

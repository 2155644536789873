package forecast

import (
	"math"

	"github.com/dynfan/dynfan/internal/util"
)

// Blend mixes the current reading with the forecast value.
// weight 0 yields the current reading, weight 1 the pure forecast.
func Blend(current float64, forecast float64, weight float64) float64 {
	weight = util.Coerce(weight, 0, 1)
	return current*(1-weight) + forecast*weight
}

// LeadOffset converts the forecast slope into an anticipatory temperature
// offset, clamped to ±maxOffset. A non-finite slope yields 0.
func LeadOffset(slope float64, lead float64, gain float64, maxOffset float64) float64 {
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return 0
	}
	return util.Coerce(slope*lead*gain, -maxOffset, maxOffset)
}

// RateAdjust converts a temperature rate (°C per minute) into a direct
// percent-domain nudge. Rates within the deadband yield 0; cooling rates are
// dampened by the cooldown factor; the result is clamped to ±maxAdjust.
func RateAdjust(ratePerMinute float64, gain float64, maxAdjust float64, deadband float64, cooldown float64) float64 {
	if math.IsNaN(ratePerMinute) || math.IsInf(ratePerMinute, 0) {
		return 0
	}
	if math.Abs(ratePerMinute) <= deadband {
		return 0
	}

	effective := math.Abs(ratePerMinute) - deadband
	if ratePerMinute < 0 {
		effective *= 1 - util.Coerce(cooldown, 0, 1)
	}

	adjust := effective * gain
	if ratePerMinute < 0 {
		adjust = -adjust
	}
	return util.Coerce(adjust, -maxAdjust, maxAdjust)
}

package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlend(t *testing.T) {
	// GIVEN
	current := 50.0
	forecast := 60.0

	// WHEN / THEN
	assert.Equal(t, 50.0, Blend(current, forecast, 0))
	assert.Equal(t, 60.0, Blend(current, forecast, 1))
	assert.Equal(t, 55.0, Blend(current, forecast, 0.5))
}

func TestBlendWeightIsClamped(t *testing.T) {
	// GIVEN
	current := 50.0
	forecast := 60.0

	// WHEN / THEN
	assert.Equal(t, 60.0, Blend(current, forecast, 2))
	assert.Equal(t, 50.0, Blend(current, forecast, -1))
}

func TestLeadOffset(t *testing.T) {
	// GIVEN
	slope := 0.2
	lead := 10.0
	gain := 1.0

	// WHEN
	offset := LeadOffset(slope, lead, gain, 8)

	// THEN
	assert.InDelta(t, 2.0, offset, 1e-9)
}

func TestLeadOffsetClamped(t *testing.T) {
	// GIVEN
	slope := 5.0

	// WHEN
	offset := LeadOffset(slope, 10, 1, 8)
	negative := LeadOffset(-slope, 10, 1, 8)

	// THEN
	assert.Equal(t, 8.0, offset)
	assert.Equal(t, -8.0, negative)
}

func TestRateAdjustWithinDeadband(t *testing.T) {
	// WHEN
	adjust := RateAdjust(0.8, 0.5, 10, 1, 0.5)

	// THEN
	assert.Equal(t, 0.0, adjust)
}

func TestRateAdjustHeating(t *testing.T) {
	// GIVEN
	// 3°C/min over a 1°C/min deadband at gain 0.5

	// WHEN
	adjust := RateAdjust(3, 0.5, 10, 1, 0.5)

	// THEN
	assert.InDelta(t, 1.0, adjust, 1e-9)
}

func TestRateAdjustCoolingIsDampened(t *testing.T) {
	// GIVEN
	// same magnitude as the heating case, but cooling with cooldown 0.5

	// WHEN
	adjust := RateAdjust(-3, 0.5, 10, 1, 0.5)

	// THEN
	assert.InDelta(t, -0.5, adjust, 1e-9)
}

func TestRateAdjustClamped(t *testing.T) {
	// WHEN
	adjust := RateAdjust(100, 1, 10, 1, 0.5)

	// THEN
	assert.Equal(t, 10.0, adjust)
}

package curves

import (
	"testing"

	"github.com/dynfan/dynfan/internal/configuration"
	"github.com/stretchr/testify/assert"
)

func TestBlenderCpuMode(t *testing.T) {
	// GIVEN
	blender := NewBlender(configuration.SystemFans{Mode: configuration.BlendModeCpu})

	// WHEN / THEN
	assert.Equal(t, 40, blender.Combine(40, 80))
}

func TestBlenderGpuMode(t *testing.T) {
	// GIVEN
	blender := NewBlender(configuration.SystemFans{Mode: configuration.BlendModeGpu})

	// WHEN / THEN
	assert.Equal(t, 80, blender.Combine(40, 80))
}

func TestBlenderMaxMode(t *testing.T) {
	// GIVEN
	blender := NewBlender(configuration.SystemFans{Mode: configuration.BlendModeMax})

	// WHEN / THEN
	assert.Equal(t, 80, blender.Combine(40, 80))
	assert.Equal(t, 80, blender.Combine(80, 40))
}

func TestBlenderWeightedMode(t *testing.T) {
	// GIVEN
	blender := NewBlender(configuration.SystemFans{
		Mode:      configuration.BlendModeWeighted,
		CpuWeight: 0.5,
		GpuWeight: 0.5,
	})

	// WHEN / THEN
	assert.Equal(t, 60, blender.Combine(40, 80))
}

func TestBlenderWeightedModeRounding(t *testing.T) {
	// GIVEN
	blender := NewBlender(configuration.SystemFans{
		Mode:      configuration.BlendModeWeighted,
		CpuWeight: 1,
		GpuWeight: 2,
	})

	// WHEN
	// (40*1 + 80*2) / 3 = 66.67
	result := blender.Combine(40, 80)

	// THEN
	assert.Equal(t, 67, result)
}

func TestBlenderWeightedModeZeroWeightsFallsBackToMax(t *testing.T) {
	// GIVEN
	blender := NewBlender(configuration.SystemFans{
		Mode:      configuration.BlendModeWeighted,
		CpuWeight: 0,
		GpuWeight: 0,
	})

	// WHEN / THEN
	assert.Equal(t, 80, blender.Combine(40, 80))
}

func TestBlenderUnknownModeFallsBackToMax(t *testing.T) {
	// GIVEN
	blender := NewBlender(configuration.SystemFans{Mode: "bogus"})

	// WHEN / THEN
	assert.Equal(t, 80, blender.Combine(40, 80))
}

func TestGpuFanTargetPlain(t *testing.T) {
	// WHEN
	target := GpuFanTarget(50, 60, nil, nil)

	// THEN
	assert.Equal(t, 50, target)
}

func TestGpuFanTargetOffsetAndClamp(t *testing.T) {
	// GIVEN
	min := 30
	max := 70
	trim := &configuration.GpuFanTrim{Offset: 25, Min: &min, Max: &max}

	// WHEN
	target := GpuFanTarget(50, 60, trim, nil)

	// THEN
	assert.Equal(t, 70, target)
}

func TestGpuFanTargetMinimumFloor(t *testing.T) {
	// GIVEN
	min := 30
	trim := &configuration.GpuFanTrim{Offset: -20, Min: &min}

	// WHEN
	target := GpuFanTarget(25, 40, trim, nil)

	// THEN
	assert.Equal(t, 30, target)
}

func TestGpuFanTargetBoost(t *testing.T) {
	// GIVEN
	boost := &configuration.GpuBoost{Threshold: 75, Add: 15}

	// WHEN
	below := GpuFanTarget(50, 70, nil, boost)
	above := GpuFanTarget(50, 80, nil, boost)

	// THEN
	assert.Equal(t, 50, below)
	assert.Equal(t, 65, above)
}

func TestGpuFanTargetNeverExceedsFullSpeed(t *testing.T) {
	// GIVEN
	boost := &configuration.GpuBoost{Threshold: 75, Add: 30}

	// WHEN
	target := GpuFanTarget(90, 80, nil, boost)

	// THEN
	assert.Equal(t, 100, target)
}

package curves

import (
	"github.com/dynfan/dynfan/internal/configuration"
	"github.com/dynfan/dynfan/internal/util"
)

// Blender combines the CPU- and accelerator-derived targets into the target
// for the system fan group. The strategy is resolved once per snapshot load,
// not re-branched inside the iteration body.
type Blender interface {
	Combine(cpuTarget int, gpuTarget int) int
}

type cpuBlender struct{}

func (b cpuBlender) Combine(cpuTarget int, gpuTarget int) int {
	return cpuTarget
}

type gpuBlender struct{}

func (b gpuBlender) Combine(cpuTarget int, gpuTarget int) int {
	return gpuTarget
}

type maxBlender struct{}

func (b maxBlender) Combine(cpuTarget int, gpuTarget int) int {
	if gpuTarget > cpuTarget {
		return gpuTarget
	}
	return cpuTarget
}

type weightedBlender struct {
	cpuWeight float64
	gpuWeight float64
}

func (b weightedBlender) Combine(cpuTarget int, gpuTarget int) int {
	sum := b.cpuWeight + b.gpuWeight
	if sum <= 0 {
		return maxBlender{}.Combine(cpuTarget, gpuTarget)
	}
	weighted := (float64(cpuTarget)*b.cpuWeight + float64(gpuTarget)*b.gpuWeight) / sum
	return util.RoundHalfUp(weighted)
}

// NewBlender resolves the blend strategy for the given snapshot.
// Unknown modes fall back to max, matching the historic behavior.
func NewBlender(config configuration.SystemFans) Blender {
	switch config.Mode {
	case configuration.BlendModeCpu:
		return cpuBlender{}
	case configuration.BlendModeGpu:
		return gpuBlender{}
	case configuration.BlendModeWeighted:
		return weightedBlender{cpuWeight: config.CpuWeight, gpuWeight: config.GpuWeight}
	default:
		return maxBlender{}
	}
}

// GpuFanTarget computes the target of the dedicated accelerator fan channel:
// accelerator curve target plus the configured offset, clamped to the
// optional [min, max], plus the threshold-triggered boost.
func GpuFanTarget(gpuCurveTarget int, gpuTemp float64, trim *configuration.GpuFanTrim, boost *configuration.GpuBoost) int {
	target := gpuCurveTarget

	if trim != nil {
		target += trim.Offset
		if trim.Min != nil && target < *trim.Min {
			target = *trim.Min
		}
		if trim.Max != nil && target > *trim.Max {
			target = *trim.Max
		}
	}

	if boost != nil && boost.Threshold > 0 && gpuTemp >= float64(boost.Threshold) {
		target += boost.Add
	}

	return util.CoerceInt(target, 0, 100)
}

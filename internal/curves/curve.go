package curves

import (
	"github.com/dynfan/dynfan/internal/configuration"
	"github.com/dynfan/dynfan/internal/util"
)

// Curve is a piecewise-linear mapping from temperature to a target speed
// percentage, clamped outside its defined temperature range.
type Curve struct {
	MinTemp  int
	MaxTemp  int
	MinSpeed int
	MaxSpeed int
}

func BaseCurve(snapshot *configuration.CurveSnapshot) Curve {
	return Curve{
		MinTemp:  snapshot.MinTemp,
		MaxTemp:  snapshot.MaxTemp,
		MinSpeed: snapshot.MinSpeed,
		MaxSpeed: snapshot.MaxSpeed,
	}
}

// GpuCurve returns the accelerator override curve if present, else the base curve.
func GpuCurve(snapshot *configuration.CurveSnapshot) Curve {
	if snapshot.Gpu == nil {
		return BaseCurve(snapshot)
	}
	return Curve{
		MinTemp:  snapshot.Gpu.MinTemp,
		MaxTemp:  snapshot.Gpu.MaxTemp,
		MinSpeed: snapshot.Gpu.MinSpeed,
		MaxSpeed: snapshot.Gpu.MaxSpeed,
	}
}

// Target evaluates the curve at the given temperature.
func (c Curve) Target(temp float64) int {
	minTemp := float64(c.MinTemp)
	maxTemp := float64(c.MaxTemp)

	if temp <= minTemp {
		return c.MinSpeed
	}
	if temp >= maxTemp {
		return c.MaxSpeed
	}

	ratio := util.Ratio(temp, minTemp, maxTemp)
	speed := float64(c.MinSpeed) + ratio*float64(c.MaxSpeed-c.MinSpeed)
	return util.RoundHalfUp(speed)
}

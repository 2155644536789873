package curves

import (
	"testing"

	"github.com/dynfan/dynfan/internal/configuration"
	"github.com/stretchr/testify/assert"
)

func defaultTestCurve() Curve {
	return Curve{
		MinTemp:  30,
		MaxTemp:  80,
		MinSpeed: 20,
		MaxSpeed: 100,
	}
}

func TestCurveTargetBelowRange(t *testing.T) {
	// GIVEN
	curve := defaultTestCurve()

	// WHEN
	target := curve.Target(20)

	// THEN
	assert.Equal(t, 20, target)
}

func TestCurveTargetInterpolation(t *testing.T) {
	// GIVEN
	curve := defaultTestCurve()

	// WHEN
	target := curve.Target(55)

	// THEN
	assert.Equal(t, 60, target)
}

func TestCurveTargetAboveRange(t *testing.T) {
	// GIVEN
	curve := defaultTestCurve()

	// WHEN
	target := curve.Target(90)

	// THEN
	assert.Equal(t, 100, target)
}

func TestCurveTargetAtBoundaries(t *testing.T) {
	// GIVEN
	curve := defaultTestCurve()

	// WHEN / THEN
	assert.Equal(t, 20, curve.Target(30))
	assert.Equal(t, 100, curve.Target(80))
}

func TestGpuCurveFallsBackToBase(t *testing.T) {
	// GIVEN
	snapshot := configuration.DefaultCurveSnapshot()

	// WHEN
	curve := GpuCurve(snapshot)

	// THEN
	assert.Equal(t, BaseCurve(snapshot), curve)
}

func TestGpuCurveOverride(t *testing.T) {
	// GIVEN
	snapshot := configuration.DefaultCurveSnapshot()
	snapshot.Gpu = &configuration.GpuCurve{
		MinTemp:  40,
		MaxTemp:  90,
		MinSpeed: 30,
		MaxSpeed: 100,
	}

	// WHEN
	curve := GpuCurve(snapshot)

	// THEN
	assert.Equal(t, 40, curve.MinTemp)
	assert.Equal(t, 30, curve.Target(35))
}

package control_loop

import (
	"github.com/dynfan/dynfan/internal/configuration"
	"github.com/dynfan/dynfan/internal/util"
)

const (
	MaxBitsValue = 255
	MinBitsValue = 1
)

// PercentToBits converts a percentage to the 8-bit duty cycle domain,
// clamped to [1, 255]. 0 bits is never emitted.
func PercentToBits(percent int) int {
	bits := util.RoundHalfUp(float64(percent) * float64(MaxBitsValue) / 100.0)
	return util.CoerceInt(bits, MinBitsValue, MaxBitsValue)
}

// BitsToPercent converts an 8-bit duty cycle back to a percentage.
func BitsToPercent(bits int) int {
	percent := util.RoundHalfUp(float64(bits) * 100.0 / float64(MaxBitsValue))
	return util.CoerceInt(percent, 0, 100)
}

// NewStepLimiter resolves the smoothing domain for the given configuration.
// maxStep and minChange are expressed in percent and converted proportionally
// where the bit domain is used.
func NewStepLimiter(domain string, maxStep int, minChange int) StepLimiter {
	if domain == configuration.PwmDomainBits {
		return &bitStepLimiter{maxStep: maxStep, minChange: minChange}
	}
	return &percentStepLimiter{maxStep: maxStep, minChange: minChange}
}

type percentStepLimiter struct {
	maxStep   int
	minChange int
}

func (l *percentStepLimiter) Next(current ChannelValue, desiredPercent int) ChannelValue {
	next := limitStep(current.Percent, desiredPercent, l.maxStep, l.minChange)
	next = util.CoerceInt(next, 0, 100)
	return ChannelValue{
		Percent: next,
		Bits:    PercentToBits(next),
	}
}

type bitStepLimiter struct {
	maxStep   int
	minChange int
}

func (l *bitStepLimiter) Next(current ChannelValue, desiredPercent int) ChannelValue {
	// prefer the persisted bit snapshot over a re-derived value so repeated
	// percent round-trips cannot drift the duty cycle
	currentBits := current.Bits
	if currentBits < MinBitsValue || currentBits > MaxBitsValue {
		currentBits = PercentToBits(current.Percent)
	}
	desiredBits := PercentToBits(desiredPercent)

	maxStepBits := scaleToBits(l.maxStep)
	minChangeBits := scaleToBits(l.minChange)

	nextBits := limitStep(currentBits, desiredBits, maxStepBits, minChangeBits)
	nextBits = util.CoerceInt(nextBits, MinBitsValue, MaxBitsValue)

	return ChannelValue{
		Percent: BitsToPercent(nextBits),
		Bits:    nextBits,
	}
}

func scaleToBits(percentUnits int) int {
	if percentUnits <= 0 {
		return 0
	}
	return util.RoundHalfUp(float64(percentUnits) * float64(MaxBitsValue) / 100.0)
}

// limitStep applies the minimum-change floor, then the maximum-step ceiling.
// The floor can overshoot a desired value closer than minChange; this matches
// the long-observed controller behavior near the deadband boundary.
func limitStep(current int, desired int, maxStep int, minChange int) int {
	delta := desired - current
	if delta == 0 {
		return current
	}

	step := delta
	if step < 0 {
		step = -step
	}
	if minChange > 0 && step < minChange {
		step = minChange
	}
	if maxStep > 0 && step > maxStep {
		step = maxStep
	}

	if delta < 0 {
		return current - step
	}
	return current + step
}

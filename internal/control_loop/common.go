package control_loop

// ChannelValue is the applied speed of one fan channel in both domains.
// Bits mirror the 8-bit duty cycle representation [1..255]; 0 is never used
// because the device treats it as an ambiguous stop state.
type ChannelValue struct {
	Percent int
	Bits    int
}

// StepLimiter bounds the per-iteration change of a channel, operating either
// in the percent domain or in the PWM bit domain. The domain is resolved once
// from configuration, not per call.
type StepLimiter interface {
	// Next computes the value to apply for the desired percent,
	// honoring the minimum-change floor and the maximum-step ceiling.
	Next(current ChannelValue, desiredPercent int) ChannelValue
}

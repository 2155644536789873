package util

import "math"

// Coerce returns the given value, limited to [min, max]
func Coerce(value float64, min float64, max float64) float64 {
	if value > max {
		return max
	}
	if value < min {
		return min
	}
	return value
}

// CoerceInt returns the given value, limited to [min, max]
func CoerceInt(value int, min int, max int) int {
	if value > max {
		return max
	}
	if value < min {
		return min
	}
	return value
}

// Ratio calculates the ratio that target has in comparison to rangeMin and rangeMax
// Make sure that:
// rangeMin <= target <= rangeMax
// rangeMax - rangeMin != 0
func Ratio(target float64, rangeMin float64, rangeMax float64) float64 {
	return (target - rangeMin) / (rangeMax - rangeMin)
}

// Avg calculates the average of all values in the given array
func Avg(values []float64) float64 {
	sum := 0.0
	for i := 0; i < len(values); i++ {
		sum += values[i]
	}
	return sum / (float64(len(values)))
}

// AvgInt calculates the average of all values in the given array
func AvgInt(values []int) float64 {
	sum := 0
	for i := 0; i < len(values); i++ {
		sum += values[i]
	}
	return float64(sum) / float64(len(values))
}

// RoundHalfUp rounds the given value to the nearest integer, ties away from zero
func RoundHalfUp(value float64) int {
	return int(math.Round(value))
}

// UpdateSimpleMovingAvg calculates the new moving average, based on an existing average and buffer size
func UpdateSimpleMovingAvg(oldAvg float64, n int, newValue float64) float64 {
	return oldAvg + (1/float64(n))*(newValue-oldAvg)
}

package bmc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestEncoding(t *testing.T) {
	// GIVEN
	maxRequest := Request{Channel: 2, Field: FieldMax, Value: 150}
	minRequest := Request{Channel: 0, Field: FieldMin, Value: 1}

	// WHEN / THEN
	assert.Equal(t, "channel 2 max 150", maxRequest.Encode())
	assert.Equal(t, "channel 0 min 1", minRequest.Encode())
}

func TestLegacyRequestEncoding(t *testing.T) {
	// GIVEN
	request := LegacyRequest{
		Path:     "/system1/fan5",
		Property: "fan_speed",
		Value:    40,
	}

	// WHEN / THEN
	assert.Equal(t, "set /system1/fan5 fan_speed=40", request.Encode())
}

package configuration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validTestConfig() Configuration {
	return Configuration{
		PwmDomain:       PwmDomainBits,
		BaselinePercent: 20,
		Channels:        DefaultChannels(),
	}
}

func TestValidConfig(t *testing.T) {
	// GIVEN
	config := validTestConfig()

	// WHEN / THEN
	assert.NoError(t, validateConfig(&config))
}

func TestInvalidPwmDomain(t *testing.T) {
	// GIVEN
	config := validTestConfig()
	config.PwmDomain = "rpm"

	// WHEN / THEN
	assert.Error(t, validateConfig(&config))
}

func TestBaselineOutOfRange(t *testing.T) {
	// GIVEN
	config := validTestConfig()
	config.BaselinePercent = 150

	// WHEN / THEN
	assert.Error(t, validateConfig(&config))
}

func TestNoChannels(t *testing.T) {
	// GIVEN
	config := validTestConfig()
	config.Channels = nil

	// WHEN / THEN
	assert.Error(t, validateConfig(&config))
}

func TestDuplicateChannelId(t *testing.T) {
	// GIVEN
	config := validTestConfig()
	config.Channels = append(config.Channels, ChannelConfig{ID: "fan1", Channel: 7})

	// WHEN / THEN
	assert.Error(t, validateConfig(&config))
}

func TestDuplicateProtocolId(t *testing.T) {
	// GIVEN
	config := validTestConfig()
	config.Channels = append(config.Channels, ChannelConfig{ID: "fan6", Channel: 0})

	// WHEN / THEN
	assert.Error(t, validateConfig(&config))
}

func TestLegacyChannelRequiresFanId(t *testing.T) {
	// GIVEN
	config := validTestConfig()
	config.Channels = append(config.Channels, ChannelConfig{ID: "fan6", Channel: -1})

	// WHEN / THEN
	assert.Error(t, validateConfig(&config))
}

func TestMultipleGpuFansRejected(t *testing.T) {
	// GIVEN
	config := validTestConfig()
	config.Channels = append(config.Channels, ChannelConfig{ID: "fan6", Channel: 7, GpuFan: true})

	// WHEN / THEN
	assert.Error(t, validateConfig(&config))
}

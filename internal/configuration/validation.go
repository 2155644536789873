package configuration

import (
	"fmt"

	"golang.org/x/exp/slices"
)

func Validate() error {
	return validateConfig(&CurrentConfig)
}

func validateConfig(config *Configuration) error {
	if !slices.Contains([]string{PwmDomainPercent, PwmDomainBits}, config.PwmDomain) {
		return fmt.Errorf("invalid pwm domain '%s', use one of: %s | %s",
			config.PwmDomain, PwmDomainPercent, PwmDomainBits)
	}

	if config.BaselinePercent < 0 || config.BaselinePercent > 100 {
		return fmt.Errorf("baseline percent must be within [0, 100], got %d", config.BaselinePercent)
	}

	if len(config.Channels) <= 0 {
		return fmt.Errorf("no fan channels declared")
	}

	return validateChannels(config)
}

func validateChannels(config *Configuration) error {
	seenIds := map[string]bool{}
	seenChannels := map[int]bool{}
	gpuFans := 0

	for _, channel := range config.Channels {
		if len(channel.ID) <= 0 {
			return fmt.Errorf("channel with empty id")
		}
		if seenIds[channel.ID] {
			return fmt.Errorf("channel %s: duplicate id", channel.ID)
		}
		seenIds[channel.ID] = true

		if channel.Channel >= 0 {
			if seenChannels[channel.Channel] {
				return fmt.Errorf("channel %s: protocol id %d already in use", channel.ID, channel.Channel)
			}
			seenChannels[channel.Channel] = true
		} else if len(channel.LegacyFanID) <= 0 {
			return fmt.Errorf("channel %s: no protocol id and no legacy fan id", channel.ID)
		}

		if channel.GpuFan {
			gpuFans++
		}
	}

	if gpuFans > 1 {
		return fmt.Errorf("at most one channel can be the dedicated accelerator fan, got %d", gpuFans)
	}

	return nil
}

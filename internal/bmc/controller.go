package bmc

import (
	"fmt"
	"time"

	"github.com/asecurityteam/rolling"
	"github.com/avast/retry-go/v4"
	"github.com/dynfan/dynfan/internal/configuration"
	"github.com/dynfan/dynfan/internal/control_loop"
	"github.com/dynfan/dynfan/internal/ui"
	"github.com/dynfan/dynfan/internal/util"
	cmap "github.com/orcaman/concurrent-map/v2"
)

const (
	// attempts per sub-command
	commandAttempts = 3
	// backoff ceiling; the delay starts at the pacing gap and doubles
	maxRetryDelay = 800 * time.Millisecond
	// the floor is pinned this many bits below the ceiling to force an
	// exact duty cycle
	floorMargin = 10

	latencyWindowSize = 10
)

// Locker is the cross-process mutual exclusion taken around every
// sub-command sequence.
type Locker interface {
	Acquire() error
	Release()
}

// Capability is the discovered (path, property) pair that controls a
// channel on the legacy fallback path.
type Capability struct {
	Path     string `json:"path"`
	Property string `json:"property"`
}

// CapabilityStore persists discovered capabilities across restarts.
type CapabilityStore interface {
	LoadCapability(channelId string) (Capability, error)
	SaveCapability(channelId string, capability Capability) error
}

// legacy discoveries are memoized per channel id for the lifetime of the process
var capabilityCache = cmap.New[Capability]()

// FanChannelController drives one physical fan channel on the remote
// controller.
type FanChannelController interface {
	GetId() string

	// Apply drives the channel from current to next. The update succeeds
	// only if every sub-command eventually succeeds within its retry
	// budget; otherwise the caller must leave the channel state untouched.
	Apply(current control_loop.ChannelValue, next control_loop.ChannelValue) error
}

// NewFanChannelController selects the protocol variant for the given channel:
// two-phase pwm control when a numeric protocol id is declared, the legacy
// property path otherwise.
func NewFanChannelController(
	config configuration.ChannelConfig,
	bmcConfig configuration.BmcConfig,
	transport Transport,
	lock Locker,
	store CapabilityStore,
) FanChannelController {
	if config.Channel >= 0 {
		return &pwmChannelController{
			config:    config,
			transport: transport,
			lock:      lock,
			gap:       bmcConfig.CommandGap,
			latency:   util.CreateRollingWindow(latencyWindowSize),
		}
	}
	return &legacyChannelController{
		config:       config,
		transport:    transport,
		lock:         lock,
		gap:          bmcConfig.CommandGap,
		store:        store,
		pathPrefixes: bmcConfig.LegacyPathPrefixes,
		properties:   bmcConfig.LegacyProperties,
	}
}

type pwmChannelController struct {
	config    configuration.ChannelConfig
	transport Transport
	lock      Locker
	gap       time.Duration
	latency   *rolling.PointPolicy
}

func (c *pwmChannelController) GetId() string {
	return c.config.ID
}

func (c *pwmChannelController) Apply(current control_loop.ChannelValue, next control_loop.ChannelValue) error {
	if next.Bits == current.Bits {
		return nil
	}

	ceiling := next.Bits
	floor := util.CoerceInt(ceiling-floorMargin, control_loop.MinBitsValue, control_loop.MaxBitsValue)

	maxRequest := Request{Channel: c.config.Channel, Field: FieldMax, Value: ceiling}
	minRequest := Request{Channel: c.config.Channel, Field: FieldMin, Value: floor}

	// raising: lift the ceiling before the floor; lowering: drop the floor
	// before the ceiling. The floor must never transiently exceed the ceiling.
	var ordered []Request
	if next.Bits > current.Bits {
		ordered = []Request{maxRequest, minRequest}
	} else {
		ordered = []Request{minRequest, maxRequest}
	}

	if err := c.lock.Acquire(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDeviceCommandFailed, c.config.ID, err)
	}
	defer c.lock.Release()

	for i, request := range ordered {
		if i > 0 {
			time.Sleep(c.gap)
		}
		if err := c.send(request); err != nil {
			return fmt.Errorf("%w: %s: %s: %v", ErrDeviceCommandFailed, c.config.ID, request.Encode(), err)
		}
	}

	ui.Debug("Channel %s set to %d bits (%d%%), avg command latency %.0fms",
		c.config.ID, next.Bits, next.Percent, c.latency.Reduce(rolling.Avg))
	return nil
}

func (c *pwmChannelController) send(request Request) error {
	command := request.Encode()
	return retry.Do(
		func() error {
			start := time.Now()
			_, err := c.transport.Run(command)
			c.latency.Append(float64(time.Since(start).Milliseconds()))
			return err
		},
		retry.Attempts(commandAttempts),
		retry.Delay(c.gap),
		retry.MaxDelay(maxRetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

type legacyChannelController struct {
	config    configuration.ChannelConfig
	transport Transport
	lock      Locker
	gap       time.Duration
	store     CapabilityStore

	pathPrefixes []string
	properties   []string
}

func (c *legacyChannelController) GetId() string {
	return c.config.ID
}

func (c *legacyChannelController) Apply(current control_loop.ChannelValue, next control_loop.ChannelValue) error {
	if next.Percent == current.Percent {
		return nil
	}

	if err := c.lock.Acquire(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDeviceCommandFailed, c.config.ID, err)
	}
	defer c.lock.Release()

	capability, ok := c.capability()
	if ok {
		request := LegacyRequest{
			Path:     capability.Path,
			Property: capability.Property,
			Value:    next.Percent,
		}
		if err := c.send(request); err == nil {
			return nil
		}
		// the cached capability went stale, forget it and re-probe next time
		capabilityCache.Remove(c.config.ID)
		return fmt.Errorf("%w: %s: capability %s/%s no longer works",
			ErrDeviceCommandFailed, c.config.ID, capability.Path, capability.Property)
	}

	return c.probe(next.Percent)
}

// probe walks the candidate property names and object-path prefixes until one
// write succeeds, then memoizes and persists the winning pair.
func (c *legacyChannelController) probe(percent int) error {
	for _, prefix := range c.pathPrefixes {
		path := fmt.Sprintf("%s/%s", prefix, c.config.LegacyFanID)
		for _, property := range c.properties {
			request := LegacyRequest{Path: path, Property: property, Value: percent}
			if _, err := c.transport.Run(request.Encode()); err != nil {
				continue
			}

			capability := Capability{Path: path, Property: property}
			capabilityCache.Set(c.config.ID, capability)
			if c.store != nil {
				if err := c.store.SaveCapability(c.config.ID, capability); err != nil {
					ui.Warning("Unable to persist capability for %s: %v", c.config.ID, err)
				}
			}
			ui.Info("Discovered legacy control of %s: %s %s", c.config.ID, path, property)
			return nil
		}
	}
	return fmt.Errorf("%w: %s: no working path/property combination", ErrDeviceCommandFailed, c.config.ID)
}

func (c *legacyChannelController) send(request LegacyRequest) error {
	return retry.Do(
		func() error {
			_, err := c.transport.Run(request.Encode())
			return err
		},
		retry.Attempts(commandAttempts),
		retry.Delay(c.gap),
		retry.MaxDelay(maxRetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

func (c *legacyChannelController) capability() (Capability, bool) {
	if capability, ok := capabilityCache.Get(c.config.ID); ok {
		return capability, true
	}
	if c.store != nil {
		if capability, err := c.store.LoadCapability(c.config.ID); err == nil {
			capabilityCache.Set(c.config.ID, capability)
			return capability, true
		}
	}
	return Capability{}, false
}

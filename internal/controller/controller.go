package controller

import (
	"context"
	"sync"
	"time"

	"github.com/dynfan/dynfan/internal/bmc"
	"github.com/dynfan/dynfan/internal/configuration"
	"github.com/dynfan/dynfan/internal/control_loop"
	"github.com/dynfan/dynfan/internal/curves"
	"github.com/dynfan/dynfan/internal/forecast"
	"github.com/dynfan/dynfan/internal/ui"
	"github.com/dynfan/dynfan/internal/util"
)

// Reader is the temperature source consumed by the loop.
type Reader interface {
	Read() float64
}

// StateStore is the subset of persistence used by the loop.
type StateStore interface {
	LoadState(channelCount int, baselinePercent int) (percents []int, bits []int, err error)
	SaveState(percents []int, bits []int) error
}

// ChannelState pairs a configured channel with its device controller and
// the last value known to be applied on the device.
type ChannelState struct {
	Config     configuration.ChannelConfig
	Controller bmc.FanChannelController
	Value      control_loop.ChannelValue
}

// ChannelStatus is the externally visible state of one channel.
type ChannelStatus struct {
	ID      string `json:"id"`
	GpuFan  bool   `json:"gpuFan"`
	Percent int    `json:"percent"`
	Bits    int    `json:"bits"`
}

// Status is a point-in-time view of the loop for the api and statistics
// surfaces. All values refer to the most recently completed iteration.
type Status struct {
	CpuTemp     float64 `json:"cpuTemp"`
	GpuTemp     float64 `json:"gpuTemp"`
	CpuForecast float64 `json:"cpuForecast"`
	GpuForecast float64 `json:"gpuForecast"`

	SystemTarget int `json:"systemTarget"`
	GpuTarget    int `json:"gpuTarget"`

	Channels []ChannelStatus `json:"channels"`
}

// Controller runs the closed-loop iteration: sample, forecast, map, smooth,
// apply, persist. One instance drives all configured channels.
type Controller struct {
	config configuration.Configuration

	cpu Reader
	gpu Reader

	channels []*ChannelState
	store    StateStore

	snapshot   *configuration.CurveSnapshot
	cpuHistory *forecast.History
	gpuHistory *forecast.History

	statusMu sync.Mutex
	status   Status
}

func NewController(
	config configuration.Configuration,
	cpu Reader,
	gpu Reader,
	channels []*ChannelState,
	store StateStore,
) *Controller {
	defaults := configuration.DefaultCurveSnapshot()
	return &Controller{
		config:     config,
		cpu:        cpu,
		gpu:        gpu,
		channels:   channels,
		store:      store,
		cpuHistory: forecast.NewHistory(defaults.Predict.History),
		gpuHistory: forecast.NewHistory(defaults.Predict.History),
	}
}

// Status returns a copy of the most recent iteration results.
func (c *Controller) Status() Status {
	c.statusMu.Lock()
	defer c.statusMu.Unlock()
	status := c.status
	status.Channels = append([]ChannelStatus(nil), c.status.Channels...)
	return status
}

// Run restores the persisted channel state and then iterates until the
// context is cancelled. Returns only on a state restore failure.
func (c *Controller) Run(ctx context.Context) error {
	if err := c.restoreState(); err != nil {
		return err
	}

	for {
		c.iterate(time.Now())

		interval := 5 * time.Second
		if c.snapshot != nil && c.snapshot.CheckInterval > 0 {
			interval = time.Duration(c.snapshot.CheckInterval) * time.Second
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

func (c *Controller) restoreState() error {
	percents, bits, err := c.store.LoadState(len(c.channels), c.config.BaselinePercent)
	if err != nil {
		return err
	}
	for i, channel := range c.channels {
		channel.Value = control_loop.ChannelValue{
			Percent: percents[i],
			Bits:    bits[i],
		}
		ui.Debug("Restored %s at %d%% (%d bits)", channel.Config.ID, percents[i], bits[i])
	}
	return nil
}

// iterate runs one full control iteration. Device failures never abort the
// iteration; the affected channel simply keeps its previous state.
func (c *Controller) iterate(now time.Time) {
	c.snapshot = configuration.LoadCurveSnapshot(c.config.CurveFile, c.snapshot)
	snapshot := c.snapshot
	predict := snapshot.Predict

	cpuTemp := c.cpu.Read()
	gpuTemp := c.gpu.Read()

	c.cpuHistory.SetCapacity(predict.History)
	c.gpuHistory.SetCapacity(predict.History)
	c.cpuHistory.Append(now, cpuTemp)
	c.gpuHistory.Append(now, gpuTemp)

	cpuForecast := forecast.Compute(c.cpuHistory, predict.Window, predict.MinPoints, predict.Horizon, cpuTemp)
	gpuForecast := forecast.Compute(c.gpuHistory, predict.Window, predict.MinPoints, predict.Horizon, gpuTemp)

	cpuAhead := forecast.Blend(cpuTemp, cpuForecast.Value, predict.Blend) +
		forecast.LeadOffset(cpuForecast.Slope, predict.Lead, predict.SlopeGain, predict.MaxOffset)
	gpuAhead := forecast.Blend(gpuTemp, gpuForecast.Value, predict.GpuBlend) +
		forecast.LeadOffset(gpuForecast.Slope, predict.GpuLead, predict.GpuSlopeGain, predict.GpuMaxOffset)

	baseCurve := curves.BaseCurve(snapshot)
	gpuCurve := curves.GpuCurve(snapshot)
	cpuTarget := baseCurve.Target(cpuAhead)
	gpuTarget := gpuCurve.Target(gpuAhead)

	blender := curves.NewBlender(snapshot.SystemFans)
	systemTarget := blender.Combine(cpuTarget, gpuTarget)

	// rates are fitted in °C/s, the rate nudge is tuned in °C/min
	systemAdjust := forecast.RateAdjust(cpuForecast.Slope*60,
		predict.RateGain, predict.RateMax, predict.RateDeadband, predict.RateCooldown)
	systemTarget = util.CoerceInt(util.RoundHalfUp(float64(systemTarget)+systemAdjust), 0, 100)

	gpuFanTarget := curves.GpuFanTarget(gpuTarget, gpuTemp, snapshot.GpuFan, snapshot.GpuBoost)
	gpuAdjust := forecast.RateAdjust(gpuForecast.Slope*60,
		predict.GpuRateGain, predict.GpuRateMax, predict.GpuRateDeadband, predict.GpuRateCooldown)
	gpuFanTarget = util.CoerceInt(util.RoundHalfUp(float64(gpuFanTarget)+gpuAdjust), 0, 100)

	ui.Debug("CPU %.1f°C (ahead %.1f, slope %.3f°C/s) GPU %.1f°C (ahead %.1f) -> system %d%% gpu %d%%",
		cpuTemp, cpuAhead, cpuForecast.Slope, gpuTemp, gpuAhead, systemTarget, gpuFanTarget)
	if systemAdjust != 0 || gpuAdjust != 0 {
		ui.Debug("Rate nudge: system %+.1f%% gpu %+.1f%%", systemAdjust, gpuAdjust)
	}

	systemSuppressor := control_loop.NewDeadbandSuppressor(predict.Deadband)
	gpuSuppressor := control_loop.NewDeadbandSuppressor(predict.GpuDeadband)
	limiter := control_loop.NewStepLimiter(c.config.PwmDomain, snapshot.MaxStep, snapshot.MinChange)

	// the system deadband is judged against the group as a whole so a single
	// straggling channel cannot keep re-triggering updates
	systemPrevious := c.systemAverage()

	applied := false
	for _, channel := range c.channels {
		var desired int
		if channel.Config.GpuFan {
			desired = int(gpuSuppressor.Suppress(float64(channel.Value.Percent), float64(gpuFanTarget)))
		} else {
			desired = int(systemSuppressor.Suppress(systemPrevious, float64(systemTarget)))
		}

		next := limiter.Next(channel.Value, desired)
		if next == channel.Value {
			continue
		}

		if applied {
			// pace consecutive channel updates like consecutive sub-commands
			time.Sleep(c.config.Bmc.CommandGap)
		}

		if err := channel.Controller.Apply(channel.Value, next); err != nil {
			ui.Warning("Unable to update %s to %d%%: %v", channel.Config.ID, next.Percent, err)
			continue
		}
		applied = true
		channel.Value = next
	}

	c.saveState()
	c.publishStatus(cpuTemp, gpuTemp, cpuForecast.Value, gpuForecast.Value, systemTarget, gpuFanTarget)
}

// systemAverage returns the mean previously applied percent across the
// system fan group, or the baseline if the group is empty.
func (c *Controller) systemAverage() float64 {
	values := make([]int, 0, len(c.channels))
	for _, channel := range c.channels {
		if channel.Config.GpuFan {
			continue
		}
		values = append(values, channel.Value.Percent)
	}
	if len(values) == 0 {
		return float64(c.config.BaselinePercent)
	}
	return util.AvgInt(values)
}

func (c *Controller) saveState() {
	percents := make([]int, len(c.channels))
	bits := make([]int, len(c.channels))
	for i, channel := range c.channels {
		percents[i] = channel.Value.Percent
		bits[i] = channel.Value.Bits
	}
	if err := c.store.SaveState(percents, bits); err != nil {
		ui.Warning("Unable to persist channel state: %v", err)
	}
}

func (c *Controller) publishStatus(cpuTemp, gpuTemp, cpuForecast, gpuForecast float64, systemTarget, gpuTarget int) {
	channels := make([]ChannelStatus, len(c.channels))
	for i, channel := range c.channels {
		channels[i] = ChannelStatus{
			ID:      channel.Config.ID,
			GpuFan:  channel.Config.GpuFan,
			Percent: channel.Value.Percent,
			Bits:    channel.Value.Bits,
		}
	}

	c.statusMu.Lock()
	defer c.statusMu.Unlock()
	c.status = Status{
		CpuTemp:      cpuTemp,
		GpuTemp:      gpuTemp,
		CpuForecast:  cpuForecast,
		GpuForecast:  gpuForecast,
		SystemTarget: systemTarget,
		GpuTarget:    gpuTarget,
		Channels:     channels,
	}
}

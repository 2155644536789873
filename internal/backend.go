package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dynfan/dynfan/internal/api"
	"github.com/dynfan/dynfan/internal/bmc"
	"github.com/dynfan/dynfan/internal/configuration"
	"github.com/dynfan/dynfan/internal/control_loop"
	"github.com/dynfan/dynfan/internal/controller"
	"github.com/dynfan/dynfan/internal/persistence"
	"github.com/dynfan/dynfan/internal/sensors"
	"github.com/dynfan/dynfan/internal/statistics"
	"github.com/dynfan/dynfan/internal/ui"
	"github.com/dynfan/dynfan/internal/util"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RunDaemon() {
	config := configuration.CurrentConfig

	pers := persistence.NewPersistence(config.StateFile, config.BitsStateFile, config.DbPath)
	if err := pers.Init(); err != nil {
		ui.Fatal("Unable to initialize persistence: %v", err)
	}

	session := bmc.NewSession(config.Bmc)
	defer func() {
		_ = session.Close()
	}()
	lock := bmc.NewCommandLock(config.Bmc.LockFile, config.Bmc.LockTimeout)

	cpu, gpu := BuildSensors(config, session)
	channels := BuildChannels(config, session, lock, pers)
	if len(channels) == 0 {
		ui.Fatal("No valid channel configurations, exiting.")
	}

	loop := controller.NewController(config, cpu, gpu, channels, pers)

	statistics.Register(statistics.NewChannelCollector(loop))
	statistics.Register(statistics.NewTemperatureCollector(loop))

	ctx, cancel := context.WithCancel(context.Background())

	var g run.Group
	{
		// === control loop
		g.Add(func() error {
			err := loop.Run(ctx)
			ui.Info("Control loop stopped.")
			return err
		}, func(err error) {
			if err != nil {
				ui.Warning("Error running control loop: %v", err)
			}
		})
	}
	{
		enabled := config.Statistics.Enabled
		if enabled {
			// === Prometheus Exporter
			g.Add(func() error {
				port := config.Statistics.Port
				if port <= 0 || port >= 65535 {
					port = 9640
				}
				endpoint := "/metrics"
				addr := fmt.Sprintf(":%d", port)
				handler := promhttp.Handler()
				http.Handle(endpoint, handler)
				server := &http.Server{Addr: addr, Handler: handler}
				if err := server.ListenAndServe(); err != nil {
					ui.Error("Cannot start prometheus metrics endpoint (%s)", err.Error())
				}

				<-ctx.Done()
				ui.Info("Stopping statistics server...")
				timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer timeoutCancel()
				return server.Shutdown(timeoutCtx)
			}, func(err error) {
				if err != nil {
					ui.Warning("Error stopping statistics server: " + err.Error())
				} else {
					ui.Info("Statistics server stopped.")
				}
			})
		}
	}
	{
		enabled := config.Api.Enabled
		if enabled {
			// === REST Api
			echoRest := api.CreateRestService(loop)
			g.Add(func() error {
				addr := fmt.Sprintf("%s:%d", config.Api.Host, config.Api.Port)
				if err := echoRest.Start(addr); err != nil {
					ui.Error("Cannot start rest api endpoint (%s)", err.Error())
				}

				<-ctx.Done()
				ui.Info("Stopping api server...")
				timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer timeoutCancel()
				return echoRest.Shutdown(timeoutCtx)
			}, func(err error) {
				if err != nil {
					ui.Warning("Error stopping api server: " + err.Error())
				} else {
					ui.Info("Api server stopped.")
				}
			})
		}
	}
	{
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

		g.Add(func() error {
			<-sig
			ui.Info("Received SIGTERM signal, exiting...")
			return nil
		}, func(err error) {
			defer close(sig)
			cancel()
		})
	}

	if err := g.Run(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	} else {
		ui.Info("Done.")
		os.Exit(0)
	}
}

// BuildSensors assembles the CPU and GPU temperature sources for the
// configured backends, each wrapped in the TTL cache.
func BuildSensors(config configuration.Configuration, transport bmc.Transport) (*sensors.CachedSensor, *sensors.CachedSensor) {
	s := config.Sensors

	var cpuSource sensors.Sensor
	if s.CpuSource == "bmc" {
		cpuSource = &sensors.BmcSensor{ID: "cpu", Transport: transport, Command: config.Bmc.SensorCommand}
	} else {
		cpuSource = &sensors.LmSensor{ID: "cpu"}
	}

	var gpuSource sensors.Sensor
	if len(s.GpuExec) > 0 {
		gpuSource = &sensors.CmdSensor{ID: "gpu", Exec: s.GpuExec, Args: s.GpuArgs}
	} else {
		gpuSource = &sensors.NvidiaSensor{ID: "gpu"}
	}

	cpu := sensors.NewCachedSensor(cpuSource, s.CacheTTL, float64(s.CpuFallback), s.MovingAvgWindow)
	// a missing accelerator reads as 0°C, which the curve treats as cold
	gpu := sensors.NewCachedSensor(gpuSource, s.CacheTTL, 0, s.MovingAvgWindow)
	return cpu, gpu
}

// BuildChannels creates a device controller per configured channel.
func BuildChannels(
	config configuration.Configuration,
	transport bmc.Transport,
	lock bmc.Locker,
	store bmc.CapabilityStore,
) []*controller.ChannelState {
	channels := make([]*controller.ChannelState, 0, len(config.Channels))
	for _, channelConfig := range config.Channels {
		channelController := bmc.NewFanChannelController(channelConfig, config.Bmc, transport, lock, store)
		channels = append(channels, &controller.ChannelState{
			Config:     channelConfig,
			Controller: channelController,
		})
	}
	return channels
}

// ApplyChannelSpeed drives a single channel to the given percent once,
// through the same protocol path the daemon uses, and updates the
// persisted state so a subsequently started daemon ramps from there.
func ApplyChannelSpeed(id string, percent int) error {
	config := configuration.CurrentConfig

	pers := persistence.NewPersistence(config.StateFile, config.BitsStateFile, config.DbPath)
	if err := pers.Init(); err != nil {
		return err
	}

	session := bmc.NewSession(config.Bmc)
	defer func() {
		_ = session.Close()
	}()
	lock := bmc.NewCommandLock(config.Bmc.LockFile, config.Bmc.LockTimeout)

	channels := BuildChannels(config, session, lock, pers)
	percents, bits, err := pers.LoadState(len(channels), config.BaselinePercent)
	if err != nil {
		return err
	}

	for i, channel := range channels {
		if channel.Config.ID != id {
			continue
		}

		current := control_loop.ChannelValue{Percent: percents[i], Bits: bits[i]}
		targetPercent := util.CoerceInt(percent, 0, 100)
		next := control_loop.ChannelValue{
			Percent: targetPercent,
			Bits:    control_loop.PercentToBits(targetPercent),
		}

		if err := channel.Controller.Apply(current, next); err != nil {
			return err
		}

		percents[i] = next.Percent
		bits[i] = next.Bits
		return pers.SaveState(percents, bits)
	}

	return fmt.Errorf("no channel with id '%s' configured", id)
}

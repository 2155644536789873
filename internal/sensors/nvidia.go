package sensors

import (
	"sync"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
	"github.com/dynfan/dynfan/internal/ui"
)

var (
	nvmlOnce  sync.Once
	nvmlReady bool
)

func initNvml() bool {
	nvmlOnce.Do(func() {
		ret := nvml.Init()
		if ret != nvml.SUCCESS {
			ui.Warning("Unable to initialize NVML: %v", nvml.ErrorString(ret))
			return
		}
		nvmlReady = true
	})
	return nvmlReady
}

// CleanupNvml shuts down the NVML library if it was initialized.
func CleanupNvml() {
	if nvmlReady {
		_ = nvml.Shutdown()
	}
}

// NvidiaSensor reads GPU core temperatures via NVML and reports the hottest
// device. When no GPU telemetry is available it degrades to 0°C, which the
// curve treats as permanently cold.
type NvidiaSensor struct {
	ID        string
	MovingAvg float64
}

func (sensor *NvidiaSensor) GetId() string {
	return sensor.ID
}

func (sensor *NvidiaSensor) GetValue() (float64, error) {
	if !initNvml() {
		return 0, nil
	}

	count, ret := nvml.DeviceGetCount()
	if ret != nvml.SUCCESS || count <= 0 {
		ui.Debug("No GPU devices visible: %v", nvml.ErrorString(ret))
		return 0, nil
	}

	hottest := 0.0
	for i := 0; i < count; i++ {
		device, ret := nvml.DeviceGetHandleByIndex(i)
		if ret != nvml.SUCCESS {
			continue
		}
		temp, ret := device.GetTemperature(nvml.TEMPERATURE_GPU)
		if ret != nvml.SUCCESS {
			continue
		}
		if float64(temp) > hottest {
			hottest = float64(temp)
		}
	}
	return hottest, nil
}

func (sensor *NvidiaSensor) GetMovingAvg() float64 {
	return sensor.MovingAvg
}

func (sensor *NvidiaSensor) SetMovingAvg(avg float64) {
	sensor.MovingAvg = avg
}

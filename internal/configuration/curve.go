package configuration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dynfan/dynfan/internal/ui"
	"github.com/qdm12/reprint"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const (
	BlendModeCpu      = "cpu"
	BlendModeGpu      = "gpu"
	BlendModeWeighted = "weighted"
	BlendModeMax      = "max"

	PwmDomainPercent = "percent"
	PwmDomainBits    = "bits"
)

// GpuCurve is the optional accelerator override of the base curve
type GpuCurve struct {
	MinTemp  int `json:"minTemp"`
	MaxTemp  int `json:"maxTemp"`
	MinSpeed int `json:"minSpeed"`
	MaxSpeed int `json:"maxSpeed"`
}

// GpuFanTrim shapes the dedicated accelerator fan channel target
type GpuFanTrim struct {
	Offset int  `json:"offset"`
	Min    *int `json:"min"`
	Max    *int `json:"max"`
}

// GpuBoost adds a fixed amount once the accelerator reaches a threshold
type GpuBoost struct {
	Threshold int `json:"threshold"`
	Add       int `json:"add"`
}

// SystemFans selects how CPU- and accelerator-derived targets are combined
type SystemFans struct {
	Mode      string  `json:"mode"`
	CpuWeight float64 `json:"cpuWeight"`
	GpuWeight float64 `json:"gpuWeight"`
}

// Predict holds the forecasting and feed-forward tuning parameters.
// Gpu* variants apply to the accelerator channel, the others to the CPU.
type Predict struct {
	Horizon   float64 `json:"horizon"`
	History   int     `json:"history"`
	Window    int     `json:"window"`
	MinPoints int     `json:"minPoints"`

	Blend    float64 `json:"blend"`
	GpuBlend float64 `json:"gpuBlend"`
	Lead     float64 `json:"lead"`
	GpuLead  float64 `json:"gpuLead"`

	SlopeGain    float64 `json:"slopeGain"`
	GpuSlopeGain float64 `json:"gpuSlopeGain"`
	MaxOffset    float64 `json:"maxOffset"`
	GpuMaxOffset float64 `json:"gpuMaxOffset"`

	Deadband    float64 `json:"deadband"`
	GpuDeadband float64 `json:"gpuDeadband"`

	RateGain        float64 `json:"rateGain"`
	GpuRateGain     float64 `json:"gpuRateGain"`
	RateDeadband    float64 `json:"rateDeadband"`
	GpuRateDeadband float64 `json:"gpuRateDeadband"`
	RateMax         float64 `json:"rateMax"`
	GpuRateMax      float64 `json:"gpuRateMax"`
	RateCooldown    float64 `json:"rateCooldown"`
	GpuRateCooldown float64 `json:"gpuRateCooldown"`
}

// CurveSnapshot is one immutable, validated view of the curve/tuning file.
// It is reloaded at the start of every iteration; malformed or out-of-range
// fields silently keep the value of the previous snapshot.
type CurveSnapshot struct {
	MinTemp  int `json:"minTemp"`
	MaxTemp  int `json:"maxTemp"`
	MinSpeed int `json:"minSpeed"`
	MaxSpeed int `json:"maxSpeed"`

	// CheckInterval is the per-iteration sleep in seconds
	CheckInterval int `json:"checkInterval"`
	MaxStep       int `json:"maxStep"`
	MinChange     int `json:"minChange"`

	Gpu        *GpuCurve   `json:"gpu"`
	GpuFan     *GpuFanTrim `json:"gpuFan"`
	GpuBoost   *GpuBoost   `json:"gpuBoost"`
	SystemFans SystemFans  `json:"systemFans"`
	Predict    Predict     `json:"predict"`
}

// DefaultCurveSnapshot returns the documented defaults, matching the file
// that is synthesized when no curve file exists yet.
func DefaultCurveSnapshot() *CurveSnapshot {
	return &CurveSnapshot{
		MinTemp:  30,
		MaxTemp:  80,
		MinSpeed: 20,
		MaxSpeed: 100,

		CheckInterval: 5,
		MaxStep:       10,
		MinChange:     0,

		SystemFans: SystemFans{
			Mode:      BlendModeMax,
			CpuWeight: 0.5,
			GpuWeight: 0.5,
		},
		Predict: Predict{
			Horizon:   30,
			History:   120,
			Window:    24,
			MinPoints: 3,

			Blend:    0.5,
			GpuBlend: 0.5,
			Lead:     10,
			GpuLead:  10,

			SlopeGain:    1.0,
			GpuSlopeGain: 1.0,
			MaxOffset:    8,
			GpuMaxOffset: 8,

			Deadband:    2,
			GpuDeadband: 2,

			RateGain:        0.5,
			GpuRateGain:     0.5,
			RateDeadband:    1.0,
			GpuRateDeadband: 1.0,
			RateMax:         10,
			GpuRateMax:      10,
			RateCooldown:    0.5,
			GpuRateCooldown: 0.5,
		},
	}
}

// LoadCurveSnapshot reads the curve file at the given path and merges it over
// the previous snapshot. A missing file is synthesized once with defaults.
// Configuration errors are never fatal; the worst case is an unchanged snapshot.
func LoadCurveSnapshot(path string, previous *CurveSnapshot) *CurveSnapshot {
	if previous == nil {
		previous = DefaultCurveSnapshot()
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeDefaultCurveFile(path); err != nil {
			ui.Warning("Unable to create default curve file at %s: %v", path, err)
		} else {
			ui.Info("Created default curve file at %s", path)
		}
		return previous
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	// predictive tuning can be overridden per-key via DYNFAN_PREDICT_* etc.
	v.SetEnvPrefix("dynfan")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		ui.Warning("Curve file %s is unreadable, keeping previous values: %v", path, err)
		return previous
	}

	next := &CurveSnapshot{}
	if err := reprint.FromTo(previous, next); err != nil {
		ui.Warning("Unable to copy previous curve snapshot: %v", err)
		return previous
	}

	mergeInt(v, "minTemp", &next.MinTemp, -50, 150)
	mergeInt(v, "maxTemp", &next.MaxTemp, -50, 150)
	mergeInt(v, "minSpeed", &next.MinSpeed, 0, 100)
	mergeInt(v, "maxSpeed", &next.MaxSpeed, 0, 100)
	mergeInt(v, "checkInterval", &next.CheckInterval, 1, 3600)
	mergeInt(v, "maxStep", &next.MaxStep, 0, 100)
	mergeInt(v, "minChange", &next.MinChange, 0, 100)

	if v.IsSet("gpu") {
		gpu := next.Gpu
		if gpu == nil {
			gpu = &GpuCurve{
				MinTemp:  next.MinTemp,
				MaxTemp:  next.MaxTemp,
				MinSpeed: next.MinSpeed,
				MaxSpeed: next.MaxSpeed,
			}
		}
		mergeInt(v, "gpu.minTemp", &gpu.MinTemp, -50, 150)
		mergeInt(v, "gpu.maxTemp", &gpu.MaxTemp, -50, 150)
		mergeInt(v, "gpu.minSpeed", &gpu.MinSpeed, 0, 100)
		mergeInt(v, "gpu.maxSpeed", &gpu.MaxSpeed, 0, 100)
		next.Gpu = gpu
	}

	if v.IsSet("gpuFan") {
		trim := next.GpuFan
		if trim == nil {
			trim = &GpuFanTrim{}
		}
		mergeInt(v, "gpuFan.offset", &trim.Offset, -100, 100)
		mergeOptionalInt(v, "gpuFan.min", &trim.Min, 0, 100)
		mergeOptionalInt(v, "gpuFan.max", &trim.Max, 0, 100)
		next.GpuFan = trim
	}

	if v.IsSet("gpuBoost") {
		boost := next.GpuBoost
		if boost == nil {
			boost = &GpuBoost{}
		}
		mergeInt(v, "gpuBoost.threshold", &boost.Threshold, 0, 150)
		mergeInt(v, "gpuBoost.add", &boost.Add, 0, 100)
		next.GpuBoost = boost
	}

	mergeBlendMode(v, "systemFans.mode", &next.SystemFans.Mode)
	mergeFloat(v, "systemFans.cpuWeight", &next.SystemFans.CpuWeight, 0, 1)
	mergeFloat(v, "systemFans.gpuWeight", &next.SystemFans.GpuWeight, 0, 1)

	p := &next.Predict
	mergeFloat(v, "predict.horizon", &p.Horizon, 0, 600)
	mergeInt(v, "predict.history", &p.History, 2, 100000)
	mergeInt(v, "predict.window", &p.Window, 2, 100000)
	mergeInt(v, "predict.minPoints", &p.MinPoints, 2, 100000)
	mergeFloat(v, "predict.blend", &p.Blend, 0, 1)
	mergeFloat(v, "predict.gpuBlend", &p.GpuBlend, 0, 1)
	mergeFloat(v, "predict.lead", &p.Lead, 0, 600)
	mergeFloat(v, "predict.gpuLead", &p.GpuLead, 0, 600)
	mergeFloat(v, "predict.slopeGain", &p.SlopeGain, 0, 100)
	mergeFloat(v, "predict.gpuSlopeGain", &p.GpuSlopeGain, 0, 100)
	mergeFloat(v, "predict.maxOffset", &p.MaxOffset, 0, 100)
	mergeFloat(v, "predict.gpuMaxOffset", &p.GpuMaxOffset, 0, 100)
	mergeFloat(v, "predict.deadband", &p.Deadband, 0, 100)
	mergeFloat(v, "predict.gpuDeadband", &p.GpuDeadband, 0, 100)
	mergeFloat(v, "predict.rateGain", &p.RateGain, 0, 100)
	mergeFloat(v, "predict.gpuRateGain", &p.GpuRateGain, 0, 100)
	mergeFloat(v, "predict.rateDeadband", &p.RateDeadband, 0, 100)
	mergeFloat(v, "predict.gpuRateDeadband", &p.GpuRateDeadband, 0, 100)
	mergeFloat(v, "predict.rateMax", &p.RateMax, 0, 100)
	mergeFloat(v, "predict.gpuRateMax", &p.GpuRateMax, 0, 100)
	mergeFloat(v, "predict.rateCooldown", &p.RateCooldown, 0, 1)
	mergeFloat(v, "predict.gpuRateCooldown", &p.GpuRateCooldown, 0, 1)

	if next.MaxTemp <= next.MinTemp {
		ui.Warning("Curve file has maxTemp <= minTemp, keeping previous curve range")
		next.MinTemp = previous.MinTemp
		next.MaxTemp = previous.MaxTemp
	}

	return next
}

func mergeInt(v *viper.Viper, key string, target *int, min int, max int) {
	if !v.IsSet(key) {
		return
	}
	value, err := cast.ToIntE(v.Get(key))
	if err != nil || value < min || value > max {
		ui.Debug("Curve field %s ignored: %v", key, v.Get(key))
		return
	}
	*target = value
}

func mergeOptionalInt(v *viper.Viper, key string, target **int, min int, max int) {
	if !v.IsSet(key) {
		return
	}
	value, err := cast.ToIntE(v.Get(key))
	if err != nil || value < min || value > max {
		ui.Debug("Curve field %s ignored: %v", key, v.Get(key))
		return
	}
	*target = &value
}

func mergeFloat(v *viper.Viper, key string, target *float64, min float64, max float64) {
	if !v.IsSet(key) {
		return
	}
	value, err := cast.ToFloat64E(v.Get(key))
	if err != nil || value < min || value > max {
		ui.Debug("Curve field %s ignored: %v", key, v.Get(key))
		return
	}
	*target = value
}

func mergeBlendMode(v *viper.Viper, key string, target *string) {
	if !v.IsSet(key) {
		return
	}
	value, err := cast.ToStringE(v.Get(key))
	if err != nil {
		return
	}
	switch value {
	case BlendModeCpu, BlendModeGpu, BlendModeWeighted, BlendModeMax:
		*target = value
	default:
		ui.Debug("Curve field %s ignored: %v", key, value)
	}
}

func writeDefaultCurveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(DefaultCurveSnapshot(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

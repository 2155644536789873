package configuration

import (
	"os"
	"time"

	"github.com/dynfan/dynfan/internal/ui"
	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type BmcConfig struct {
	// Address of the out-of-band management controller, host[:port]
	Address  string `json:"address"`
	Username string `json:"username"`
	Password string `json:"password"`
	// KeyFile is an optional private key used instead of the password
	KeyFile string `json:"keyFile"`

	// ConnectTimeout bounds the session handshake with the controller
	ConnectTimeout time.Duration `json:"connectTimeout"`
	// CommandGap is the pacing gap between consecutive device commands,
	// also used as the initial retry backoff delay
	CommandGap time.Duration `json:"commandGap"`

	LockFile    string        `json:"lockFile"`
	LockTimeout time.Duration `json:"lockTimeout"`

	// SensorCommand is issued on the controller to list its temperature sensors
	SensorCommand string `json:"sensorCommand"`

	// Candidate object-path prefixes and property names probed by the
	// legacy fallback path for channels without a numeric protocol id
	LegacyPathPrefixes []string `json:"legacyPathPrefixes"`
	LegacyProperties   []string `json:"legacyProperties"`
}

type ChannelConfig struct {
	ID string `json:"id"`
	// Channel is the numeric protocol identifier on the controller.
	// A negative value selects the legacy property fallback path.
	Channel int `json:"channel"`
	// LegacyFanID is the fan object name used by the legacy path
	LegacyFanID string `json:"legacyFanId"`
	// GpuFan marks the dedicated accelerator fan channel
	GpuFan bool `json:"gpuFan"`
}

type SensorsConfig struct {
	// CpuSource selects the CPU temperature source: "lm" (local libsensors)
	// or "bmc" (management controller sensors over the network)
	CpuSource string `json:"cpuSource"`
	// CacheTTL is how long a successful reading is reused before re-sampling
	CacheTTL time.Duration `json:"cacheTTL"`
	// CpuFallback seeds the last-known CPU value before the first successful read
	CpuFallback int `json:"cpuFallback"`
	// GpuExec is an optional executable queried for accelerator temperatures
	// when NVML is unavailable (one integer per device on stdout)
	GpuExec string   `json:"gpuExec"`
	GpuArgs []string `json:"gpuArgs"`
	// MovingAvgWindow is the sample count of the reported moving average
	MovingAvgWindow int `json:"movingAvgWindow"`
}

type StatisticsConfig struct {
	Enabled bool `json:"enabled"`
	Port    int  `json:"port"`
}

type ApiConfig struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
}

type Configuration struct {
	CurveFile     string `json:"curveFile"`
	StateFile     string `json:"stateFile"`
	BitsStateFile string `json:"bitsStateFile"`
	DbPath        string `json:"dbPath"`

	// PwmDomain selects the smoothing domain: "percent" or "bits"
	PwmDomain string `json:"pwmDomain"`
	// BaselinePercent is the seed value for channels without persisted state
	BaselinePercent int `json:"baselinePercent"`

	Bmc      BmcConfig       `json:"bmc"`
	Channels []ChannelConfig `json:"channels"`
	Sensors  SensorsConfig   `json:"sensors"`

	Statistics StatisticsConfig `json:"statistics"`
	Api        ApiConfig        `json:"api"`
}

var CurrentConfig Configuration

// InitConfig reads in config file and ENV variables if set.
func InitConfig(cfgFile string) {
	viper.SetConfigName("dynfan")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			ui.Error("Couldn't detect home directory: %v", err)
			os.Exit(1)
		}

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.AddConfigPath("/etc/dynfan/")
	}

	viper.SetEnvPrefix("dynfan")
	viper.AutomaticEnv() // read in environment variables that match

	setDefaultValues()
}

func setDefaultValues() {
	viper.SetDefault("CurveFile", "/etc/dynfan/fan_curve.json")
	viper.SetDefault("StateFile", "/etc/dynfan/fan_speeds.txt")
	viper.SetDefault("BitsStateFile", "/etc/dynfan/fan_bits.txt")
	viper.SetDefault("DbPath", "/etc/dynfan/dynfan.db")

	viper.SetDefault("PwmDomain", "bits")
	viper.SetDefault("BaselinePercent", 20)

	viper.SetDefault("bmc.Address", "")
	viper.SetDefault("bmc.Username", "")
	viper.SetDefault("bmc.Password", "")
	viper.SetDefault("bmc.ConnectTimeout", 10*time.Second)
	viper.SetDefault("bmc.CommandGap", 100*time.Millisecond)
	viper.SetDefault("bmc.LockFile", "/var/lock/dynfan-bmc.lock")
	viper.SetDefault("bmc.LockTimeout", 5*time.Second)
	viper.SetDefault("bmc.SensorCommand", "show sensors temp")
	viper.SetDefault("bmc.LegacyPathPrefixes", []string{"/system1", "/map1"})
	viper.SetDefault("bmc.LegacyProperties", []string{"fan_speed", "speed", "duty"})

	viper.SetDefault("sensors.CpuSource", "lm")
	viper.SetDefault("sensors.CacheTTL", 5*time.Second)
	viper.SetDefault("sensors.CpuFallback", 50)
	viper.SetDefault("sensors.MovingAvgWindow", 10)

	viper.SetDefault("statistics.Enabled", false)
	viper.SetDefault("statistics.Port", 9640)

	viper.SetDefault("api.Enabled", false)
	viper.SetDefault("api.Host", "localhost")
	viper.SetDefault("api.Port", 9641)
}

// DetectConfigFile returns the path of the config file viper ended up using
func DetectConfigFile() string {
	return viper.ConfigFileUsed()
}

func LoadConfig() {
	// an absent daemon config file is fine, every value has a default
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			ui.Warning("Error reading config file: %s", err)
		}
	}

	// durations may be given as strings like "100ms" in the config file
	err := viper.Unmarshal(&CurrentConfig, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		ui.Fatal("unable to decode into struct, %v", err)
	}

	if len(CurrentConfig.Channels) <= 0 {
		CurrentConfig.Channels = DefaultChannels()
	}
}

// DefaultChannels mirrors the channel layout of the stock chassis:
// four system fans plus a dedicated accelerator fan.
func DefaultChannels() []ChannelConfig {
	return []ChannelConfig{
		{ID: "fan1", Channel: 0},
		{ID: "fan2", Channel: 1},
		{ID: "fan3", Channel: 2},
		{ID: "fan4", Channel: 3},
		{ID: "fan5", Channel: 4, GpuFan: true},
	}
}

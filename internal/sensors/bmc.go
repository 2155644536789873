package sensors

import (
	"regexp"
	"strconv"
)

// matches readings like "CPU Temp  | 54 C" or "Temp: 61 degrees C"
var bmcTempPattern = regexp.MustCompile(`(-?\d+)(?:\.\d+)?\s*(?:degrees\s+)?C\b`)

// Runner is the subset of the device transport needed for sensor queries.
type Runner interface {
	Run(command string) (string, error)
}

// BmcSensor queries the out-of-band management controller for temperature
// readings and reports the hottest one found in the command output.
type BmcSensor struct {
	ID        string
	Transport Runner
	Command   string
	MovingAvg float64
}

func (sensor *BmcSensor) GetId() string {
	return sensor.ID
}

func (sensor *BmcSensor) GetValue() (float64, error) {
	output, err := sensor.Transport.Run(sensor.Command)
	if err != nil {
		return 0, err
	}

	hottest := 0.0
	found := false
	for _, match := range bmcTempPattern.FindAllStringSubmatch(output, -1) {
		value, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		if !found || float64(value) > hottest {
			hottest = float64(value)
			found = true
		}
	}

	if !found {
		return 0, ErrSensorUnavailable
	}
	return hottest, nil
}

func (sensor *BmcSensor) GetMovingAvg() float64 {
	return sensor.MovingAvg
}

func (sensor *BmcSensor) SetMovingAvg(avg float64) {
	sensor.MovingAvg = avg
}

package sensors

import (
	"strings"

	"github.com/md14454/gosensors"
)

// LmSensor reads the CPU temperature from the local hardware monitoring
// subsystem via libsensors. It prefers the package/socket aggregate reading
// and falls back to the hottest reported value across all exposed sensors.
type LmSensor struct {
	ID        string
	MovingAvg float64
}

func (sensor *LmSensor) GetId() string {
	return sensor.ID
}

func (sensor *LmSensor) GetValue() (float64, error) {
	gosensors.Init()
	defer gosensors.Cleanup()

	packageTemp := 0.0
	havePackage := false
	hottest := 0.0
	haveAny := false

	chips := gosensors.GetDetectedChips()
	for i := 0; i < len(chips); i++ {
		features := chips[i].GetFeatures()
		for j := 0; j < len(features); j++ {
			feature := features[j]
			if feature.Type != gosensors.FeatureTypeTemp {
				continue
			}

			value := feature.GetValue()
			if !haveAny || value > hottest {
				hottest = value
				haveAny = true
			}

			label := strings.ToLower(feature.GetLabel())
			if strings.Contains(label, "package") || strings.Contains(label, "tctl") {
				if !havePackage || value > packageTemp {
					packageTemp = value
					havePackage = true
				}
			}
		}
	}

	if havePackage {
		return packageTemp, nil
	}
	if haveAny {
		return hottest, nil
	}
	return 0, ErrSensorUnavailable
}

func (sensor *LmSensor) GetMovingAvg() float64 {
	return sensor.MovingAvg
}

func (sensor *LmSensor) SetMovingAvg(avg float64) {
	sensor.MovingAvg = avg
}

package sensors

import (
	"strconv"
	"strings"
	"time"

	"github.com/dynfan/dynfan/internal/util"
)

// CmdSensor samples a temperature by executing an external command and
// parsing its output. Each line is expected to carry one integer reading;
// the hottest one wins.
type CmdSensor struct {
	ID        string
	Exec      string
	Args      []string
	MovingAvg float64
}

func (sensor *CmdSensor) GetId() string {
	return sensor.ID
}

func (sensor *CmdSensor) GetValue() (float64, error) {
	output, err := util.SafeCmdExecution(sensor.Exec, sensor.Args, 5*time.Second)
	if err != nil {
		return 0, err
	}

	hottest := 0.0
	found := false
	for _, line := range strings.Split(output, "\n") {
		value, err := strconv.Atoi(strings.TrimSpace(line))
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

func (sensor *CmdSensor) GetMovingAvg() float64 {
	return sensor.MovingAvg
}

func (sensor *CmdSensor) SetMovingAvg(avg float64) {
	sensor.MovingAvg = avg
}

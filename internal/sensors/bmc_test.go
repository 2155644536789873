package sensors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeRunner struct {
	output string
	err    error
}

func (r *fakeRunner) Run(command string) (string, error) {
	return r.output, r.err
}

func TestBmcSensorReportsHottestReading(t *testing.T) {
	// GIVEN
	output := `Sensor Type (Temperature)
	CPU1 Temp     | 54 C | ok
	CPU2 Temp     | 61 C | ok
	Ambient Temp  | 24 C | ok`
	sensor := &BmcSensor{ID: "cpu", Transport: &fakeRunner{output: output}, Command: "show sensors temp"}

	// WHEN
	value, err := sensor.GetValue()

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, 61.0, value)
}

func TestBmcSensorParsesDegreesSuffix(t *testing.T) {
	// GIVEN
	sensor := &BmcSensor{ID: "cpu", Transport: &fakeRunner{output: "Temp: 47 degrees C"}, Command: "show sensors temp"}

	// WHEN
	value, err := sensor.GetValue()

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, 47.0, value)
}

func TestBmcSensorWithoutReadings(t *testing.T) {
	// GIVEN
	sensor := &BmcSensor{ID: "cpu", Transport: &fakeRunner{output: "no data"}, Command: "show sensors temp"}

	// WHEN
	_, err := sensor.GetValue()

	// THEN
	assert.ErrorIs(t, err, ErrSensorUnavailable)
}

func TestBmcSensorTransportError(t *testing.T) {
	// GIVEN
	sensor := &BmcSensor{ID: "cpu", Transport: &fakeRunner{err: errors.New("connection refused")}, Command: "show sensors temp"}

	// WHEN
	_, err := sensor.GetValue()

	// THEN
	assert.Error(t, err)
}

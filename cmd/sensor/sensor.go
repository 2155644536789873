package sensor

import (
	"fmt"

	"github.com/dynfan/dynfan/internal"
	"github.com/dynfan/dynfan/internal/bmc"
	"github.com/dynfan/dynfan/internal/configuration"
	"github.com/dynfan/dynfan/internal/ui"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var sensorId string

var Command = &cobra.Command{
	Use:              "sensor",
	Short:            "Print the current temperature of a sensor",
	Long:             ``,
	TraverseChildren: true,
	Args:             cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pterm.DisableOutput()

		configuration.LoadConfig()
		if err := configuration.Validate(); err != nil {
			ui.Fatal("%v", err)
		}

		session := bmc.NewSession(configuration.CurrentConfig.Bmc)
		defer func() {
			_ = session.Close()
		}()

		cpu, gpu := internal.BuildSensors(configuration.CurrentConfig, session)

		switch sensorId {
		case "cpu":
			fmt.Printf("%d", int(cpu.Read()))
		case "gpu":
			fmt.Printf("%d", int(gpu.Read()))
		default:
			return fmt.Errorf("no sensor with id found: %s, options: [cpu gpu]", sensorId)
		}
		return nil
	},
}

func init() {
	Command.PersistentFlags().StringVarP(
		&sensorId,
		"id", "i",
		"",
		"Sensor ID (cpu or gpu)",
	)
	_ = Command.MarkPersistentFlagRequired("id")
}

package fan

import (
	"fmt"
	"strconv"

	"github.com/dynfan/dynfan/internal"
	"github.com/dynfan/dynfan/internal/configuration"
	"github.com/dynfan/dynfan/internal/ui"
	"github.com/spf13/cobra"
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Set the speed of a fan channel to the given percentage ([0..100])",
	Long:  ``,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(fanId) <= 0 {
			return fmt.Errorf("the --id flag is required")
		}

		percent, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}

		configuration.LoadConfig()
		if err := configuration.Validate(); err != nil {
			ui.Fatal("%v", err)
		}

		if err := internal.ApplyChannelSpeed(fanId, percent); err != nil {
			return err
		}
		ui.Success("Set %s to %d%%", fanId, percent)
		return nil
	},
}

func init() {
	Command.AddCommand(setCmd)
}

package cmd

import (
	"github.com/dynfan/dynfan/internal/ui"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of dynfan",
	Long:  `All software has versions. This is dynfan's`,
	Run: func(cmd *cobra.Command, args []string) {
		ui.Printfln("1.0.0")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

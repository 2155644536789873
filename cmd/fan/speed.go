package fan

import (
	"bytes"
	"strconv"

	"github.com/dynfan/dynfan/cmd/global"
	"github.com/dynfan/dynfan/internal/configuration"
	"github.com/dynfan/dynfan/internal/persistence"
	"github.com/dynfan/dynfan/internal/ui"
	"github.com/mgutz/ansi"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"
)

var speedCmd = &cobra.Command{
	Use:   "speed",
	Short: "Print the last applied speed of the fan channel(s)",
	Long:  ``,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configuration.LoadConfig()
		if err := configuration.Validate(); err != nil {
			ui.Fatal("%v", err)
		}
		config := configuration.CurrentConfig

		pers := persistence.NewPersistence(config.StateFile, config.BitsStateFile, config.DbPath)
		percents, bits, err := pers.LoadState(len(config.Channels), config.BaselinePercent)
		if err != nil {
			return err
		}

		rows := [][]string{}
		for i, channel := range config.Channels {
			if len(fanId) > 0 && channel.ID != fanId {
				continue
			}
			rows = append(rows, []string{
				channel.ID,
				strconv.Itoa(percents[i]) + "%",
				strconv.Itoa(bits[i]),
			})
		}

		tab := table.Table{
			Headers: []string{"ID", "Speed", "Bits"},
			Rows:    rows,
		}
		var buf bytes.Buffer
		tableErr := tab.WriteTable(&buf, &table.Config{
			ShowIndex:       false,
			Color:           !global.NoColor,
			AlternateColors: true,
			TitleColorCode:  ansi.ColorCode("white+buf"),
			AltColorCodes: []string{
				ansi.ColorCode("white"),
				ansi.ColorCode("white:236"),
			},
		})
		if tableErr != nil {
			panic(tableErr)
		}
		ui.Printfln(buf.String())
		return nil
	},
}

func init() {
	Command.AddCommand(speedCmd)
}

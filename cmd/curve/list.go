package curve

import (
	"bytes"
	"strconv"

	"github.com/dynfan/dynfan/cmd/global"
	"github.com/dynfan/dynfan/internal/configuration"
	"github.com/dynfan/dynfan/internal/curves"
	"github.com/dynfan/dynfan/internal/ui"
	"github.com/guptarohit/asciigraph"
	"github.com/mgutz/ansi"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the configured fan curve(s) to console",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		configuration.LoadConfig()
		if err := configuration.Validate(); err != nil {
			ui.Fatal("%v", err)
		}

		snapshot := configuration.LoadCurveSnapshot(configuration.CurrentConfig.CurveFile, nil)

		printCurve("system", curves.BaseCurve(snapshot))
		if snapshot.Gpu != nil {
			ui.Printfln("")
			ui.Printfln("")
			printCurve("gpu", curves.GpuCurve(snapshot))
		}
		return nil
	},
}

func printCurve(name string, curve curves.Curve) {
	// print table
	ui.Printfln(name)
	tab := table.Table{
		Headers: []string{"", ""},
		Rows: [][]string{
			{"Min Temp", strconv.Itoa(curve.MinTemp) + "°C"},
			{"Max Temp", strconv.Itoa(curve.MaxTemp) + "°C"},
			{"Min Speed", strconv.Itoa(curve.MinSpeed) + "%"},
			{"Max Speed", strconv.Itoa(curve.MaxSpeed) + "%"},
		},
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

	// print graph
	start := curve.MinTemp - 5
	stop := curve.MaxTemp + 5
	values := make([]float64, 0, stop-start+1)
	for temp := start; temp <= stop; temp++ {
		values = append(values, float64(curve.Target(float64(temp))))
	}

	caption := "Speed % / Temp °C"
	graph := asciigraph.Plot(values, asciigraph.Height(15), asciigraph.Width(100), asciigraph.Caption(caption))
	ui.Printfln(graph)
}

func init() {
	Command.AddCommand(listCmd)
}

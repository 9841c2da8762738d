package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/emsga/core/model"
)

// WriteHTML renders the planned battery, EV and grid power as a standalone
// HTML line chart.
func WriteHTML(w io.Writer, run model.Run) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Schedule",
			Subtitle: fmt.Sprintf("run %s, cost %.3f", run.ID, run.BestCost),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Hour (UTC)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Power (kW)"}),
	)

	rows := Rows(run)
	xAxis := make([]string, len(rows))
	battery := make([]opts.LineData, len(rows))
	ev := make([]opts.LineData, len(rows))
	grid := make([]opts.LineData, len(rows))
	for i, r := range rows {
		xAxis[i] = r.TimeSlot.Format("2006-01-02 15:04")
		battery[i] = opts.LineData{Value: r.BatteryKW}
		ev[i] = opts.LineData{Value: r.EVKW}
		grid[i] = opts.LineData{Value: r.GridKW}
	}
	line.SetXAxis(xAxis).
		AddSeries("Battery", battery).
		AddSeries("EV", ev).
		AddSeries("Grid", grid)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

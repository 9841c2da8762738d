// Package export renders optimisation runs for operators and downstream tools.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/emsga/core/model"
)

// Supported output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatCSV   = "csv"
	FormatYAML  = "yaml"
	FormatHTML  = "html"
)

// ErrUnknownFormat is returned by Write for unsupported formats.
var ErrUnknownFormat = errors.New("unknown export format")

// HourRow is the plan and simulated state of one hour.
type HourRow struct {
	Hour       int       `json:"hour" yaml:"hour"`
	TimeSlot   time.Time `json:"timeslot" yaml:"timeslot"`
	BatteryKW  float64   `json:"battery_kw" yaml:"battery_kw"`
	EVKW       float64   `json:"ev_kw" yaml:"ev_kw"`
	BatteryKWh float64   `json:"battery_kwh" yaml:"battery_kwh"`
	EVKWh      float64   `json:"ev_kwh" yaml:"ev_kwh"`
	GridKW     float64   `json:"grid_kw" yaml:"grid_kw"`
	GridCost   float64   `json:"grid_cost" yaml:"grid_cost"`
	HourCost   float64   `json:"hour_cost" yaml:"hour_cost"`
}

// Rows flattens a run into one row per planned hour. Time slots start at the
// beginning of the hour in which the run started.
func Rows(run model.Run) []HourRow {
	base := run.StartedAt.UTC().Truncate(time.Hour)
	rows := make([]HourRow, len(run.Schedule.BatteryKW))
	for h := range rows {
		rows[h] = HourRow{
			Hour:       h,
			TimeSlot:   base.Add(time.Duration(h) * time.Hour),
			BatteryKW:  run.Schedule.BatteryKW[h],
			EVKW:       at(run.Schedule.EVKW, h),
			BatteryKWh: at(run.State.BatteryKWh, h),
			EVKWh:      at(run.State.EVKWh, h),
			GridKW:     at(run.State.GridKW, h),
			GridCost:   at(run.State.GridCost, h),
			HourCost:   at(run.State.HourCost, h),
		}
	}
	return rows
}

func at(v []float64, i int) float64 {
	if i < len(v) {
		return v[i]
	}
	return 0
}

// Write renders run in the named format.
func Write(w io.Writer, format string, run model.Run) error {
	switch strings.ToLower(format) {
	case "", FormatTable:
		return WriteTable(w, run)
	case FormatJSON:
		return WriteJSON(w, run)
	case FormatCSV:
		return WriteCSV(w, run)
	case FormatYAML:
		return WriteYAML(w, run)
	case FormatHTML:
		return WriteHTML(w, run)
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
}

// WriteJSON writes the complete run to w in JSON format.
func WriteJSON(w io.Writer, run model.Run) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(run)
}

// WriteCSV writes one line per hour with a header.
func WriteCSV(w io.Writer, run model.Run) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"hour", "timeslot", "battery_kw", "ev_kw", "battery_kwh", "ev_kwh", "grid_kw", "grid_cost", "hour_cost"}); err != nil {
		return err
	}
	for _, r := range Rows(run) {
		rec := []string{
			strconv.Itoa(r.Hour),
			r.TimeSlot.Format(time.RFC3339),
			formatFloat(r.BatteryKW),
			formatFloat(r.EVKW),
			formatFloat(r.BatteryKWh),
			formatFloat(r.EVKWh),
			formatFloat(r.GridKW),
			formatFloat(r.GridCost),
			formatFloat(r.HourCost),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type yamlDoc struct {
	ID        string    `yaml:"id"`
	StartedAt time.Time `yaml:"started_at"`
	Duration  string    `yaml:"duration"`
	BestCost  float64   `yaml:"best_cost"`
	Hours     []HourRow `yaml:"hours"`
	Trace     []float64 `yaml:"trace,flow"`
}

// WriteYAML writes the run summary and hourly rows as a YAML document.
func WriteYAML(w io.Writer, run model.Run) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(yamlDoc{
		ID:        run.ID,
		StartedAt: run.StartedAt,
		Duration:  run.Duration.String(),
		BestCost:  run.BestCost,
		Hours:     Rows(run),
		Trace:     run.Trace,
	}); err != nil {
		return err
	}
	return enc.Close()
}

// WriteTable writes an aligned, human readable table.
func WriteTable(w io.Writer, run model.Run) error {
	if _, err := fmt.Fprintf(w, "run %s  started %s  best cost %.3f\n\n",
		run.ID, run.StartedAt.Format(time.RFC3339), run.BestCost); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "hour\tbattery kW\tev kW\tbattery kWh\tev kWh\tgrid kW\tcost\t")
	for _, r := range Rows(run) {
		fmt.Fprintf(tw, "%d\t%.2f\t%.2f\t%.1f\t%.1f\t%.2f\t%.3f\t\n",
			r.Hour, r.BatteryKW, r.EVKW, r.BatteryKWh, r.EVKWh, r.GridKW, r.HourCost)
	}
	return tw.Flush()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

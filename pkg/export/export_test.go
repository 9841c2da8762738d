package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/emsga/core/model"
)

func sampleRun() model.Run {
	st := model.NewHourlyState()
	sched := model.Schedule{BatteryKW: make([]float64, model.Horizon), EVKW: make([]float64, model.Horizon)}
	for h := 0; h < model.Horizon; h++ {
		sched.BatteryKW[h] = -50 + float64(h)
		sched.EVKW[h] = 0.25 * float64(h)
		st.BatteryKWh[h] = 441.44
		st.GridKW[h] = 1.5
		st.HourCost[h] = 0.1
	}
	return model.Run{
		ID:        "r1",
		StartedAt: time.Date(2026, 2, 3, 14, 27, 0, 0, time.UTC),
		Duration:  time.Second,
		BestCost:  2.4,
		Schedule:  sched,
		State:     st,
		Trace:     []float64{3, 2.4},
	}
}

func TestRows(t *testing.T) {
	rows := Rows(sampleRun())
	require.Len(t, rows, model.Horizon)
	assert.Equal(t, time.Date(2026, 2, 3, 14, 0, 0, 0, time.UTC), rows[0].TimeSlot)
	assert.Equal(t, time.Date(2026, 2, 4, 13, 0, 0, 0, time.UTC), rows[23].TimeSlot)
	assert.Equal(t, -27.0, rows[23].BatteryKW)
	assert.Equal(t, 5.75, rows[23].EVKW)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRun()))
	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, model.Horizon+1)
	assert.Equal(t, "hour", recs[0][0])
	assert.Equal(t, []string{"1", "2026-02-03T15:00:00Z", "-49", "0.25", "441.44", "0", "1.5", "0", "0.1"}, recs[2])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleRun()))
	var got model.Run
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sampleRun().Schedule, got.Schedule)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, sampleRun()))
	var doc struct {
		ID    string    `yaml:"id"`
		Hours []HourRow `yaml:"hours"`
		Trace []float64 `yaml:"trace"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "r1", doc.ID)
	assert.Len(t, doc.Hours, model.Horizon)
	assert.Equal(t, []float64{3, 2.4}, doc.Trace)
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "table", sampleRun()))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "run r1"))
	assert.Contains(t, out, "battery kW")
	assert.Equal(t, model.Horizon+3, strings.Count(out, "\n"))
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, "xml", sampleRun())
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatHTML, sampleRun()))
	out := buf.String()
	assert.Contains(t, out, "<html")
	assert.Contains(t, out, "Battery")
	assert.Contains(t, out, "2026-02-03 14:00")
}

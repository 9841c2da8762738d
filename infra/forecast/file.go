package forecast

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kilianp07/emsga/core/factory"
	coreforecast "github.com/kilianp07/emsga/core/forecast"
	"github.com/kilianp07/emsga/core/model"
)

// FileConfig locates the four series files. Each file holds one value per
// line; extra tab-separated columns are ignored.
type FileConfig struct {
	Dir       string `json:"dir"`
	LoadFile  string `json:"load_file"`
	PVFile    string `json:"pv_file"`
	WindFile  string `json:"wind_file"`
	PriceFile string `json:"price_file"`
}

// SetDefaults applies the historical file names.
func (c *FileConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "GA_data"
	}
	if c.LoadFile == "" {
		c.LoadFile = "load.txt"
	}
	if c.PVFile == "" {
		c.PVFile = "PV.txt"
	}
	if c.WindFile == "" {
		c.WindFile = "WT.txt"
	}
	if c.PriceFile == "" {
		c.PriceFile = "price.txt"
	}
}

// FileProvider reads forecasts from flat files on every call, so updated
// files are picked up by the next run.
type FileProvider struct {
	cfg FileConfig
}

// NewFileProvider returns a provider for cfg with defaults applied.
func NewFileProvider(cfg FileConfig) *FileProvider {
	cfg.SetDefaults()
	return &FileProvider{cfg: cfg}
}

// Inputs reads and validates the four series.
func (p *FileProvider) Inputs(ctx context.Context) (model.Inputs, error) {
	var in model.Inputs
	files := []struct {
		name string
		dst  *[]float64
	}{
		{p.cfg.LoadFile, &in.LoadKW},
		{p.cfg.PVFile, &in.PVKW},
		{p.cfg.WindFile, &in.WindKW},
		{p.cfg.PriceFile, &in.Price},
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return model.Inputs{}, err
		}
		path := filepath.Join(p.cfg.Dir, f.name)
		values, err := readColumn(path)
		if err != nil {
			return model.Inputs{}, fmt.Errorf("read %s: %w", path, err)
		}
		*f.dst = values
	}
	if err := in.Validate(); err != nil {
		return model.Inputs{}, err
	}
	return in, nil
}

func readColumn(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return parseColumn(f)
}

func parseColumn(r io.Reader) ([]float64, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	var out []float64
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, v)
	}
}

func init() {
	_ = coreforecast.Register("file", func(conf map[string]any) (coreforecast.Provider, error) {
		var c FileConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewFileProvider(c), nil
	})
}

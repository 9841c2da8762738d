package results

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kilianp07/emsga/core/factory"
	"github.com/kilianp07/emsga/core/model"
	coreresults "github.com/kilianp07/emsga/core/results"
)

// JSONLConfig configures a JSONL result file with size based rotation.
type JSONLConfig struct {
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// JSONLStore appends one JSON document per run.
type JSONLStore struct {
	mu     sync.Mutex
	writer *lumberjack.Logger
	path   string
}

// NewJSONLStore creates the store, creating the parent directory if needed.
func NewJSONLStore(cfg JSONLConfig) (*JSONLStore, error) {
	if cfg.Path == "" {
		cfg.Path = "runs.jsonl"
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 10
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &JSONLStore{
		writer: &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		},
		path: cfg.Path,
	}, nil
}

// Save appends the run to the current file.
func (s *JSONLStore) Save(_ context.Context, run model.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return json.NewEncoder(s.writer).Encode(run)
}

// Latest returns the last decodable run of the current file.
func (s *JSONLStore) Latest(_ context.Context) (model.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.Run{}, coreresults.ErrNoRuns
		}
		return model.Run{}, err
	}
	defer func() { _ = f.Close() }()

	var (
		last  model.Run
		found bool
	)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var r model.Run
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			continue
		}
		last, found = r, true
	}
	if err := scanner.Err(); err != nil {
		return model.Run{}, err
	}
	if !found {
		return model.Run{}, coreresults.ErrNoRuns
	}
	return last, nil
}

// Close closes the underlying writer.
func (s *JSONLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writer.Close()
}

func init() {
	_ = coreresults.Register("jsonl", func(conf map[string]any) (coreresults.Sink, error) {
		var c JSONLConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewJSONLStore(c)
	})
}

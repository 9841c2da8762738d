package results

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/emsga/core/factory"
	coreresults "github.com/kilianp07/emsga/core/results"
)

// SQLiteStore persists runs in a SQLite database file.
type SQLiteStore struct {
	*sqlStore
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection serialises writers on the database file.
	db.SetMaxOpenConns(1)
	s, err := openSQLStore(context.Background(), db, sqliteDialect)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{sqlStore: s}, nil
}

func init() {
	_ = coreresults.Register("sqlite", func(conf map[string]any) (coreresults.Sink, error) {
		var c struct {
			Path string `json:"path"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			c.Path = "emsga.db"
		}
		return NewSQLiteStore(c.Path)
	})
}

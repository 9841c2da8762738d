package results

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/kilianp07/emsga/core/factory"
	coreresults "github.com/kilianp07/emsga/core/results"
)

// PostgresConfig holds the connection settings of a PostgreSQL result store.
type PostgresConfig struct {
	DSN            string        `json:"dsn"`
	ConnectTimeout time.Duration `json:"connect_timeout"`
}

// PostgresStore persists runs in PostgreSQL.
type PostgresStore struct {
	*sqlStore
}

// NewPostgresStore connects to the database and ensures schema.
func NewPostgresStore(cfg PostgresConfig) (*PostgresStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres: dsn is required")
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	s, err := openSQLStore(ctx, db, postgresDialect)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{sqlStore: s}, nil
}

func init() {
	_ = coreresults.Register("postgres", func(conf map[string]any) (coreresults.Sink, error) {
		var c PostgresConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewPostgresStore(c)
	})
}

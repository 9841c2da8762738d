package results

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kilianp07/emsga/core/model"
	coreresults "github.com/kilianp07/emsga/core/results"
)

const (
	kindSchedule = "schedule"
	kindTrace    = "trace"
)

// dialect captures the differences between the SQL backends.
type dialect struct {
	floatType string
	// bind returns the placeholder of the n-th argument, starting at 1.
	bind func(n int) string
}

var (
	sqliteDialect   = dialect{floatType: "REAL", bind: func(int) string { return "?" }}
	postgresDialect = dialect{floatType: "DOUBLE PRECISION", bind: func(n int) string { return fmt.Sprintf("$%d", n) }}
)

func (d dialect) schema() []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS ga_runs (
        id TEXT PRIMARY KEY,
        started_at BIGINT NOT NULL,
        duration_ms BIGINT NOT NULL,
        best_cost %s NOT NULL
    )`, d.floatType),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS ga_run_values (
        run_id TEXT NOT NULL,
        kind TEXT NOT NULL,
        idx INTEGER NOT NULL,
        value %s NOT NULL,
        PRIMARY KEY(run_id, kind, idx)
    )`, d.floatType),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS ga_run_hours (
        run_id TEXT NOT NULL,
        hour INTEGER NOT NULL,
        battery_kwh %[1]s,
        ev_kwh %[1]s,
        grid_kw %[1]s,
        grid_cost %[1]s,
        hour_cost %[1]s,
        PRIMARY KEY(run_id, hour)
    )`, d.floatType),
	}
}

// query rewrites "?" placeholders for the dialect.
func (d dialect) query(q string) string {
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString(d.bind(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// sqlStore implements Sink and Reader on top of database/sql.
type sqlStore struct {
	db      *sql.DB
	dialect dialect
}

func openSQLStore(ctx context.Context, db *sql.DB, d dialect) (*sqlStore, error) {
	for _, stmt := range d.schema() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			if cerr := db.Close(); cerr != nil {
				return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
			}
			return nil, fmt.Errorf("schema: %w", err)
		}
	}
	return &sqlStore{db: db, dialect: d}, nil
}

// Save writes the run, its schedule, trace and hourly state in one transaction.
// Values are indexed from 1, schedule values 1..24 for the battery and 25..48
// for the EV.
func (s *sqlStore) Save(ctx context.Context, run model.Run) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, s.dialect.query(
		`INSERT INTO ga_runs (id, started_at, duration_ms, best_cost) VALUES (?, ?, ?, ?)`),
		run.ID, run.StartedAt.UnixNano(), run.Duration.Milliseconds(), run.BestCost); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	valStmt, err := tx.PrepareContext(ctx, s.dialect.query(
		`INSERT INTO ga_run_values (run_id, kind, idx, value) VALUES (?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("prepare values: %w", err)
	}
	defer func() { _ = valStmt.Close() }()
	for i, v := range run.Schedule.Values() {
		if _, err = valStmt.ExecContext(ctx, run.ID, kindSchedule, i+1, v); err != nil {
			return fmt.Errorf("insert schedule: %w", err)
		}
	}
	for i, v := range run.Trace {
		if _, err = valStmt.ExecContext(ctx, run.ID, kindTrace, i+1, v); err != nil {
			return fmt.Errorf("insert trace: %w", err)
		}
	}

	hourStmt, err := tx.PrepareContext(ctx, s.dialect.query(
		`INSERT INTO ga_run_hours (run_id, hour, battery_kwh, ev_kwh, grid_kw, grid_cost, hour_cost)
        VALUES (?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("prepare hours: %w", err)
	}
	defer func() { _ = hourStmt.Close() }()
	st := run.State
	for h := range st.GridKW {
		if _, err = hourStmt.ExecContext(ctx, run.ID, h,
			st.BatteryKWh[h], st.EVKWh[h], st.GridKW[h], st.GridCost[h], st.HourCost[h]); err != nil {
			return fmt.Errorf("insert hour: %w", err)
		}
	}
	return tx.Commit()
}

// Latest loads the most recently started run.
func (s *sqlStore) Latest(ctx context.Context) (model.Run, error) {
	var (
		run        model.Run
		startedAt  int64
		durationMS int64
	)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, duration_ms, best_cost FROM ga_runs ORDER BY started_at DESC LIMIT 1`)
	if err := row.Scan(&run.ID, &startedAt, &durationMS, &run.BestCost); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Run{}, coreresults.ErrNoRuns
		}
		return model.Run{}, err
	}
	run.StartedAt = time.Unix(0, startedAt).UTC()
	run.Duration = time.Duration(durationMS) * time.Millisecond

	values, err := s.values(ctx, run.ID)
	if err != nil {
		return model.Run{}, err
	}
	if sched := values[kindSchedule]; len(sched) > 0 {
		if run.Schedule, err = model.ScheduleFromValues(sched); err != nil {
			return model.Run{}, fmt.Errorf("run %s: %w", run.ID, err)
		}
	}
	run.Trace = values[kindTrace]
	if run.State, err = s.hours(ctx, run.ID); err != nil {
		return model.Run{}, err
	}
	return run, nil
}

func (s *sqlStore) values(ctx context.Context, runID string) (map[string][]float64, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.query(
		`SELECT kind, value FROM ga_run_values WHERE run_id = ? ORDER BY kind, idx`), runID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	out := map[string][]float64{}
	for rows.Next() {
		var kind string
		var v float64
		if err := rows.Scan(&kind, &v); err != nil {
			return nil, err
		}
		out[kind] = append(out[kind], v)
	}
	return out, rows.Err()
}

func (s *sqlStore) hours(ctx context.Context, runID string) (model.HourlyState, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.query(
		`SELECT battery_kwh, ev_kwh, grid_kw, grid_cost, hour_cost FROM ga_run_hours
        WHERE run_id = ? ORDER BY hour`), runID)
	if err != nil {
		return model.HourlyState{}, err
	}
	defer func() { _ = rows.Close() }()
	var st model.HourlyState
	for rows.Next() {
		var bat, ev, grid, cost, hour float64
		if err := rows.Scan(&bat, &ev, &grid, &cost, &hour); err != nil {
			return model.HourlyState{}, err
		}
		st.BatteryKWh = append(st.BatteryKWh, bat)
		st.EVKWh = append(st.EVKWh, ev)
		st.GridKW = append(st.GridKW, grid)
		st.GridCost = append(st.GridCost, cost)
		st.HourCost = append(st.HourCost, hour)
	}
	return st, rows.Err()
}

// Close closes the underlying database.
func (s *sqlStore) Close() error { return s.db.Close() }

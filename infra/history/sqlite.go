package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	core "github.com/kilianp07/chargecast/core/history"
	"github.com/kilianp07/chargecast/core/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS forecast_run (
    id TEXT PRIMARY KEY,
    source TEXT,
    series TEXT,
    engine TEXT,
    step INTEGER,
    confidence REAL,
    summary TEXT,
    created_at INTEGER
);
CREATE TABLE IF NOT EXISTS forecast_point (
    run_id TEXT REFERENCES forecast_run(id) ON DELETE CASCADE,
    step INTEGER,
    date INTEGER,
    value REAL,
    lower REAL,
    upper REAL,
    PRIMARY KEY(run_id, step)
);
CREATE INDEX IF NOT EXISTS forecast_run_created ON forecast_run(created_at);`

// SQLiteStore persists forecast runs in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Save inserts the run and its points in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, f *model.Forecast) (err error) {
	if f == nil || f.RunID == "" {
		return errors.New("forecast without run id")
	}
	summary, err := json.Marshal(f.Summary)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM forecast_run WHERE id = ?`, f.RunID).Scan(&exists)
	if err != nil {
		return err
	}
	if exists > 0 {
		return core.ErrDuplicate
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO forecast_run
        (id, source, series, engine, step, confidence, summary, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.RunID, f.Source, f.Series, f.Engine, int64(f.Step), f.Confidence, string(summary), f.CreatedAt.UnixNano())
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO forecast_point
        (run_id, step, date, value, lower, upper) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()
	for i, p := range f.Points {
		if _, err = stmt.ExecContext(ctx, f.RunID, i+1, p.Date.UnixNano(), p.Value, p.Lower, p.Upper); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// List returns run headers, most recent first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]core.Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT r.id, r.source, r.series, r.engine, r.step, r.summary, r.created_at,
        (SELECT COUNT(*) FROM forecast_point p WHERE p.run_id = r.id)
        FROM forecast_run r ORDER BY r.created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []core.Run
	for rows.Next() {
		var (
			r       core.Run
			step    int64
			summary string
			created int64
		)
		if err := rows.Scan(&r.ID, &r.Source, &r.Series, &r.Engine, &step, &summary, &created, &r.Horizon); err != nil {
			return nil, err
		}
		var sum model.FitSummary
		if err := json.Unmarshal([]byte(summary), &sum); err != nil {
			return nil, fmt.Errorf("run %s: %w", r.ID, err)
		}
		r.Step = time.Duration(step)
		r.AIC = sum.AIC
		r.CreatedAt = time.Unix(0, created).UTC()
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Get loads a run with its points.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.Forecast, error) {
	var (
		f       = model.Forecast{RunID: id}
		step    int64
		summary string
		created int64
	)
	err := s.db.QueryRowContext(ctx, `SELECT source, series, engine, step, confidence, summary, created_at
        FROM forecast_run WHERE id = ?`, id).
		Scan(&f.Source, &f.Series, &f.Engine, &step, &f.Confidence, &summary, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(summary), &f.Summary); err != nil {
		return nil, fmt.Errorf("run %s: %w", id, err)
	}
	f.Step = time.Duration(step)
	f.CreatedAt = time.Unix(0, created).UTC()

	rows, err := s.db.QueryContext(ctx, `SELECT date, value, lower, upper
        FROM forecast_point WHERE run_id = ? ORDER BY step`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var p model.Point
		var date int64
		if err := rows.Scan(&date, &p.Value, &p.Lower, &p.Upper); err != nil {
			return nil, err
		}
		p.Date = time.Unix(0, date).UTC()
		f.Points = append(f.Points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

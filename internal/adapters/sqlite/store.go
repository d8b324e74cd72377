package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/turtleshot/pkg/domain"
	"github.com/aretw0/turtleshot/pkg/ports"
	_ "modernc.org/sqlite"
)

var _ ports.RunLedger = (*Ledger)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	tag          TEXT,
	outcome      TEXT NOT NULL,
	output       TEXT NOT NULL,
	recorded_at  TEXT NOT NULL,
	details_json TEXT
);

CREATE INDEX IF NOT EXISTS runs_tag ON runs(tag);
`

// timeLayout has a fixed width so recorded_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Ledger implements ports.RunLedger on a SQLite database.
type Ledger struct {
	db *sql.DB
}

// New opens a SQLite database and runs migrations.
func New(dbPath string) (*Ledger, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Close closes the underlying database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record inserts or replaces the run.
func (l *Ledger) Record(ctx context.Context, rec *domain.RunRecord) error {
	if rec.ID == "" {
		return errors.New("run id cannot be empty")
	}

	var details sql.NullString
	if rec.Details != nil {
		data, err := json.Marshal(rec.Details)
		if err != nil {
			return fmt.Errorf("marshal details: %w", err)
		}
		details = sql.NullString{String: string(data), Valid: true}
	}

	var tag sql.NullString
	if t := rec.Tag(); t != "" {
		tag = sql.NullString{String: t, Valid: true}
	}

	_, err := l.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (id, tag, outcome, output, recorded_at, details_json)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, tag, string(rec.Outcome), rec.Output, rec.RecordedAt.UTC().Format(timeLayout), details,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Load returns the run with the given id.
func (l *Ledger) Load(ctx context.Context, id string) (*domain.RunRecord, error) {
	var (
		rec        domain.RunRecord
		outcome    string
		recordedAt string
		details    sql.NullString
	)
	err := l.db.QueryRowContext(ctx,
		`SELECT id, outcome, output, recorded_at, details_json FROM runs WHERE id = ?`, id,
	).Scan(&rec.ID, &outcome, &rec.Output, &recordedAt, &details)
	if err == sql.ErrNoRows {
		return nil, domain.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}

	rec.Outcome = domain.Outcome(outcome)
	rec.RecordedAt, err = time.Parse(timeLayout, recordedAt)
	if err != nil {
		return nil, fmt.Errorf("parse recorded_at: %w", err)
	}
	if details.Valid {
		rec.Details = &domain.ExecutionDetails{}
		if err := json.Unmarshal([]byte(details.String), rec.Details); err != nil {
			return nil, fmt.Errorf("unmarshal details: %w", err)
		}
	}
	return &rec, nil
}

// Delete removes the run. Unknown IDs are ignored.
func (l *Ledger) Delete(ctx context.Context, id string) error {
	if _, err := l.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}

// List returns run IDs for tag, or all runs when tag is empty, oldest first.
func (l *Ledger) List(ctx context.Context, tag string) ([]string, error) {
	query := `SELECT id FROM runs ORDER BY recorded_at, id`
	args := []any{}
	if tag != "" {
		query = `SELECT id FROM runs WHERE tag = ? ORDER BY recorded_at, id`
		args = append(args, tag)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Package history persists sensor samples to a local sqlite database so past
// readings can be inspected after the fact.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/liquidctl/coolerctl/driver"
	"github.com/liquidctl/coolerctl/internal/configpaths"
)

const schema = `
CREATE TABLE IF NOT EXISTS samples (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	taken_at INTEGER NOT NULL,
	device   TEXT    NOT NULL,
	channel  TEXT    NOT NULL,
	label    TEXT    NOT NULL,
	value    REAL    NOT NULL,
	unit     TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS samples_taken_at ON samples(taken_at);
CREATE INDEX IF NOT EXISTS samples_channel ON samples(channel);
`

// Sample is one stored sensor reading.
type Sample struct {
	TakenAt time.Time
	Device  string
	Channel string
	Label   string
	Value   float64
	Unit    driver.Unit
}

// Store is a sqlite-backed sample store.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the history database location in the user data dir.
func DefaultPath() (string, error) {
	dir, err := configpaths.DefaultDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// Open opens (and if needed creates) the database at path.
func Open(path string) (*Store, error) {
	if err := configpaths.EnsureDir(path); err != nil {
		return nil, fmt.Errorf("history: create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Append stores all numeric readings of one status poll in one transaction.
// Text-only readings (firmware versions and the like) are skipped.
func (s *Store) Append(ctx context.Context, device string, at time.Time, readings []driver.Reading) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO samples (taken_at, device, channel, label, value, unit) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range readings {
		if r.Text != "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, at.Unix(), device, r.Channel, r.Label, r.Value, string(r.Unit)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Query returns samples taken at or after since, newest first, optionally
// filtered by channel name. An empty channel matches everything.
func (s *Store) Query(ctx context.Context, since time.Time, channel string) ([]Sample, error) {
	q := `SELECT taken_at, device, channel, label, value, unit FROM samples WHERE taken_at >= ?`
	args := []any{since.Unix()}
	if channel != "" {
		q += ` AND channel = ?`
		args = append(args, channel)
	}
	q += ` ORDER BY taken_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Sample
	for rows.Next() {
		var sm Sample
		var ts int64
		var unit string
		if err := rows.Scan(&ts, &sm.Device, &sm.Channel, &sm.Label, &sm.Value, &unit); err != nil {
			return nil, err
		}
		sm.TakenAt = time.Unix(ts, 0)
		sm.Unit = driver.Unit(unit)
		out = append(out, sm)
	}
	return out, rows.Err()
}

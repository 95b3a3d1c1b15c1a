// Package journal checkpoints the consultation log of each row in sqlite
// so an interrupted run can resume without repeating oracle calls.
package journal

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS consultations (
	fingerprint TEXT NOT NULL,
	row_index   INTEGER NOT NULL,
	run_id      TEXT NOT NULL,
	calls       INTEGER NOT NULL DEFAULT 0,
	log         TEXT NOT NULL DEFAULT '[]',
	recorded_at DATETIME NOT NULL,
	PRIMARY KEY (fingerprint, row_index)
);
CREATE INDEX IF NOT EXISTS idx_consultations_run ON consultations(run_id);
`

// Entry is the stored stage-one result of one row.
type Entry struct {
	Fingerprint string
	RowIndex    int
	RunID       string
	Calls       int
	Log         string
	RecordedAt  time.Time
}

// Journal is a sqlite-backed store of row entries.
type Journal struct {
	db *sql.DB
}

// Open creates or opens the journal at path.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create journal schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Fingerprint hashes the cells a row's consultations depend on.
func Fingerprint(cells ...string) string {
	h := sha256.New()
	for _, c := range cells {
		h.Write([]byte(c))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Lookup returns the entry stored for a row with the given fingerprint.
func (j *Journal) Lookup(ctx context.Context, row int, fingerprint string) (Entry, bool, error) {
	e := Entry{Fingerprint: fingerprint, RowIndex: row}
	err := j.db.QueryRowContext(ctx,
		`SELECT run_id, calls, log, recorded_at FROM consultations WHERE fingerprint = ? AND row_index = ?`,
		fingerprint, row,
	).Scan(&e.RunID, &e.Calls, &e.Log, &e.RecordedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to read journal entry: %w", err)
	}
	return e, true, nil
}

// Record stores e, replacing any entry for the same row and fingerprint.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO consultations (fingerprint, row_index, run_id, calls, log, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.Fingerprint, e.RowIndex, e.RunID, e.Calls, e.Log, e.RecordedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to write journal entry: %w", err)
	}
	return nil
}

// Count returns the number of stored entries.
func (j *Journal) Count(ctx context.Context) (int, error) {
	var n int
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM consultations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count journal entries: %w", err)
	}
	return n, nil
}

// Package journal provides a SQLite-backed record of dispatch attempts.
//
// The journal is observability, not idempotence: the JSON ledger alone
// decides whether an order needs printing. Every dispatch attempt —
// including failed ones that never reach the ledger — gets one row here,
// so a kitchen ticket silently dropped under a committed receipt is
// still visible via `printd history`.
//
// All reads order by seq (logical position), never by timestamp.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Step outcomes recorded per dispatch stage.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Record is one dispatch attempt.
type Record struct {
	Seq       int64     `json:"seq"`
	JobID     string    `json:"job_id"`
	OrderID   string    `json:"order_id"`
	Kind      string    `json:"kind"` // "new" or "modified"
	Notify    string    `json:"notify"`
	Kitchen   string    `json:"kitchen"`
	Separator string    `json:"separator"`
	Receipt   string    `json:"receipt"`
	Committed bool      `json:"committed"`
	CreatedAt time.Time `json:"created_at"`
}

// Journal is the durable dispatch history.
type Journal struct {
	db *sql.DB
}

// Open creates or opens the journal database at path. Applies pragmas
// and the schema; idempotent, safe to call on an existing database.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect journal: %w", err)
	}

	// Single writer; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Append inserts one dispatch record and returns its assigned seq.
// CreatedAt defaults to now when zero.
func (j *Journal) Append(ctx context.Context, rec Record) (int64, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	res, err := j.db.ExecContext(ctx, `
		INSERT INTO dispatches
		(job_id, order_id, kind, notify, kitchen, separator, receipt, committed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.JobID,
		rec.OrderID,
		rec.Kind,
		rec.Notify,
		rec.Kitchen,
		rec.Separator,
		rec.Receipt,
		rec.Committed,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("append dispatch record: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("append dispatch record: %w", err)
	}
	return seq, nil
}

// Recent returns the most recent records, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Record, error) {
	return j.query(ctx, `
		SELECT seq, job_id, order_id, kind, notify, kitchen, separator, receipt, committed, created_at
		FROM dispatches
		ORDER BY seq DESC
		LIMIT ?
	`, limit)
}

// ByOrder returns the records for one order, newest first.
func (j *Journal) ByOrder(ctx context.Context, orderID string, limit int) ([]Record, error) {
	return j.query(ctx, `
		SELECT seq, job_id, order_id, kind, notify, kitchen, separator, receipt, committed, created_at
		FROM dispatches
		WHERE order_id = ?
		ORDER BY seq DESC
		LIMIT ?
	`, orderID, limit)
}

func (j *Journal) query(ctx context.Context, q string, args ...any) ([]Record, error) {
	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var createdAt string
		if err := rows.Scan(
			&rec.Seq, &rec.JobID, &rec.OrderID, &rec.Kind,
			&rec.Notify, &rec.Kitchen, &rec.Separator, &rec.Receipt,
			&rec.Committed, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse journal timestamp %q: %w", createdAt, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal rows: %w", err)
	}
	return records, nil
}

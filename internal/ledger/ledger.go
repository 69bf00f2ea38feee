// Package ledger persists the mapping from order id to the fingerprint
// last successfully dispatched for it.
//
// The ledger is the single source of truth for idempotence: an entry for
// an id exists with fingerprint F iff a dispatch for content F fully
// succeeded. Absence means "never successfully dispatched". No printer
// state is ever consulted.
//
// On-disk format is a JSON object mapping order id to an array of
// [name, quantity] pairs. A legacy format (a flat JSON array of ids) is
// detected on load and discarded: it carries no fingerprints, so there is
// nothing to reinterpret.
package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/choripam/printd/internal/order"
)

// Ledger is the in-memory view of the persisted dispatch record.
// Single-writer: the polling loop is the only mutator, so no locking
// discipline beyond atomic-write-on-save is required.
type Ledger struct {
	path    string
	entries map[string]order.Fingerprint
}

// Load reads the ledger file at path. Load fails soft and never returns
// an error: a missing file, corrupt JSON, or a legacy list-shaped payload
// each yield an empty ledger with a distinct log line. Resetting discards
// dispatch history, which is accepted data loss and logged loudly.
func Load(path string) *Ledger {
	l := &Ledger{path: path, entries: map[string]order.Fingerprint{}}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info("no ledger file, starting fresh", "path", path)
		return l
	}
	if err != nil {
		slog.Error("ledger unreadable, resetting to empty", "path", path, "error", err)
		return l
	}

	// Legacy format: a flat array of already-printed ids. No fingerprints
	// to migrate, so the history is discarded.
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		slog.Warn("legacy ledger format (id array) detected, discarding history", "path", path)
		return l
	}

	var entries map[string]order.Fingerprint
	if err := json.Unmarshal(data, &entries); err != nil {
		slog.Error("ledger corrupt, resetting to empty", "path", path, "error", err)
		return l
	}
	if entries != nil {
		l.entries = entries
	}
	slog.Info("ledger loaded", "path", path, "orders", len(l.entries))
	return l
}

// Get returns the last successfully dispatched fingerprint for id.
func (l *Ledger) Get(id string) (order.Fingerprint, bool) {
	fp, ok := l.entries[id]
	return fp, ok
}

// Len returns the number of recorded orders.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Commit records that content fp of order id was fully dispatched and
// persists the whole ledger synchronously. Callers must invoke this only
// after the receipt print succeeded; a save failure leaves the entry in
// memory, narrowing but not closing the duplicate window on crash.
func (l *Ledger) Commit(id string, fp order.Fingerprint) error {
	l.entries[id] = fp
	if err := l.save(); err != nil {
		return fmt.Errorf("commit order %s: %w", id, err)
	}
	return nil
}

// save serializes the full mapping and replaces the backing file via
// write-to-temp-then-rename, so a crash mid-write can never truncate the
// previous ledger.
func (l *Ledger) save() error {
	data, err := json.MarshalIndent(l.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	dir := filepath.Dir(l.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(l.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create ledger temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write ledger temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync ledger temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close ledger temp file: %w", err)
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace ledger file: %w", err)
	}
	return nil
}

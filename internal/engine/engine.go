// Package engine drives the fetch → classify → dispatch → commit loop.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/choripam/printd/internal/journal"
	"github.com/choripam/printd/internal/ledger"
	"github.com/choripam/printd/internal/notify"
	"github.com/choripam/printd/internal/order"
	"github.com/choripam/printd/internal/printer"
	"github.com/choripam/printd/internal/receipt"
	"github.com/choripam/printd/internal/source"
)

// Recorder persists one journal row per dispatch attempt. Append
// failures are logged and never affect dispatch or ledger decisions.
type Recorder interface {
	Append(ctx context.Context, rec journal.Record) (int64, error)
}

// Engine is the single-writer polling loop.
//
// Each cycle runs to completion before the next begins; all I/O is
// blocking and serialized. The ledger, not any printer state, decides
// whether an order needs dispatch, and only a successful customer
// receipt commits the ledger.
//
// Thread-safety model: Run must be called from exactly one goroutine;
// nothing else mutates the ledger.
type Engine struct {
	interval time.Duration
	fetcher  source.Fetcher
	printer  printer.Printer
	notifier notify.Notifier
	ledger   *ledger.Ledger
	recorder Recorder
	newJobID func() string
}

// Option configures optional engine collaborators.
type Option func(*Engine)

// WithRecorder attaches the dispatch journal.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithJobIDs overrides dispatch job id generation (tests use fixed ids).
func WithJobIDs(fn func() string) Option {
	return func(e *Engine) { e.newJobID = fn }
}

// New creates an engine polling at the given interval.
func New(interval time.Duration, f source.Fetcher, p printer.Printer, n notify.Notifier, l *ledger.Ledger, opts ...Option) *Engine {
	e := &Engine{
		interval: interval,
		fetcher:  f,
		printer:  p,
		notifier: n,
		ledger:   l,
		newJobID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run polls forever at the configured interval until ctx is cancelled.
// Cancellation takes effect at the top of the next iteration; in-flight
// printer and network calls complete or fail naturally. No backoff, no
// jitter, no retry cap: a failing fetch or printer retries every cycle.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("order printing started", "interval", e.interval)
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		e.Cycle(ctx)

		select {
		case <-ctx.Done():
			slog.Info("order printing stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Cycle performs one fetch → classify → dispatch → commit pass.
// Exported so tests can drive the loop body without wall-clock delays.
func (e *Engine) Cycle(ctx context.Context) {
	slog.Debug("checking for orders")

	orders, err := e.fetcher.FetchOrders(ctx)
	if err != nil {
		slog.Warn("orders unavailable this cycle", "error", err)
		return
	}

	for _, o := range orders {
		if !o.Actionable() {
			continue
		}
		current := order.FingerprintOf(o)
		previous, found := e.ledger.Get(o.ID)

		switch order.Classify(previous, found, current) {
		case order.Unchanged:
			continue
		case order.New:
			slog.Info("new pending order", "order", o.ID)
		case order.Modified:
			slog.Info("pending order modified", "order", o.ID)
		}

		e.dispatch(ctx, o, current, found)
	}
}

// dispatch runs the per-order output sequence: alert, kitchen ticket,
// separator, customer receipt. Only the receipt outcome gates the ledger
// commit; kitchen, separator, and alert failures are logged and recorded
// in the journal but never block the sequence.
func (e *Engine) dispatch(ctx context.Context, o order.Order, current order.Fingerprint, modified bool) {
	kind := "new"
	if modified {
		kind = "modified"
	}
	rec := journal.Record{
		JobID:     e.newJobID(),
		OrderID:   o.ID,
		Kind:      kind,
		Notify:    journal.OutcomeOK,
		Kitchen:   journal.OutcomeOK,
		Separator: journal.OutcomeOK,
		Receipt:   journal.OutcomeOK,
	}
	lg := slog.With("order", o.ID, "job", rec.JobID)

	if err := e.notifier.Alert(ctx); err != nil {
		rec.Notify = journal.OutcomeFailed
		lg.Warn("alert sound failed", "error", err)
	}

	if err := e.printer.Print(ctx, receipt.Kitchen(o, modified)); err != nil {
		rec.Kitchen = journal.OutcomeFailed
		lg.Warn("kitchen ticket failed, continuing", "error", err)
	} else {
		lg.Info("kitchen ticket printed")
	}

	if err := e.printer.Print(ctx, receipt.Separator()); err != nil {
		rec.Separator = journal.OutcomeFailed
		lg.Warn("separator page failed", "error", err)
	}

	if err := e.printer.Print(ctx, receipt.Customer(o, modified)); err != nil {
		rec.Receipt = journal.OutcomeFailed
		lg.Error("customer receipt failed, order stays eligible for retry", "error", err)
	} else {
		lg.Info("customer receipt printed")
		if err := e.ledger.Commit(o.ID, current); err != nil {
			// Receipt is on paper but the ledger did not persist: the
			// accepted duplicate window. Next cycle reprints.
			lg.Error("ledger commit failed after successful receipt", "error", err)
		} else {
			rec.Committed = true
			lg.Info("order recorded in ledger")
		}
	}

	if e.recorder != nil {
		if _, err := e.recorder.Append(ctx, rec); err != nil {
			lg.Warn("journal append failed", "error", err)
		}
	}
}

// Package reconcile pairs ledger legs and assigns each one a status.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/cleared-dev/recon/internal/journal"
	"github.com/cleared-dev/recon/internal/logging"
	"github.com/cleared-dev/recon/internal/metrics"
	"github.com/cleared-dev/recon/internal/model"
)

// LedgerSource supplies a tenant's ledger entries for a window. It may
// return entries outside the window; the engine filters them.
type LedgerSource interface {
	Ledger(ctx context.Context, tenant string, w model.Window) ([]model.LedgerEntry, error)
}

// Classifier supplies a tenant's classification map. The engine only
// reads the map.
type Classifier interface {
	Classification(ctx context.Context, tenant string) (model.ClassificationMap, error)
}

// RunParams selects what to reconcile.
type RunParams struct {
	Tenant string
	Window model.Window
}

// Result is the outcome of one run. Legs are in (date, index) order.
type Result struct {
	RunID   uuid.UUID
	Tenant  string
	Window  model.Window
	Entries int
	Legs    []model.Leg
	Pairs   int
	Summary []StatusTotal
}

// Engine runs reconciliations. It keeps no per-run state, so one Engine
// may serve several tenants concurrently.
type Engine struct {
	ledger     LedgerSource
	classifier Classifier
	metrics    *metrics.Metrics
	logger     *log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger replaces the default engine logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics records run outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine creates an Engine.
func NewEngine(ledger LedgerSource, classifier Classifier, opts ...Option) *Engine {
	e := &Engine{
		ledger:     ledger,
		classifier: classifier,
		logger:     logging.Logger(logging.SourceEngine),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run reconciles one tenant's ledger over p.Window. Any error aborts the
// run and no partial result is returned.
func (e *Engine) Run(ctx context.Context, p RunParams) (*Result, error) {
	start := time.Now()
	res, err := e.run(ctx, p)
	if err != nil {
		e.metrics.ObserveRun(metrics.ResultError, time.Since(start))
		e.logger.Error("reconciliation failed", "tenant", p.Tenant, "err", err)
		return nil, err
	}

	e.metrics.ObserveRun(metrics.ResultSuccess, time.Since(start))
	e.metrics.AddPairs(res.Pairs)
	for _, st := range res.Summary {
		e.metrics.AddLegs(string(st.Status), st.Legs)
	}
	e.logger.Info("reconciliation finished",
		"run", res.RunID,
		"tenant", res.Tenant,
		"entries", res.Entries,
		"legs", len(res.Legs),
		"pairs", res.Pairs,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return res, nil
}

func (e *Engine) run(ctx context.Context, p RunParams) (*Result, error) {
	if p.Tenant == "" {
		return nil, errors.New("tenant is required")
	}
	if !p.Window.Start.Before(p.Window.End) {
		return nil, fmt.Errorf("empty window %s..%s", p.Window.Start.Format(time.DateOnly), p.Window.End.Format(time.DateOnly))
	}

	id := uuid.New()
	e.logger.Info("reconciliation started",
		"run", id,
		"tenant", p.Tenant,
		"from", p.Window.Start.Format(time.DateOnly),
		"to", p.Window.End.Format(time.DateOnly),
	)

	entries, err := e.ledger.Ledger(ctx, p.Tenant, p.Window)
	if err != nil {
		return nil, fmt.Errorf("loading ledger: %w", err)
	}
	entries = journal.Filter(entries, p.Window)
	legs := journal.Expand(entries)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, err := e.classifier.Classification(ctx, p.Tenant)
	if err != nil {
		return nil, fmt.Errorf("resolving classification: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	Stamp(legs, m)
	pairs := Match(legs)
	Resolve(legs)
	if errs := CheckLegs(legs); len(errs) > 0 {
		return nil, fmt.Errorf("run %s failed %d invariant checks: %w", id, len(errs), errs[0])
	}

	return &Result{
		RunID:   id,
		Tenant:  p.Tenant,
		Window:  p.Window,
		Entries: len(entries),
		Legs:    legs,
		Pairs:   pairs,
		Summary: Summarize(legs),
	}, nil
}

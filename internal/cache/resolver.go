package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/cleared-dev/recon/internal/accounts"
	"github.com/cleared-dev/recon/internal/apperrors"
	"github.com/cleared-dev/recon/internal/logging"
	"github.com/cleared-dev/recon/internal/metrics"
	"github.com/cleared-dev/recon/internal/model"
)

// ChartSource loads a tenant's registered chart of accounts.
type ChartSource interface {
	Chart(ctx context.Context, tenant string) ([]model.ChartAccount, error)
}

// Resolver returns a tenant's classification map, classifying the chart
// only when the cache has none. Concurrent misses for one tenant share a
// single classification.
type Resolver struct {
	cache   Cache
	charts  ChartSource
	metrics *metrics.Metrics
	logger  *log.Logger

	flights singleflight.Group

	// mu orders Put against Invalidate; gen counts invalidations per tenant.
	mu  sync.Mutex
	gen map[string]uint64
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithMetrics records lookups and classifications on m.
func WithMetrics(m *metrics.Metrics) ResolverOption {
	return func(r *Resolver) { r.metrics = m }
}

// WithLogger replaces the default cache logger.
func WithLogger(l *log.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = l }
}

// NewResolver creates a Resolver over c and charts.
func NewResolver(c Cache, charts ChartSource, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		cache:  c,
		charts: charts,
		logger: logging.Logger(logging.SourceCache),
		gen:    make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Classification returns a copy of the tenant's classification map.
//
// A miss is resolved by the first caller's flight; callers joining that
// flight share its context, so cancelling the first caller fails them all.
func (r *Resolver) Classification(ctx context.Context, tenant string) (model.ClassificationMap, error) {
	m, ok, err := r.cache.Get(ctx, tenant)
	if err != nil {
		return nil, fmt.Errorf("looking up classification for %s: %w", tenant, err)
	}
	r.metrics.CacheLookup(ok)
	if ok {
		r.logger.Debug("classification cache hit", "tenant", tenant, "accounts", len(m))
		return m.Clone(), nil
	}
	r.logger.Debug("classification cache miss", "tenant", tenant)

	v, err, shared := r.flights.Do(tenant, func() (any, error) {
		return r.classify(ctx, tenant)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		r.logger.Debug("joined classification in flight", "tenant", tenant)
	}
	return v.(model.ClassificationMap).Clone(), nil
}

func (r *Resolver) classify(ctx context.Context, tenant string) (model.ClassificationMap, error) {
	gen := r.generation(tenant)

	// Another flight may have stored the map since our lookup.
	m, ok, err := r.cache.Get(ctx, tenant)
	if err != nil {
		return nil, fmt.Errorf("looking up classification for %s: %w", tenant, err)
	}
	if ok {
		return m, nil
	}

	chart, err := r.charts.Chart(ctx, tenant)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, apperrors.ErrMissingChart) {
			return nil, &apperrors.MissingChartError{Tenant: tenant}
		}
		return nil, fmt.Errorf("loading chart for %s: %w", tenant, err)
	}

	m, err = accounts.Classify(chart)
	if err != nil {
		return nil, fmt.Errorf("classifying chart for %s: %w", tenant, err)
	}
	r.metrics.Classified()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen[tenant] != gen {
		r.logger.Info("chart replaced during classification, result not cached", "tenant", tenant)
		return m, nil
	}
	if err := r.cache.Put(ctx, tenant, m); err != nil {
		return nil, fmt.Errorf("storing classification for %s: %w", tenant, err)
	}
	r.logger.Info("classified chart of accounts", "tenant", tenant, "accounts", len(m))
	return m, nil
}

// Invalidate drops the tenant's cached map. A classification already in
// flight still answers its callers but is not stored.
func (r *Resolver) Invalidate(ctx context.Context, tenant string) error {
	r.mu.Lock()
	r.gen[tenant]++
	err := r.cache.Invalidate(ctx, tenant)
	r.mu.Unlock()
	r.flights.Forget(tenant)
	if err != nil {
		return fmt.Errorf("invalidating classification for %s: %w", tenant, err)
	}
	r.logger.Info("classification invalidated", "tenant", tenant)
	return nil
}

func (r *Resolver) generation(tenant string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen[tenant]
}

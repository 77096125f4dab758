package reconcile

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/recon/internal/accounts"
	"github.com/cleared-dev/recon/internal/apperrors"
	"github.com/cleared-dev/recon/internal/cache"
	"github.com/cleared-dev/recon/internal/journal"
	"github.com/cleared-dev/recon/internal/logging"
	"github.com/cleared-dev/recon/internal/metrics"
	"github.com/cleared-dev/recon/internal/model"
	"github.com/cleared-dev/recon/internal/tabular"
)

type mockLedger struct {
	entries map[string][]model.LedgerEntry
	err     error
}

func (m *mockLedger) Ledger(_ context.Context, tenant string, _ model.Window) ([]model.LedgerEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.entries[tenant], nil
}

type mockClassifier struct {
	m     model.ClassificationMap
	err   error
	calls int
}

func (m *mockClassifier) Classification(context.Context, string) (model.ClassificationMap, error) {
	m.calls++
	return m.m.Clone(), m.err
}

type mockCharts struct {
	mu    sync.Mutex
	calls int
}

func (m *mockCharts) Chart(context.Context, string) ([]model.ChartAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return accounts.SampleChart(), nil
}

var march = model.Window{Start: date(2025, 3, 1), End: date(2025, 4, 1)}

func loadTestLedger(t *testing.T) []model.LedgerEntry {
	t.Helper()
	f, err := os.Open("../../testdata/ledger.csv")
	require.NoError(t, err)
	defer f.Close()
	entries, err := journal.ReadLedger(f, tabular.FormatCSV)
	require.NoError(t, err)
	return entries
}

func newTestEngine(ledger LedgerSource, classifier Classifier, opts ...Option) *Engine {
	return NewEngine(ledger, classifier, append([]Option{WithLogger(logging.Discard())}, opts...)...)
}

func TestEngineRun(t *testing.T) {
	ledger := &mockLedger{entries: map[string][]model.LedgerEntry{"acme": loadTestLedger(t)}}
	classifier := &mockClassifier{m: sampleClassification}
	e := newTestEngine(ledger, classifier)

	res, err := e.Run(context.Background(), RunParams{Tenant: "acme", Window: march})
	require.NoError(t, err)

	assert.Equal(t, "acme", res.Tenant)
	assert.Equal(t, march, res.Window)
	assert.NotEqual(t, uuid.Nil, res.RunID)
	assert.Equal(t, 5, res.Entries)
	assert.Len(t, res.Legs, 10)
	assert.Equal(t, 3, res.Pairs)

	for i := 1; i < len(res.Legs); i++ {
		prev, cur := res.Legs[i-1], res.Legs[i]
		assert.False(t, cur.Date.Before(prev.Date), "legs out of date order at %d", i)
	}

	byStatus := map[model.Status]int{}
	for _, st := range res.Summary {
		byStatus[st.Status] = st.Legs
	}
	// NF 1 pairs with its receipt on the client and the revenue side, the
	// cash sale pairs revenue with treasury, and NF 2 is received in April.
	assert.Equal(t, map[model.Status]int{
		model.StatusMatched:                6,
		model.StatusOpenInvoice:            2,
		model.StatusReceivedWithoutInvoice: 0,
		model.StatusOther:                  2,
	}, byStatus)
	assert.Empty(t, CheckLegs(res.Legs))
}

func TestEngineRun_FiltersWindow(t *testing.T) {
	ledger := &mockLedger{entries: map[string][]model.LedgerEntry{"acme": loadTestLedger(t)}}
	e := newTestEngine(ledger, &mockClassifier{m: sampleClassification})

	april := model.Window{Start: date(2025, 4, 1), End: date(2025, 5, 1)}
	res, err := e.Run(context.Background(), RunParams{Tenant: "acme", Window: april})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Entries)
	assert.Zero(t, res.Pairs)
	for _, l := range res.Legs {
		assert.Equal(t, model.StatusReceivedWithoutInvoice, l.Status)
	}
}

func TestEngineRun_EmptyLedger(t *testing.T) {
	e := newTestEngine(&mockLedger{}, &mockClassifier{m: sampleClassification})
	res, err := e.Run(context.Background(), RunParams{Tenant: "acme", Window: march})
	require.NoError(t, err)
	assert.Empty(t, res.Legs)
	assert.Zero(t, res.Pairs)
}

func TestEngineRun_Errors(t *testing.T) {
	parseErr := &apperrors.ParseError{Source: "ledger", Row: 3, Field: "value", Value: "abc"}
	tests := []struct {
		name       string
		ledger     *mockLedger
		classifier *mockClassifier
		params     RunParams
		sentinel   error
		contains   string
	}{
		{
			name:       "ledger parse error",
			ledger:     &mockLedger{err: parseErr},
			classifier: &mockClassifier{m: sampleClassification},
			params:     RunParams{Tenant: "acme", Window: march},
			sentinel:   apperrors.ErrParse,
		},
		{
			name:       "missing chart",
			ledger:     &mockLedger{},
			classifier: &mockClassifier{err: &apperrors.MissingChartError{Tenant: "acme"}},
			params:     RunParams{Tenant: "acme", Window: march},
			sentinel:   apperrors.ErrMissingChart,
		},
		{
			name:       "chart schema error",
			ledger:     &mockLedger{},
			classifier: &mockClassifier{err: &apperrors.SchemaError{Source: "chart", Detail: "no accounts"}},
			params:     RunParams{Tenant: "acme", Window: march},
			sentinel:   apperrors.ErrSchema,
		},
		{
			name:       "no tenant",
			ledger:     &mockLedger{},
			classifier: &mockClassifier{m: sampleClassification},
			params:     RunParams{Window: march},
			contains:   "tenant is required",
		},
		{
			name:       "inverted window",
			ledger:     &mockLedger{},
			classifier: &mockClassifier{m: sampleClassification},
			params:     RunParams{Tenant: "acme", Window: model.Window{Start: march.End, End: march.Start}},
			contains:   "empty window",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(tt.ledger, tt.classifier)
			res, err := e.Run(context.Background(), tt.params)
			require.Error(t, err)
			assert.Nil(t, res)
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			}
			if tt.contains != "" {
				assert.ErrorContains(t, err, tt.contains)
			}
		})
	}
}

func TestEngineRun_ParseErrorSkipsClassification(t *testing.T) {
	classifier := &mockClassifier{m: sampleClassification}
	e := newTestEngine(&mockLedger{err: &apperrors.ParseError{Source: "ledger"}}, classifier)
	_, err := e.Run(context.Background(), RunParams{Tenant: "acme", Window: march})
	require.Error(t, err)
	assert.Zero(t, classifier.calls)
}

func TestEngineRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	classifier := &mockClassifier{m: sampleClassification}
	e := newTestEngine(&mockLedger{}, classifier)
	_, err := e.Run(ctx, RunParams{Tenant: "acme", Window: march})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, classifier.calls)
}

func TestEngineRun_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	ledger := &mockLedger{entries: map[string][]model.LedgerEntry{"acme": loadTestLedger(t)}}
	e := newTestEngine(ledger, &mockClassifier{m: sampleClassification}, WithMetrics(m))

	_, err := e.Run(context.Background(), RunParams{Tenant: "acme", Window: march})
	require.NoError(t, err)
	_, err = e.Run(context.Background(), RunParams{Window: march})
	require.Error(t, err)

	expected := `
# HELP recon_pairs_total Total matched leg pairs
# TYPE recon_pairs_total counter
recon_pairs_total 3
# HELP recon_runs_total Total reconciliation runs by result
# TYPE recon_runs_total counter
recon_runs_total{result="error"} 1
recon_runs_total{result="success"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "recon_pairs_total", "recon_runs_total"))
}

func TestEngineRun_ClassifiesOncePerTenant(t *testing.T) {
	charts := &mockCharts{}
	resolver := cache.NewResolver(cache.NewMemory(), charts, cache.WithLogger(logging.Discard()))
	entries := loadTestLedger(t)
	ledger := &mockLedger{entries: map[string][]model.LedgerEntry{"acme": entries, "globex": entries}}
	e := newTestEngine(ledger, resolver)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := range 8 {
		tenant := "acme"
		if i%2 == 1 {
			tenant = "globex"
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := e.Run(context.Background(), RunParams{Tenant: tenant, Window: march})
			if err == nil && res.Pairs != 3 {
				err = errors.New("unexpected pair count")
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 2, charts.calls)
}

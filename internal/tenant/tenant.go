// Package tenant lays out per-tenant files under a data directory:
//
//	<data_dir>/tenants/<id>/chart-of-accounts.csv
//	<data_dir>/tenants/<id>/classification.json
//	<data_dir>/tenants/<id>/import/
//	<data_dir>/tenants/<id>/import/processed/
//	<data_dir>/tenants/<id>/results/
//	<data_dir>/tenants/<id>/runs.csv
package tenant

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/cleared-dev/recon/internal/accounts"
	"github.com/cleared-dev/recon/internal/model"
	"github.com/cleared-dev/recon/internal/tabular"
)

const (
	tenantsDir         = "tenants"
	chartFile          = "chart-of-accounts.csv"
	classificationFile = "classification.json"
	importDir          = "import"
	resultsDir         = "results"
	runLogFile         = "runs.csv"
)

var validID = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateID rejects tenant ids that are empty or unsafe as a directory name.
func ValidateID(id string) error {
	if !validID.MatchString(id) {
		return fmt.Errorf("invalid tenant id %q (letters, digits, '.', '_' and '-' only)", id)
	}
	return nil
}

// Invalidator drops a tenant's cached classification.
type Invalidator interface {
	Invalidate(ctx context.Context, tenant string) error
}

// Workspace is the root of all tenant directories.
type Workspace struct {
	root string
}

// New returns the workspace rooted at dataDir.
func New(dataDir string) *Workspace {
	return &Workspace{root: dataDir}
}

// Root returns the data directory.
func (w *Workspace) Root() string { return w.root }

// Dir returns the tenant's directory.
func (w *Workspace) Dir(tenant string) string {
	return filepath.Join(w.root, tenantsDir, tenant)
}

// ChartPath returns the registered chart file.
func (w *Workspace) ChartPath(tenant string) string {
	return filepath.Join(w.Dir(tenant), chartFile)
}

// ClassificationPath returns the file cache document.
func (w *Workspace) ClassificationPath(tenant string) string {
	return filepath.Join(w.Dir(tenant), classificationFile)
}

// ImportDir returns the directory scanned for uploaded ledgers.
func (w *Workspace) ImportDir(tenant string) string {
	return filepath.Join(w.Dir(tenant), importDir)
}

// ResultsDir returns the directory reports are written to.
func (w *Workspace) ResultsDir(tenant string) string {
	return filepath.Join(w.Dir(tenant), resultsDir)
}

// RunLogPath returns the tenant's run history file.
func (w *Workspace) RunLogPath(tenant string) string {
	return filepath.Join(w.Dir(tenant), runLogFile)
}

// Create makes the tenant's directories. Existing ones are kept.
func (w *Workspace) Create(tenant string) error {
	if err := ValidateID(tenant); err != nil {
		return err
	}
	for _, dir := range []string{w.ImportDir(tenant), w.ResultsDir(tenant)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// Tenants lists the tenant ids present, sorted.
func (w *Workspace) Tenants() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(w.root, tenantsDir))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing tenants: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() && ValidateID(e.Name()) == nil {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Chart loads the tenant's registered chart. A tenant without one gets
// an error matching fs.ErrNotExist.
func (w *Workspace) Chart(_ context.Context, tenant string) ([]model.ChartAccount, error) {
	if err := ValidateID(tenant); err != nil {
		return nil, err
	}
	svc, err := accounts.Load(w.ChartPath(tenant))
	if err != nil {
		return nil, err
	}
	return svc.All(), nil
}

// HasChart reports whether the tenant has a registered chart.
func (w *Workspace) HasChart(tenant string) bool {
	return accounts.Exists(w.ChartPath(tenant))
}

// RegisterChart stores chart as the tenant's chart of accounts and drops
// the cached classification of the previous one.
func (w *Workspace) RegisterChart(ctx context.Context, tenant string, chart []model.ChartAccount, inv Invalidator) error {
	if err := w.Create(tenant); err != nil {
		return err
	}
	if _, err := accounts.Classify(chart); err != nil {
		return fmt.Errorf("registering chart for %s: %w", tenant, err)
	}
	if err := accounts.NewService(chart).Save(w.ChartPath(tenant)); err != nil {
		return err
	}
	if inv == nil {
		return nil
	}
	return inv.Invalidate(ctx, tenant)
}

// ImportChart reads a chart export (.csv or .xlsx) and registers it.
func (w *Workspace) ImportChart(ctx context.Context, tenant, path string, inv Invalidator) ([]model.ChartAccount, error) {
	format, err := tabular.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening chart: %w", err)
	}
	defer f.Close()

	chart, err := accounts.ReadChart(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if err := w.RegisterChart(ctx, tenant, chart, inv); err != nil {
		return nil, err
	}
	return chart, nil
}

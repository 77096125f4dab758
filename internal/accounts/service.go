package accounts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cleared-dev/recon/internal/model"
	"github.com/cleared-dev/recon/internal/tabular"
)

// Service provides in-memory lookup over a chart of accounts.
type Service struct {
	accounts  []model.ChartAccount
	byReduced map[string]model.ChartAccount
}

// NewService creates a Service from a slice of accounts.
func NewService(accounts []model.ChartAccount) *Service {
	byReduced := make(map[string]model.ChartAccount, len(accounts))
	for _, a := range accounts {
		if _, dup := byReduced[a.ReducedCode]; !dup {
			byReduced[a.ReducedCode] = a
		}
	}
	return &Service{accounts: accounts, byReduced: byReduced}
}

// Load reads a stored chart-of-accounts.csv. A missing file is reported
// with an error matching fs.ErrNotExist.
func Load(path string) (*Service, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening chart of accounts: %w", err)
	}
	defer f.Close()

	chart, err := ReadChart(f, tabular.FormatCSV)
	if err != nil {
		return nil, fmt.Errorf("reading chart of accounts: %w", err)
	}
	return NewService(chart), nil
}

// Exists reports whether a chart file is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

// All returns all accounts in chart order.
func (s *Service) All() []model.ChartAccount {
	return s.accounts
}

// Get returns an account by reduced code.
func (s *Service) Get(reducedCode string) (model.ChartAccount, bool) {
	a, ok := s.byReduced[reducedCode]
	return a, ok
}

// Analytic returns the postable accounts.
func (s *Service) Analytic() []model.ChartAccount {
	var result []model.ChartAccount
	for _, a := range s.accounts {
		if a.IsAnalytic {
			result = append(result, a)
		}
	}
	return result
}

// Classify runs the classification rules over the chart.
func (s *Service) Classify() (model.ClassificationMap, error) {
	return Classify(s.accounts)
}

// Save writes the chart to path as CSV, creating parent directories.
// The file is replaced atomically via rename.
func (s *Service) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating chart dir: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating chart of accounts file: %w", err)
	}

	if err := WriteChart(f, s.accounts); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("writing chart of accounts: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing chart of accounts: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing chart of accounts: %w", err)
	}
	return nil
}

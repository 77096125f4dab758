package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/recon/internal/accounts"
	"github.com/cleared-dev/recon/internal/config"
	"github.com/cleared-dev/recon/internal/journal"
	"github.com/cleared-dev/recon/internal/model"
	"github.com/cleared-dev/recon/internal/tenant"
)

const sampleLedgerFile = "sample-ledger.csv"

func newInitCommand(a *app) *cobra.Command {
	var dataDir string
	var tenantID string
	var sample bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create recon.yaml and the data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if sample && tenantID == "" {
				return errors.New("--sample needs --tenant")
			}
			return runInit(cmd.Context(), a, dataDir, tenantID, sample, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "data", "data directory for a new config, relative to the config file")
	cmd.Flags().StringVar(&tenantID, "tenant", "", "also create this tenant")
	cmd.Flags().BoolVar(&sample, "sample", false, "register a sample chart and ledger for the tenant")

	return cmd
}

func runInit(ctx context.Context, a *app, dataDir, tenantID string, sample bool, out io.Writer) error {
	// Write recon.yaml unless one exists.
	if _, err := os.Stat(a.configPath); errors.Is(err, fs.ErrNotExist) {
		cfg := config.Default()
		cfg.DataDir = dataDir
		if err := config.Save(a.configPath, cfg); err != nil {
			return err
		}
		if !filepath.IsAbs(dataDir) {
			dataDir = filepath.Join(filepath.Dir(a.configPath), dataDir)
		}
		a.cfg.DataDir = dataDir
		a.ws = tenant.New(dataDir)
		fmt.Fprintf(out, "Wrote %s\n", a.configPath)
	}

	if err := os.MkdirAll(a.ws.Root(), 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	if tenantID == "" {
		fmt.Fprintf(out, "Initialized data directory %s\n", a.ws.Root())
		return nil
	}

	if err := a.ws.Create(tenantID); err != nil {
		return err
	}
	fmt.Fprintf(out, "Created tenant %s at %s\n", tenantID, a.ws.Dir(tenantID))
	if !sample {
		return nil
	}

	resolver, closeCache, err := a.resolver(ctx, nil)
	if err != nil {
		return err
	}
	defer closeCache()

	if err := a.ws.RegisterChart(ctx, tenantID, accounts.SampleChart(), resolver); err != nil {
		return fmt.Errorf("registering sample chart: %w", err)
	}

	ledgerPath := filepath.Join(a.ws.ImportDir(tenantID), sampleLedgerFile)
	f, err := os.Create(ledgerPath)
	if err != nil {
		return fmt.Errorf("creating sample ledger: %w", err)
	}
	if err := journal.WriteLedger(f, sampleLedger()); err != nil {
		f.Close()
		return fmt.Errorf("writing sample ledger: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing sample ledger: %w", err)
	}
	fmt.Fprintf(out, "Registered sample chart and wrote %s\n", ledgerPath)
	return nil
}

// sampleLedger is a March 2025 ledger for the sample chart: one invoice
// settled by a later receipt, one cash sale, one expense and one invoice
// still open.
func sampleLedger() []model.LedgerEntry {
	d := func(day int) time.Time { return time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC) }
	v := decimal.RequireFromString
	return []model.LedgerEntry{
		{Date: d(1), DebitAccount: "101 - CLIENTE A", CreditAccount: "301 - RECEITA SERVICOS", Value: v("100.00"), Description: "NF 1 cliente A"},
		{Date: d(1), DebitAccount: "6 - CLIENTE A", CreditAccount: "301 - RECEITA SERVICOS", Value: v("250.00"), Description: "Venda a vista cliente A"},
		{Date: d(5), DebitAccount: "6 - CLIENTE A", CreditAccount: "101 - CLIENTE A", Value: v("100.00"), Description: "Recebimento NF 1"},
		{Date: d(10), DebitAccount: "401 - ALUGUEL", CreditAccount: "6 - BANCO", Value: v("1500.00"), Description: "Aluguel marco"},
		{Date: d(20), DebitAccount: "101 - CLIENTE B", CreditAccount: "301 - RECEITA SERVICOS", Value: v("80.00"), Description: "NF 2 cliente B"},
	}
}

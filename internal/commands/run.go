package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/recon/internal/importer"
	"github.com/cleared-dev/recon/internal/logging"
	"github.com/cleared-dev/recon/internal/metrics"
	"github.com/cleared-dev/recon/internal/model"
	"github.com/cleared-dev/recon/internal/period"
	"github.com/cleared-dev/recon/internal/reconcile"
	"github.com/cleared-dev/recon/internal/report"
	"github.com/cleared-dev/recon/internal/runlog"
	"github.com/cleared-dev/recon/internal/tabular"
	"github.com/cleared-dev/recon/internal/tenant"
)

type runOptions struct {
	tenant     string
	ledgers    []string
	period     string
	from, to   string
	outDir     string
	format     string
	keepImport bool
}

func newRunCommand(a *app) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reconcile a tenant's ledger over a period",
		Long: "Reconcile a tenant's ledger over a period.\n\n" +
			"Without --ledger, every .csv and .xlsx file in the tenant's import\n" +
			"directory is read and moved to import/processed after a successful run.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd.Context(), a, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.tenant, "tenant", "", "tenant id (required)")
	_ = cmd.MarkFlagRequired("tenant")
	cmd.Flags().StringSliceVar(&opts.ledgers, "ledger", nil, "ledger file (.csv or .xlsx); repeatable")
	cmd.Flags().StringVar(&opts.period, "period", "", "month to reconcile (YYYY-MM)")
	cmd.Flags().StringVar(&opts.from, "from", "", "window start (YYYY-MM-DD, inclusive)")
	cmd.Flags().StringVar(&opts.to, "to", "", "window end (YYYY-MM-DD, exclusive)")
	cmd.Flags().StringVar(&opts.outDir, "out", "", "report directory (default: the tenant's results dir)")
	cmd.Flags().StringVar(&opts.format, "format", "", "report format, xlsx or csv (default: output.format)")
	cmd.Flags().BoolVar(&opts.keepImport, "keep-import", false, "leave imported files in place")
	cmd.MarkFlagsMutuallyExclusive("period", "from")
	cmd.MarkFlagsMutuallyExclusive("period", "to")
	cmd.MarkFlagsRequiredTogether("from", "to")

	return cmd
}

func (a *app) window(opts runOptions) (model.Window, error) {
	switch {
	case opts.period != "":
		return period.Parse(opts.period)
	case opts.from != "":
		return period.Range(opts.from, opts.to)
	default:
		return a.cfg.DefaultWindow()
	}
}

func runRun(ctx context.Context, a *app, opts runOptions, out io.Writer) error {
	logger := logging.Logger(logging.SourceCLI)

	if err := tenant.ValidateID(opts.tenant); err != nil {
		return err
	}
	w, err := a.window(opts)
	if err != nil {
		return err
	}
	format := tabular.Format(a.cfg.Output.Format)
	if opts.format != "" {
		format = tabular.Format(opts.format)
	}
	if format != tabular.FormatCSV && format != tabular.FormatXLSX {
		return fmt.Errorf("unsupported report format %q (want xlsx or csv)", format)
	}

	reg := importer.DefaultRegistry()
	paths := opts.ledgers
	var scanned []importer.FileInfo
	if len(paths) == 0 {
		scanned, err = importer.Scan(a.ws.ImportDir(opts.tenant), reg)
		if err != nil {
			return err
		}
		if len(scanned) == 0 {
			return fmt.Errorf("no ledger files in %s (pass --ledger)", a.ws.ImportDir(opts.tenant))
		}
		for _, fi := range scanned {
			paths = append(paths, fi.Path)
		}
	}

	promReg := prometheus.NewRegistry()
	m := metrics.New(promReg)
	if a.cfg.Metrics.Textfile != "" {
		defer func() {
			if err := metrics.WriteTextfile(a.cfg.Metrics.Textfile, promReg); err != nil {
				logger.Warn("failed to write metrics", "path", a.cfg.Metrics.Textfile, "err", err)
			}
		}()
	}

	resolver, closeCache, err := a.resolver(ctx, m)
	if err != nil {
		return err
	}
	defer closeCache()

	engine := reconcile.NewEngine(importer.NewFileSource(reg, paths...), resolver, reconcile.WithMetrics(m))
	res, err := engine.Run(ctx, reconcile.RunParams{Tenant: opts.tenant, Window: w})
	if err != nil {
		return err
	}

	outDir := opts.outDir
	if outDir == "" {
		outDir = a.ws.ResultsDir(opts.tenant)
	}
	reportPath, err := report.Save(outDir, format, res)
	if err != nil {
		return err
	}

	if err := runlog.Append(a.ws.RunLogPath(opts.tenant), []runlog.Entry{runlog.FromResult(res, reportPath, time.Now())}); err != nil {
		logger.Warn("failed to write run log", "tenant", opts.tenant, "err", err)
	}

	if !opts.keepImport {
		var moveErrs []error
		for _, fi := range scanned {
			moveErrs = append(moveErrs, importer.MarkProcessed(a.ws.ImportDir(opts.tenant), fi.Name))
		}
		if err := errors.Join(moveErrs...); err != nil {
			logger.Warn("failed to move imported files", "tenant", opts.tenant, "err", err)
		}
	}

	printResult(out, res, reportPath)
	return nil
}

func printResult(out io.Writer, res *reconcile.Result, reportPath string) {
	fmt.Fprintf(out, "Run %s for %s, %s to %s\n", res.RunID, res.Tenant,
		res.Window.Start.Format(time.DateOnly), res.Window.End.Format(time.DateOnly))
	fmt.Fprintf(out, "  entries: %d  legs: %d  pairs: %d\n", res.Entries, len(res.Legs), res.Pairs)
	for _, st := range res.Summary {
		fmt.Fprintf(out, "  %-25s %4d  %s\n", st.Status, st.Legs, st.Total.StringFixed(2))
	}
	fmt.Fprintf(out, "Report: %s\n", reportPath)
}

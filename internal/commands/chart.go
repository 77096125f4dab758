package commands

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/recon/internal/accounts"
	"github.com/cleared-dev/recon/internal/model"
	"github.com/cleared-dev/recon/internal/tenant"
)

func newChartCommand(a *app) *cobra.Command {
	chartCmd := &cobra.Command{
		Use:   "chart",
		Short: "Manage tenant charts of accounts",
	}
	chartCmd.AddCommand(newChartImportCommand(a))
	chartCmd.AddCommand(newChartClassifyCommand(a))
	return chartCmd
}

func newChartImportCommand(a *app) *cobra.Command {
	var tenantID string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Register a chart of accounts (.csv or .xlsx) for a tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChartImport(cmd.Context(), a, tenantID, args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "tenant id (required)")
	_ = cmd.MarkFlagRequired("tenant")

	return cmd
}

func runChartImport(ctx context.Context, a *app, tenantID, path string, out io.Writer) error {
	if err := tenant.ValidateID(tenantID); err != nil {
		return err
	}
	resolver, closeCache, err := a.resolver(ctx, nil)
	if err != nil {
		return err
	}
	defer closeCache()

	chart, err := a.ws.ImportChart(ctx, tenantID, path, resolver)
	if err != nil {
		return err
	}

	analytic := accounts.NewService(chart).Analytic()
	fmt.Fprintf(out, "Registered %d accounts (%d analytic) for %s\n", len(chart), len(analytic), tenantID)
	return nil
}

func newChartClassifyCommand(a *app) *cobra.Command {
	var tenantID string
	var list bool

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a tenant's chart, using the cache when possible",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChartClassify(cmd.Context(), a, tenantID, list, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "tenant id (required)")
	_ = cmd.MarkFlagRequired("tenant")
	cmd.Flags().BoolVar(&list, "list", false, "print every classified code")

	return cmd
}

func runChartClassify(ctx context.Context, a *app, tenantID string, list bool, out io.Writer) error {
	if err := tenant.ValidateID(tenantID); err != nil {
		return err
	}
	resolver, closeCache, err := a.resolver(ctx, nil)
	if err != nil {
		return err
	}
	defer closeCache()

	m, err := resolver.Classification(ctx, tenantID)
	if err != nil {
		return err
	}
	printClassification(out, m)
	if !list {
		return nil
	}

	// A shared cache can hold a classification whose chart is not in this
	// workspace; codes are then listed without descriptions.
	var svc *accounts.Service
	if chart, err := a.ws.Chart(ctx, tenantID); err == nil {
		svc = accounts.NewService(chart)
	}
	printCodes(out, m, svc)
	return nil
}

func printClassification(out io.Writer, m model.ClassificationMap) {
	for _, t := range model.AccountTypes {
		if t == model.AccountTypeOther {
			continue
		}
		fmt.Fprintf(out, "%-9s %d\n", t, m.Count(t))
	}
}

func printCodes(out io.Writer, m model.ClassificationMap, svc *accounts.Service) {
	codes := make([]string, 0, len(m))
	for code := range m {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	for _, code := range codes {
		if svc == nil {
			fmt.Fprintf(out, "%s\t%s\n", code, m[code])
			continue
		}
		acct, _ := svc.Get(code)
		fmt.Fprintf(out, "%s\t%s\t%s\n", code, m[code], acct.Description)
	}
}

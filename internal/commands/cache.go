package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/recon/internal/cache"
	"github.com/cleared-dev/recon/internal/tenant"
)

func newCacheCommand(a *app) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or drop cached classifications",
	}
	cacheCmd.AddCommand(newCacheInvalidateCommand(a))
	cacheCmd.AddCommand(newCacheShowCommand(a))
	return cacheCmd
}

func newCacheInvalidateCommand(a *app) *cobra.Command {
	var tenantID string

	cmd := &cobra.Command{
		Use:   "invalidate",
		Short: "Drop a tenant's cached classification",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheInvalidate(cmd.Context(), a, tenantID, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "tenant id (required)")
	_ = cmd.MarkFlagRequired("tenant")

	return cmd
}

func runCacheInvalidate(ctx context.Context, a *app, tenantID string, out io.Writer) error {
	if err := tenant.ValidateID(tenantID); err != nil {
		return err
	}
	resolver, closeCache, err := a.resolver(ctx, nil)
	if err != nil {
		return err
	}
	defer closeCache()

	if err := resolver.Invalidate(ctx, tenantID); err != nil {
		return err
	}
	fmt.Fprintf(out, "Invalidated classification for %s\n", tenantID)
	return nil
}

func newCacheShowCommand(a *app) *cobra.Command {
	var tenantID string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a tenant's cached classification as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheShow(cmd.Context(), a, tenantID, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "tenant id (required)")
	_ = cmd.MarkFlagRequired("tenant")

	return cmd
}

func runCacheShow(ctx context.Context, a *app, tenantID string, out io.Writer) error {
	if err := tenant.ValidateID(tenantID); err != nil {
		return err
	}
	c, closeCache, err := a.openCache(ctx)
	if err != nil {
		return err
	}
	defer closeCache()

	m, ok, err := c.Get(ctx, tenantID)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(out, "No cached classification for %s\n", tenantID)
		return nil
	}
	data, err := cache.Encode(m)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s\n", data)
	return nil
}

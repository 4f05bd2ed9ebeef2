package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/devextech/devex-api/internal/bootstrap"
	"github.com/devextech/devex-api/internal/config"
	"github.com/devextech/devex-api/internal/logging"
	"github.com/devextech/devex-api/internal/payment"
)

func paymentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payments",
		Short: "Payment record maintenance",
	}
	cmd.AddCommand(purgeCmd())
	return cmd
}

func purgeCmd() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete orders that were created but never verified",
		Long: `Delete payment records still in the "created" state.

Only records created more than --older-than ago are removed, so checkouts
in progress are left alone.

Examples:
  devexctl payments purge
  devexctl payments purge --older-than 168h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			logger := logging.NewLogger(cfg.Server.IsDevelopment())

			ctx := cmd.Context()
			store, err := bootstrap.OpenStore(ctx, cfg, logger, false)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())

			// Purging never reaches the gateway.
			svc := payment.NewService(store, nil, cfg.Razorpay.KeySecret, nil, logger)
			n, err := svc.PurgeAbandoned(ctx, olderThan)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d unverified payment(s) older than %s\n", n, olderThan)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 72*time.Hour, "minimum age of an unverified order")

	return cmd
}

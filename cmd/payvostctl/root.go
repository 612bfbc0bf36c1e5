package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/payvost/payvost-web-sub011/internal/config"
	"github.com/payvost/payvost-web-sub011/internal/fx"
	"github.com/payvost/payvost-web-sub011/internal/logging"
	"github.com/payvost/payvost-web-sub011/internal/server"
	"github.com/payvost/payvost-web-sub011/internal/storage/postgres"
)

// loadConfig is swapped in tests.
var loadConfig = config.Load

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "payvostctl",
		Short:         "Operator tooling for the Payvost API",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newMigrateCmd(), newRatesCmd(), newQuoteCmd(), newUsersCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logging.Setup(cfg.LogLevel)
			if cfg.StorageDriver != config.DriverPostgres {
				return fmt.Errorf("migrate requires STORAGE_DRIVER=postgres, got %q", cfg.StorageDriver)
			}
			store, err := postgres.New(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer store.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}

func newRatesCmd() *cobra.Command {
	var base, symbols string
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Print current exchange rates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeFX, err := fxService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFX()
			var list []string
			if symbols != "" {
				list = strings.Split(symbols, ",")
			}
			table, err := svc.Rates(cmd.Context(), base, list)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), table)
		},
	}
	cmd.Flags().StringVar(&base, "base", "USD", "base currency")
	cmd.Flags().StringVar(&symbols, "symbols", "", "comma-separated currencies to include")
	return cmd
}

func newQuoteCmd() *cobra.Command {
	var from, to, amount string
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Preview fees and delivered amount for a transfer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			amt, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("--amount: %w", err)
			}
			svc, closeFX, err := fxService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFX()
			q, err := svc.Quote(cmd.Context(), amt, from, to)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), q)
		},
	}
	cmd.Flags().StringVar(&from, "from", "USD", "source currency")
	cmd.Flags().StringVar(&to, "to", "", "destination currency")
	cmd.Flags().StringVar(&amount, "amount", "", "amount to send")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func fxService(ctx context.Context) (*fx.Service, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := logging.Setup(cfg.LogLevel)
	return server.NewFX(ctx, cfg, logger)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

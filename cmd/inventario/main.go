// Command inventario runs inventory imports, previews, exports and bulk edits
// against the catalogue database from the command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/inventario/internal/config"
	"github.com/JonMunkholm/inventario/internal/core"
	"github.com/JonMunkholm/inventario/internal/logging"
	"github.com/JonMunkholm/inventario/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Exit codes.
const (
	exitFailure = 1
	exitUsage   = 2
)

// exitError carries the process exit code for err.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

// globalOptions are the flags shared by every subcommand.
type globalOptions struct {
	databaseURL string
	logLevel    string
	jsonOutput  bool
}

// app is the wiring every subcommand runs against.
type app struct {
	cfg     *config.Config
	pool    *pgxpool.Pool
	service *core.Service
}

func (a *app) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}

func newRootCmd() *cobra.Command {
	var opts globalOptions

	root := &cobra.Command{
		Use:   "inventario",
		Short: "Inventory import and export for the catalogue",
		Long: `inventario reconciles inventory spreadsheets against the product catalogue.

Available commands:
  import       - Apply a CSV or XLSX file to the catalogue
  preview      - Show what an import would do without writing
  export       - Download the catalogue as CSV or XLSX
  bulk-price   - Scale the prices of selected products
  bulk-delete  - Delete selected products

Examples:
  inventario preview stock.csv
  inventario import stock.xlsx
  inventario export --format xlsx --low-stock -o bajo_stock.xlsx
  inventario bulk-price --percent 10 <id> <id>`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			slog.SetDefault(logging.New(os.Stderr, opts.logLevel, "text"))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.databaseURL, "database-url", "", "PostgreSQL connection string (default: $DATABASE_URL)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Print results as JSON")

	root.AddCommand(
		newImportCmd(&opts),
		newPreviewCmd(&opts),
		newExportCmd(&opts),
		newBulkPriceCmd(&opts),
		newBulkDeleteCmd(&opts),
	)
	return root
}

// openApp loads configuration the same way the server does, with
// --database-url taking precedence, and connects to the database.
func openApp(ctx context.Context, opts *globalOptions) (*app, error) {
	// Load never overrides variables already set in the shell.
	_ = godotenv.Load()

	if opts.databaseURL != "" {
		if err := os.Setenv("DATABASE_URL", opts.databaseURL); err != nil {
			return nil, withCode(exitUsage, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, withCode(exitUsage, err)
	}

	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	st := store.New(pool)
	if cfg.Database.AutoMigrate {
		if err := st.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
	}

	service, err := core.NewService(st, st, cfg.Import)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return &app{cfg: cfg, pool: pool, service: service}, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err == nil {
		return
	}

	code := exitFailure
	var ee *exitError
	if errors.As(err, &ee) {
		code = ee.code
	}

	slog.Debug("command failed", "error", err)
	switch {
	case code == exitUsage:
		fmt.Fprintln(os.Stderr, "error:", err)
	case core.IsUserFacing(err):
		fmt.Fprintln(os.Stderr, "error:", core.NewUserError(err))
	default:
		// Unmapped errors keep their technical detail on the terminal.
		fmt.Fprintf(os.Stderr, "error: %s\n  %v\n", core.NewUserError(err), err)
	}
	stop()
	os.Exit(code)
}

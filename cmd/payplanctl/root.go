package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"payplan/internal/cli"
	"payplan/internal/config"
	"payplan/internal/core"
	applog "payplan/internal/log"
)

var (
	flagUser   string
	flagJSON   bool
	flagDBPath string
)

var rootCmd = &cobra.Command{
	Use:           "payplanctl",
	Short:         "Paycheck calendar, forecast and reconciliation CLI",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(*cobra.Command, []string) {
		cli.LoadEnvFile()
	},
}

func init() {
	defaultUser := os.Getenv("PAYPLAN_USER")
	if defaultUser == "" {
		defaultUser = "local"
	}
	rootCmd.PersistentFlags().StringVarP(&flagUser, "user", "u", defaultUser, "User id the records belong to")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print JSON instead of tables")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "SQLite database path (default SQLITE_DB_PATH)")
}

// openApp wires the services against the configured database. Logs go to
// stderr so stdout stays clean for tables and JSON.
func openApp(ctx context.Context) (*cli.App, error) {
	cfg := config.Load()
	if flagDBPath != "" {
		cfg.SQLiteDBPath = flagDBPath
	}
	// The CLI never publishes; the server and worker own the broker.
	cfg.AMQPURL = ""
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(envOr("LOG_LEVEL", "warn")),
		Component: applog.ComponentCLI,
		Output:    os.Stderr,
	})
	return cli.NewApp(ctx, cfg, logger)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDateFlag(name, value string) (core.Date, error) {
	d, err := core.ParseDate(value)
	if err != nil {
		return core.Date{}, fmt.Errorf("--%s: expected YYYY-MM-DD, got %q", name, value)
	}
	return d, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

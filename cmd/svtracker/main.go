package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "svtracker",
	Short: "Shadowverse match record dashboard",
	Long: `svtracker records ranked and room games to a spreadsheet (or a local SQLite
file) and reports win rates, deck performance, opponent trends and matchups.

Settings come from an optional YAML file and SVT_* environment variables,
for example SVT_AUTH_PASSWORD or SVT_STORE_BACKEND=sheets. A .env file in the
working directory is loaded first.

Examples:
  svtracker serve
  svtracker report --season S12 --deck Fairy
  svtracker export --out records.csv
  svtracker import --csv records.csv`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.AddCommand(serveCmd, reportCmd, exportCmd, importCmd)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Package main provides the menucost CLI: decompose, write off and FIFO-cost
// menu items against a YAML catalog without a database.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// .env is optional for the CLI
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cliOptions are the flags shared by every subcommand
type cliOptions struct {
	catalogPath string
	outputJSON  bool
	verbose     bool
}

func rootCmd() *cobra.Command {
	opts := &cliOptions{}

	cmd := &cobra.Command{
		Use:   "menucost",
		Short: "Decompose and cost menu items",
		Long: `Decompose sold menu items into products and preparations, build
inventory write-offs and compute FIFO cost of goods sold.

Examples:
  menucost decompose --catalog catalog.yaml --item fried-rice --variant regular --qty 3
  menucost writeoff --catalog catalog.yaml --sale sale.yaml
  menucost cost --catalog catalog.yaml --sale sale.yaml --lots lots.yaml --fallback
`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.verbose {
				log.SetOutput(cmd.ErrOrStderr())
				return
			}
			log.SetOutput(io.Discard)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.catalogPath, "catalog", envOr("CATALOG_PATH", "catalog.yaml"), "YAML catalog file")
	cmd.PersistentFlags().BoolVar(&opts.outputJSON, "json", false, "Output results as JSON")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log engine activity to stderr")

	cmd.AddCommand(decomposeCmd(opts))
	cmd.AddCommand(writeOffCmd(opts))
	cmd.AddCommand(costCmd(opts))

	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	// Register warehouse adapters via init()
	_ "github.com/lostma-project/lostma-audit/pkg/adapters/datasource/duckdb"
	_ "github.com/lostma-project/lostma-audit/pkg/adapters/datasource/postgres"
)

// Version is set at build time via ldflags
var Version = "dev"

const appName = "lostma-audit"

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var opts globalOptions

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Data completeness audit for the LOSTMA catalog warehouse",
		Long: `lostma-audit reports, per entity type and field, how many records of the
catalog warehouse are missing a value, weighted by the requirement level declared
in the schema export and optionally scoped to one language of the corpus.

It also validates controlled vocabularies, cross-references the editorial
validation log with row counts, and re-materializes the warehouse.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file path (YAML, default config.yaml)")
	cmd.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "Print reports as JSON")

	cmd.AddCommand(
		serveCmd(&opts),
		entitiesCmd(&opts),
		completenessCmd(&opts),
		requiredCmd(&opts),
		enumsCmd(&opts),
		logReportCmd(&opts),
		syncCmd(&opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)

	return cmd
}

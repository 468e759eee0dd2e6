package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/analytics"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/server"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/tools/dynamic"
	toolconfig "github.com/mkd-neo4j/neo4j-mcp-payroll/tools"
)

func serveCmd() *cobra.Command {
	var dataset string
	var noAnalytics bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the payroll tools over MCP stdio",
		Long: `Serve the payroll fraud tools to an MCP client over stdio.

The Neo4j tools (sync-payroll-graph, get-employee-profile, get-payroll-graph-model and
read-payroll-cypher) are only registered when neo4j.uri is configured.

Examples:
  neo4j-mcp-payroll serve
  neo4j-mcp-payroll serve --dataset ./payroll.csv
  PAYROLL_NEO4J__URI=neo4j://localhost:7687 neo4j-mcp-payroll serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			if dataset != "" {
				cfg.Dataset.Path = dataset
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			db, closeDB, err := openDatabase(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			stopMetrics := startMetrics(cfg)
			defer stopMetrics()

			anService := analytics.NewService()
			if noAnalytics {
				anService.Disable()
			}

			dynamic.EmbeddedFS = toolconfig.Playbooks
			return server.NewNeo4jMCPServer(Version, cfg, db, anService).Start(ctx)
		},
	}

	cmd.Flags().StringVar(&dataset, "dataset", "", "CSV to load at startup (overrides dataset.path)")
	cmd.Flags().BoolVar(&noAnalytics, "no-analytics", false, "do not record tool usage counters")
	return cmd
}

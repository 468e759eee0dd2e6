package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/export"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/payroll"
)

func syncCmd() *cobra.Command {
	var clearFirst bool
	var batchSize int

	cmd := &cobra.Command{
		Use:   "sync <csv>",
		Short: "Write a payroll CSV into Neo4j as a property graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			if cfg.Neo4j.URI == "" {
				return errors.New("neo4j.uri is required for sync (set it in the config file or PAYROLL_NEO4J__URI)")
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ds, err := payroll.NewLoader().LoadFile(args[0])
			if err != nil {
				return err
			}

			db, closeDB, err := openDatabase(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeDB()
			if err := db.VerifyConnectivity(ctx); err != nil {
				return err
			}

			opts := export.Options{BatchSize: cfg.Export.BatchSize, ClearBeforeLoad: cfg.Export.ClearBeforeLoad}
			if cmd.Flags().Changed("clear") {
				opts.ClearBeforeLoad = clearFirst
			}
			if batchSize > 0 {
				opts.BatchSize = batchSize
			}

			summary, err := export.NewExporter(db, opts).Sync(ctx, ds)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), summary)
		},
	}

	cmd.Flags().BoolVar(&clearFirst, "clear", false, "delete existing payroll nodes first (default export.clear_before_load)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "rows per write transaction (default export.batch_size)")
	return cmd
}

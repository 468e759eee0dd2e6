package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/anomaly"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/scan"
)

func auditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit <csv>",
		Short: "Run every fraud check on a payroll CSV and print the JSON report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			store, ds, err := loadSnapshot(cfg, args[0])
			if err != nil {
				return err
			}

			report, err := scan.RunAudit(store, ds, cfg.AuditOptions())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}
}

func scoreCmd() *cobra.Command {
	var contamination float64
	var topN int

	cmd := &cobra.Command{
		Use:   "score <csv>",
		Short: "Score salaries with the isolation forest and print the most anomalous records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			ds, err := loadDataset(args[0])
			if err != nil {
				return err
			}

			res := anomaly.New(cfg.AnomalyPipeline()).FitAndScore(ds, contamination, topN)
			if err := printJSON(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if res.Status == anomaly.StatusModelFitFailed {
				return fmt.Errorf("anomaly model could not be fitted: %s", res.Message)
			}
			slog.Info("scoring finished", "status", res.Status, "anomalies", res.AnomaliesDetected)
			return nil
		},
	}

	cmd.Flags().Float64Var(&contamination, "contamination", 0, "expected anomaly share (default anomaly.contamination)")
	cmd.Flags().IntVarP(&topN, "top", "n", 0, "records to report (default anomaly.top_n)")
	return cmd
}

package payroll_fraud

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/anomaly"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/scan"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/tools"
)

// ScoreAnomaliesHandler returns the handler for score-salary-anomalies.
func ScoreAnomaliesHandler(deps *tools.ToolDependencies) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if res := requireStore(deps); res != nil {
			return res, nil
		}
		deps.AnalyticsService.EmitEvent(deps.AnalyticsService.NewToolsEvent("score-salary-anomalies"))

		var args ScoreAnomaliesInput
		if res := bind(request, &args); res != nil {
			return res, nil
		}
		ds, res := loadedDataset(deps)
		if res != nil {
			return res, nil
		}

		pipeline := deps.Pipeline
		if pipeline == nil {
			pipeline = anomaly.New(anomaly.DefaultConfig())
		}

		// A failed fit is reported in Result.Status rather than as a tool error so the caller sees the reason.
		result := pipeline.FitAndScore(ds, args.Contamination, args.TopN)
		slog.Info("anomaly scoring completed",
			"runId", result.RunID,
			"status", result.Status,
			"anomalies", result.AnomaliesDetected)
		return jsonResult(result)
	}
}

// RunAuditHandler returns the handler for run-payroll-audit.
func RunAuditHandler(deps *tools.ToolDependencies) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if res := requireStore(deps); res != nil {
			return res, nil
		}
		deps.AnalyticsService.EmitEvent(deps.AnalyticsService.NewToolsEvent("run-payroll-audit"))

		ds, res := loadedDataset(deps)
		if res != nil {
			return res, nil
		}

		report, err := scan.RunAudit(deps.Store, ds, auditOptions(deps))
		if err != nil {
			slog.Error("error running payroll audit", "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(report)
	}
}

package payroll_fraud

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/graph"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/payroll"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/tools"
)

// maxReportedWarnings caps the warnings echoed back to the caller; the full count is always reported.
const maxReportedWarnings = 20

const defaultExportLimit = 500

type loadDatasetResult struct {
	Path         string                 `json:"path"`
	Encoding     string                 `json:"encoding"`
	Summary      graph.BuildSummary     `json:"summary"`
	Stats        graph.Stats            `json:"stats"`
	Columns      []payroll.Column       `json:"columns"`
	Fallbacks    map[payroll.Column]int `json:"fallbacks"`
	WarningCount int                    `json:"warningCount"`
	Warnings     []payroll.Warning      `json:"warnings"`
}

// LoadDatasetHandler returns the handler for load-payroll-dataset.
func LoadDatasetHandler(deps *tools.ToolDependencies) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleLoadDataset(ctx, request, deps)
	}
}

func handleLoadDataset(_ context.Context, request mcp.CallToolRequest, deps *tools.ToolDependencies) (*mcp.CallToolResult, error) {
	if res := requireStore(deps); res != nil {
		return res, nil
	}
	if deps.Loader == nil {
		errMessage := "payroll loader is not initialized"
		slog.Error(errMessage)
		return mcp.NewToolResultError(errMessage), nil
	}

	deps.AnalyticsService.EmitEvent(deps.AnalyticsService.NewToolsEvent("load-payroll-dataset"))

	var args LoadDatasetInput
	if res := bind(request, &args); res != nil {
		return res, nil
	}

	path := args.Path
	if path == "" && deps.Config != nil {
		path = deps.Config.Dataset.Path
	}
	if path == "" {
		errMessage := "path parameter is required when dataset.path is not configured"
		slog.Error(errMessage)
		return mcp.NewToolResultError(errMessage), nil
	}

	slog.Info("loading payroll dataset", "path", path)

	ds, err := deps.Loader.LoadFile(path)
	if err != nil {
		slog.Error("error loading payroll dataset", "path", path, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	summary, err := deps.Store.Build(ds)
	if err != nil {
		slog.Error("error building payroll graph", "path", path, "error", err)
		return schemaError(err), nil
	}

	deps.AnalyticsService.EmitEvent(deps.AnalyticsService.NewDatasetLoadedEvent(ds.Len(), len(ds.Warnings)))

	columns := make([]payroll.Column, 0, len(ds.Columns))
	for _, c := range payroll.AllColumns {
		if ds.Columns[c] {
			columns = append(columns, c)
		}
	}

	warnings := ds.Warnings
	if len(warnings) > maxReportedWarnings {
		warnings = warnings[:maxReportedWarnings]
	}

	return jsonResult(loadDatasetResult{
		Path:         path,
		Encoding:     ds.Encoding,
		Summary:      summary,
		Stats:        deps.Store.Stats(),
		Columns:      columns,
		Fallbacks:    ds.Fallbacks,
		WarningCount: len(ds.Warnings),
		Warnings:     warnings,
	})
}

// ExportViewHandler returns the handler for export-graph-view.
func ExportViewHandler(deps *tools.ToolDependencies) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleExportView(ctx, request, deps)
	}
}

func handleExportView(_ context.Context, request mcp.CallToolRequest, deps *tools.ToolDependencies) (*mcp.CallToolResult, error) {
	if res := requireStore(deps); res != nil {
		return res, nil
	}

	deps.AnalyticsService.EmitEvent(deps.AnalyticsService.NewToolsEvent("export-graph-view"))

	var args ExportViewInput
	if res := bind(request, &args); res != nil {
		return res, nil
	}
	if _, res := loadedDataset(deps); res != nil {
		return res, nil
	}

	limit := args.Limit
	if limit == 0 {
		limit = defaultExportLimit
		if deps.Config != nil {
			limit = deps.Config.Graph.ExportLimit
		}
	}

	view := deps.Store.ExportView(limit)
	slog.Info("exported graph view", "limit", limit, "nodes", len(view.Nodes), "links", len(view.Links))

	return jsonResult(view)
}

package payroll_fraud

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/export"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/tools"
)

// SyncGraphHandler returns the handler for sync-payroll-graph.
func SyncGraphHandler(deps *tools.ToolDependencies) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleSyncGraph(ctx, request, deps)
	}
}

func handleSyncGraph(ctx context.Context, request mcp.CallToolRequest, deps *tools.ToolDependencies) (*mcp.CallToolResult, error) {
	if res := requireDB(deps); res != nil {
		return res, nil
	}
	if deps.Store == nil {
		errMessage := "graph store is not initialized"
		slog.Error(errMessage)
		return mcp.NewToolResultError(errMessage), nil
	}

	deps.AnalyticsService.EmitEvent(deps.AnalyticsService.NewToolsEvent("sync-payroll-graph"))

	var args SyncGraphInput
	if res := bind(request, &args); res != nil {
		return res, nil
	}
	ds, res := loadedDataset(deps)
	if res != nil {
		return res, nil
	}

	opts := export.Options{BatchSize: export.DefaultBatchSize}
	if deps.Config != nil {
		opts.BatchSize = deps.Config.Export.BatchSize
		opts.ClearBeforeLoad = deps.Config.Export.ClearBeforeLoad
	}
	if args.BatchSize > 0 {
		opts.BatchSize = args.BatchSize
	}
	if args.ClearBeforeLoad != nil {
		opts.ClearBeforeLoad = *args.ClearBeforeLoad
	}

	slog.Info("syncing payroll graph to neo4j",
		"database", deps.DBService.GetDatabaseName(),
		"records", ds.Len(),
		"batchSize", opts.BatchSize,
		"clear", opts.ClearBeforeLoad)

	summary, err := export.NewExporter(deps.DBService, opts).Sync(ctx, ds)
	if err != nil {
		slog.Error("error syncing payroll graph", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	deps.AnalyticsService.EmitEvent(deps.AnalyticsService.NewGraphSyncedEvent(summary.Employees))
	return jsonResult(summary)
}

// EmployeeProfileHandler returns the handler for get-employee-profile.
func EmployeeProfileHandler(deps *tools.ToolDependencies) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleEmployeeProfile(ctx, request, deps)
	}
}

func handleEmployeeProfile(ctx context.Context, request mcp.CallToolRequest, deps *tools.ToolDependencies) (*mcp.CallToolResult, error) {
	if res := requireDB(deps); res != nil {
		return res, nil
	}

	deps.AnalyticsService.EmitEvent(deps.AnalyticsService.NewToolsEvent("get-employee-profile"))

	var args EmployeeProfileInput
	if res := bind(request, &args); res != nil {
		return res, nil
	}

	withPeers := args.IncludePeers == nil || *args.IncludePeers
	query := buildEmployeeProfileQuery(withPeers)

	slog.Info("retrieving employee profile", "employeeId", args.EmployeeID, "includePeers", withPeers)
	slog.Debug("executing employee profile query", "query", query)

	records, err := deps.DBService.ExecuteReadQuery(ctx, query, map[string]any{"employeeId": args.EmployeeID})
	if err != nil {
		slog.Error("error executing employee profile query", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(records) == 0 {
		errMessage := fmt.Sprintf("employee %q not found in database %q; run sync-payroll-graph first",
			args.EmployeeID, deps.DBService.GetDatabaseName())
		slog.Warn(errMessage)
		return mcp.NewToolResultError(errMessage), nil
	}

	response, err := deps.DBService.Neo4jRecordsToJSON(records)
	if err != nil {
		slog.Error("error formatting query results", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(response), nil
}

// ReadCypherHandler returns the handler for read-payroll-cypher.
func ReadCypherHandler(deps *tools.ToolDependencies) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleReadCypher(ctx, request, deps)
	}
}

func handleReadCypher(ctx context.Context, request mcp.CallToolRequest, deps *tools.ToolDependencies) (*mcp.CallToolResult, error) {
	if res := requireDB(deps); res != nil {
		return res, nil
	}

	deps.AnalyticsService.EmitEvent(deps.AnalyticsService.NewToolsEvent("read-payroll-cypher"))

	var args ReadCypherInput
	if res := bind(request, &args); res != nil {
		return res, nil
	}

	slog.Debug("executing read cypher query", "query", args.Query)

	if err := deps.DBService.CheckReadOnly(ctx, args.Query, args.Params); err != nil {
		slog.Error("rejected read cypher query", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	records, err := deps.DBService.ExecuteReadQuery(ctx, args.Query, args.Params)
	if err != nil {
		slog.Error("error executing read cypher query", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	response, err := deps.DBService.Neo4jRecordsToJSON(records)
	if err != nil {
		slog.Error("error formatting query results", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(response), nil
}

// Package payroll_fraud exposes the payroll fraud checks as MCP tools. Every tool except the Neo4j ones
// reads the in-memory snapshot held by graph.Store.
package payroll_fraud

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/mark3labs/mcp-go/mcp"

	apperrors "github.com/mkd-neo4j/neo4j-mcp-payroll/internal/errors"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/payroll"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/scan"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/tools"
)

var validate = validator.New()

// bind decodes the request arguments into args and checks its validate tags.
func bind(request mcp.CallToolRequest, args any) *mcp.CallToolResult {
	if err := request.BindArguments(args); err != nil {
		slog.Error("error binding arguments", "error", err)
		return mcp.NewToolResultError(err.Error())
	}
	if err := validate.Struct(args); err != nil {
		var verrs validator.ValidationErrors
		msg := err.Error()
		if errors.As(err, &verrs) && len(verrs) > 0 {
			msg = fmt.Sprintf("invalid argument %s: failed %q", verrs[0].Field(), verrs[0].Tag())
		}
		verr := apperrors.NewValidationError("INVALID_ARGUMENT", msg).WithCause(err)
		slog.Error("invalid tool arguments", "error", verr)
		return mcp.NewToolResultError(verr.Message)
	}
	return nil
}

// requireStore fails the call when the analytics service or the snapshot store is missing.
func requireStore(deps *tools.ToolDependencies) *mcp.CallToolResult {
	if deps.AnalyticsService == nil {
		errMessage := "analytics service is not initialized"
		slog.Error(errMessage)
		return mcp.NewToolResultError(errMessage)
	}
	if deps.Store == nil {
		errMessage := "graph store is not initialized"
		slog.Error(errMessage)
		return mcp.NewToolResultError(errMessage)
	}
	return nil
}

// requireDB fails the call when no Neo4j connection is configured.
func requireDB(deps *tools.ToolDependencies) *mcp.CallToolResult {
	if deps.AnalyticsService == nil {
		errMessage := "analytics service is not initialized"
		slog.Error(errMessage)
		return mcp.NewToolResultError(errMessage)
	}
	if deps.DBService == nil {
		errMessage := "database service is not initialized"
		slog.Error(errMessage)
		return mcp.NewToolResultError(errMessage)
	}
	return nil
}

// loadedDataset returns the current snapshot's dataset or a tool error telling the caller to load one.
func loadedDataset(deps *tools.ToolDependencies) (*payroll.Dataset, *mcp.CallToolResult) {
	ds, ok := deps.Store.Dataset()
	if !ok {
		slog.Warn("tool called before a dataset was loaded")
		return nil, mcp.NewToolResultError(apperrors.ErrDatasetNotLoaded.Message)
	}
	return ds, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		slog.Error("error formatting tool result", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// schemaError renders a missing-column error with the column name so the caller can fix the file.
func schemaError(err error) *mcp.CallToolResult {
	if col, ok := apperrors.MissingColumn(err); ok {
		return mcp.NewToolResultError(fmt.Sprintf("dataset is missing required column %q", col))
	}
	return mcp.NewToolResultError(err.Error())
}

// auditOptions returns the configured scan thresholds, or the built-in defaults without a config.
func auditOptions(deps *tools.ToolDependencies) scan.AuditOptions {
	if deps.Config == nil {
		return scan.DefaultAuditOptions()
	}
	return deps.Config.AuditOptions()
}

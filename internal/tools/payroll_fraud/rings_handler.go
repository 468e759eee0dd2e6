package payroll_fraud

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/graph"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/metrics"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/tools"
)

type ringsResult struct {
	MinSharers int `json:"minSharers"`
	RingCount  int `json:"ringCount"`
	Rings      any `json:"rings"`
}

// SharedAccountRingsHandler returns the handler for find-shared-account-rings.
func SharedAccountRingsHandler(deps *tools.ToolDependencies) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleRings(ctx, request, deps, "find-shared-account-rings")
	}
}

// SharedDeviceRingsHandler returns the handler for find-shared-device-rings.
func SharedDeviceRingsHandler(deps *tools.ToolDependencies) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleRings(ctx, request, deps, "find-shared-device-rings")
	}
}

func handleRings(_ context.Context, request mcp.CallToolRequest, deps *tools.ToolDependencies, tool string) (*mcp.CallToolResult, error) {
	if res := requireStore(deps); res != nil {
		return res, nil
	}

	deps.AnalyticsService.EmitEvent(deps.AnalyticsService.NewToolsEvent(tool))

	var args RingInput
	if res := bind(request, &args); res != nil {
		return res, nil
	}
	if _, res := loadedDataset(deps); res != nil {
		return res, nil
	}

	minSharers := args.MinSharers
	if minSharers <= 0 {
		minSharers = graph.DefaultMinSharers
	}

	var result ringsResult
	result.MinSharers = minSharers
	switch tool {
	case "find-shared-account-rings":
		rings := deps.Store.FindSharedAccountRings(minSharers)
		result.RingCount, result.Rings = len(rings), rings
		metrics.RecordScanFindings("ghost_families", len(rings))
	default:
		rings := deps.Store.FindSharedDeviceRings(minSharers)
		result.RingCount, result.Rings = len(rings), rings
		metrics.RecordScanFindings("device_rings", len(rings))
	}

	slog.Info("ring detection completed", "tool", tool, "minSharers", minSharers, "rings", result.RingCount)
	return jsonResult(result)
}

package dynamic

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/graph"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/payroll"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/scan"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/tools"
)

type findingCounter func(store *graph.Store, ds *payroll.Dataset, opts scan.AuditOptions) int

// findingCounters are the snapshot checks a guidance tool may reference in live_findings.
// Names match the scan label used by the payroll_scan_findings metric.
var findingCounters = map[string]findingCounter{
	"ghost_families": func(s *graph.Store, _ *payroll.Dataset, o scan.AuditOptions) int {
		return len(s.FindSharedAccountRings(o.MinSharers))
	},
	"device_rings": func(s *graph.Store, _ *payroll.Dataset, o scan.AuditOptions) int {
		return len(s.FindSharedDeviceRings(o.MinSharers))
	},
	"identity_theft": func(_ *graph.Store, ds *payroll.Dataset, _ scan.AuditOptions) int {
		return scan.DuplicateIdentity(ds).DuplicateCount
	},
	"duplicate_tax_pin": func(_ *graph.Store, ds *payroll.Dataset, _ scan.AuditOptions) int {
		return scan.DuplicateTaxPIN(ds).DuplicateCount
	},
	"invalid_tax_pin": func(_ *graph.Store, ds *payroll.Dataset, o scan.AuditOptions) int {
		return scan.TaxPINFormat(ds, o.SampleLimit).InvalidCount
	},
	"living_dead": func(_ *graph.Store, ds *payroll.Dataset, o scan.AuditOptions) int {
		return scan.AgeOutliers(ds, o.MaxAge, o.AgeFallback).Count
	},
	"double_dipping": func(_ *graph.Store, ds *payroll.Dataset, _ scan.AuditOptions) int {
		return scan.CrossUnitDuplicates(ds).DuplicateCount
	},
	"salary_ceiling": func(_ *graph.Store, ds *payroll.Dataset, o scan.AuditOptions) int {
		return scan.SalaryCeiling(ds, o.Ceilings).TotalCount
	},
	"allowance_ratio": func(_ *graph.Store, ds *payroll.Dataset, o scan.AuditOptions) int {
		return scan.AllowanceRatio(ds, o.AllowanceRatio).Count
	},
}

// NewDynamicHandler returns the handler of a guidance tool. The response is the playbook itself,
// followed by the current counts of its live findings when a dataset is loaded.
func NewDynamicHandler(config *ToolConfig, deps *tools.ToolDependencies) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleDynamicTool(ctx, request, config, deps)
	}
}

func handleDynamicTool(_ context.Context, _ mcp.CallToolRequest, config *ToolConfig, deps *tools.ToolDependencies) (*mcp.CallToolResult, error) {
	if deps.AnalyticsService != nil {
		deps.AnalyticsService.EmitEvent(deps.AnalyticsService.NewToolsEvent(config.Name))
	}

	slog.Info("guidance tool called", "tool", config.Name, "category", config.Category)

	var sb strings.Builder
	sb.WriteString(buildEnrichedDescription(config))
	writeLiveFindings(&sb, config, deps)
	return mcp.NewToolResultText(sb.String()), nil
}

func writeLiveFindings(sb *strings.Builder, config *ToolConfig, deps *tools.ToolDependencies) {
	if len(config.LiveFindings) == 0 {
		return
	}

	sb.WriteString("\n\n## Current Snapshot\n")
	if deps.Store == nil {
		sb.WriteString("No snapshot store is available.\n")
		return
	}
	ds, ok := deps.Store.Dataset()
	if !ok {
		sb.WriteString("No payroll dataset is loaded. Call load-payroll-dataset to see live counts.\n")
		return
	}

	opts := scan.DefaultAuditOptions()
	if deps.Config != nil {
		opts = deps.Config.AuditOptions()
	}

	fmt.Fprintf(sb, "Build %s, %d records.\n", deps.Store.Stats().BuildID, ds.Len())
	for _, name := range config.LiveFindings {
		count, known := findingCounters[name]
		if !known {
			continue
		}
		fmt.Fprintf(sb, "- %s: %d\n", name, count(deps.Store, ds, opts))
	}
}

// buildEnrichedDescription renders the static part of a guidance tool as markdown.
func buildEnrichedDescription(config *ToolConfig) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(config.Description))

	if config.Intent != "" {
		sb.WriteString("\n\n## Intent\n")
		sb.WriteString(strings.TrimSpace(config.Intent))
	}

	if len(config.Indicators) > 0 {
		sb.WriteString("\n\n## Red Flags\n")
		for _, ind := range config.Indicators {
			fmt.Fprintf(&sb, "- **%s**: %s\n", ind.Entity, ind.Signal)
			if len(ind.SharedElements) > 0 {
				fmt.Fprintf(&sb, "  Shared: %s\n", strings.Join(ind.SharedElements, ", "))
			}
		}
	}

	if config.ReferenceCypher != "" {
		sb.WriteString("\n\n## Reference Cypher\n```cypher\n")
		sb.WriteString(strings.TrimSpace(config.ReferenceCypher))
		sb.WriteString("\n```\n")
	}

	if s := config.ReferenceSchema; s != nil {
		sb.WriteString("\n\n## Graph Elements\n")
		if len(s.Labels) > 0 {
			fmt.Fprintf(&sb, "- Labels: %s\n", strings.Join(s.Labels, ", "))
		}
		if len(s.Relationships) > 0 {
			fmt.Fprintf(&sb, "- Relationships: %s\n", strings.Join(s.Relationships, ", "))
		}
	}

	if len(config.Parameters) > 0 {
		sb.WriteString("\n\n## Parameters\n")
		for _, p := range config.Parameters {
			fmt.Fprintf(&sb, "- `$%s` (%s)", p.Name, p.Type)
			if p.Default != nil {
				fmt.Fprintf(&sb, " [default: %v]", p.Default)
			}
			if p.Description != "" {
				fmt.Fprintf(&sb, ": %s", p.Description)
			}
			sb.WriteString("\n")
		}
	}

	if len(config.FollowUpTools) > 0 {
		sb.WriteString("\n\n## Next Steps\n")
		for _, t := range config.FollowUpTools {
			fmt.Fprintf(&sb, "- %s\n", t)
		}
	}

	return sb.String()
}

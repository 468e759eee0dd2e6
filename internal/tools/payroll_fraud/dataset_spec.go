package payroll_fraud

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// LoadDatasetInput defines the input parameters for load-payroll-dataset.
type LoadDatasetInput struct {
	Path string `json:"path,omitempty" jsonschema:"description=Path to the payroll CSV file. Defaults to dataset.path from the server configuration."`
}

func LoadDatasetSpec() mcp.Tool {
	return mcp.NewTool("load-payroll-dataset",
		mcp.WithDescription(`Load a payroll CSV export from disk and rebuild the in-memory relationship graph.

Headers are matched loosely (case, accents, spaces and punctuation are ignored), so "Employee_ID",
"EmployeeID" and "employee id" all resolve to the same column. UTF-8, UTF-16 and Latin-1 files are accepted.
Malformed cells are replaced with safe defaults and counted; they never abort the load.

The graph needs the employee id, bank account and device id columns. Scans that depend on other columns
simply report zero findings when those columns are absent.

Returns the build summary, graph statistics, per-column fallback counts and the first load warnings.
Every other payroll tool reads the snapshot created here, so call this first.`),
		mcp.WithInputSchema[LoadDatasetInput](),
		mcp.WithTitleAnnotation("Load Payroll Dataset"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

// ExportViewInput defines the input parameters for export-graph-view.
type ExportViewInput struct {
	Limit int `json:"limit,omitempty" validate:"gte=0" jsonschema:"description=Maximum number of nodes to return. Defaults to graph.export_limit (500)."`
}

func ExportViewSpec() mcp.Tool {
	return mcp.NewTool("export-graph-view",
		mcp.WithDescription(`Export a bounded projection of the payroll relationship graph for visualisation.

Returns the first N nodes in discovery order (employees, bank accounts and devices) and only the links
whose two endpoints are both among them, so the result can be fed straight into a force-directed layout.
Node "group" is 1 for employees, 2 for bank accounts and 3 for devices; "val" is the suggested size.`),
		mcp.WithInputSchema[ExportViewInput](),
		mcp.WithTitleAnnotation("Export Graph View"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

package payroll_fraud

import (
	"github.com/mark3labs/mcp-go/mcp"
)

func GraphModelSpec() mcp.Tool {
	return mcp.NewTool("get-payroll-graph-model",
		mcp.WithDescription(`Describe the payroll graph model written by sync-payroll-graph, with live counts.

Returns the node labels with their key and properties, the relationship types with their endpoints,
the indexes, and how many nodes of each label and relationships of each type exist right now.
Use it before writing queries for read-payroll-cypher. Zero counts mean the graph has not been synced.`),
		mcp.WithTitleAnnotation("Get Payroll Graph Model"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

package tools

import (
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/analytics"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/anomaly"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/config"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/database"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/graph"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/payroll"
)

// ToolDependencies contains all dependencies needed by tools.
// DBService may be nil when the server runs without Neo4j; only the graph tools need it.
type ToolDependencies struct {
	DBService        database.Service
	AnalyticsService analytics.Service
	Store            *graph.Store
	Loader           *payroll.Loader
	Pipeline         *anomaly.Pipeline
	Config           *config.Config
}

package server

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/tools"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/tools/dynamic"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/tools/payroll_fraud"
)

// dynamicConfigDir is read from disk only when no tool definitions are embedded.
const dynamicConfigDir = "tools/config"

// registerTools adds every enabled tool to the MCP server and returns how many were added.
// In read-only mode only tools marked readonly are kept; without a Neo4j connection the
// Neo4j tools are dropped.
func (s *Neo4jMCPServer) registerTools() int {
	enabled := s.getEnabledTools()
	s.MCPServer.AddTools(enabled...)
	slog.Info("registered tools", "count", len(enabled))
	return len(enabled)
}

type toolFilter func(tools []ToolDefinition) []ToolDefinition

type toolCategory int

const (
	payrollCategory toolCategory = iota // in-memory snapshot tools
	neo4jCategory                       // need a database connection
	dynamicCategory                     // YAML guidance tools
)

type ToolDefinition struct {
	category   toolCategory
	definition server.ServerTool
	readonly   bool
}

func (s *Neo4jMCPServer) toolDependencies() *tools.ToolDependencies {
	return &tools.ToolDependencies{
		DBService:        s.dbService,
		AnalyticsService: s.anService,
		Store:            s.store,
		Loader:           s.loader,
		Pipeline:         s.pipeline,
		Config:           s.config,
	}
}

func (s *Neo4jMCPServer) getEnabledTools() []server.ServerTool {
	var filters []toolFilter
	if s.config != nil && s.config.Neo4j.ReadOnly {
		filters = append(filters, filterWriteTools)
	}
	if s.dbService == nil {
		filters = append(filters, filterNeo4jTools)
	}

	toolDefs := s.getAllToolsDefs(s.toolDependencies())
	for _, filter := range filters {
		toolDefs = filter(toolDefs)
	}

	enabled := make([]server.ServerTool, 0, len(toolDefs))
	for _, toolDef := range toolDefs {
		enabled = append(enabled, toolDef.definition)
	}
	return enabled
}

func filterWriteTools(tools []ToolDefinition) []ToolDefinition {
	readOnly := make([]ToolDefinition, 0, len(tools))
	for _, t := range tools {
		if t.readonly {
			readOnly = append(readOnly, t)
		}
	}
	return readOnly
}

func filterNeo4jTools(tools []ToolDefinition) []ToolDefinition {
	rest := make([]ToolDefinition, 0, len(tools))
	for _, t := range tools {
		if t.category != neo4jCategory {
			rest = append(rest, t)
		}
	}
	return rest
}

func payrollTool(t server.ServerTool) ToolDefinition {
	return ToolDefinition{category: payrollCategory, definition: t, readonly: true}
}

// getAllToolsDefs returns every tool the server knows, before filtering.
func (s *Neo4jMCPServer) getAllToolsDefs(deps *tools.ToolDependencies) []ToolDefinition {
	toolDefs := []ToolDefinition{
		// load-payroll-dataset only replaces in-process state, so it stays in read-only mode
		payrollTool(server.ServerTool{Tool: payroll_fraud.LoadDatasetSpec(), Handler: payroll_fraud.LoadDatasetHandler(deps)}),
		payrollTool(server.ServerTool{Tool: payroll_fraud.SharedAccountRingsSpec(), Handler: payroll_fraud.SharedAccountRingsHandler(deps)}),
		payrollTool(server.ServerTool{Tool: payroll_fraud.SharedDeviceRingsSpec(), Handler: payroll_fraud.SharedDeviceRingsHandler(deps)}),
		payrollTool(server.ServerTool{Tool: payroll_fraud.IdentityScanSpec(), Handler: payroll_fraud.IdentityScanHandler(deps)}),
		payrollTool(server.ServerTool{Tool: payroll_fraud.LivingDeadSpec(), Handler: payroll_fraud.LivingDeadHandler(deps)}),
		payrollTool(server.ServerTool{Tool: payroll_fraud.DoubleDippingSpec(), Handler: payroll_fraud.DoubleDippingHandler(deps)}),
		payrollTool(server.ServerTool{Tool: payroll_fraud.SalaryCeilingSpec(), Handler: payroll_fraud.SalaryCeilingHandler(deps)}),
		payrollTool(server.ServerTool{Tool: payroll_fraud.AllowanceRatioSpec(), Handler: payroll_fraud.AllowanceRatioHandler(deps)}),
		payrollTool(server.ServerTool{Tool: payroll_fraud.ExportViewSpec(), Handler: payroll_fraud.ExportViewHandler(deps)}),
		payrollTool(server.ServerTool{Tool: payroll_fraud.ScoreAnomaliesSpec(), Handler: payroll_fraud.ScoreAnomaliesHandler(deps)}),
		payrollTool(server.ServerTool{Tool: payroll_fraud.RunAuditSpec(), Handler: payroll_fraud.RunAuditHandler(deps)}),

		// Neo4j Category/Section
		{
			category: neo4jCategory,
			definition: server.ServerTool{
				Tool:    payroll_fraud.SyncGraphSpec(),
				Handler: payroll_fraud.SyncGraphHandler(deps),
			},
			readonly: false,
		},
		{
			category: neo4jCategory,
			definition: server.ServerTool{
				Tool:    payroll_fraud.EmployeeProfileSpec(),
				Handler: payroll_fraud.EmployeeProfileHandler(deps),
			},
			readonly: true,
		},
		{
			category: neo4jCategory,
			definition: server.ServerTool{
				Tool:    payroll_fraud.GraphModelSpec(),
				Handler: payroll_fraud.GraphModelHandler(deps),
			},
			readonly: true,
		},
		{
			category: neo4jCategory,
			definition: server.ServerTool{
				Tool:    payroll_fraud.ReadCypherSpec(),
				Handler: payroll_fraud.ReadCypherHandler(deps),
			},
			readonly: true,
		},
	}

	return append(toolDefs, s.loadDynamicTools(deps)...)
}

// loadDynamicTools loads the YAML guidance tools. A broken definition disables all of them
// rather than failing the server.
func (s *Neo4jMCPServer) loadDynamicTools(deps *tools.ToolDependencies) []ToolDefinition {
	registry := dynamic.NewToolRegistry(dynamicConfigDir)
	if err := registry.LoadTools(); err != nil {
		slog.Error("failed to load dynamic tools", "error", err)
		return []ToolDefinition{}
	}
	if registry.GetToolCount() == 0 {
		slog.Info("no dynamic tools found in config directory")
		return []ToolDefinition{}
	}

	serverTools := registry.GetServerTools(deps)
	toolDefs := make([]ToolDefinition, 0, len(serverTools))
	for _, serverTool := range serverTools {
		toolDefs = append(toolDefs, ToolDefinition{
			category:   dynamicCategory,
			definition: serverTool,
			readonly:   true,
		})
	}
	for _, category := range registry.ListCategories() {
		slog.Debug("dynamic tool category", "category", category, "tools", len(registry.GetToolsByCategory(category)))
	}
	slog.Info("loaded dynamic tools", "count", len(toolDefs))
	return toolDefs
}

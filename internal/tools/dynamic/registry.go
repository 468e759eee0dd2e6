package dynamic

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/tools"
)

// ToolRegistry holds the guidance tools loaded from YAML.
type ToolRegistry struct {
	configDir string
	configs   []*ToolConfig
}

func NewToolRegistry(configDir string) *ToolRegistry {
	return &ToolRegistry{configDir: configDir}
}

// LoadTools reads every tool definition, replacing anything loaded before.
func (r *ToolRegistry) LoadTools() error {
	configs, err := WalkConfigDirectory(r.configDir)
	if err != nil {
		return fmt.Errorf("failed to load tools from config directory: %w", err)
	}
	r.configs = configs
	slog.Info("loaded guidance tools", "count", len(configs), "configDir", r.configDir)
	return nil
}

func (r *ToolRegistry) GetToolCount() int {
	return len(r.configs)
}

// GetServerTools turns each loaded config into a read-only MCP tool.
func (r *ToolRegistry) GetServerTools(deps *tools.ToolDependencies) []server.ServerTool {
	serverTools := make([]server.ServerTool, 0, len(r.configs))
	for _, config := range r.configs {
		serverTools = append(serverTools, buildServerTool(config, deps))
	}
	return serverTools
}

func buildServerTool(config *ToolConfig, deps *tools.ToolDependencies) server.ServerTool {
	title := config.Title
	if title == "" {
		title = config.Name
	}

	mcpTool := mcp.NewTool(config.Name,
		mcp.WithDescription(buildEnrichedDescription(config)),
		mcp.WithTitleAnnotation(title),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
	slog.Debug("built guidance tool", "name", config.Name, "category", config.Category)

	return server.ServerTool{
		Tool:    mcpTool,
		Handler: NewDynamicHandler(config, deps),
	}
}

func (r *ToolRegistry) GetToolsByCategory(category string) []*ToolConfig {
	var out []*ToolConfig
	for _, config := range r.configs {
		if config.Category == category {
			out = append(out, config)
		}
	}
	return out
}

// ListCategories returns the distinct categories, sorted.
func (r *ToolRegistry) ListCategories() []string {
	seen := make(map[string]bool)
	var categories []string
	for _, config := range r.configs {
		if !seen[config.Category] {
			seen[config.Category] = true
			categories = append(categories, config.Category)
		}
	}
	sort.Strings(categories)
	return categories
}

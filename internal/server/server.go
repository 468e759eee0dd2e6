package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mkd-neo4j/neo4j-mcp-payroll/docs"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/analytics"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/anomaly"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/config"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/database"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/graph"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/payroll"
)

const serverName = "neo4j-mcp-payroll"

const instructions = `Payroll fraud detection over a CSV payroll extract.
Start with load-payroll-dataset, then run-payroll-audit for an overview and the scan tools to drill down.
The payroll-audit-playbook prompt describes the full workflow.`

// Neo4jMCPServer carries the MCP server, the in-memory payroll snapshot and the optional Neo4j connection.
type Neo4jMCPServer struct {
	MCPServer *server.MCPServer
	config    *config.Config
	version   string

	// dbService is nil when no Neo4j URI is configured; the Neo4j tools are then not registered.
	dbService database.Service
	anService analytics.Service

	store    *graph.Store
	loader   *payroll.Loader
	pipeline *anomaly.Pipeline
}

func NewNeo4jMCPServer(version string, cfg *config.Config, dbService database.Service, anService analytics.Service) *Neo4jMCPServer {
	mcpServer := server.NewMCPServer(
		serverName,
		version,
		server.WithToolCapabilities(true),
		server.WithPromptCapabilities(false),
		server.WithInstructions(instructions),
		server.WithRecovery(),
	)

	return &Neo4jMCPServer{
		MCPServer: mcpServer,
		config:    cfg,
		version:   version,
		dbService: dbService,
		anService: anService,
		store:     graph.NewStore(graph.WithSampleSize(cfg.Graph.SampleSize)),
		loader:    payroll.NewLoader(),
		pipeline:  anomaly.New(cfg.AnomalyPipeline()),
	}
}

// Start prepares the server and serves MCP over stdio until the client disconnects.
func (s *Neo4jMCPServer) Start(ctx context.Context) error {
	if err := s.prepare(ctx); err != nil {
		return err
	}
	slog.Info("starting MCP server on stdio", "name", serverName, "version", s.version)
	return server.ServeStdio(s.MCPServer)
}

// prepare verifies Neo4j, preloads the configured dataset and registers tools and prompts.
func (s *Neo4jMCPServer) prepare(ctx context.Context) error {
	if s.dbService != nil {
		if err := s.dbService.VerifyConnectivity(ctx); err != nil {
			return fmt.Errorf("failed to verify database connectivity: %w", err)
		}
		slog.Info("connected to neo4j", "database", s.dbService.GetDatabaseName())
	}

	if err := s.preloadDataset(); err != nil {
		return err
	}

	toolCount := s.registerTools()
	s.registerPrompts()

	s.anService.EmitEvent(s.anService.NewStartupEvent(analytics.StartupEventInfo{
		Version:       s.version,
		ReadOnly:      s.config.Neo4j.ReadOnly,
		ToolCount:     toolCount,
		DatasetLoaded: s.store.Loaded(),
	}))
	return nil
}

// preloadDataset builds the snapshot from dataset.path so tools work without an explicit load.
func (s *Neo4jMCPServer) preloadDataset() error {
	path := s.config.Dataset.Path
	if path == "" {
		return nil
	}

	ds, err := s.loader.LoadFile(path)
	if err != nil {
		return fmt.Errorf("failed to preload dataset: %w", err)
	}
	if _, err := s.store.Build(ds); err != nil {
		return fmt.Errorf("failed to preload dataset: %w", err)
	}
	s.anService.EmitEvent(s.anService.NewDatasetLoadedEvent(ds.Len(), len(ds.Warnings)))
	slog.Info("preloaded payroll dataset", "path", path, "records", ds.Len(), "warnings", len(ds.Warnings))
	return nil
}

func (s *Neo4jMCPServer) registerPrompts() {
	prompt := mcp.NewPrompt("payroll-audit-playbook",
		mcp.WithPromptDescription("Step-by-step guidance for running a payroll fraud audit with these tools and reporting the findings."),
	)
	s.MCPServer.AddPrompt(prompt, func(_ context.Context, _ mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		return mcp.NewGetPromptResult(
			"Payroll audit playbook",
			[]mcp.PromptMessage{
				mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(docs.AuditPlaybookPrompt)),
			},
		), nil
	})
}

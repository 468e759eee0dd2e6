//go:build integration

package helpers

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/analytics"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/anomaly"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/config"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/database"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/graph"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/payroll"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/tools"
)

type handlerFunc = func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

// TestContext wires real tool dependencies against the shared Neo4j container.
type TestContext struct {
	T       *testing.T
	Ctx     context.Context
	Service database.Service
	Deps    *tools.ToolDependencies
}

func NewTestContext(t *testing.T, driver neo4j.DriverWithContext) *TestContext {
	t.Helper()

	svc, err := database.NewNeo4jService(driver, "neo4j")
	if err != nil {
		t.Fatalf("failed to create database service: %v", err)
	}

	cfg := config.Defaults()
	return &TestContext{
		T:       t,
		Ctx:     context.Background(),
		Service: svc,
		Deps: &tools.ToolDependencies{
			DBService:        svc,
			AnalyticsService: analytics.NewService(),
			Store:            graph.NewStore(),
			Loader:           payroll.NewLoader(),
			Pipeline:         anomaly.New(cfg.AnomalyPipeline()),
			Config:           cfg,
		},
	}
}

// WriteCSV stores content in a temp file and returns its path.
func (tc *TestContext) WriteCSV(content string) string {
	tc.T.Helper()
	path := filepath.Join(tc.T.TempDir(), "payroll.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		tc.T.Fatalf("failed to write csv: %v", err)
	}
	return path
}

// Invoke calls handler and returns whatever it produced, error results included.
func (tc *TestContext) Invoke(handler handlerFunc, args map[string]any) *mcp.CallToolResult {
	tc.T.Helper()
	request := mcp.CallToolRequest{}
	request.Params.Arguments = args

	res, err := handler(tc.Ctx, request)
	if err != nil {
		tc.T.Fatalf("handler returned error: %v", err)
	}
	if res == nil {
		tc.T.Fatal("handler returned nil result")
	}
	return res
}

// CallTool is Invoke that fails the test on an error result.
func (tc *TestContext) CallTool(handler handlerFunc, args map[string]any) *mcp.CallToolResult {
	tc.T.Helper()
	res := tc.Invoke(handler, args)
	if res.IsError {
		tc.T.Fatalf("tool returned error: %s", Text(res))
	}
	return res
}

func (tc *TestContext) ParseJSONResponse(res *mcp.CallToolResult, v any) {
	tc.T.Helper()
	if err := json.Unmarshal([]byte(Text(res)), v); err != nil {
		tc.T.Fatalf("failed to parse response %q: %v", Text(res), err)
	}
}

// Count runs a read query returning a single integer column named n.
func (tc *TestContext) Count(cypher string) int64 {
	tc.T.Helper()
	records, err := tc.Service.ExecuteReadQuery(tc.Ctx, cypher, nil)
	if err != nil {
		tc.T.Fatalf("count query failed: %v", err)
	}
	if len(records) != 1 {
		tc.T.Fatalf("count query returned %d records", len(records))
	}
	n, _, err := neo4j.GetRecordValue[int64](records[0], "n")
	if err != nil {
		tc.T.Fatalf("count query has no n column: %v", err)
	}
	return n
}

// Text returns the first text content of a tool result.
func Text(res *mcp.CallToolResult) string {
	if len(res.Content) == 0 {
		return ""
	}
	if c, ok := res.Content[0].(mcp.TextContent); ok {
		return c.Text
	}
	return ""
}

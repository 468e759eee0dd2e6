package dynamic

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	analytics "github.com/mkd-neo4j/neo4j-mcp-payroll/internal/analytics/mocks"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/graph"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/payroll"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/tools"
)

var ghostPlaybook = &ToolConfig{
	Name:        "investigate-ghost-families",
	Description: "Shared account playbook.",
	Intent:      "Use for ghost workers.",
	Indicators: []IndicatorConfig{
		{Entity: "BankAccount", SharedElements: []string{"accountNumber"}, Signal: "Paid for several employees"},
	},
	ReferenceCypher: "MATCH (e:Employee)-[:DEPOSITS_TO]->(b) RETURN b",
	ReferenceSchema: &ReferenceSchemaConfig{Labels: []string{"Employee", "BankAccount"}},
	Parameters:      []ParameterConfig{{Name: "min_sharers", Type: "integer", Default: 2}},
	LiveFindings:    []string{"ghost_families", "device_rings"},
	FollowUpTools:   []string{"find-shared-account-rings"},
	Category:        "payroll",
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	content, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return content.Text
}

func TestBuildEnrichedDescription(t *testing.T) {
	out := buildEnrichedDescription(ghostPlaybook)

	assert.True(t, strings.HasPrefix(out, "Shared account playbook."))
	assert.Contains(t, out, "## Intent\nUse for ghost workers.")
	assert.Contains(t, out, "- **BankAccount**: Paid for several employees\n  Shared: accountNumber")
	assert.Contains(t, out, "```cypher\nMATCH (e:Employee)-[:DEPOSITS_TO]->(b) RETURN b\n```")
	assert.Contains(t, out, "- Labels: Employee, BankAccount")
	assert.Contains(t, out, "- `$min_sharers` (integer) [default: 2]")
	assert.Contains(t, out, "## Next Steps\n- find-shared-account-rings")
	assert.NotContains(t, out, "Current Snapshot")
}

func TestDynamicHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	analyticsService := analytics.NewMockService(ctrl)
	analyticsService.EXPECT().NewToolsEvent("investigate-ghost-families").AnyTimes()
	analyticsService.EXPECT().EmitEvent(gomock.Any()).AnyTimes()

	store := graph.NewStore()
	deps := &tools.ToolDependencies{AnalyticsService: analyticsService, Store: store}
	handler := NewDynamicHandler(ghostPlaybook, deps)

	t.Run("before a dataset is loaded", func(t *testing.T) {
		result, err := handler(context.Background(), mcp.CallToolRequest{})
		require.NoError(t, err)
		assert.False(t, result.IsError)
		assert.Contains(t, resultText(t, result), "No payroll dataset is loaded")
	})

	t.Run("with live counts", func(t *testing.T) {
		csv := "Employee_ID,Full_Name,Bank_Account,Device_ID\n" +
			"E1,Jane Wanjiru,ACC-1,DEV-1\n" +
			"E2,John Otieno,ACC-1,DEV-2\n" +
			"E3,Mary Achieng,ACC-3,DEV-3\n"
		ds, err := payroll.NewLoader().Load(strings.NewReader(csv))
		require.NoError(t, err)
		_, err = store.Build(ds)
		require.NoError(t, err)

		result, err := handler(context.Background(), mcp.CallToolRequest{})
		require.NoError(t, err)
		text := resultText(t, result)
		assert.Contains(t, text, "## Current Snapshot\n")
		assert.Contains(t, text, "3 records")
		assert.Contains(t, text, "- ghost_families: 1\n")
		assert.Contains(t, text, "- device_rings: 0\n")
	})
}

func TestGetServerTools(t *testing.T) {
	r := &ToolRegistry{configs: []*ToolConfig{ghostPlaybook, {Name: "trace-payment-network", Description: "x", Category: "investigation"}}}

	serverTools := r.GetServerTools(&tools.ToolDependencies{})
	require.Len(t, serverTools, 2)
	assert.Equal(t, "investigate-ghost-families", serverTools[0].Tool.Name)
	require.NotNil(t, serverTools[0].Tool.Annotations.ReadOnlyHint)
	assert.True(t, *serverTools[0].Tool.Annotations.ReadOnlyHint)
	assert.Equal(t, "trace-payment-network", serverTools[1].Tool.Annotations.Title)

	assert.Equal(t, []string{"investigation", "payroll"}, r.ListCategories())
	assert.Len(t, r.GetToolsByCategory("payroll"), 1)
	assert.Empty(t, r.GetToolsByCategory("general"))
}

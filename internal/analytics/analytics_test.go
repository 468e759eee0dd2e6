package analytics

import (
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/metrics"
)

func toolCalls(t *testing.T, tool string) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, metrics.ToolCallsTotal.WithLabelValues(tool).Write(&m))
	return m.GetCounter().GetValue()
}

func TestService_EmitEvent(t *testing.T) {
	svc := NewService()

	t.Run("tool events count per tool", func(t *testing.T) {
		before := toolCalls(t, "scan-living-dead")
		svc.EmitEvent(svc.NewToolsEvent("scan-living-dead"))
		assert.Equal(t, before+1, toolCalls(t, "scan-living-dead"))
	})

	t.Run("disabled service drops events", func(t *testing.T) {
		svc.Disable()
		defer svc.Enable()

		before := toolCalls(t, "scan-living-dead")
		svc.EmitEvent(svc.NewToolsEvent("scan-living-dead"))
		assert.Equal(t, before, toolCalls(t, "scan-living-dead"))
	})
}

func TestService_Events(t *testing.T) {
	svc := NewService()

	startup := svc.NewStartupEvent(StartupEventInfo{Version: "1.0.0", ReadOnly: true, ToolCount: 13})
	assert.Equal(t, eventStartup, startup.Event)
	assert.Equal(t, true, startup.Properties["read_only"])
	assert.Equal(t, 13, startup.Properties["tool_count"])

	loaded := svc.NewDatasetLoadedEvent(1000, 3)
	assert.Equal(t, eventDatasetLoaded, loaded.Event)
	assert.Equal(t, 1000, loaded.Properties["records"])

	synced := svc.NewGraphSyncedEvent(42)
	assert.Equal(t, eventGraphSynced, synced.Event)
	assert.Equal(t, 42, synced.Properties["employees"])
}

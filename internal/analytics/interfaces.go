package analytics

//go:generate mockgen -destination=mocks/mock_analytics.go -package=analytics_mocks github.com/mkd-neo4j/neo4j-mcp-payroll/internal/analytics Service

// Service
type Service interface {
	Disable()
	Enable()
	EmitEvent(event TrackEvent)
	NewDatasetLoadedEvent(records, warnings int) TrackEvent
	NewGraphSyncedEvent(employees int) TrackEvent
	NewStartupEvent(startupEventInfo StartupEventInfo) TrackEvent
	NewToolsEvent(toolsUsed string) TrackEvent
}

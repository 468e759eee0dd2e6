package analytics

import (
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/metrics"
)

const (
	eventStartup       = "MCP_STARTUP"
	eventToolUsed      = "TOOL_USED"
	eventDatasetLoaded = "DATASET_LOADED"
	eventGraphSynced   = "GRAPH_SYNCED"
)

// TrackEvent is a single usage event.
type TrackEvent struct {
	Event      string         `json:"event"`
	Properties map[string]any `json:"properties"`
}

// StartupEventInfo describes the server configuration at startup.
type StartupEventInfo struct {
	Version       string
	ReadOnly      bool
	ToolCount     int
	DatasetLoaded bool
}

type service struct {
	enabled atomic.Bool
}

// NewService returns an enabled Service that records events as Prometheus counters.
// Events never leave the process.
func NewService() Service {
	s := &service{}
	s.enabled.Store(true)
	return s
}

func (s *service) Disable() {
	s.enabled.Store(false)
	slog.Info("usage analytics disabled")
}

func (s *service) Enable() {
	s.enabled.Store(true)
}

func (s *service) EmitEvent(event TrackEvent) {
	if !s.enabled.Load() {
		return
	}

	switch event.Event {
	case eventToolUsed:
		tool, _ := event.Properties["tools_used"].(string)
		metrics.RecordToolCall(tool)
	default:
		metrics.RecordServerEvent(strings.ToLower(event.Event))
	}
	slog.Debug("analytics event", "event", event.Event, "properties", event.Properties)
}

func (s *service) NewToolsEvent(toolsUsed string) TrackEvent {
	return TrackEvent{
		Event:      eventToolUsed,
		Properties: map[string]any{"tools_used": toolsUsed},
	}
}

func (s *service) NewStartupEvent(info StartupEventInfo) TrackEvent {
	return TrackEvent{
		Event: eventStartup,
		Properties: map[string]any{
			"version":        info.Version,
			"read_only":      info.ReadOnly,
			"tool_count":     info.ToolCount,
			"dataset_loaded": info.DatasetLoaded,
		},
	}
}

func (s *service) NewDatasetLoadedEvent(records, warnings int) TrackEvent {
	return TrackEvent{
		Event:      eventDatasetLoaded,
		Properties: map[string]any{"records": records, "warnings": warnings},
	}
}

func (s *service) NewGraphSyncedEvent(employees int) TrackEvent {
	return TrackEvent{
		Event:      eventGraphSynced,
		Properties: map[string]any{"employees": employees},
	}
}

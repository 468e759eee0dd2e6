package server

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/analytics"
	analytics_mocks "github.com/mkd-neo4j/neo4j-mcp-payroll/internal/analytics/mocks"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/config"
	database_mocks "github.com/mkd-neo4j/neo4j-mcp-payroll/internal/database/mocks"
)

const payrollCSV = `Employee_ID,Full_Name,Bank_Account,Device_ID
E1,Jane Wanjiru,ACC-1,DEV-1
E2,John Otieno,ACC-1,DEV-2
`

func TestPrepare(t *testing.T) {
	chdirProjectRoot(t)

	t.Run("preloads the configured dataset", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "payroll.csv")
		require.NoError(t, os.WriteFile(path, []byte(payrollCSV), 0o600))

		cfg := config.Defaults()
		cfg.Dataset.Path = path

		ctrl := gomock.NewController(t)
		anService := analytics_mocks.NewMockService(ctrl)
		anService.EXPECT().NewDatasetLoadedEvent(2, gomock.Any()).Return(analytics.TrackEvent{Event: "DATASET_LOADED"})
		anService.EXPECT().NewStartupEvent(gomock.Any()).DoAndReturn(func(info analytics.StartupEventInfo) analytics.TrackEvent {
			assert.True(t, info.DatasetLoaded)
			assert.Equal(t, "test", info.Version)
			assert.Positive(t, info.ToolCount)
			return analytics.TrackEvent{Event: "MCP_STARTUP"}
		})
		anService.EXPECT().EmitEvent(gomock.Any()).Times(2)

		s := NewNeo4jMCPServer("test", cfg, nil, anService)
		require.NoError(t, s.prepare(context.Background()))
		assert.True(t, s.store.Loaded())
	})

	t.Run("unreadable dataset fails startup", func(t *testing.T) {
		cfg := config.Defaults()
		cfg.Dataset.Path = filepath.Join(t.TempDir(), "missing.csv")

		s := NewNeo4jMCPServer("test", cfg, nil, analytics_mocks.NewMockService(gomock.NewController(t)))
		err := s.prepare(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to preload dataset")
	})

	t.Run("unreachable neo4j fails startup", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		db := database_mocks.NewMockService(ctrl)
		db.EXPECT().VerifyConnectivity(gomock.Any()).Return(errors.New("connection refused"))

		s := NewNeo4jMCPServer("test", config.Defaults(), db, analytics_mocks.NewMockService(ctrl))
		err := s.prepare(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

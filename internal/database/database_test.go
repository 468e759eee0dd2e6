package database

import (
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNeo4jService_NilDriver(t *testing.T) {
	_, err := NewNeo4jService(nil, "neo4j")
	assert.Error(t, err)
}

func TestRecordsToJSON(t *testing.T) {
	t.Run("records become objects", func(t *testing.T) {
		out, err := RecordsToJSON([]*neo4j.Record{
			{Keys: []string{"employeeId", "sharers"}, Values: []any{"E1", int64(3)}},
		})
		require.NoError(t, err)
		assert.JSONEq(t, `[{"employeeId":"E1","sharers":3}]`, out)
	})

	t.Run("no records is an empty array", func(t *testing.T) {
		out, err := RecordsToJSON(nil)
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, out)
	})
}

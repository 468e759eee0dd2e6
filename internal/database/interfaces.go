package database

//go:generate mockgen -destination=mocks/mock_database.go -package=database_mocks github.com/mkd-neo4j/neo4j-mcp-payroll/internal/database Service

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// QueryExecutor runs parameterised Cypher.
type QueryExecutor interface {
	ExecuteReadQuery(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error)
	ExecuteWriteQuery(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error)
}

// QueryClassifier inspects a query plan without running it.
type QueryClassifier interface {
	// CheckReadOnly returns an error unless the database plans cypher as a read-only statement.
	CheckReadOnly(ctx context.Context, cypher string, params map[string]any) error
}

// RecordFormatter renders driver records for tool output.
type RecordFormatter interface {
	Neo4jRecordsToJSON(records []*neo4j.Record) (string, error)
}

// Service is everything the tools need from Neo4j.
type Service interface {
	QueryExecutor
	QueryClassifier
	RecordFormatter
	GetDatabaseName() string
	VerifyConnectivity(ctx context.Context) error
}

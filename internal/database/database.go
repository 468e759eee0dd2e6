package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jService implements Service on top of the official driver.
type Neo4jService struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewNeo4jService wraps an existing driver. The caller owns the driver and closes it.
func NewNeo4jService(driver neo4j.DriverWithContext, database string) (*Neo4jService, error) {
	if driver == nil {
		return nil, fmt.Errorf("driver cannot be nil")
	}
	return &Neo4jService{driver: driver, database: database}, nil
}

// NewDriver creates a driver with basic auth.
func NewDriver(uri, username, password string) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	return driver, nil
}

// VerifyConnectivity checks that the database is reachable.
func (s *Neo4jService) VerifyConnectivity(ctx context.Context) error {
	if err := s.driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("failed to verify database connectivity: %w", err)
	}
	return nil
}

// ExecuteReadQuery executes a read-only Cypher query and returns raw records.
func (s *Neo4jService) ExecuteReadQuery(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	res, err := neo4j.ExecuteQuery(ctx, s.driver, cypher, params, neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.database),
		neo4j.ExecuteQueryWithReadersRouting())
	if err != nil {
		wrappedErr := fmt.Errorf("failed to execute read query: %w", err)
		slog.Error("error executing read query", "error", wrappedErr)
		return nil, wrappedErr
	}
	return res.Records, nil
}

// ExecuteWriteQuery executes a Cypher query against the writer and returns raw records.
func (s *Neo4jService) ExecuteWriteQuery(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	res, err := neo4j.ExecuteQuery(ctx, s.driver, cypher, params, neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.database),
		neo4j.ExecuteQueryWithWritersRouting())
	if err != nil {
		wrappedErr := fmt.Errorf("failed to execute write query: %w", err)
		slog.Error("error executing write query", "error", wrappedErr)
		return nil, wrappedErr
	}
	return res.Records, nil
}

// CheckReadOnly plans the query with EXPLAIN and rejects anything that is not a pure read.
func (s *Neo4jService) CheckReadOnly(ctx context.Context, cypher string, params map[string]any) error {
	res, err := neo4j.ExecuteQuery(ctx, s.driver, "EXPLAIN "+cypher, params, neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.database),
		neo4j.ExecuteQueryWithReadersRouting())
	if err != nil {
		return fmt.Errorf("failed to explain query: %w", err)
	}
	if res.Summary.StatementType() != neo4j.StatementTypeReadOnly {
		return fmt.Errorf("query is not read-only (statement type %v)", res.Summary.StatementType())
	}
	return nil
}

// Neo4jRecordsToJSON converts records into an indented JSON array of key/value objects.
func (s *Neo4jService) Neo4jRecordsToJSON(records []*neo4j.Record) (string, error) {
	return RecordsToJSON(records)
}

// RecordsToJSON is the formatter shared by Neo4jService and tests.
func RecordsToJSON(records []*neo4j.Record) (string, error) {
	results := make([]map[string]any, 0, len(records))
	for _, record := range records {
		results = append(results, record.AsMap())
	}

	formattedResponse, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format records as JSON: %w", err)
	}
	return string(formattedResponse), nil
}

func (s *Neo4jService) GetDatabaseName() string {
	return s.database
}

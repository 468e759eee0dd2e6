//go:build integration

package helpers

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/database"
)

const (
	neo4jImage    = "neo4j:5-community"
	neo4jUser     = "neo4j"
	neo4jPassword = "payroll-test"
	boltPort      = "7687/tcp"
)

// DBServer is a throwaway Neo4j container shared by the integration tests.
type DBServer struct {
	container testcontainers.Container
	driver    neo4j.DriverWithContext
}

// StartNeo4j starts the container and waits until bolt accepts connections.
func StartNeo4j(ctx context.Context) (*DBServer, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        neo4jImage,
			ExposedPorts: []string{boltPort},
			Env: map[string]string{
				"NEO4J_AUTH": neo4jUser + "/" + neo4jPassword,
			},
			WaitingFor: wait.ForLog("Started.").WithStartupTimeout(3 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start neo4j container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, boltPort)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get bolt port: %w", err)
	}

	driver, err := database.NewDriver(fmt.Sprintf("bolt://%s:%s", host, port.Port()), neo4jUser, neo4jPassword)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	// the log line can precede bolt readiness by a moment
	deadline := time.Now().Add(30 * time.Second)
	for {
		err = driver.VerifyConnectivity(ctx)
		if err == nil || time.Now().After(deadline) {
			break
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		_ = driver.Close(ctx)
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("neo4j never became reachable: %w", err)
	}

	return &DBServer{container: container, driver: driver}, nil
}

func (s *DBServer) GetDriver() neo4j.DriverWithContext {
	return s.driver
}

// Stop closes the driver and removes the container.
func (s *DBServer) Stop(ctx context.Context) {
	_ = s.driver.Close(ctx)
	_ = s.container.Terminate(ctx)
}

//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/mkd-neo4j/neo4j-mcp-payroll/test/integration/helpers"
)

var dbs *helpers.DBServer

func TestMain(m *testing.M) {
	ctx := context.Background()

	var err error
	dbs, err = helpers.StartNeo4j(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "integration setup failed: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	dbs.Stop(ctx)
	os.Exit(code)
}

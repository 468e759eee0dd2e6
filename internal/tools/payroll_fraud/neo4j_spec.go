package payroll_fraud

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// SyncGraphInput defines the input parameters for sync-payroll-graph.
type SyncGraphInput struct {
	ClearBeforeLoad *bool `json:"clearBeforeLoad,omitempty" jsonschema:"description=Delete existing Employee/BankAccount/Device/Department nodes first. Defaults to export.clear_before_load."`
	BatchSize       int   `json:"batchSize,omitempty" validate:"gte=0,lte=50000" jsonschema:"description=Rows per UNWIND batch. Defaults to export.batch_size (1000)."`
}

func SyncGraphSpec() mcp.Tool {
	return mcp.NewTool("sync-payroll-graph",
		mcp.WithDescription(`Write the loaded payroll dataset into Neo4j as a property graph.

Creates (or updates) the following model with MERGE, in batches:
- (:Employee {employeeId, name, nationalId, taxPin, jobGroup, status, basicSalary, grossSalary, age, fraudType})
- (:Employee)-[:DEPOSITS_TO]->(:BankAccount {accountNumber, bankName})
- (:Employee)-[:USES_DEVICE]->(:Device {deviceId})
- (:Employee)-[:WORKS_AT]->(:Department {name, ministry})

Indexes on the identifying properties are created first. Missing accounts, devices or departments
simply produce no relationship. Once synced, use get-employee-profile and read-payroll-cypher to explore
the graph in Neo4j.`),
		mcp.WithInputSchema[SyncGraphInput](),
		mcp.WithTitleAnnotation("Sync Payroll Graph to Neo4j"),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

// EmployeeProfileInput defines the input parameters for get-employee-profile.
type EmployeeProfileInput struct {
	EmployeeID   string `json:"employeeId" validate:"required" jsonschema:"description=Employee ID to retrieve the profile for (required)"`
	IncludePeers *bool  `json:"includePeers,omitempty" jsonschema:"description=Include employees sharing the same bank account or device. Defaults to true."`
}

func EmployeeProfileSpec() mcp.Tool {
	return mcp.NewTool("get-employee-profile",
		mcp.WithDescription(`Retrieve an employee's profile from the synced Neo4j payroll graph.

Returns:
- base_details: every property of the Employee node;
- banking: bank accounts the salary is deposited to;
- devices: devices the employee clocks in from;
- employment: departments (with ministry) the employee works at;
- peers: co_depositors (other employees paid into the same account) and device_co_users.

Requires sync-payroll-graph to have been run. Missing relationships are returned as empty lists.`),
		mcp.WithInputSchema[EmployeeProfileInput](),
		mcp.WithTitleAnnotation("Get Employee Profile"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

// ReadCypherInput defines the input parameters for read-payroll-cypher.
type ReadCypherInput struct {
	Query  string         `json:"query" validate:"required" jsonschema:"default=MATCH (e:Employee) RETURN e LIMIT 10,description=The read-only Cypher query to execute"`
	Params map[string]any `json:"params,omitempty" jsonschema:"description=Parameters to pass to the Cypher query"`
}

func ReadCypherSpec() mcp.Tool {
	return mcp.NewTool("read-payroll-cypher",
		mcp.WithDescription(`Run a read-only Cypher query against the synced payroll graph.

The query is planned with EXPLAIN first and rejected unless Neo4j classifies it as read-only, so
CREATE, MERGE, SET, DELETE and schema commands are refused. Labels available: Employee, BankAccount,
Device, Department. Relationships: DEPOSITS_TO, USES_DEVICE, WORKS_AT.`),
		mcp.WithInputSchema[ReadCypherInput](),
		mcp.WithTitleAnnotation("Read Payroll Cypher"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

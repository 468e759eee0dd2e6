// Package export pushes a loaded payroll dataset into Neo4j as a property graph.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/database"
	apperrors "github.com/mkd-neo4j/neo4j-mcp-payroll/internal/errors"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/metrics"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/payroll"
)

// DefaultBatchSize is the number of rows sent per UNWIND.
const DefaultBatchSize = 1000

// Indexes are created before the first batch. IF NOT EXISTS keeps them idempotent.
var Indexes = []string{
	"CREATE INDEX employee_id IF NOT EXISTS FOR (e:Employee) ON (e.employeeId)",
	"CREATE INDEX bank_account_number IF NOT EXISTS FOR (b:BankAccount) ON (b.accountNumber)",
	"CREATE INDEX device_id IF NOT EXISTS FOR (d:Device) ON (d.deviceId)",
	"CREATE INDEX department_name IF NOT EXISTS FOR (d:Department) ON (d.name)",
}

const clearQuery = `MATCH (n)
WHERE n:Employee OR n:BankAccount OR n:Device OR n:Department
DETACH DELETE n`

const mergeQuery = `UNWIND $batch AS row
MERGE (e:Employee {employeeId: row.employeeId})
SET e.name = row.name,
    e.nationalId = row.nationalId,
    e.taxPin = row.taxPin,
    e.jobGroup = row.jobGroup,
    e.status = row.status,
    e.basicSalary = row.basicSalary,
    e.grossSalary = row.grossSalary,
    e.age = row.age,
    e.fraudType = row.fraudType
FOREACH (_ IN CASE WHEN row.bankAccount IS NULL THEN [] ELSE [1] END |
    MERGE (b:BankAccount {accountNumber: row.bankAccount})
    ON CREATE SET b.bankName = row.bankName
    MERGE (e)-[:DEPOSITS_TO]->(b))
FOREACH (_ IN CASE WHEN row.deviceId IS NULL THEN [] ELSE [1] END |
    MERGE (d:Device {deviceId: row.deviceId})
    MERGE (e)-[:USES_DEVICE]->(d))
FOREACH (_ IN CASE WHEN row.department IS NULL THEN [] ELSE [1] END |
    MERGE (u:Department {name: row.department})
    ON CREATE SET u.ministry = row.ministry
    MERGE (e)-[:WORKS_AT]->(u))`

// Options controls a sync run.
type Options struct {
	BatchSize       int
	ClearBeforeLoad bool
}

// Summary describes what a sync wrote.
type Summary struct {
	Database  string `json:"database"`
	Employees int    `json:"employees"`
	Batches   int    `json:"batches"`
	Skipped   int    `json:"skipped"`
	Cleared   bool   `json:"cleared"`
	Duration  string `json:"duration"`
}

// Exporter writes datasets through a database.Service.
type Exporter struct {
	db   database.Service
	opts Options
}

// NewExporter returns an exporter. A non-positive batch size falls back to DefaultBatchSize.
func NewExporter(db database.Service, opts Options) *Exporter {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	return &Exporter{db: db, opts: opts}
}

// Sync creates indexes, optionally clears previous payroll nodes and merges every record in batches.
// Rows without an employee id are skipped. The first failing batch aborts the run.
func (e *Exporter) Sync(ctx context.Context, ds *payroll.Dataset) (Summary, error) {
	if e.db == nil {
		return Summary{}, fmt.Errorf("database service is not initialized")
	}
	if ds == nil {
		return Summary{}, fmt.Errorf("failed to sync payroll graph: no dataset")
	}

	start := time.Now()
	summary := Summary{Database: e.db.GetDatabaseName()}

	for _, stmt := range Indexes {
		if _, err := e.db.ExecuteWriteQuery(ctx, stmt, nil); err != nil {
			return summary, fmt.Errorf("failed to create index: %w", err)
		}
	}

	if e.opts.ClearBeforeLoad {
		if _, err := e.db.ExecuteWriteQuery(ctx, clearQuery, nil); err != nil {
			return summary, fmt.Errorf("failed to clear payroll graph: %w", err)
		}
		summary.Cleared = true
	}

	rows := make([]map[string]any, 0, ds.Len())
	for i := range ds.Records {
		r := &ds.Records[i]
		if payroll.IsMissing(r.EmployeeID) {
			summary.Skipped++
			continue
		}
		rows = append(rows, toRow(r))
	}

	for _, batch := range chunk(rows, e.opts.BatchSize) {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("failed to sync payroll graph: %w", err)
		}
		_, err := e.db.ExecuteWriteQuery(ctx, mergeQuery, map[string]any{"batch": batch})
		metrics.RecordExportBatch(err)
		if err != nil {
			return summary, apperrors.NewDatabaseError(fmt.Sprintf("failed to write batch %d", summary.Batches+1)).
				WithCause(err).
				WithDetails(map[string]any{"written": summary.Employees})
		}
		summary.Batches++
		summary.Employees += len(batch)
		slog.Debug("payroll batch written", "batch", summary.Batches, "rows", len(batch))
	}

	summary.Duration = time.Since(start).Round(time.Millisecond).String()
	slog.Info("payroll graph synced",
		"database", summary.Database,
		"employees", summary.Employees,
		"batches", summary.Batches,
		"skipped", summary.Skipped)
	return summary, nil
}

// age is nil for rows without a usable age so the property is removed rather than set to 0.
func age(r *payroll.Record) any {
	if !r.HasAge {
		return nil
	}
	return r.Age
}

func toRow(r *payroll.Record) map[string]any {
	return map[string]any{
		"employeeId":  r.EmployeeID,
		"name":        r.FullName,
		"nationalId":  r.NationalID,
		"taxPin":      r.TaxPIN,
		"jobGroup":    r.JobGroup,
		"status":      r.EmploymentStatus,
		"basicSalary": r.BasicSalary.InexactFloat64(),
		"grossSalary": r.GrossSalary.InexactFloat64(),
		"age":         age(r),
		"fraudType":   r.FraudType,
		"bankAccount": optional(r.BankAccount),
		"bankName":    r.BankName,
		"deviceId":    optional(r.DeviceID),
		"department":  optional(r.Department),
		"ministry":    r.Ministry,
	}
}

// optional maps coercion defaults to nil so the merge query skips the relationship.
func optional(v string) any {
	if payroll.IsMissing(v) {
		return nil
	}
	return v
}

func chunk(rows []map[string]any, size int) [][]map[string]any {
	var out [][]map[string]any
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		out = append(out, rows[start:end])
	}
	return out
}

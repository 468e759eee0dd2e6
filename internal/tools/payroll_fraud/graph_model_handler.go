package payroll_fraud

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/export"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/tools"
)

// employeeProperties are the Employee properties set by the export merge.
var employeeProperties = []string{
	"name", "nationalId", "taxPin", "jobGroup", "status", "basicSalary", "grossSalary", "age", "fraudType",
}

const labelCountsQuery = `MATCH (n)
WHERE n:Employee OR n:BankAccount OR n:Device OR n:Department
RETURN labels(n)[0] AS name, count(n) AS count`

const relCountsQuery = `MATCH (:Employee)-[r:DEPOSITS_TO|USES_DEVICE|WORKS_AT]->()
RETURN type(r) AS name, count(r) AS count`

type modelNode struct {
	Label      string   `json:"label"`
	Key        string   `json:"key"`
	Properties []string `json:"properties"`
	Count      int64    `json:"count"`
}

type modelRelationship struct {
	Type  string `json:"type"`
	From  string `json:"from"`
	To    string `json:"to"`
	Count int64  `json:"count"`
}

type graphModel struct {
	Database      string              `json:"database"`
	Nodes         []modelNode         `json:"nodes"`
	Relationships []modelRelationship `json:"relationships"`
	Indexes       []string            `json:"indexes"`
}

// payrollGraphModel derives the model from the same hops the profile query walks.
func payrollGraphModel() graphModel {
	m := graphModel{
		Nodes:   []modelNode{{Label: "Employee", Key: "employeeId", Properties: employeeProperties}},
		Indexes: export.Indexes,
	}
	for _, h := range employeeHops {
		props := h.Props
		if props == nil {
			props = []string{}
		}
		m.Nodes = append(m.Nodes, modelNode{Label: h.Label, Key: h.Key, Properties: props})
		m.Relationships = append(m.Relationships, modelRelationship{Type: h.RelType, From: "Employee", To: h.Label})
	}
	return m
}

// GraphModelHandler returns the handler for get-payroll-graph-model.
func GraphModelHandler(deps *tools.ToolDependencies) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGraphModel(ctx, deps)
	}
}

func handleGraphModel(ctx context.Context, deps *tools.ToolDependencies) (*mcp.CallToolResult, error) {
	if res := requireDB(deps); res != nil {
		return res, nil
	}

	deps.AnalyticsService.EmitEvent(deps.AnalyticsService.NewToolsEvent("get-payroll-graph-model"))

	model := payrollGraphModel()
	model.Database = deps.DBService.GetDatabaseName()

	labels, err := readCounts(ctx, deps, labelCountsQuery)
	if err != nil {
		slog.Error("error counting payroll nodes", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	rels, err := readCounts(ctx, deps, relCountsQuery)
	if err != nil {
		slog.Error("error counting payroll relationships", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	for i := range model.Nodes {
		model.Nodes[i].Count = labels[model.Nodes[i].Label]
	}
	for i := range model.Relationships {
		model.Relationships[i].Count = rels[model.Relationships[i].Type]
	}
	return jsonResult(model)
}

// readCounts runs a query returning name and count columns.
func readCounts(ctx context.Context, deps *tools.ToolDependencies, query string) (map[string]int64, error) {
	records, err := deps.DBService.ExecuteReadQuery(ctx, query, nil)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(records))
	for _, record := range records {
		name, _, err := neo4j.GetRecordValue[string](record, "name")
		if err != nil {
			return nil, err
		}
		count, _, err := neo4j.GetRecordValue[int64](record, "count")
		if err != nil {
			return nil, err
		}
		counts[name] = count
	}
	return counts, nil
}

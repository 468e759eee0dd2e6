package graph

import (
	"sort"

	"github.com/katalvlaran/lvlath/graph/core"

	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/payroll"
)

// Node ids carry a per-kind prefix, so an employee id can never collide with an account or device.
const (
	employeePrefix = "emp_"
	bankPrefix     = "bank_"
	devicePrefix   = "dev_"
)

// Graph is an immutable directed graph built from one payroll dataset. Topology lives in an
// lvlath core graph; nodes and edges are also indexed in insertion order, because core iterates
// its maps in random order and ring tie-breaking and view truncation depend on first sight.
type Graph struct {
	adj   *core.Graph
	nodes []Node
	index map[string]int
	edges []Edge
	// preds holds, per target node, its employee predecessors in employee insertion order.
	preds map[int][]int
}

func newGraph(sizeHint int) *Graph {
	return &Graph{
		adj:   core.NewGraph(true, false),
		nodes: make([]Node, 0, sizeHint*3),
		index: make(map[string]int, sizeHint*3),
		edges: make([]Edge, 0, sizeHint*2),
		preds: make(map[int][]int),
	}
}

// build ingests every record. Rows without a usable account or device still produce their
// employee node; the missing edge is counted in skipped.
func build(ds *payroll.Dataset) (g *Graph, skipped int) {
	g = newGraph(ds.Len())

	for _, rec := range ds.Records {
		emp := g.upsert(Node{
			ID:        employeePrefix + rec.EmployeeID,
			Key:       rec.EmployeeID,
			Name:      rec.FullName,
			Kind:      KindEmployee,
			Group:     employeeGroup,
			Weight:    employeeWeight,
			FraudType: rec.FraudType,
		})

		if payroll.IsMissing(rec.BankAccount) {
			skipped++
		} else {
			bank := g.upsert(Node{
				ID:     bankPrefix + rec.BankAccount,
				Key:    rec.BankAccount,
				Name:   bankDisplayName(rec.BankName, rec.BankAccount),
				Kind:   KindBankAccount,
				Group:  bankGroup,
				Weight: bankWeight,
			})
			g.link(emp, bank, RelDepositsTo)
		}

		if payroll.IsMissing(rec.DeviceID) {
			skipped++
		} else {
			dev := g.upsert(Node{
				ID:     devicePrefix + rec.DeviceID,
				Key:    rec.DeviceID,
				Name:   "Device",
				Kind:   KindDevice,
				Group:  deviceGroup,
				Weight: deviceWeight,
			})
			g.link(emp, dev, RelUsesDevice)
		}
	}

	g.indexPredecessors()
	return g, skipped
}

// upsert returns the index of the node with the same id, creating it if needed.
// An existing node keeps the attributes it was created with.
func (g *Graph) upsert(n Node) int {
	if g.adj.HasVertex(n.ID) {
		return g.index[n.ID]
	}
	g.adj.AddVertex(&core.Vertex{ID: n.ID, Metadata: map[string]interface{}{"kind": string(n.Kind)}})
	g.nodes = append(g.nodes, n)
	i := len(g.nodes) - 1
	g.index[n.ID] = i
	return i
}

// link adds an edge between two existing nodes unless one is already present. The target kind
// fixes the relationship type, so one edge per pair is enough.
func (g *Graph) link(from, to int, rel RelType) bool {
	fromID, toID := g.nodes[from].ID, g.nodes[to].ID
	if g.adj.HasEdge(fromID, toID) {
		return false
	}
	g.adj.AddEdge(fromID, toID, 0)
	g.edges = append(g.edges, Edge{From: from, To: to, Type: rel})
	return true
}

// indexPredecessors inverts the adjacency once per build. Employees are walked in insertion
// order so every target sees its sharers in a stable order.
func (g *Graph) indexPredecessors() {
	for i, n := range g.nodes {
		if n.Kind != KindEmployee {
			continue
		}
		for _, v := range g.adj.Neighbors(n.ID) {
			t := g.index[v.ID]
			g.preds[t] = append(g.preds[t], i)
		}
	}
}

// sharedTargets returns every node of the given kind with at least minSharers distinct employee
// predecessors, stable-sorted by predecessor count descending.
func (g *Graph) sharedTargets(kind NodeKind, minSharers int) []int {
	var targets []int
	for i, n := range g.nodes {
		if n.Kind != kind {
			continue
		}
		if len(g.employeePreds(i)) >= minSharers {
			targets = append(targets, i)
		}
	}
	sort.SliceStable(targets, func(a, b int) bool {
		return len(g.employeePreds(targets[a])) > len(g.employeePreds(targets[b]))
	})
	return targets
}

func (g *Graph) employeePreds(target int) []int {
	return g.preds[target]
}

func (g *Graph) sampleNames(target, limit int) []string {
	preds := g.employeePreds(target)
	if limit >= 0 && len(preds) > limit {
		preds = preds[:limit]
	}
	names := make([]string, 0, len(preds))
	for _, p := range preds {
		names = append(names, g.nodes[p].Name)
	}
	return names
}

func (g *Graph) stats() Stats {
	s := Stats{TotalNodes: len(g.nodes), TotalEdges: len(g.edges)}
	for _, n := range g.nodes {
		switch n.Kind {
		case KindEmployee:
			s.Employees++
		case KindBankAccount:
			s.Banks++
		case KindDevice:
			s.Devices++
		}
	}
	return s
}

func bankDisplayName(bankName, account string) string {
	r := []rune(account)
	if len(r) > 4 {
		r = r[len(r)-4:]
	}
	return bankName + " ****" + string(r)
}

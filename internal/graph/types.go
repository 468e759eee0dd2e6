package graph

import "time"

// NodeKind identifies the three entity types of the payroll relationship graph.
type NodeKind string

const (
	KindEmployee    NodeKind = "employee"
	KindBankAccount NodeKind = "bank"
	KindDevice      NodeKind = "device"
)

// RelType is the type of a directed edge.
type RelType string

const (
	RelDepositsTo RelType = "DEPOSITS_TO"
	RelUsesDevice RelType = "USES_DEVICE"
)

// Visual group and weight per kind, consumed by force-graph renderers.
const (
	employeeGroup = 1
	bankGroup     = 2
	deviceGroup   = 3

	employeeWeight = 10
	bankWeight     = 20
	deviceWeight   = 15
)

// Node is a vertex of the graph. Attributes are fixed when the node is first created.
type Node struct {
	ID        string   `json:"id"`
	Key       string   `json:"key"`
	Name      string   `json:"name"`
	Kind      NodeKind `json:"type"`
	Group     int      `json:"group"`
	Weight    int      `json:"val"`
	FraudType string   `json:"fraudType"`
}

// Edge is a typed, directed relationship between two node indexes.
type Edge struct {
	From int
	To   int
	Type RelType
}

// BuildSummary is returned by Store.Build.
type BuildSummary struct {
	BuildID      string `json:"buildId"`
	NodeCount    int    `json:"nodeCount"`
	EdgeCount    int    `json:"edgeCount"`
	RecordCount  int    `json:"recordCount"`
	SkippedEdges int    `json:"skippedEdges"`
}

// Stats summarises the current graph.
type Stats struct {
	BuildID    string    `json:"buildId,omitempty"`
	BuiltAt    time.Time `json:"builtAt,omitempty"`
	TotalNodes int       `json:"totalNodes"`
	TotalEdges int       `json:"totalEdges"`
	Employees  int       `json:"employees"`
	Banks      int       `json:"banks"`
	Devices    int       `json:"devices"`
}

// AccountRing is a bank account receiving deposits from several distinct employees.
type AccountRing struct {
	AccountID   string   `json:"accountId"`
	AccountName string   `json:"accountName"`
	SharerCount int      `json:"sharerCount"`
	SampleNames []string `json:"sampleNames"`
}

// DeviceRing is an attendance device used by several distinct employees.
type DeviceRing struct {
	DeviceID    string   `json:"deviceId"`
	SharerCount int      `json:"sharerCount"`
	SampleNames []string `json:"sampleNames"`
}

// ViewNode is a node of the rendering projection.
type ViewNode struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Kind      NodeKind `json:"type"`
	Group     int      `json:"group"`
	Weight    int      `json:"val"`
	FraudType string   `json:"fraudType"`
}

// ViewLink is an edge of the rendering projection.
type ViewLink struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Type   RelType `json:"type"`
}

// View is a size-bounded projection of the graph.
type View struct {
	Nodes []ViewNode `json:"nodes"`
	Links []ViewLink `json:"links"`
}

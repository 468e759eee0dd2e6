package graph

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/metrics"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/payroll"
)

const (
	// DefaultMinSharers is the smallest ring reported when callers pass a non-positive threshold.
	DefaultMinSharers = 2
	// DefaultSampleSize caps the sharer names attached to each ring.
	DefaultSampleSize = 5
)

type snapshot struct {
	graph   *Graph
	dataset *payroll.Dataset
	buildID string
	builtAt time.Time
}

// Store owns the current relationship graph. Build replaces it wholesale; queries read a
// consistent snapshot under the read lock.
type Store struct {
	mu         sync.RWMutex
	current    *snapshot
	sampleSize int
	now        func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithSampleSize sets how many sharer names a ring carries.
func WithSampleSize(n int) Option {
	return func(s *Store) {
		if n >= 0 {
			s.sampleSize = n
		}
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		sampleSize: DefaultSampleSize,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Build discards the current graph and builds a new one from the dataset. The new graph is
// constructed outside the lock and swapped in atomically together with the dataset it came from.
func (s *Store) Build(ds *payroll.Dataset) (BuildSummary, error) {
	if ds == nil {
		return BuildSummary{}, fmt.Errorf("failed to build graph: dataset is nil")
	}
	if err := ds.Require(payroll.GraphColumns...); err != nil {
		metrics.GraphBuildsTotal.WithLabelValues("schema_error").Inc()
		return BuildSummary{}, fmt.Errorf("failed to build graph: %w", err)
	}

	start := time.Now()
	g, skipped := build(ds)
	next := &snapshot{
		graph:   g,
		dataset: ds,
		buildID: uuid.NewString(),
		builtAt: s.now(),
	}

	s.mu.Lock()
	s.current = next
	s.mu.Unlock()

	metrics.GraphBuildsTotal.WithLabelValues("success").Inc()
	metrics.GraphBuildDuration.Observe(time.Since(start).Seconds())
	metrics.GraphNodes.Set(float64(len(g.nodes)))

	summary := BuildSummary{
		BuildID:      next.buildID,
		NodeCount:    len(g.nodes),
		EdgeCount:    len(g.edges),
		RecordCount:  ds.Len(),
		SkippedEdges: skipped,
	}
	slog.Info("graph built",
		"buildId", summary.BuildID,
		"nodes", summary.NodeCount,
		"edges", summary.EdgeCount,
		"records", summary.RecordCount,
		"skippedEdges", skipped)

	return summary, nil
}

func (s *Store) snapshot() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Loaded reports whether a graph has been built.
func (s *Store) Loaded() bool {
	return s.snapshot() != nil
}

// Dataset returns the dataset the current graph was built from.
func (s *Store) Dataset() (*payroll.Dataset, bool) {
	snap := s.snapshot()
	if snap == nil {
		return nil, false
	}
	return snap.dataset, true
}

// FindSharedAccountRings reports bank accounts receiving deposits from at least minSharers
// distinct employees, largest rings first. Rings of equal size keep discovery order.
func (s *Store) FindSharedAccountRings(minSharers int) []AccountRing {
	if minSharers <= 0 {
		minSharers = DefaultMinSharers
	}

	rings := []AccountRing{}
	snap := s.snapshot()
	if snap == nil {
		return rings
	}

	g := snap.graph
	for _, i := range g.sharedTargets(KindBankAccount, minSharers) {
		rings = append(rings, AccountRing{
			AccountID:   g.nodes[i].ID,
			AccountName: g.nodes[i].Name,
			SharerCount: len(g.employeePreds(i)),
			SampleNames: g.sampleNames(i, s.sampleSize),
		})
	}
	return rings
}

// FindSharedDeviceRings reports attendance devices used by at least minSharers distinct employees.
func (s *Store) FindSharedDeviceRings(minSharers int) []DeviceRing {
	if minSharers <= 0 {
		minSharers = DefaultMinSharers
	}

	rings := []DeviceRing{}
	snap := s.snapshot()
	if snap == nil {
		return rings
	}

	g := snap.graph
	for _, i := range g.sharedTargets(KindDevice, minSharers) {
		rings = append(rings, DeviceRing{
			DeviceID:    g.nodes[i].ID,
			SharerCount: len(g.employeePreds(i)),
			SampleNames: g.sampleNames(i, s.sampleSize),
		})
	}
	return rings
}

// ExportView returns at most limit nodes, in insertion order, and only the links whose
// endpoints are both part of the returned node set.
func (s *Store) ExportView(limit int) View {
	view := View{Nodes: []ViewNode{}, Links: []ViewLink{}}
	snap := s.snapshot()
	if snap == nil || limit <= 0 {
		return view
	}

	g := snap.graph
	n := min(limit, len(g.nodes))
	for _, node := range g.nodes[:n] {
		view.Nodes = append(view.Nodes, ViewNode{
			ID:        node.ID,
			Name:      node.Name,
			Kind:      node.Kind,
			Group:     node.Group,
			Weight:    node.Weight,
			FraudType: node.FraudType,
		})
	}
	for _, e := range g.edges {
		if e.From < n && e.To < n {
			view.Links = append(view.Links, ViewLink{
				Source: g.nodes[e.From].ID,
				Target: g.nodes[e.To].ID,
				Type:   e.Type,
			})
		}
	}
	return view
}

// Stats summarises the current graph. The zero value is returned before the first build.
func (s *Store) Stats() Stats {
	snap := s.snapshot()
	if snap == nil {
		return Stats{}
	}
	st := snap.graph.stats()
	st.BuildID = snap.buildID
	st.BuiltAt = snap.builtAt
	return st
}

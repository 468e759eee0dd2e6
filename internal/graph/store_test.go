package graph

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mkd-neo4j/neo4j-mcp-payroll/internal/errors"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/payroll"
)

func newDataset(records ...payroll.Record) *payroll.Dataset {
	ds := payroll.NewDataset(payroll.ColEmployeeID, payroll.ColFullName, payroll.ColBankAccount,
		payroll.ColBankName, payroll.ColDeviceID)
	ds.Records = append(ds.Records, records...)
	return ds
}

func rec(id, name, account, device string) payroll.Record {
	return payroll.Record{
		EmployeeID:  id,
		FullName:    name,
		BankAccount: account,
		BankName:    "Equity",
		DeviceID:    device,
		FraudType:   payroll.NoFraudType,
	}
}

// ghostFamily returns 20 employees on their own accounts, except six who all deposit into ACC-999.
func ghostFamily() *payroll.Dataset {
	var records []payroll.Record
	for i := 1; i <= 20; i++ {
		account := fmt.Sprintf("ACC-%03d", i)
		if i > 14 {
			account = "ACC-999"
		}
		records = append(records, rec(fmt.Sprintf("E%02d", i), fmt.Sprintf("Employee %d", i), account, fmt.Sprintf("DEV-%02d", i)))
	}
	return newDataset(records...)
}

func TestStore_Build(t *testing.T) {
	t.Run("summary counts nodes and edges", func(t *testing.T) {
		store := NewStore()
		summary, err := store.Build(newDataset(
			rec("E1", "Alice", "ACC-1", "D1"),
			rec("E2", "Bob", "ACC-1", "D1"),
			rec("E3", "Carol", "ACC-2", "D2"),
		))
		require.NoError(t, err)

		assert.Equal(t, 3, summary.RecordCount)
		assert.Equal(t, 7, summary.NodeCount)
		assert.Equal(t, 6, summary.EdgeCount)
		assert.Zero(t, summary.SkippedEdges)
		assert.NotEmpty(t, summary.BuildID)
	})

	t.Run("missing device column is a schema error", func(t *testing.T) {
		ds := payroll.NewDataset(payroll.ColEmployeeID, payroll.ColBankAccount)
		_, err := NewStore().Build(ds)
		require.Error(t, err)
		assert.True(t, apperrors.IsSchemaError(err))
		col, ok := apperrors.MissingColumn(err)
		require.True(t, ok)
		assert.Equal(t, string(payroll.ColDeviceID), col)
	})

	t.Run("nil dataset", func(t *testing.T) {
		_, err := NewStore().Build(nil)
		assert.Error(t, err)
	})

	t.Run("unavailable account or device skips the edge", func(t *testing.T) {
		store := NewStore()
		summary, err := store.Build(newDataset(
			rec("E1", "Alice", payroll.NotAvailable, "D1"),
			rec("E2", "Bob", "ACC-1", ""),
		))
		require.NoError(t, err)
		assert.Equal(t, 2, summary.SkippedEdges)
		assert.Equal(t, 2, summary.EdgeCount)

		st := store.Stats()
		assert.Equal(t, 2, st.Employees)
		assert.Equal(t, 1, st.Banks)
		assert.Equal(t, 1, st.Devices)
	})

	t.Run("duplicate rows add one edge per target", func(t *testing.T) {
		store := NewStore()
		summary, err := store.Build(newDataset(
			rec("E1", "Alice", "ACC-1", "D1"),
			rec("E1", "Alice Again", "ACC-1", "D1"),
		))
		require.NoError(t, err)
		assert.Equal(t, 3, summary.NodeCount)
		assert.Equal(t, 2, summary.EdgeCount)
	})

	t.Run("first row wins node attributes", func(t *testing.T) {
		first := rec("E1", "Alice", "ACC-1", "D1")
		first.FraudType = "Ghost"
		second := rec("E1", "Alicia", "ACC-1", "D1")
		second.BankName = "KCB"

		store := NewStore()
		_, err := store.Build(newDataset(first, second))
		require.NoError(t, err)

		view := store.ExportView(10)
		require.Len(t, view.Nodes, 3)
		assert.Equal(t, "Alice", view.Nodes[0].Name)
		assert.Equal(t, "Ghost", view.Nodes[0].FraudType)
		assert.Equal(t, "Equity ****CC-1", view.Nodes[1].Name)
	})

	t.Run("node ids are unique across kinds", func(t *testing.T) {
		store := NewStore()
		summary, err := store.Build(newDataset(
			rec("bank_ACC-1", "Mallory", "ACC-1", "D1"),
			rec("E2", "Bob", "ACC-1", "bank_ACC-1"),
		))
		require.NoError(t, err)
		assert.Equal(t, 5, summary.NodeCount)

		view := store.ExportView(summary.NodeCount)
		ids := map[string]int{}
		for _, n := range view.Nodes {
			ids[n.ID]++
		}
		for id, count := range ids {
			assert.Equal(t, 1, count, "duplicate view node id %q", id)
		}
		assert.Contains(t, ids, "emp_bank_ACC-1")
		assert.Contains(t, ids, "bank_ACC-1")
		assert.Contains(t, ids, "dev_bank_ACC-1")

		rings := store.FindSharedAccountRings(2)
		require.Len(t, rings, 1)
		assert.Equal(t, []string{"Mallory", "Bob"}, rings[0].SampleNames)
	})

	t.Run("rebuild replaces the previous graph", func(t *testing.T) {
		store := NewStore()
		_, err := store.Build(ghostFamily())
		require.NoError(t, err)
		first := store.Stats()

		_, err = store.Build(newDataset(rec("E1", "Alice", "ACC-1", "D1")))
		require.NoError(t, err)
		second := store.Stats()

		assert.Equal(t, 1, second.Employees)
		assert.NotEqual(t, first.BuildID, second.BuildID)
		ds, ok := store.Dataset()
		require.True(t, ok)
		assert.Equal(t, 1, ds.Len())
	})
}

func TestStore_FindSharedAccountRings(t *testing.T) {
	t.Run("ghost family of six", func(t *testing.T) {
		store := NewStore()
		_, err := store.Build(ghostFamily())
		require.NoError(t, err)

		rings := store.FindSharedAccountRings(2)
		require.Len(t, rings, 1)
		assert.Equal(t, "bank_ACC-999", rings[0].AccountID)
		assert.Equal(t, "Equity ****-999", rings[0].AccountName)
		assert.Equal(t, 6, rings[0].SharerCount)
		assert.Equal(t, []string{"Employee 15", "Employee 16", "Employee 17", "Employee 18", "Employee 19"}, rings[0].SampleNames)
	})

	t.Run("threshold is inclusive and exact", func(t *testing.T) {
		store := NewStore()
		_, err := store.Build(newDataset(
			rec("E1", "A", "ACC-1", "D1"),
			rec("E2", "B", "ACC-1", "D2"),
			rec("E3", "C", "ACC-2", "D3"),
			rec("E4", "D", "ACC-2", "D4"),
			rec("E5", "E", "ACC-2", "D5"),
			rec("E6", "F", "ACC-3", "D6"),
		))
		require.NoError(t, err)

		rings := store.FindSharedAccountRings(3)
		require.Len(t, rings, 1)
		assert.Equal(t, "bank_ACC-2", rings[0].AccountID)

		seen := map[string]int{}
		for _, r := range store.FindSharedAccountRings(2) {
			seen[r.AccountID]++
			assert.GreaterOrEqual(t, r.SharerCount, 2)
		}
		assert.Equal(t, map[string]int{"bank_ACC-1": 1, "bank_ACC-2": 1}, seen)
	})

	t.Run("non-positive threshold defaults to two", func(t *testing.T) {
		store := NewStore()
		_, err := store.Build(ghostFamily())
		require.NoError(t, err)
		assert.Equal(t, store.FindSharedAccountRings(2), store.FindSharedAccountRings(0))
		assert.Equal(t, store.FindSharedAccountRings(2), store.FindSharedAccountRings(-3))
	})

	t.Run("equal rings keep discovery order", func(t *testing.T) {
		store := NewStore()
		_, err := store.Build(newDataset(
			rec("E1", "A", "ACC-B", "D1"),
			rec("E2", "B", "ACC-A", "D2"),
			rec("E3", "C", "ACC-B", "D3"),
			rec("E4", "D", "ACC-A", "D4"),
			rec("E5", "E", "ACC-C", "D5"),
			rec("E6", "F", "ACC-C", "D6"),
			rec("E7", "G", "ACC-C", "D7"),
		))
		require.NoError(t, err)

		rings := store.FindSharedAccountRings(2)
		require.Len(t, rings, 3)
		assert.Equal(t, "bank_ACC-C", rings[0].AccountID)
		assert.Equal(t, "bank_ACC-B", rings[1].AccountID)
		assert.Equal(t, "bank_ACC-A", rings[2].AccountID)
	})

	t.Run("sample size option", func(t *testing.T) {
		store := NewStore(WithSampleSize(2))
		_, err := store.Build(ghostFamily())
		require.NoError(t, err)
		rings := store.FindSharedAccountRings(2)
		require.Len(t, rings, 1)
		assert.Len(t, rings[0].SampleNames, 2)
	})

	t.Run("empty store", func(t *testing.T) {
		rings := NewStore().FindSharedAccountRings(2)
		assert.NotNil(t, rings)
		assert.Empty(t, rings)
	})
}

func TestStore_FindSharedDeviceRings(t *testing.T) {
	store := NewStore()
	_, err := store.Build(newDataset(
		rec("E1", "Alice", "ACC-1", "BIO-7"),
		rec("E2", "Bob", "ACC-2", "BIO-7"),
		rec("E3", "Carol", "ACC-3", "BIO-7"),
		rec("E4", "Dan", "ACC-4", "BIO-8"),
	))
	require.NoError(t, err)

	rings := store.FindSharedDeviceRings(2)
	require.Len(t, rings, 1)
	assert.Equal(t, "dev_BIO-7", rings[0].DeviceID)
	assert.Equal(t, 3, rings[0].SharerCount)
	assert.Equal(t, []string{"Alice", "Bob", "Carol"}, rings[0].SampleNames)
}

func TestStore_ExportView(t *testing.T) {
	store := NewStore()
	_, err := store.Build(ghostFamily())
	require.NoError(t, err)

	for _, limit := range []int{-1, 0, 1, 2, 5, 17, 1000} {
		t.Run(fmt.Sprintf("limit %d", limit), func(t *testing.T) {
			view := store.ExportView(limit)
			assert.NotNil(t, view.Nodes)
			assert.NotNil(t, view.Links)
			assert.LessOrEqual(t, len(view.Nodes), max(limit, 0))

			included := map[string]bool{}
			for _, n := range view.Nodes {
				included[n.ID] = true
			}
			for _, l := range view.Links {
				assert.True(t, included[l.Source], "source %s not in view", l.Source)
				assert.True(t, included[l.Target], "target %s not in view", l.Target)
			}
		})
	}

	t.Run("full view", func(t *testing.T) {
		st := store.Stats()
		view := store.ExportView(st.TotalNodes)
		assert.Len(t, view.Nodes, st.TotalNodes)
		assert.Len(t, view.Links, st.TotalEdges)
		assert.Equal(t, KindEmployee, view.Nodes[0].Kind)
		assert.Equal(t, "emp_E01", view.Nodes[0].ID)
		assert.Equal(t, "bank_ACC-001", view.Nodes[1].ID)
		assert.Equal(t, "dev_DEV-01", view.Nodes[2].ID)
		assert.Equal(t, 1, view.Nodes[0].Group)
		assert.Equal(t, 10, view.Nodes[0].Weight)
	})
}

func TestStore_DeterministicRebuild(t *testing.T) {
	a, b := NewStore(), NewStore()
	_, err := a.Build(ghostFamily())
	require.NoError(t, err)
	_, err = b.Build(ghostFamily())
	require.NoError(t, err)

	assert.Equal(t, a.ExportView(100), b.ExportView(100))
	assert.Equal(t, a.FindSharedAccountRings(1), b.FindSharedAccountRings(1))
	assert.Equal(t, a.FindSharedDeviceRings(1), b.FindSharedDeviceRings(1))
}

func TestStore_ConcurrentReadersDuringRebuild(t *testing.T) {
	store := NewStore()
	_, err := store.Build(ghostFamily())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				rings := store.FindSharedAccountRings(2)
				assert.Len(t, rings, 1)
				_ = store.ExportView(10)
			}
		}()
	}
	for i := 0; i < 5; i++ {
		_, err := store.Build(ghostFamily())
		require.NoError(t, err)
	}
	wg.Wait()
}

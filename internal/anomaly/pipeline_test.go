package anomaly

import (
	"fmt"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/payroll"
)

var salaryCols = []payroll.Column{payroll.ColEmployeeID, payroll.ColFullName, payroll.ColJobGroup, payroll.ColGrossSalary}

// payrollOf builds n records over four job groups with deterministic salaries, plus a handful of
// heavily inflated ones.
func payrollOf(n int) *payroll.Dataset {
	groups := []string{"J", "K", "L", "M"}
	base := map[string]int64{"J": 50000, "K": 70000, "L": 90000, "M": 120000}

	ds := payroll.NewDataset(salaryCols...)
	for i := 0; i < n; i++ {
		g := groups[i%len(groups)]
		gross := base[g] + int64((i*7919)%10000)
		if i%97 == 0 {
			gross *= 5
		}
		ds.Records = append(ds.Records, payroll.Record{
			Row:         i + 2,
			EmployeeID:  fmt.Sprintf("E%04d", i),
			FullName:    fmt.Sprintf("Employee %d", i),
			JobGroup:    g,
			GrossSalary: decimal.NewFromInt(gross),
		})
	}
	return ds
}

func TestFitAndScore_TopFifty(t *testing.T) {
	p := New(DefaultConfig())
	res := p.FitAndScore(payrollOf(1000), 0.05, 50)

	require.Equal(t, StatusSuccess, res.Status)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 50, res.AnomaliesDetected)
	require.Len(t, res.Anomalies, 50)

	total := decimal.Zero
	for i, a := range res.Anomalies {
		assert.GreaterOrEqual(t, a.RiskScore, 55.0)
		assert.LessOrEqual(t, a.RiskScore, 99.0)
		assert.InDelta(t, a.RiskScore/100, a.AnomalyScore, 1e-4)
		if i > 0 {
			assert.LessOrEqual(t, a.RiskScore, res.Anomalies[i-1].RiskScore)
		}
		total = total.Add(a.GrossSalary)
	}
	assert.True(t, total.Equal(res.TotalAtRisk))

	// the inflated salaries isolate fastest
	assert.True(t, res.Anomalies[0].GrossSalary.GreaterThan(decimal.NewFromInt(200000)), res.Anomalies[0].GrossSalary.String())
	assert.Greater(t, res.Anomalies[0].Sigma, 0.0)
}

func TestFitAndScore_Repeatable(t *testing.T) {
	ds := payrollOf(400)
	a := New(DefaultConfig()).FitAndScore(ds, 0.05, 20)
	b := New(DefaultConfig()).FitAndScore(ds, 0.05, 20)

	require.Equal(t, StatusSuccess, a.Status)
	assert.NotEqual(t, a.RunID, b.RunID)
	assert.Equal(t, a.Anomalies, b.Anomalies)
}

func TestFitAndScore_FewerRecordsThanTopN(t *testing.T) {
	res := New(DefaultConfig()).FitAndScore(payrollOf(12), 0.1, 50)
	require.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, 12, res.AnomaliesDetected)
	assert.Len(t, res.Anomalies, 12)
}

func TestFitAndScore_NoData(t *testing.T) {
	t.Run("empty dataset", func(t *testing.T) {
		res := New(DefaultConfig()).FitAndScore(payroll.NewDataset(salaryCols...), 0.05, 50)
		assert.Equal(t, StatusNoData, res.Status)
		assert.NotNil(t, res.Anomalies)
		assert.Empty(t, res.Anomalies)
	})

	t.Run("no gross salary column", func(t *testing.T) {
		ds := payroll.NewDataset(payroll.ColEmployeeID)
		ds.Records = append(ds.Records, payroll.Record{EmployeeID: "E1"})
		assert.Equal(t, StatusNoData, New(DefaultConfig()).FitAndScore(ds, 0.05, 50).Status)
	})

	t.Run("every salary defaulted", func(t *testing.T) {
		ds := payroll.NewDataset(salaryCols...)
		ds.Records = append(ds.Records, payroll.Record{EmployeeID: "E1"}, payroll.Record{EmployeeID: "E2"})
		ds.Fallbacks[payroll.ColGrossSalary] = 2
		assert.Equal(t, StatusNoData, New(DefaultConfig()).FitAndScore(ds, 0.05, 50).Status)
	})
}

func TestFitAndScore_ModelFitFailure(t *testing.T) {
	ds := payrollOf(10)
	ds.Records[3].GrossSalary = decimal.New(1, 400)

	res := New(DefaultConfig()).FitAndScore(ds, 0.05, 5)
	assert.Equal(t, StatusModelFitFailed, res.Status)
	assert.NotEmpty(t, res.Message)
	assert.NotNil(t, res.Anomalies)
}

func TestFitAndScore_SigmaUsesUnperturbedStats(t *testing.T) {
	ds := payroll.NewDataset(salaryCols...)
	for i, gross := range []int64{100, 100, 100, 100, 1000} {
		ds.Records = append(ds.Records, payroll.Record{EmployeeID: fmt.Sprintf("E%d", i), JobGroup: "J", GrossSalary: decimal.NewFromInt(gross)})
	}
	ds.Records = append(ds.Records, payroll.Record{EmployeeID: "S", JobGroup: "Z", GrossSalary: decimal.NewFromInt(500)})

	res := New(DefaultConfig()).FitAndScore(ds, 0.1, 6)
	require.Equal(t, StatusSuccess, res.Status)

	byID := map[string]Anomaly{}
	for _, a := range res.Anomalies {
		byID[a.EmployeeID] = a
	}
	// mean 280, sample std 402.49
	assert.InDelta(t, 280.0, byID["E4"].GroupMean, 0.001)
	assert.InDelta(t, 1.8, byID["E4"].Sigma, 0.001)
	// singleton group has no spread
	assert.Equal(t, 0.0, byID["S"].Sigma)
	assert.InDelta(t, 500.0, byID["S"].GroupMean, 0.001)
}

func TestPerturbation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Perturbation.Enabled = true
	cfg.Perturbation.Count = 10

	p := New(cfg)
	salary := make([]float64, 50)
	for i := range salary {
		salary[i] = 1000
	}
	changed := p.perturb(salary)

	count := 0
	for i, c := range changed {
		if !c {
			assert.Equal(t, 1000.0, salary[i])
			continue
		}
		count++
		assert.GreaterOrEqual(t, salary[i], 1300.0)
		assert.LessOrEqual(t, salary[i], 2500.0)
	}
	assert.Equal(t, 10, count)

	t.Run("too few eligible rows", func(t *testing.T) {
		few := []float64{1, 2, 3}
		assert.Equal(t, []bool{false, false, false}, p.perturb(few))
	})
}

// gradeFixed pays everyone in a job group the same salary, so many rows share identical features.
func gradeFixed(n int) *payroll.Dataset {
	ds := payroll.NewDataset(salaryCols...)
	for i := 0; i < n; i++ {
		g, gross := "J", int64(56000)
		if i%2 == 1 {
			g, gross = "K", 78000
		}
		ds.Records = append(ds.Records, payroll.Record{
			Row:         i + 2,
			EmployeeID:  fmt.Sprintf("E%04d", i),
			FullName:    fmt.Sprintf("Employee %d", i),
			JobGroup:    g,
			GrossSalary: decimal.NewFromInt(gross),
		})
	}
	return ds
}

func TestFitAndScore_TiedScoresKeepDistinctRisk(t *testing.T) {
	res := New(DefaultConfig()).FitAndScore(gradeFixed(1000), 0.05, 50)

	require.Equal(t, StatusSuccess, res.Status)
	require.Len(t, res.Anomalies, 50)

	distinct := make(map[float64]bool)
	for i, a := range res.Anomalies {
		assert.GreaterOrEqual(t, a.RiskScore, 55.0)
		assert.LessOrEqual(t, a.RiskScore, 99.0)
		if i > 0 {
			assert.Less(t, a.RiskScore, res.Anomalies[i-1].RiskScore)
		}
		distinct[a.RiskScore] = true
	}
	assert.Len(t, distinct, 50)
	assert.Greater(t, res.Anomalies[0].RiskScore, res.Anomalies[49].RiskScore)
	assert.Equal(t, 55.0, res.Anomalies[49].RiskScore)
}

func TestSummarize(t *testing.T) {
	stats := summarize([]string{"A", "A", "B"}, []float64{10, 20, 7})
	assert.Equal(t, 15.0, stats["A"].mean)
	assert.InDelta(t, math.Sqrt(50), stats["A"].std, 1e-9)
	assert.True(t, math.IsNaN(stats["B"].std))
}

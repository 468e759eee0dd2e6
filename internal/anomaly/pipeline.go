// Package anomaly ranks payroll records by how strongly their salary deviates from their job group,
// using an isolation forest and a fixed-size most-anomalous selection.
package anomaly

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/mkd-neo4j/neo4j-mcp-payroll/internal/errors"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/metrics"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/payroll"
)

// Result statuses.
const (
	StatusSuccess        = "success"
	StatusNoData         = "no_data"
	StatusModelFitFailed = "model_fit_failed"
)

// Perturbation optionally inflates a random set of ordinary salaries before fitting, which spreads
// the score distribution between normal pay and gross outliers.
type Perturbation struct {
	Enabled   bool    `json:"enabled"`
	Count     int     `json:"count"`
	Below     float64 `json:"below"`
	MinFactor float64 `json:"minFactor"`
	MaxFactor float64 `json:"maxFactor"`
}

// Config controls a Pipeline.
type Config struct {
	Forest       ForestConfig
	TopN         int
	RiskFloor    float64
	RiskWidth    float64
	Perturbation Perturbation
}

// DefaultConfig selects the 50 most anomalous records and maps them onto risk scores 55 to 99.
func DefaultConfig() Config {
	return Config{
		Forest:    DefaultForestConfig(),
		TopN:      50,
		RiskFloor: 55,
		RiskWidth: 44,
		Perturbation: Perturbation{
			Count:     100,
			Below:     150000,
			MinFactor: 1.3,
			MaxFactor: 2.5,
		},
	}
}

// Anomaly is one selected record with its scores.
type Anomaly struct {
	EmployeeID   string          `json:"employeeId"`
	Name         string          `json:"name"`
	NationalID   string          `json:"nationalId"`
	JobGroup     string          `json:"jobGroup"`
	Department   string          `json:"department"`
	BasicSalary  decimal.Decimal `json:"basicSalary"`
	GrossSalary  decimal.Decimal `json:"grossSalary"`
	AnomalyScore float64         `json:"anomalyScore"`
	RiskScore    float64         `json:"riskScore"`
	GroupMean    float64         `json:"groupMean"`
	Sigma        float64         `json:"sigma"`
	RawScore     float64         `json:"rawScore"`
	Perturbed    bool            `json:"perturbed,omitempty"`
}

// Result is returned by FitAndScore. It is always populated, including on failure.
type Result struct {
	Status            string          `json:"status"`
	Message           string          `json:"message,omitempty"`
	RunID             string          `json:"runId"`
	AnomaliesDetected int             `json:"anomaliesDetected"`
	TotalAtRisk       decimal.Decimal `json:"totalSalaryAtRisk"`
	Anomalies         []Anomaly       `json:"anomalies"`
}

// Pipeline retrains the forest on every call and holds no state between calls.
type Pipeline struct {
	cfg Config
}

// New creates a pipeline. Zero fields fall back to DefaultConfig.
func New(cfg Config) *Pipeline {
	def := DefaultConfig()
	if cfg.TopN <= 0 {
		cfg.TopN = def.TopN
	}
	if cfg.RiskWidth <= 0 {
		cfg.RiskWidth = def.RiskWidth
	}
	if cfg.RiskFloor <= 0 {
		cfg.RiskFloor = def.RiskFloor
	}
	return &Pipeline{cfg: cfg}
}

// FitAndScore trains an isolation forest on [gross salary, job group code] and returns exactly
// min(topN, n) records with the lowest decision scores, ranked into the risk band.
// Non-positive contamination or topN use the configured values.
func (p *Pipeline) FitAndScore(ds *payroll.Dataset, contamination float64, topN int) (res Result) {
	start := time.Now()
	res = Result{RunID: uuid.NewString(), TotalAtRisk: decimal.Zero, Anomalies: []Anomaly{}}
	defer func() {
		if r := recover(); r != nil {
			slog.Error("anomaly pipeline panicked", "runId", res.RunID, "panic", r)
			res = failed(res.RunID, apperrors.NewModelFitError(fmt.Sprintf("model fit panicked: %v", r)))
		}
		metrics.RecordAnomalyRun(res.Status, time.Since(start))
	}()

	if topN <= 0 {
		topN = p.cfg.TopN
	}
	fc := p.cfg.Forest
	if contamination > 0 {
		fc.Contamination = contamination
	}

	if !ds.Has(payroll.ColGrossSalary) || ds.Parsed(payroll.ColGrossSalary) == 0 {
		res.Status = StatusNoData
		res.Message = "dataset has no parseable gross salary values"
		return res
	}

	n := ds.Len()
	groups := make([]string, n)
	salary := make([]float64, n)
	for i, r := range ds.Records {
		groups[i] = r.JobGroup
		salary[i] = r.GrossSalary.InexactFloat64()
	}

	// group statistics describe the payroll as received
	stats := summarize(groups, salary)
	perturbed := p.perturb(salary)

	codes := encode(groups)
	features := make([][]float64, n)
	for i := range features {
		features[i] = []float64{salary[i], codes[i]}
	}

	forest := NewForest(fc)
	if err := forest.Fit(features); err != nil {
		slog.Warn("isolation forest fit failed", "runId", res.RunID, "error", err)
		return failed(res.RunID, err)
	}
	raw, err := forest.DecisionFunction(features)
	if err != nil {
		return failed(res.RunID, err)
	}

	// selection order is the rank: tied raw scores keep record order and still get distinct ranks,
	// so risk strictly decreases across the band
	selected := lowest(raw, min(topN, n))
	k := len(selected)

	for i, idx := range selected {
		r := ds.Records[idx]
		rank := float64(i + 1)
		risk := (1-rank/float64(k))*p.cfg.RiskWidth + p.cfg.RiskFloor

		a := Anomaly{
			EmployeeID:   r.EmployeeID,
			Name:         r.FullName,
			NationalID:   r.NationalID,
			JobGroup:     r.JobGroup,
			Department:   r.Department,
			BasicSalary:  r.BasicSalary,
			GrossSalary:  r.GrossSalary,
			RiskScore:    round(risk, 2),
			AnomalyScore: round(risk/100, 4),
			RawScore:     raw[idx],
			Perturbed:    perturbed[idx],
		}
		if gs, ok := stats[r.JobGroup]; ok {
			a.GroupMean = round(gs.mean, 2)
			if !math.IsNaN(gs.std) && gs.std != 0 {
				a.Sigma = round((salary[idx]-gs.mean)/gs.std, 1)
			}
		}
		res.Anomalies = append(res.Anomalies, a)
		res.TotalAtRisk = res.TotalAtRisk.Add(r.GrossSalary)
	}

	sort.SliceStable(res.Anomalies, func(a, b int) bool {
		return res.Anomalies[a].RiskScore > res.Anomalies[b].RiskScore
	})

	res.Status = StatusSuccess
	res.AnomaliesDetected = k
	slog.Info("anomaly scoring complete",
		"runId", res.RunID,
		"records", n,
		"selected", k,
		"totalAtRisk", res.TotalAtRisk.String(),
		"duration", time.Since(start))
	return res
}

// perturb scales up to Count salaries below the cutoff in place, returning which rows changed.
func (p *Pipeline) perturb(salary []float64) []bool {
	changed := make([]bool, len(salary))
	cfg := p.cfg.Perturbation
	if !cfg.Enabled || cfg.Count <= 0 {
		return changed
	}

	var eligible []int
	for i, s := range salary {
		if s < cfg.Below {
			eligible = append(eligible, i)
		}
	}
	if len(eligible) <= cfg.Count {
		return changed
	}

	seed := p.cfg.Forest.Seed
	rng := rand.New(rand.NewPCG(seed, ^seed))
	for _, j := range rng.Perm(len(eligible))[:cfg.Count] {
		i := eligible[j]
		salary[i] *= cfg.MinFactor + rng.Float64()*(cfg.MaxFactor-cfg.MinFactor)
		changed[i] = true
	}
	return changed
}

// lowest returns the indexes of the k smallest scores, ties broken by position.
func lowest(scores []float64, k int) []int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] < scores[idx[b]] })
	return idx[:k]
}

func failed(runID string, err error) Result {
	return Result{
		Status:      StatusModelFitFailed,
		Message:     err.Error(),
		RunID:       runID,
		TotalAtRisk: decimal.Zero,
		Anomalies:   []Anomaly{},
	}
}

package anomaly

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	apperrors "github.com/mkd-neo4j/neo4j-mcp-payroll/internal/errors"
)

const eulerGamma = 0.5772156649015329

// ForestConfig holds the isolation forest hyper-parameters.
type ForestConfig struct {
	// Trees is the number of isolation trees in the ensemble.
	Trees int
	// SampleSize is the sub-sample drawn for each tree, capped at the number of rows.
	SampleSize int
	// Contamination is the expected share of outliers. It places the decision threshold.
	Contamination float64
	// Seed makes training reproducible.
	Seed uint64
}

// DefaultForestConfig returns 100 trees of up to 256 samples each.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{
		Trees:         100,
		SampleSize:    256,
		Contamination: 0.05,
		Seed:          42,
	}
}

type node struct {
	feature     int
	split       float64
	left, right *node
	size        int // leaf only
}

func (n *node) leaf() bool { return n.left == nil }

// Forest is an isolation forest over dense float64 feature rows.
type Forest struct {
	cfg    ForestConfig
	trees  []*node
	psi    int
	offset float64
	fitted bool
}

// NewForest returns an untrained forest.
func NewForest(cfg ForestConfig) *Forest {
	def := DefaultForestConfig()
	if cfg.Trees <= 0 {
		cfg.Trees = def.Trees
	}
	if cfg.SampleSize <= 0 {
		cfg.SampleSize = def.SampleSize
	}
	if cfg.Contamination <= 0 || cfg.Contamination > 0.5 {
		cfg.Contamination = def.Contamination
	}
	return &Forest{cfg: cfg}
}

// Fit trains the forest and places the decision offset at the contamination percentile of the
// training scores. It fails with a model fit error on empty, ragged or non-finite input.
func (f *Forest) Fit(data [][]float64) error {
	if err := validate(data); err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(f.cfg.Seed, f.cfg.Seed^0x9e3779b97f4a7c15))
	n := len(data)
	f.psi = min(f.cfg.SampleSize, n)
	limit := int(math.Ceil(math.Log2(float64(max(f.psi, 2)))))

	f.trees = make([]*node, 0, f.cfg.Trees)
	for t := 0; t < f.cfg.Trees; t++ {
		sample := rng.Perm(n)[:f.psi]
		f.trees = append(f.trees, grow(data, sample, 0, limit, rng))
	}
	f.fitted = true

	scores, err := f.ScoreSamples(data)
	if err != nil {
		return err
	}
	f.offset = percentile(scores, 100*f.cfg.Contamination)
	return nil
}

// ScoreSamples returns -2^(-E[h(x)]/c(psi)) for every row. Lower is more anomalous.
func (f *Forest) ScoreSamples(data [][]float64) ([]float64, error) {
	if !f.fitted {
		return nil, apperrors.NewModelFitError("forest has not been fitted")
	}
	norm := averagePathLength(f.psi)
	scores := make([]float64, len(data))
	for i, row := range data {
		var total float64
		for _, t := range f.trees {
			total += pathLength(t, row, 0)
		}
		mean := total / float64(len(f.trees))
		if norm == 0 {
			scores[i] = -1
			continue
		}
		scores[i] = -math.Pow(2, -mean/norm)
	}
	return scores, nil
}

// DecisionFunction returns ScoreSamples shifted by the fitted offset, so that negative values fall
// inside the contamination share.
func (f *Forest) DecisionFunction(data [][]float64) ([]float64, error) {
	scores, err := f.ScoreSamples(data)
	if err != nil {
		return nil, err
	}
	for i := range scores {
		scores[i] -= f.offset
	}
	return scores, nil
}

func validate(data [][]float64) error {
	if len(data) == 0 {
		return apperrors.NewModelFitError("cannot fit on an empty feature matrix")
	}
	width := len(data[0])
	if width == 0 {
		return apperrors.NewModelFitError("feature rows are empty")
	}
	for i, row := range data {
		if len(row) != width {
			return apperrors.NewModelFitError(fmt.Sprintf("row %d has %d features, expected %d", i, len(row), width))
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return apperrors.NewModelFitError(fmt.Sprintf("row %d feature %d is not finite", i, j)).
					WithDetails(map[string]any{"row": i, "feature": j, "value": row[j]})
			}
		}
	}
	return nil
}

func grow(data [][]float64, idx []int, depth, limit int, rng *rand.Rand) *node {
	if depth >= limit || len(idx) <= 1 {
		return &node{size: len(idx)}
	}

	// only features that still vary can split the sample
	width := len(data[idx[0]])
	var candidates []int
	lo := make([]float64, width)
	hi := make([]float64, width)
	for j := 0; j < width; j++ {
		lo[j], hi[j] = math.Inf(1), math.Inf(-1)
		for _, i := range idx {
			lo[j] = math.Min(lo[j], data[i][j])
			hi[j] = math.Max(hi[j], data[i][j])
		}
		if hi[j] > lo[j] {
			candidates = append(candidates, j)
		}
	}
	if len(candidates) == 0 {
		return &node{size: len(idx)}
	}

	feature := candidates[rng.IntN(len(candidates))]
	split := lo[feature] + rng.Float64()*(hi[feature]-lo[feature])

	var left, right []int
	for _, i := range idx {
		if data[i][feature] < split {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return &node{
		feature: feature,
		split:   split,
		left:    grow(data, left, depth+1, limit, rng),
		right:   grow(data, right, depth+1, limit, rng),
	}
}

func pathLength(n *node, row []float64, depth int) float64 {
	for !n.leaf() {
		if row[n.feature] < n.split {
			n = n.left
		} else {
			n = n.right
		}
		depth++
	}
	return float64(depth) + averagePathLength(n.size)
}

// averagePathLength is c(n), the mean path length of an unsuccessful search in a binary search tree.
func averagePathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	}
	m := float64(n - 1)
	return 2*(math.Log(m)+eulerGamma) - 2*m/float64(n)
}

// percentile interpolates linearly between closest ranks.
func percentile(values []float64, p float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

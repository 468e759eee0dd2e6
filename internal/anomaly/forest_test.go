package anomaly

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mkd-neo4j/neo4j-mcp-payroll/internal/errors"
)

func TestForest_Fit(t *testing.T) {
	tests := []struct {
		name string
		data [][]float64
	}{
		{name: "empty matrix", data: nil},
		{name: "empty rows", data: [][]float64{{}, {}}},
		{name: "ragged rows", data: [][]float64{{1, 2}, {3}}},
		{name: "nan feature", data: [][]float64{{1, 2}, {math.NaN(), 1}}},
		{name: "infinite feature", data: [][]float64{{1, 2}, {math.Inf(1), 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewForest(DefaultForestConfig()).Fit(tt.data)
			require.Error(t, err)
			assert.True(t, apperrors.IsModelFitError(err))
		})
	}

	t.Run("unfitted forest cannot score", func(t *testing.T) {
		_, err := NewForest(DefaultForestConfig()).ScoreSamples([][]float64{{1}})
		assert.True(t, apperrors.IsModelFitError(err))
	})
}

func TestForest_IsolatesOutlier(t *testing.T) {
	data := make([][]float64, 0, 201)
	for i := 0; i < 200; i++ {
		data = append(data, []float64{100 + float64(i%20), float64(i % 3)})
	}
	data = append(data, []float64{5000, 1})

	f := NewForest(DefaultForestConfig())
	require.NoError(t, f.Fit(data))

	scores, err := f.DecisionFunction(data)
	require.NoError(t, err)

	outlier := scores[200]
	for i, s := range scores[:200] {
		assert.Less(t, outlier, s, "row %d scored below the outlier", i)
	}
	assert.Less(t, outlier, 0.0)
}

func TestForest_SingleRow(t *testing.T) {
	f := NewForest(DefaultForestConfig())
	require.NoError(t, f.Fit([][]float64{{42, 0}}))

	scores, err := f.ScoreSamples([][]float64{{42, 0}})
	require.NoError(t, err)
	assert.Len(t, scores, 1)
}

func TestAveragePathLength(t *testing.T) {
	assert.Equal(t, 0.0, averagePathLength(1))
	assert.Equal(t, 1.0, averagePathLength(2))
	// c(256) from the isolation forest paper
	assert.InDelta(t, 10.24, averagePathLength(256), 0.01)
}

func TestPercentile(t *testing.T) {
	values := []float64{4, 1, 3, 2, 5}
	assert.Equal(t, 1.0, percentile(values, 0))
	assert.Equal(t, 3.0, percentile(values, 50))
	assert.Equal(t, 5.0, percentile(values, 100))
	assert.InDelta(t, 1.2, percentile(values, 5), 1e-9)
}

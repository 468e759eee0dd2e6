package anomaly

import (
	"math"
	"sort"
)

type groupStats struct {
	mean float64
	std  float64 // NaN for singleton groups
}

// summarize returns the mean and sample standard deviation (n-1 denominator) per group.
func summarize(groups []string, values []float64) map[string]groupStats {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for i, g := range groups {
		sums[g] += values[i]
		counts[g]++
	}

	out := make(map[string]groupStats, len(counts))
	sq := make(map[string]float64, len(counts))
	for g, n := range counts {
		out[g] = groupStats{mean: sums[g] / float64(n)}
	}
	for i, g := range groups {
		d := values[i] - out[g].mean
		sq[g] += d * d
	}
	for g, n := range counts {
		s := out[g]
		if n < 2 {
			s.std = math.NaN()
		} else {
			s.std = math.Sqrt(sq[g] / float64(n-1))
		}
		out[g] = s
	}
	return out
}

// encode maps each label to its index among the sorted distinct labels.
func encode(labels []string) []float64 {
	distinct := make(map[string]struct{})
	for _, l := range labels {
		distinct[l] = struct{}{}
	}
	keys := make([]string, 0, len(distinct))
	for k := range distinct {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	code := make(map[string]float64, len(keys))
	for i, k := range keys {
		code[k] = float64(i)
	}
	out := make([]float64, len(labels))
	for i, l := range labels {
		out[i] = code[l]
	}
	return out
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

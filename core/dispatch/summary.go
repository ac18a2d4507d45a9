package dispatch

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/rentmatch/core/model"
)

// Summarize computes size and distance statistics of a candidate pool.
func Summarize(cs []model.Candidate) model.PoolSummary {
	s := model.PoolSummary{Size: len(cs)}
	known := make([]float64, 0, len(cs))
	for _, c := range cs {
		if c.DistanceKnown() {
			known = append(known, c.DistanceKm)
		} else {
			s.Unknown++
		}
	}
	if len(known) == 0 {
		return s
	}
	sort.Float64s(known)
	s.MinKm = floats.Min(known)
	s.MaxKm = floats.Max(known)
	s.MeanKm = stat.Mean(known, nil)
	s.MedianKm = stat.Quantile(0.5, stat.Empirical, known, nil)
	return s
}

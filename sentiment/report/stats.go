package report

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/stat"
)

// ScoreStats summarises the final compound scores, rounded to 4 places.
type ScoreStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
}

const statPrecision = 4

// Scores computes ScoreStats over the compound scores. StdDev is the
// sample deviation and is 0 for fewer than two entries.
func Scores(entries []Entry) ScoreStats {
	if len(entries) == 0 {
		return ScoreStats{}
	}
	xs := make([]float64, len(entries))
	for i, e := range entries {
		xs[i] = e.Compound
	}
	sort.Float64s(xs)

	out := ScoreStats{
		Count:  len(xs),
		Mean:   scalar.Round(stat.Mean(xs, nil), statPrecision),
		Min:    scalar.Round(floats.Min(xs), statPrecision),
		Max:    scalar.Round(floats.Max(xs), statPrecision),
		Median: scalar.Round(stat.Quantile(0.5, stat.Empirical, xs, nil), statPrecision),
	}
	if len(xs) > 1 {
		out.StdDev = scalar.Round(stat.StdDev(xs, nil), statPrecision)
	}
	return out
}

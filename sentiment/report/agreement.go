package report

import (
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"

	"github.com/theimaginaryfoundation/ulasan-sentimen/sentiment"
)

// Agreement compares the label a rating alone would give with the label the
// text alone gives. Rows are rating labels and columns are text labels, both
// in sentiment.Labels order.
type Agreement struct {
	Labels   []sentiment.Label `json:"labels"`
	Matrix   [][]int           `json:"matrix"`
	Pairs    int               `json:"pairs"`
	Accuracy float64           `json:"accuracy"`
}

// RatingTextAgreement only counts entries that have both a valid rating
// and non-empty text.
func RatingTextAgreement(entries []Entry) Agreement {
	n := len(sentiment.Labels)
	m := mat.NewDense(n, n, nil)
	for _, e := range entries {
		if e.Rating == nil || *e.Rating < sentiment.MinRating || *e.Rating > sentiment.MaxRating {
			continue
		}
		if sentiment.Normalize(e.Text) == "" {
			continue
		}
		byRating := sentiment.Classify(sentiment.RatingScore(*e.Rating))
		byText := sentiment.Classify(e.TextScore)
		i, j := byRating.Index(), byText.Index()
		m.Set(i, j, m.At(i, j)+1)
	}

	out := Agreement{Labels: sentiment.Labels, Matrix: make([][]int, n)}
	for i := 0; i < n; i++ {
		out.Matrix[i] = make([]int, n)
		for j := 0; j < n; j++ {
			out.Matrix[i][j] = int(m.At(i, j))
		}
	}
	total := mat.Sum(m)
	out.Pairs = int(total)
	if total > 0 {
		out.Accuracy = scalar.Round(mat.Trace(m)/total, statPrecision)
	}
	return out
}

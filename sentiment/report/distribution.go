package report

import (
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/theimaginaryfoundation/ulasan-sentimen/sentiment"
)

// LabelShare is one slice of the label distribution.
type LabelShare struct {
	Label   sentiment.Label `json:"label"`
	Count   int             `json:"count"`
	Percent float64         `json:"percent"`
}

// Percent is count/total as a percentage rounded to one decimal.
func Percent(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return scalar.Round(100*float64(count)/float64(total), 1)
}

// Distribution counts entries per label, in sentiment.Labels order. Labels
// with no entries are still listed.
func Distribution(entries []Entry) []LabelShare {
	var counts [3]int
	for _, e := range entries {
		counts[e.Label.Index()]++
	}
	out := make([]LabelShare, 0, len(sentiment.Labels))
	for _, l := range sentiment.Labels {
		c := counts[l.Index()]
		out = append(out, LabelShare{Label: l, Count: c, Percent: Percent(c, len(entries))})
	}
	return out
}

// Share returns the percentage for l, or 0 if it is absent.
func Share(dist []LabelShare, l sentiment.Label) float64 {
	for _, s := range dist {
		if s.Label == l {
			return s.Percent
		}
	}
	return 0
}

// CrossRow is one row of a key×label crosstab; the label columns are
// percentages of the row total.
type CrossRow struct {
	Key      string  `json:"key"`
	Total    int     `json:"total"`
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
}

type tally struct {
	key    string
	counts [3]int
	total  int
}

func (t *tally) add(l sentiment.Label) {
	t.counts[l.Index()]++
	t.total++
}

func (t *tally) row() CrossRow {
	return CrossRow{
		Key:      t.key,
		Total:    t.total,
		Positive: Percent(t.counts[sentiment.LabelPositive.Index()], t.total),
		Neutral:  Percent(t.counts[sentiment.LabelNeutral.Index()], t.total),
		Negative: Percent(t.counts[sentiment.LabelNegative.Index()], t.total),
	}
}

// RatingCrosstab has one row per star rating present, ascending. Entries
// without a rating are left out.
func RatingCrosstab(entries []Entry) []CrossRow {
	var byRating [sentiment.MaxRating + 1]*tally
	for _, e := range entries {
		if e.Rating == nil || *e.Rating < sentiment.MinRating || *e.Rating > sentiment.MaxRating {
			continue
		}
		r := *e.Rating
		if byRating[r] == nil {
			byRating[r] = &tally{key: strconv.Itoa(r)}
		}
		byRating[r].add(e.Label)
	}
	out := []CrossRow{}
	for _, t := range byRating {
		if t != nil {
			out = append(out, t.row())
		}
	}
	return out
}

// ProductCrosstab has one row for each of the top products by review
// count. Ties go to the lexically smaller id.
func ProductCrosstab(entries []Entry, top int) []CrossRow {
	byProduct := make(map[string]*tally)
	for _, e := range entries {
		if e.ProductID == "" {
			continue
		}
		t, ok := byProduct[e.ProductID]
		if !ok {
			t = &tally{key: e.ProductID}
			byProduct[e.ProductID] = t
		}
		t.add(e.Label)
	}
	tallies := make([]*tally, 0, len(byProduct))
	for _, t := range byProduct {
		tallies = append(tallies, t)
	}
	sort.Slice(tallies, func(i, j int) bool {
		if tallies[i].total != tallies[j].total {
			return tallies[i].total > tallies[j].total
		}
		return tallies[i].key < tallies[j].key
	})
	if top > 0 && len(tallies) > top {
		tallies = tallies[:top]
	}
	out := make([]CrossRow, len(tallies))
	for i, t := range tallies {
		out[i] = t.row()
	}
	return out
}

// Package report aggregates scored reviews into the figures the dashboard
// and the insight prompt are built from.
package report

import (
	"github.com/theimaginaryfoundation/ulasan-sentimen/sentiment"
)

// Entry is one scored review as seen by the aggregates.
type Entry struct {
	ProductID     string
	Text          string
	Rating        *int
	Compound      float64
	TextScore     float64
	Label         sentiment.Label
	PositiveTerms []string
	NegativeTerms []string
	Aspects       sentiment.Aspects
}

// FromResult pairs a review with its result.
func FromResult(r sentiment.Review, productID string, res sentiment.Result) Entry {
	return Entry{
		ProductID:     productID,
		Text:          r.Text,
		Rating:        r.Rating,
		Compound:      res.CompoundScore,
		TextScore:     res.TextScore,
		Label:         res.Label,
		PositiveTerms: res.PositiveTerms,
		NegativeTerms: res.NegativeTerms,
		Aspects:       res.Aspects,
	}
}

type Options struct {
	// TopN bounds the matched-term and keyword lists.
	TopN int
	// TopProducts bounds the product crosstab.
	TopProducts int
}

func DefaultOptions() Options {
	return Options{TopN: 10, TopProducts: 10}
}

type Report struct {
	RunID            string       `json:"run_id,omitempty"`
	Total            int          `json:"total"`
	Distribution     []LabelShare `json:"distribution"`
	TopPositiveTerms []TermCount  `json:"top_positive_terms"`
	TopNegativeTerms []TermCount  `json:"top_negative_terms"`
	RatingLabels     []CrossRow   `json:"rating_labels"`
	ProductLabels    []CrossRow   `json:"product_labels"`
	Scores           ScoreStats   `json:"scores"`
	Agreement        Agreement    `json:"agreement"`
	Keywords         []TermCount  `json:"keywords"`
	TopIssues        []Issue      `json:"top_issues"`
	Recommendation   string       `json:"recommendation"`
}

// Build computes every aggregate over entries.
func Build(entries []Entry, opts Options) (Report, error) {
	if opts.TopN <= 0 {
		opts.TopN = DefaultOptions().TopN
	}
	if opts.TopProducts <= 0 {
		opts.TopProducts = DefaultOptions().TopProducts
	}

	rep := Report{
		Total:        len(entries),
		Distribution: Distribution(entries),
	}

	var pos, neg [][]string
	texts := make([]string, 0, len(entries))
	for _, e := range entries {
		pos = append(pos, e.PositiveTerms)
		neg = append(neg, e.NegativeTerms)
		texts = append(texts, e.Text)
	}
	var err error
	if rep.TopPositiveTerms, err = TermFrequencies(pos, opts.TopN); err != nil {
		return Report{}, err
	}
	if rep.TopNegativeTerms, err = TermFrequencies(neg, opts.TopN); err != nil {
		return Report{}, err
	}
	if rep.Keywords, err = Keywords(texts, opts.TopN); err != nil {
		return Report{}, err
	}

	rep.RatingLabels = RatingCrosstab(entries)
	rep.ProductLabels = ProductCrosstab(entries, opts.TopProducts)
	rep.Scores = Scores(entries)
	rep.Agreement = RatingTextAgreement(entries)
	rep.TopIssues = TopIssues(entries, 3)
	rep.Recommendation = Recommendation(rep.Distribution, rep.TopIssues)
	return rep, nil
}

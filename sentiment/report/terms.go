package report

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bbalet/stopwords"
	"github.com/go-gota/gota/dataframe"

	"github.com/theimaginaryfoundation/ulasan-sentimen/sentiment"
)

// TermCount is one row of a frequency table.
type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// rankTerms orders counts by count descending, then term ascending, and
// keeps the first top rows.
func rankTerms(counts map[string]int, top int) ([]TermCount, error) {
	if len(counts) == 0 {
		return []TermCount{}, nil
	}
	rows := make([]TermCount, 0, len(counts))
	for term, n := range counts {
		rows = append(rows, TermCount{Term: term, Count: n})
	}
	df := dataframe.LoadStructs(rows)
	if df.Err != nil {
		return nil, fmt.Errorf("rankTerms: load: %w", df.Err)
	}
	df = df.Arrange(dataframe.RevSort("Count"), dataframe.Sort("Term"))
	if df.Err != nil {
		return nil, fmt.Errorf("rankTerms: arrange: %w", df.Err)
	}

	terms := df.Col("Term").Records()
	freq, err := df.Col("Count").Int()
	if err != nil {
		return nil, fmt.Errorf("rankTerms: counts: %w", err)
	}
	if top > 0 && len(terms) > top {
		terms = terms[:top]
	}
	out := make([]TermCount, len(terms))
	for i, t := range terms {
		out[i] = TermCount{Term: t, Count: freq[i]}
	}
	return out, nil
}

// TermFrequencies counts every occurrence across the match lists.
func TermFrequencies(lists [][]string, top int) ([]TermCount, error) {
	counts := make(map[string]int)
	for _, terms := range lists {
		for _, t := range terms {
			counts[t]++
		}
	}
	return rankTerms(counts, top)
}

// Keywords ranks free-text words after Indonesian stop-word removal. Words
// shorter than three letters and numbers are skipped.
func Keywords(texts []string, top int) ([]TermCount, error) {
	counts := make(map[string]int)
	for _, text := range texts {
		norm := sentiment.Normalize(text)
		if norm == "" {
			continue
		}
		for _, w := range strings.Fields(stopwords.CleanString(norm, "id", false)) {
			if utf8.RuneCountInString(w) < 3 || !hasLetter(w) {
				continue
			}
			counts[w]++
		}
	}
	return rankTerms(counts, top)
}

func hasLetter(w string) bool {
	for _, r := range w {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// Keyword is a matched lexicon term tagged with its polarity.
type Keyword struct {
	Name      string          `json:"name"`
	Value     int             `json:"value"`
	Sentiment sentiment.Label `json:"sentiment"`
}

// LabeledKeywords counts, per review, the positive terms of positive
// reviews and the negative terms of negative reviews, and merges both
// lists by count. A term counts once per review.
func LabeledKeywords(entries []Entry, top int) ([]Keyword, error) {
	pos := make(map[string]int)
	neg := make(map[string]int)
	for _, e := range entries {
		switch e.Label {
		case sentiment.LabelPositive:
			countOnce(pos, e.PositiveTerms)
		case sentiment.LabelNegative:
			countOnce(neg, e.NegativeTerms)
		}
	}
	rankedPos, err := rankTerms(pos, 0)
	if err != nil {
		return nil, err
	}
	rankedNeg, err := rankTerms(neg, 0)
	if err != nil {
		return nil, err
	}

	out := make([]Keyword, 0, len(rankedPos)+len(rankedNeg))
	i, j := 0, 0
	for i < len(rankedPos) || j < len(rankedNeg) {
		if top > 0 && len(out) == top {
			break
		}
		if j >= len(rankedNeg) || (i < len(rankedPos) && rankedPos[i].Count >= rankedNeg[j].Count) {
			out = append(out, Keyword{Name: rankedPos[i].Term, Value: rankedPos[i].Count, Sentiment: sentiment.LabelPositive})
			i++
			continue
		}
		out = append(out, Keyword{Name: rankedNeg[j].Term, Value: rankedNeg[j].Count, Sentiment: sentiment.LabelNegative})
		j++
	}
	return out, nil
}

func countOnce(counts map[string]int, terms []string) {
	seen := make(map[string]bool, len(terms))
	for _, t := range terms {
		if seen[t] {
			continue
		}
		seen[t] = true
		counts[t]++
	}
}

package sentiment

import (
	"strings"

	"github.com/jonreiter/govader"
)

// TextScore is the text-only polarity of a normalized review.
type TextScore struct {
	Score         float64
	PositiveTerms []string
	NegativeTerms []string
}

// TextScorer runs VADER with the domain lexicon layered over the general
// one. It owns its analyzer; give each goroutine its own TextScorer.
type TextScorer struct {
	lexicon *Lexicon
	sia     *govader.SentimentIntensityAnalyzer
}

// NewTextScorer builds an analyzer whose lexicon is the general VADER
// vocabulary overridden by the domain entries.
func NewTextScorer(lex *Lexicon) (*TextScorer, error) {
	if lex == nil {
		return nil, errNilLexicon
	}
	sia := govader.NewSentimentIntensityAnalyzer()
	domain := lex.Valences()
	// Copy rather than write into the analyzer's map, which may be shared.
	merged := make(map[string]float64, len(sia.Lexicon)+len(domain))
	for term, valence := range sia.Lexicon {
		merged[term] = valence
	}
	for term, valence := range domain {
		merged[term] = valence
	}
	sia.Lexicon = merged
	return &TextScorer{lexicon: lex, sia: sia}, nil
}

// Score returns the compound score and the matched terms in token order,
// duplicates included. Matching is exact on whitespace-split tokens.
func (s *TextScorer) Score(normalized string) TextScore {
	out := TextScore{PositiveTerms: []string{}, NegativeTerms: []string{}}
	if normalized == "" {
		return out
	}
	out.Score = s.sia.PolarityScores(normalized).Compound
	for _, tok := range strings.Fields(normalized) {
		switch p, _ := s.lexicon.Lookup(tok); p {
		case PolarityPositive:
			out.PositiveTerms = append(out.PositiveTerms, tok)
		case PolarityNegative:
			out.NegativeTerms = append(out.NegativeTerms, tok)
		}
	}
	return out
}

package sentiment

// Engine scores single reviews. It is not safe for concurrent use; the
// scheduler builds one per worker.
type Engine struct {
	scorer *TextScorer
}

func NewEngine(lex *Lexicon) (*Engine, error) {
	s, err := NewTextScorer(lex)
	if err != nil {
		return nil, err
	}
	return &Engine{scorer: s}, nil
}

// Score runs normalize, text scoring, fusion, classification and aspect
// derivation for one review.
func (e *Engine) Score(r Review) Result {
	text := Normalize(r.Text)
	ts := e.scorer.Score(text)
	compound := Fuse(r.Rating, text, ts.Score)
	return Result{
		CompoundScore:   compound,
		TextScore:       ts.Score,
		NormalizedScore: NormalizeScore(compound),
		Label:           Classify(compound),
		PositiveTerms:   ts.PositiveTerms,
		NegativeTerms:   ts.NegativeTerms,
		NormalizedText:  text,
		IsTextEmpty:     text == "",
		Aspects:         DeriveAspects(ts.PositiveTerms, ts.NegativeTerms),
	}
}

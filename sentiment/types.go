package sentiment

import (
	"math"
	"strconv"
	"strings"
)

// Review is one input record, identified by its position in the source.
type Review struct {
	Text   string
	Rating *int
}

// Rating returns a pointer to v when it is a valid 1..5 rating.
func Rating(v int) *int {
	if v < MinRating || v > MaxRating {
		return nil
	}
	return &v
}

const (
	MinRating = 1
	MaxRating = 5
)

// ParseRating reads "4" or "4.0". Blank, non-numeric, fractional and
// out-of-range values are absent.
func ParseRating(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return Rating(n)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f != math.Trunc(f) {
		return nil
	}
	return Rating(int(f))
}

func validRating(r *int) bool {
	return r != nil && *r >= MinRating && *r <= MaxRating
}

// Result is the scored form of one Review, at the same ordinal position.
type Result struct {
	CompoundScore   float64  `json:"compound_score"`
	TextScore       float64  `json:"text_score"`
	NormalizedScore float64  `json:"normalized_score"`
	Label           Label    `json:"label"`
	PositiveTerms   []string `json:"matched_positive_terms"`
	NegativeTerms   []string `json:"matched_negative_terms"`
	NormalizedText  string   `json:"normalized_text"`
	IsTextEmpty     bool     `json:"is_text_empty"`
	Aspects         Aspects  `json:"aspects"`
}

// NormalizeScore maps a compound score in [-1, 1] onto [0, 10].
func NormalizeScore(compound float64) float64 {
	return (compound + 1) * 5
}

// CompoundFromNormalized inverts NormalizeScore.
func CompoundFromNormalized(normalized float64) float64 {
	return normalized/5 - 1
}

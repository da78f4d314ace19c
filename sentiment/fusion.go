package sentiment

const (
	ratingWeight = 0.7
	textWeight   = 0.3
)

// RatingScore maps a 1..5 rating onto [-1, 1].
func RatingScore(rating int) float64 {
	return float64(rating-3) / 2
}

// Fuse combines an optional rating with the text score. Precedence:
//
//  1. rating 5 without text is uninformative: 0
//  2. rating without text: the rating alone
//  3. rating with text: 70% rating, 30% text
//  4. no rating: the text score
//
// A rating outside 1..5 counts as absent.
func Fuse(rating *int, text string, textScore float64) float64 {
	if !validRating(rating) {
		if text == "" {
			return 0
		}
		return textScore
	}
	r := *rating
	if text == "" {
		if r == MaxRating {
			return 0
		}
		return RatingScore(r)
	}
	return ratingWeight*RatingScore(r) + textWeight*textScore
}

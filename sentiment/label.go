package sentiment

// Label is the discrete sentiment class of a compound score.
type Label string

const (
	LabelPositive Label = "positive"
	LabelNeutral  Label = "neutral"
	LabelNegative Label = "negative"
)

// Labels lists every label in display order.
var Labels = []Label{LabelPositive, LabelNeutral, LabelNegative}

// Dead band around zero; both bounds are neutral.
const (
	PositiveThreshold = 0.05
	NegativeThreshold = -0.05
)

// Classify maps a compound score to a label.
func Classify(compound float64) Label {
	switch {
	case compound > PositiveThreshold:
		return LabelPositive
	case compound < NegativeThreshold:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

// Indonesian returns the label as used in exported aspect maps.
func (l Label) Indonesian() string {
	switch l {
	case LabelPositive:
		return "positif"
	case LabelNegative:
		return "negatif"
	default:
		return "netral"
	}
}

// Index orders labels for matrices: positive 0, neutral 1, negative 2.
func (l Label) Index() int {
	switch l {
	case LabelPositive:
		return 0
	case LabelNegative:
		return 2
	default:
		return 1
	}
}

package sentiment

// AspectName is one of the fixed review sub-dimensions.
type AspectName string

const (
	AspectPrice    AspectName = "price"
	AspectQuality  AspectName = "quality"
	AspectDelivery AspectName = "delivery"
	AspectService  AspectName = "service"
)

// AspectNames is the evaluation order.
var AspectNames = []AspectName{AspectPrice, AspectQuality, AspectDelivery, AspectService}

// ExportKey is the Indonesian key used by the document export.
func (a AspectName) ExportKey() string {
	switch a {
	case AspectPrice:
		return "harga"
	case AspectQuality:
		return "kualitas"
	case AspectDelivery:
		return "pengiriman"
	case AspectService:
		return "layanan"
	default:
		return string(a)
	}
}

const (
	AspectValuePositive = 8
	AspectValueNeutral  = 5
	AspectValueNegative = 3
)

type AspectScore struct {
	Value int   `json:"value"`
	Label Label `json:"label"`
}

var (
	aspectNeutral  = AspectScore{Value: AspectValueNeutral, Label: LabelNeutral}
	aspectPositive = AspectScore{Value: AspectValuePositive, Label: LabelPositive}
	aspectNegative = AspectScore{Value: AspectValueNegative, Label: LabelNegative}
)

// Aspects holds one score per aspect.
type Aspects struct {
	Price    AspectScore `json:"price"`
	Quality  AspectScore `json:"quality"`
	Delivery AspectScore `json:"delivery"`
	Service  AspectScore `json:"service"`
}

// DefaultAspects has every aspect at (5, neutral).
func DefaultAspects() Aspects {
	return Aspects{Price: aspectNeutral, Quality: aspectNeutral, Delivery: aspectNeutral, Service: aspectNeutral}
}

// Get returns the score for name; unknown names read as neutral.
func (a Aspects) Get(name AspectName) AspectScore {
	if p := a.field(name); p != nil {
		return *p
	}
	return aspectNeutral
}

func (a *Aspects) field(name AspectName) *AspectScore {
	switch name {
	case AspectPrice:
		return &a.Price
	case AspectQuality:
		return &a.Quality
	case AspectDelivery:
		return &a.Delivery
	case AspectService:
		return &a.Service
	}
	return nil
}

type aspectRule struct {
	name     AspectName
	positive map[string]struct{}
	negative map[string]struct{}
}

func set(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// Narrower than the lexicon on purpose; "responsif" is not a lexicon term
// and only fires if a custom lexicon adds it.
var aspectRules = []aspectRule{
	{AspectPrice, set("murah", "terjangkau", "worth"), set("mahal", "kemahalan")},
	{AspectQuality, set("bagus", "berkualitas", "mantap", "keren"), set("jelek", "buruk", "rusak")},
	{AspectDelivery, set("cepat", "tepat"), set("lambat", "telat", "lama")},
	{AspectService, set("ramah", "responsif", "membantu"), set("kasar", "tidak")},
}

// DeriveAspects scores each aspect from the matched terms. A positive hit
// wins over a negative hit for the same aspect.
func DeriveAspects(positiveMatches, negativeMatches []string) Aspects {
	out := DefaultAspects()
	for _, r := range aspectRules {
		p := out.field(r.name)
		switch {
		case anyIn(positiveMatches, r.positive):
			*p = aspectPositive
		case anyIn(negativeMatches, r.negative):
			*p = aspectNegative
		}
	}
	return out
}

func anyIn(words []string, set map[string]struct{}) bool {
	for _, w := range words {
		if _, ok := set[w]; ok {
			return true
		}
	}
	return false
}

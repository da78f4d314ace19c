package sentiment

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed lexicon_default.yaml
var defaultLexiconYAML []byte

// Polarity tags which side of the lexicon a term belongs to.
type Polarity int

const (
	PolarityNone Polarity = iota
	PolarityPositive
	PolarityNegative
)

func (p Polarity) String() string {
	switch p {
	case PolarityPositive:
		return "positive"
	case PolarityNegative:
		return "negative"
	default:
		return "none"
	}
}

// Lexicon is an immutable pair of disjoint term → weight mappings.
// Weights are stored as positive magnitudes; the polarity decides the sign.
type Lexicon struct {
	positive map[string]float64
	negative map[string]float64
}

// LexiconError describes why a lexicon could not be built.
type LexiconError struct {
	Term   string
	Line   int
	Reason string
}

func (e *LexiconError) Error() string {
	var b strings.Builder
	b.WriteString("lexicon")
	if e.Line > 0 {
		fmt.Fprintf(&b, " line %d", e.Line)
	}
	if e.Term != "" {
		fmt.Fprintf(&b, " term %q", e.Term)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	return b.String()
}

func (e *LexiconError) Is(target error) bool { return target == ErrLexiconLoad }

// NewLexicon validates and copies the two mappings.
func NewLexicon(positive, negative map[string]float64) (*Lexicon, error) {
	l := &Lexicon{
		positive: make(map[string]float64, len(positive)),
		negative: make(map[string]float64, len(negative)),
	}
	for term, w := range positive {
		if err := checkEntry(term, w); err != nil {
			return nil, err
		}
		l.positive[term] = w
	}
	for term, w := range negative {
		if err := checkEntry(term, w); err != nil {
			return nil, err
		}
		if _, ok := l.positive[term]; ok {
			return nil, &LexiconError{Term: term, Reason: "term is both positive and negative"}
		}
		l.negative[term] = w
	}
	if len(l.positive)+len(l.negative) == 0 {
		return nil, &LexiconError{Reason: "no entries"}
	}
	return l, nil
}

func checkEntry(term string, w float64) error {
	if strings.TrimSpace(term) == "" {
		return &LexiconError{Term: term, Reason: "empty term"}
	}
	if term != strings.ToLower(strings.TrimSpace(term)) {
		return &LexiconError{Term: term, Reason: "term must be trimmed lowercase"}
	}
	if !(w > 0) {
		return &LexiconError{Term: term, Reason: fmt.Sprintf("weight must be > 0, got %v", w)}
	}
	return nil
}

// DefaultLexicon returns the built-in Indonesian domain lexicon.
func DefaultLexicon() (*Lexicon, error) {
	l, err := ParseLexicon(defaultLexiconYAML)
	if err != nil {
		return nil, fmt.Errorf("DefaultLexicon: %w", err)
	}
	return l, nil
}

// LoadLexicon reads a YAML lexicon file.
func LoadLexicon(path string) (*Lexicon, error) {
	if path == "" {
		return nil, fmt.Errorf("LoadLexicon: %w: path is empty", ErrLexiconLoad)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadLexicon: read file: %w: %w", ErrLexiconLoad, err)
	}
	l, err := ParseLexicon(b)
	if err != nil {
		return nil, fmt.Errorf("LoadLexicon: %s: %w", path, err)
	}
	return l, nil
}

// ParseLexicon decodes a document with top-level "positive" and "negative"
// mappings. Duplicate keys are rejected instead of letting the last one win.
func ParseLexicon(data []byte) (*Lexicon, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLexiconLoad, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, &LexiconError{Reason: "empty document"}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &LexiconError{Line: root.Line, Reason: "top level must be a mapping"}
	}

	var positive, negative map[string]float64
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		var err error
		switch key.Value {
		case "positive":
			if positive != nil {
				return nil, &LexiconError{Line: key.Line, Reason: "section positive defined twice"}
			}
			positive, err = decodeSection(val)
		case "negative":
			if negative != nil {
				return nil, &LexiconError{Line: key.Line, Reason: "section negative defined twice"}
			}
			negative, err = decodeSection(val)
		default:
			return nil, &LexiconError{Line: key.Line, Reason: fmt.Sprintf("unknown section %q", key.Value)}
		}
		if err != nil {
			return nil, err
		}
	}
	return NewLexicon(positive, negative)
}

func decodeSection(n *yaml.Node) (map[string]float64, error) {
	out := map[string]float64{}
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return out, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, &LexiconError{Line: n.Line, Reason: "section must be a mapping of term to weight"}
	}
	lines := make(map[string]int, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if prev, dup := lines[k.Value]; dup {
			return nil, &LexiconError{
				Term:   k.Value,
				Line:   k.Line,
				Reason: fmt.Sprintf("duplicate key, first defined at line %d", prev),
			}
		}
		lines[k.Value] = k.Line
		if v.Kind != yaml.ScalarNode {
			return nil, &LexiconError{Term: k.Value, Line: v.Line, Reason: "weight must be a number"}
		}
		w, err := strconv.ParseFloat(v.Value, 64)
		if err != nil {
			return nil, &LexiconError{Term: k.Value, Line: v.Line, Reason: "weight must be a number"}
		}
		out[k.Value] = w
	}
	return out, nil
}

// Lookup reports which side a token belongs to and its magnitude.
func (l *Lexicon) Lookup(term string) (Polarity, float64) {
	if w, ok := l.positive[term]; ok {
		return PolarityPositive, w
	}
	if w, ok := l.negative[term]; ok {
		return PolarityNegative, w
	}
	return PolarityNone, 0
}

// Valences returns a fresh signed term → valence map.
func (l *Lexicon) Valences() map[string]float64 {
	out := make(map[string]float64, len(l.positive)+len(l.negative))
	for t, w := range l.positive {
		out[t] = w
	}
	for t, w := range l.negative {
		out[t] = -w
	}
	return out
}

// Size returns the number of positive and negative entries.
func (l *Lexicon) Size() (positive, negative int) {
	return len(l.positive), len(l.negative)
}

// Phrases lists multi-word entries. Token matching splits on whitespace,
// so these never appear in match lists.
func (l *Lexicon) Phrases() []string {
	var out []string
	for _, m := range []map[string]float64{l.positive, l.negative} {
		for t := range m {
			if len(strings.Fields(t)) > 1 {
				out = append(out, t)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Terms returns the sorted single-side vocabulary.
func (l *Lexicon) Terms(p Polarity) []string {
	var m map[string]float64
	switch p {
	case PolarityPositive:
		m = l.positive
	case PolarityNegative:
		m = l.negative
	default:
		return nil
	}
	out := make([]string, 0, len(m))
	for t := range m {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

var errNilLexicon = errors.New("lexicon is nil")

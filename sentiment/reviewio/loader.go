package reviewio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/theimaginaryfoundation/ulasan-sentimen/sentiment"
)

// Columns selects which header names map to review fields. An empty
// Product tries produk_id, then produk.
type Columns struct {
	Text    string
	Rating  string
	Product string
	User    string
}

func DefaultColumns() Columns {
	return Columns{Text: "komentar", Rating: "rating", User: "pengguna"}
}

var productFallbacks = []string{"produk_id", "produk"}

// Meta carries the per-row identifiers the export needs.
type Meta struct {
	ProductID string
	User      string
	RawRating string
}

// LoadStats counts rows that degraded instead of failing.
type LoadStats struct {
	Rows          int `json:"rows"`
	EmptyText     int `json:"empty_text"`
	MissingRating int `json:"missing_rating"`
	InvalidRating int `json:"invalid_rating"`
}

// Table is a loaded source table. Reviews, Meta and Rows share indices.
type Table struct {
	Header  []string
	Rows    [][]string
	Reviews []sentiment.Review
	Meta    []Meta
	Stats   LoadStats

	HasRating  bool
	HasProduct bool
	HasUser    bool
}

func LoadReviewsFile(path string, cols Columns) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("LoadReviewsFile: open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	comma := ','
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		comma = '\t'
	}
	t, err := LoadReviews(f, comma, cols)
	if err != nil {
		return nil, fmt.Errorf("LoadReviewsFile: %s: %w", filepath.Base(path), err)
	}
	return t, nil
}

// LoadReviews reads a delimited table with a header row, preserving row
// order. Non-numeric or out-of-range ratings load as absent.
func LoadReviews(r io.Reader, comma rune, cols Columns) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty input")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = cleanCell(header[i])
	}

	textCol := findColumn(header, cols.Text)
	if textCol < 0 {
		return nil, fmt.Errorf("missing text column %q", cols.Text)
	}
	ratingCol := findColumn(header, cols.Rating)
	userCol := findColumn(header, cols.User)
	var productCol int
	if cols.Product != "" {
		productCol = findColumn(header, cols.Product)
	} else {
		productCol = findColumn(header, productFallbacks...)
	}

	t := &Table{
		Header:     header,
		HasRating:  ratingCol >= 0,
		HasProduct: productCol >= 0,
		HasUser:    userCol >= 0,
	}
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		if len(row) < len(header) {
			row = append(row, make([]string, len(header)-len(row))...)
		}

		rev := sentiment.Review{Text: row[textCol]}
		if strings.TrimSpace(rev.Text) == "" {
			t.Stats.EmptyText++
		}
		m := Meta{}
		if ratingCol >= 0 {
			m.RawRating = strings.TrimSpace(row[ratingCol])
			rev.Rating = sentiment.ParseRating(m.RawRating)
		}
		switch {
		case rev.Rating != nil:
		case m.RawRating == "":
			t.Stats.MissingRating++
		default:
			t.Stats.InvalidRating++
		}
		if productCol >= 0 {
			m.ProductID = strings.TrimSpace(row[productCol])
		}
		if userCol >= 0 {
			m.User = strings.TrimSpace(row[userCol])
		}

		t.Rows = append(t.Rows, row)
		t.Reviews = append(t.Reviews, rev)
		t.Meta = append(t.Meta, m)
	}
	t.Stats.Rows = len(t.Rows)
	return t, nil
}

func cleanCell(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "\ufeff")
	return v
}

func findColumn(header []string, candidates ...string) int {
	for _, cand := range candidates {
		if cand == "" {
			continue
		}
		for i, col := range header {
			if strings.EqualFold(col, cand) {
				return i
			}
		}
	}
	return -1
}

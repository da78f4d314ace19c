package reviewio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theimaginaryfoundation/ulasan-sentimen/sentiment"
	"github.com/theimaginaryfoundation/ulasan-sentimen/sentiment/fileutils"
)

// ResultColumns are appended to the source columns in the result table.
var ResultColumns = []string{
	"sentiment_score",
	"skor",
	"sentiment_label",
	"label",
	"posWords",
	"negWords",
	"preprocessed_comment",
}

// JoinTerms renders a match list the way the result table stores it.
func JoinTerms(terms []string) string {
	return strings.Join(terms, ",")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ResultTable joins the source rows with their results by position. Source
// columns that share a name with a result column are replaced.
func ResultTable(t *Table, results []sentiment.Result) ([]string, [][]string, error) {
	if len(results) != len(t.Rows) {
		return nil, nil, fmt.Errorf("ResultTable: %d results for %d rows", len(results), len(t.Rows))
	}

	reserved := make(map[string]bool, len(ResultColumns))
	for _, c := range ResultColumns {
		reserved[c] = true
	}
	var keep []int
	header := make([]string, 0, len(t.Header)+len(ResultColumns))
	for i, h := range t.Header {
		if reserved[h] {
			continue
		}
		keep = append(keep, i)
		header = append(header, h)
	}
	header = append(header, ResultColumns...)

	rows := make([][]string, len(t.Rows))
	for i, src := range t.Rows {
		r := results[i]
		row := make([]string, 0, len(header))
		for _, k := range keep {
			row = append(row, src[k])
		}
		row = append(row,
			formatFloat(r.CompoundScore),
			formatFloat(r.NormalizedScore),
			string(r.Label),
			string(r.Label),
			JoinTerms(r.PositiveTerms),
			JoinTerms(r.NegativeTerms),
			r.NormalizedText,
		)
		rows[i] = row
	}
	return header, rows, nil
}

// WriteResults persists the joined result table atomically.
func WriteResults(path string, t *Table, results []sentiment.Result) error {
	header, rows, err := ResultTable(t, results)
	if err != nil {
		return err
	}
	if err := fileutils.WriteCSVAtomic(path, header, rows); err != nil {
		return fmt.Errorf("WriteResults: %w", err)
	}
	return nil
}

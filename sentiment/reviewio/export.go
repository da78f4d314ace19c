package reviewio

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/invopop/jsonschema"

	"github.com/theimaginaryfoundation/ulasan-sentimen/sentiment"
	"github.com/theimaginaryfoundation/ulasan-sentimen/sentiment/fileutils"
)

const unknown = "unknown"

type AspekScore struct {
	Skor  int    `json:"skor" jsonschema:"enum=3,enum=5,enum=8"`
	Label string `json:"label" jsonschema:"enum=positif,enum=netral,enum=negatif"`
}

type Aspek struct {
	Harga      AspekScore `json:"harga"`
	Kualitas   AspekScore `json:"kualitas"`
	Pengiriman AspekScore `json:"pengiriman"`
	Layanan    AspekScore `json:"layanan"`
}

// ExportRow is one review document for the downstream document store.
type ExportRow struct {
	UlasanID       string  `json:"ulasanId" jsonschema:"description=Ordinal of the review in the source table"`
	ProdukID       string  `json:"produkId"`
	KomentarUlasan string  `json:"komentarUlasan"`
	RatingUlasan   *int    `json:"ratingUlasan" jsonschema:"oneof_type=integer;null"`
	Pengguna       string  `json:"pengguna"`
	Skor           float64 `json:"skor" jsonschema:"minimum=0,maximum=10"`
	Label          string  `json:"label" jsonschema:"enum=positive,enum=neutral,enum=negative"`
	Aspek          Aspek   `json:"aspek"`
	Alasan         string  `json:"alasan"`
}

func aspekScore(s sentiment.AspectScore) AspekScore {
	return AspekScore{Skor: s.Value, Label: s.Label.Indonesian()}
}

func ToAspek(a sentiment.Aspects) Aspek {
	return Aspek{
		Harga:      aspekScore(a.Price),
		Kualitas:   aspekScore(a.Quality),
		Pengiriman: aspekScore(a.Delivery),
		Layanan:    aspekScore(a.Service),
	}
}

// Justification explains a score from the rating and the matched terms.
func Justification(rating *int, positive, negative []string) string {
	r, pos, neg := "tidak ada", "tidak ada", "tidak ada"
	if rating != nil {
		r = strconv.Itoa(*rating)
	}
	if len(positive) > 0 {
		pos = JoinTerms(positive)
	}
	if len(negative) > 0 {
		neg = JoinTerms(negative)
	}
	return fmt.Sprintf("Ulasan mendapat rating %s dan mengandung kata positif: %s, kata negatif: %s", r, pos, neg)
}

// BuildExport maps each scored row to its export document.
func BuildExport(t *Table, results []sentiment.Result) ([]ExportRow, error) {
	if len(results) != len(t.Reviews) {
		return nil, fmt.Errorf("BuildExport: %d results for %d reviews", len(results), len(t.Reviews))
	}
	out := make([]ExportRow, len(results))
	for i, res := range results {
		rev, meta := t.Reviews[i], t.Meta[i]
		row := ExportRow{
			UlasanID:       strconv.Itoa(i),
			ProdukID:       meta.ProductID,
			KomentarUlasan: rev.Text,
			RatingUlasan:   rev.Rating,
			Pengguna:       meta.User,
			Skor:           res.NormalizedScore,
			Label:          string(res.Label),
			Aspek:          ToAspek(res.Aspects),
			Alasan:         Justification(rev.Rating, res.PositiveTerms, res.NegativeTerms),
		}
		if row.ProdukID == "" {
			row.ProdukID = unknown
		}
		if row.Pengguna == "" {
			row.Pengguna = unknown
		}
		out[i] = row
	}
	return out, nil
}

var exportColumns = []string{"ulasanId", "produkId", "komentarUlasan", "ratingUlasan", "pengguna", "skor", "label", "aspek", "alasan"}

// ExportTable flattens rows for CSV; aspek becomes a JSON string.
func ExportTable(rows []ExportRow) ([]string, [][]string, error) {
	out := make([][]string, len(rows))
	for i, r := range rows {
		aspek, err := json.Marshal(r.Aspek)
		if err != nil {
			return nil, nil, fmt.Errorf("ExportTable: row %d: %w", i, err)
		}
		rating := ""
		if r.RatingUlasan != nil {
			rating = strconv.Itoa(*r.RatingUlasan)
		}
		out[i] = []string{r.UlasanID, r.ProdukID, r.KomentarUlasan, rating, r.Pengguna, formatFloat(r.Skor), r.Label, string(aspek), r.Alasan}
	}
	return exportColumns, out, nil
}

func WriteExportCSV(path string, rows []ExportRow) error {
	header, table, err := ExportTable(rows)
	if err != nil {
		return err
	}
	if err := fileutils.WriteCSVAtomic(path, header, table); err != nil {
		return fmt.Errorf("WriteExportCSV: %w", err)
	}
	return nil
}

func WriteExportJSONL(path string, rows []ExportRow) error {
	if err := fileutils.WriteJSONLinesAtomic(path, rows); err != nil {
		return fmt.Errorf("WriteExportJSONL: %w", err)
	}
	return nil
}

// ExportSchema describes ExportRow for the document store's validator.
func ExportSchema() *jsonschema.Schema {
	r := jsonschema.Reflector{DoNotReference: true}
	s := r.Reflect(&ExportRow{})
	s.Title = "ulasan_sentimen"
	s.Description = "Scored product review with aspect breakdown"
	return s
}

func WriteExportSchema(path string) error {
	if err := fileutils.WriteJSONFileAtomic(path, ExportSchema(), true); err != nil {
		return fmt.Errorf("WriteExportSchema: %w", err)
	}
	return nil
}

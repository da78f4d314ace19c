package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/theimaginaryfoundation/ulasan-sentimen/sentiment"
)

// Issue is an aspect that negative reviews complain about.
type Issue struct {
	Aspect     string  `json:"aspect"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// TopIssues counts negative aspects among negative reviews and returns the
// top ones with their share of those reviews. Aspects never flagged are
// omitted; ties keep the fixed aspect order.
func TopIssues(entries []Entry, top int) []Issue {
	counts := make(map[sentiment.AspectName]int, len(sentiment.AspectNames))
	negatives := 0
	for _, e := range entries {
		if e.Label != sentiment.LabelNegative {
			continue
		}
		negatives++
		for _, name := range sentiment.AspectNames {
			if e.Aspects.Get(name).Label == sentiment.LabelNegative {
				counts[name]++
			}
		}
	}

	out := []Issue{}
	for _, name := range sentiment.AspectNames {
		if c := counts[name]; c > 0 {
			out = append(out, Issue{Aspect: name.ExportKey(), Count: c, Percentage: Percent(c, negatives)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if top > 0 && len(out) > top {
		out = out[:top]
	}
	return out
}

var aspectAdvice = map[string]string{
	"harga":      "Evaluasi strategi harga atau berikan penawaran khusus untuk meningkatkan persepsi nilai.",
	"kualitas":   "Tingkatkan standar kualitas produk dan lakukan quality control yang lebih ketat.",
	"pengiriman": "Perbaiki proses pengiriman dan komunikasi status pengiriman kepada pelanggan.",
	"layanan":    "Tingkatkan pelatihan customer service dan waktu respons terhadap keluhan pelanggan.",
}

const (
	defaultAdvice = "Tinjau ulasan negatif secara berkala dan lakukan perbaikan berkelanjutan."
	keepAdvice    = "Pertahankan kualitas produk dan layanan saat ini, sambil terus memantau umpan balik pelanggan."
)

// Recommendation writes the Indonesian summary shown under the analysis
// panel, keyed on the positive share and the top issues.
func Recommendation(dist []LabelShare, issues []Issue) string {
	positive := Share(dist, sentiment.LabelPositive)
	negative := Share(dist, sentiment.LabelNegative)

	var b strings.Builder
	b.WriteString("Berdasarkan analisis sentimen, ")
	switch {
	case positive >= 70:
		fmt.Fprintf(&b, "sebagian besar pelanggan puas dengan produk (%.1f%%). ", positive)
	case positive >= 50:
		fmt.Fprintf(&b, "cukup banyak pelanggan puas dengan produk (%.1f%%), namun masih ada ruang untuk perbaikan. ", positive)
	default:
		fmt.Fprintf(&b, "tingkat kepuasan pelanggan perlu ditingkatkan karena hanya %.1f%% ulasan yang positif. ", positive)
	}

	if len(issues) > 0 {
		names := make([]string, len(issues))
		for i, is := range issues {
			names[i] = is.Aspect
		}
		fmt.Fprintf(&b, "Ulasan negatif (%.1f%%) terutama terkait dengan %s. ", negative, joinIndonesian(names))
	}

	b.WriteString("Rekomendasi: ")
	switch {
	case len(issues) == 0:
		b.WriteString(keepAdvice)
	case aspectAdvice[issues[0].Aspect] != "":
		b.WriteString(aspectAdvice[issues[0].Aspect])
	default:
		b.WriteString(defaultAdvice)
	}
	return b.String()
}

// joinIndonesian renders "a", "a dan b", "a, b dan c".
func joinIndonesian(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " dan " + items[len(items)-1]
}

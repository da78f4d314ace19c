package fileutils

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileAtomic_LeavesTargetOnFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := filepath.Join(dir, "out", "result.csv")

	if err := WriteFileAtomic(p, 0o644, func(w io.Writer) error {
		_, err := io.WriteString(w, "first")
		return err
	}); err != nil {
		t.Fatalf("write: %v", err)
	}

	boom := errors.New("boom")
	err := WriteFileAtomic(p, 0o644, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v", err)
	}

	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "first" {
		t.Fatalf("content=%q", string(b))
	}

	entries, err := os.ReadDir(filepath.Dir(p))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestWriteCSVAtomic(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "a.csv")
	err := WriteCSVAtomic(p, []string{"komentar", "label"}, [][]string{
		{"bagus, adem", "positive"},
		{"", "neutral"},
	})
	if err != nil {
		t.Fatalf("WriteCSVAtomic: %v", err)
	}
	b, _ := os.ReadFile(p)
	want := "komentar,label\n\"bagus, adem\",positive\n,neutral\n"
	if string(b) != want {
		t.Fatalf("got %q, want %q", string(b), want)
	}
}

func TestWriteJSONLinesAtomic(t *testing.T) {
	t.Parallel()

	type row struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	}
	p := filepath.Join(t.TempDir(), "rows.jsonl")
	if err := WriteJSONLinesAtomic(p, []row{{"0", "a<b"}, {"1", "c"}}); err != nil {
		t.Fatalf("WriteJSONLinesAtomic: %v", err)
	}
	b, _ := os.ReadFile(p)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines=%d", len(lines))
	}
	if lines[0] != `{"id":"0","text":"a<b"}` {
		t.Fatalf("line0=%q", lines[0])
	}
}

func TestWriteJSONFileAtomic(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "r.json")
	if err := WriteJSONFileAtomic(p, map[string]int{"total": 3}, false); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, _ := os.ReadFile(p)
	if string(b) != "{\"total\":3}\n" {
		t.Fatalf("got %q", string(b))
	}
	if !FileExists(p) || FileExists(p+".missing") {
		t.Fatalf("FileExists mismatch")
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	if got := Truncate("  pengiriman  ", 0); got != "pengiriman" {
		t.Fatalf("got %q", got)
	}
	if got := Truncate("pengiriman", 5); got != "pengi…" {
		t.Fatalf("got %q", got)
	}
}

func TestDecodeModelJSON(t *testing.T) {
	t.Parallel()

	var v struct {
		Summary string `json:"summary"`
	}
	if err := DecodeModelJSON("Here you go:\n```json\n{\"summary\":\"ok\"}\n```", &v); err != nil {
		t.Fatalf("DecodeModelJSON: %v", err)
	}
	if v.Summary != "ok" {
		t.Fatalf("Summary=%q", v.Summary)
	}
	if err := DecodeModelJSON(`Ringkasan: {"summary":"harga {mahal}"} lalu {catatan}`, &v); err != nil {
		t.Fatalf("DecodeModelJSON: %v", err)
	}
	if v.Summary != "harga {mahal}" {
		t.Fatalf("Summary=%q", v.Summary)
	}
	if err := DecodeModelJSON("tidak ada objek", &v); err == nil {
		t.Fatalf("expected error without an object")
	}
	if err := DecodeModelJSON("   ", &v); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("empty err=%v", err)
	}
}

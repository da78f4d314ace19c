package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/theimaginaryfoundation/ulasan-sentimen/sentiment"
	"github.com/theimaginaryfoundation/ulasan-sentimen/sentiment/store"
)

func TestParseFlags_Defaults(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("review-scorer", flag.ContinueOnError)
	cfg, err := parseFlags(fs, nil)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.InPath == "" || cfg.OutPath == "" {
		t.Fatalf("expected default paths, got %+v", cfg)
	}
	if cfg.TextCol != "komentar" || cfg.RatingCol != "rating" || cfg.UserCol != "pengguna" || cfg.ProductCol != "" {
		t.Fatalf("columns=%q/%q/%q/%q", cfg.TextCol, cfg.RatingCol, cfg.UserCol, cfg.ProductCol)
	}
	if cfg.Workers != 0 || cfg.LogLevel != "info" {
		t.Fatalf("Workers=%d LogLevel=%q", cfg.Workers, cfg.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestParseFlags_Overrides(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("review-scorer", flag.ContinueOnError)
	cfg, err := parseFlags(fs, []string{
		"-in", "a/b/../ulasan.tsv",
		"-out", "x/hasil.csv",
		"-export-dir", "x/export/",
		"-db", "x/ulasan.db",
		"-lexicon", "lex.yaml",
		"-workers", "8",
		"-text-col", "ulasan",
		"-rating-col", "bintang",
		"-product-col", "sku",
		"-user-col", "nama",
		"-pretty",
		"-log-level", "debug",
		"-log-json",
	})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.InPath != "a/ulasan.tsv" {
		t.Fatalf("InPath=%q, want %q", cfg.InPath, "a/ulasan.tsv")
	}
	if cfg.ExportDir != "x/export" {
		t.Fatalf("ExportDir=%q", cfg.ExportDir)
	}
	if cfg.DBPath != "x/ulasan.db" || cfg.LexiconPath != "lex.yaml" {
		t.Fatalf("DBPath=%q LexiconPath=%q", cfg.DBPath, cfg.LexiconPath)
	}
	if cfg.Workers != 8 {
		t.Fatalf("Workers=%d", cfg.Workers)
	}
	if cfg.TextCol != "ulasan" || cfg.RatingCol != "bintang" || cfg.ProductCol != "sku" || cfg.UserCol != "nama" {
		t.Fatalf("columns=%+v", cfg)
	}
	if !cfg.Pretty || !cfg.LogJSON || cfg.LogLevel != "debug" {
		t.Fatalf("logging flags=%v/%v/%q", cfg.Pretty, cfg.LogJSON, cfg.LogLevel)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	ok := defaultConfig()
	cases := map[string]func(c *Config){
		"missing in":       func(c *Config) { c.InPath = "" },
		"missing out":      func(c *Config) { c.OutPath = "" },
		"missing text col": func(c *Config) { c.TextCol = "" },
		"negative workers": func(c *Config) { c.Workers = -1 },
		"bad log level":    func(c *Config) { c.LogLevel = "loud" },
	}
	for name, mutate := range cases {
		c := ok
		mutate(&c)
		if err := c.Validate(); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func quietLog() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

const sampleCSV = "komentar,rating,produk_id,pengguna\n" +
	"bagus banget bahannya adem,5,P1,andi\n" +
	"jelek rusak kecewa,1,P1,budi\n" +
	",5,P2,citra\n" +
	"oke,,P3,dewi\n"

func TestRun_WritesOutputsAndStoresRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "ulasan.csv")
	if err := os.WriteFile(in, []byte(sampleCSV), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	cfg := defaultConfig()
	cfg.InPath = in
	cfg.OutPath = filepath.Join(dir, "out", "hasil.csv")
	cfg.ExportDir = filepath.Join(dir, "export")
	cfg.DBPath = filepath.Join(dir, "db", "ulasan.db")
	cfg.Workers = 3

	sum, err := run(context.Background(), cfg, quietLog())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.Total != 4 || sum.Positive != 2 || sum.Neutral != 1 || sum.Negative != 1 || sum.Workers != 3 {
		t.Fatalf("summary=%+v", sum)
	}
	if sum.RunID == "" {
		t.Fatalf("expected run id")
	}

	out, err := os.ReadFile(cfg.OutPath)
	if err != nil {
		t.Fatalf("read out: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 5 || !strings.HasPrefix(lines[0], "komentar,rating,produk_id,pengguna,sentiment_score,skor") {
		t.Fatalf("out=%s", out)
	}
	for _, name := range []string{"ulasan_sentimen.csv", "ulasan_sentimen.jsonl", "ulasan_sentimen.schema.json"} {
		if _, err := os.Stat(filepath.Join(cfg.ExportDir, name)); err != nil {
			t.Fatalf("export %s: %v", name, err)
		}
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer st.Close()
	stored, err := st.LatestRun(context.Background())
	if err != nil {
		t.Fatalf("LatestRun: %v", err)
	}
	if stored.ID != sum.RunID || stored.Total != 4 || stored.Positive != 2 {
		t.Fatalf("stored=%+v", stored)
	}
}

func TestRun_InputErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := defaultConfig()
	cfg.InPath = filepath.Join(dir, "missing.csv")
	cfg.OutPath = filepath.Join(dir, "hasil.csv")
	if _, err := run(context.Background(), cfg, quietLog()); !errors.Is(err, errInput) {
		t.Fatalf("missing input err=%v", err)
	}

	lex := filepath.Join(dir, "lex.yaml")
	if err := os.WriteFile(lex, []byte("positive:\n  bagus: 1\n  bagus: 2\n"), 0o644); err != nil {
		t.Fatalf("write lexicon: %v", err)
	}
	cfg.LexiconPath = lex
	if _, err := run(context.Background(), cfg, quietLog()); !errors.Is(err, sentiment.ErrLexiconLoad) {
		t.Fatalf("bad lexicon err=%v", err)
	}
}

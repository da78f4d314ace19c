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
	"github.com/theimaginaryfoundation/ulasan-sentimen/sentiment/provider"
	"github.com/theimaginaryfoundation/ulasan-sentimen/sentiment/store"
)

func TestParseFlags_Overrides(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("review-report", flag.ContinueOnError)
	cfg, err := parseFlags(fs, []string{
		"-db", "x/../ulasan.db",
		"-run", "run-1",
		"-out", "r/laporan.json",
		"-top", "5",
		"-top-products", "3",
		"-insights",
		"-model", "gpt-5",
		"-api-key", "sk-test",
		"-samples", "2",
		"-pretty",
	})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.DBPath != "ulasan.db" || cfg.RunID != "run-1" || cfg.OutPath != "r/laporan.json" {
		t.Fatalf("paths=%q %q %q", cfg.DBPath, cfg.RunID, cfg.OutPath)
	}
	if cfg.Top != 5 || cfg.TopProducts != 3 || cfg.Samples != 2 {
		t.Fatalf("limits=%d/%d/%d", cfg.Top, cfg.TopProducts, cfg.Samples)
	}
	if !cfg.Insights || cfg.Model != "gpt-5" || cfg.APIKey != "sk-test" || !cfg.Pretty {
		t.Fatalf("cfg=%+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	if err := defaultConfig().Validate(); err != nil {
		t.Fatalf("defaults: %v", err)
	}
	cases := map[string]func(c *Config){
		"missing db":       func(c *Config) { c.DBPath = "" },
		"missing out":      func(c *Config) { c.OutPath = "" },
		"zero top":         func(c *Config) { c.Top = 0 },
		"zero products":    func(c *Config) { c.TopProducts = 0 },
		"negative samples": func(c *Config) { c.Samples = -1 },
		"insights model":   func(c *Config) { c.Insights, c.Model = true, "" },
	}
	for name, mutate := range cases {
		c := defaultConfig()
		mutate(&c)
		if err := c.Validate(); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

type stubGenerator struct {
	in  provider.InsightInput
	err error
}

func (s *stubGenerator) Generate(ctx context.Context, in provider.InsightInput) (provider.Insights, error) {
	s.in = in
	if s.err != nil {
		return provider.Insights{}, s.err
	}
	return provider.Insights{Summary: "Mayoritas pelanggan puas."}, nil
}

func seededStore(t *testing.T) (*store.Store, string) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "ulasan.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	lex, err := sentiment.DefaultLexicon()
	if err != nil {
		t.Fatalf("DefaultLexicon: %v", err)
	}
	e, err := sentiment.NewEngine(lex)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	reviews := []sentiment.Review{
		{Text: "bagus banget", Rating: sentiment.Rating(5)},
		{Text: "jelek rusak", Rating: sentiment.Rating(1)},
		{Text: "barang telat datang rusak", Rating: sentiment.Rating(1)},
	}
	var records []store.ReviewRecord
	for i, r := range reviews {
		records = append(records, store.NewRecord(i, "P1", "user", r, e.Score(r)))
	}
	run := &store.Run{Total: len(records)}
	if err := st.SaveRun(context.Background(), run, records); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	return st, run.ID
}

func quietLog() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestBuildReport(t *testing.T) {
	t.Parallel()

	st, runID := seededStore(t)
	cfg := defaultConfig()
	cfg.Samples = 1

	gen := &stubGenerator{}
	out, err := buildReport(context.Background(), cfg, st, gen, quietLog())
	if err != nil {
		t.Fatalf("buildReport: %v", err)
	}
	if out.RunID != runID || out.Total != 3 {
		t.Fatalf("RunID=%q Total=%d", out.RunID, out.Total)
	}
	if out.Insights == nil || out.Insights.Summary == "" {
		t.Fatalf("expected insights")
	}
	if gen.in.TotalReviews != 3 || len(gen.in.Samples) != 1 || gen.in.Samples[0] != "jelek rusak" {
		t.Fatalf("insight input=%+v", gen.in)
	}
	if len(gen.in.TopIssues) == 0 || gen.in.TopIssues[0].Aspect != "kualitas" {
		t.Fatalf("issues=%+v", gen.in.TopIssues)
	}
}

func TestBuildReport_InsightFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	st, _ := seededStore(t)
	out, err := buildReport(context.Background(), defaultConfig(), st, &stubGenerator{err: errors.New("429")}, quietLog())
	if err != nil {
		t.Fatalf("buildReport: %v", err)
	}
	if out.Insights != nil {
		t.Fatalf("insights should be omitted on failure")
	}
}

func TestBuildReport_UnknownRun(t *testing.T) {
	t.Parallel()

	st, _ := seededStore(t)
	cfg := defaultConfig()
	cfg.RunID = "nope"
	if _, err := buildReport(context.Background(), cfg, st, nil, quietLog()); !errors.Is(err, store.ErrRunNotFound) {
		t.Fatalf("err=%v", err)
	}
}

func TestOpenStore_MissingDatabase(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "typo.db")
	if _, err := openStore(missing); !errors.Is(err, errNoDatabase) {
		t.Fatalf("err=%v", err)
	}
	if _, err := os.Stat(missing); !os.IsNotExist(err) {
		t.Fatalf("openStore created %s", missing)
	}
}

func TestWriteReport(t *testing.T) {
	t.Parallel()

	st, runID := seededStore(t)
	cfg := defaultConfig()
	cfg.OutPath = filepath.Join(t.TempDir(), "laporan", "report.json")

	out, err := writeReport(context.Background(), cfg, st, nil, quietLog())
	if err != nil {
		t.Fatalf("writeReport: %v", err)
	}
	if out.RunID != runID {
		t.Fatalf("RunID=%q", out.RunID)
	}
	b, err := os.ReadFile(cfg.OutPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(b), `"run_id":"`+runID+`"`) || strings.Contains(string(b), `"insights"`) {
		t.Fatalf("report=%s", b)
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/theimaginaryfoundation/ulasan-sentimen/sentiment"
	"github.com/theimaginaryfoundation/ulasan-sentimen/sentiment/report"
	"github.com/theimaginaryfoundation/ulasan-sentimen/sentiment/reviewio"
	"github.com/theimaginaryfoundation/ulasan-sentimen/sentiment/store"
)

var errInput = errors.New("invalid input")

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	logger, err := newLogger(cfg.LogLevel, cfg.LogJSON, cfg.Pretty)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	log := logger.WithField("component", "review-scorer")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	sum, err := run(ctx, cfg, log)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		if errors.Is(err, errInput) || errors.Is(err, sentiment.ErrLexiconLoad) {
			os.Exit(2)
		}
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "reviews_scored=%d positive=%d neutral=%d negative=%d workers=%d duration_ms=%d out=%s run_id=%s\n",
		sum.Total, sum.Positive, sum.Neutral, sum.Negative, sum.Workers, sum.Duration.Milliseconds(), cfg.OutPath, sum.RunID)
}

type summary struct {
	Total    int
	Positive int
	Neutral  int
	Negative int
	Workers  int
	Duration time.Duration
	RunID    string
}

func loadLexicon(path string) (*sentiment.Lexicon, error) {
	if path == "" {
		return sentiment.DefaultLexicon()
	}
	return sentiment.LoadLexicon(path)
}

func run(ctx context.Context, cfg Config, log logrus.FieldLogger) (summary, error) {
	lex, err := loadLexicon(cfg.LexiconPath)
	if err != nil {
		return summary{}, err
	}
	pos, neg := lex.Size()
	log.WithFields(logrus.Fields{"positive": pos, "negative": neg, "phrases": len(lex.Phrases())}).Debug("lexicon loaded")

	table, err := reviewio.LoadReviewsFile(cfg.InPath, reviewio.Columns{
		Text:    cfg.TextCol,
		Rating:  cfg.RatingCol,
		Product: cfg.ProductCol,
		User:    cfg.UserCol,
	})
	if err != nil {
		return summary{}, fmt.Errorf("%w: %w", errInput, err)
	}
	log.WithFields(logrus.Fields{
		"rows":           table.Stats.Rows,
		"empty_text":     table.Stats.EmptyText,
		"missing_rating": table.Stats.MissingRating,
		"invalid_rating": table.Stats.InvalidRating,
	}).Info("reviews loaded")
	if !table.HasRating {
		log.Warnf("no %q column; scoring text only", cfg.RatingCol)
	}

	workers := cfg.Workers
	if workers == 0 {
		workers = sentiment.DefaultWorkers()
	}
	sched := &sentiment.Scheduler{
		Lexicon: lex,
		Workers: workers,
		Progress: func(c sentiment.Chunk, done, total int) {
			log.WithFields(logrus.Fields{"chunk": c.Index, "done": done, "total": total}).Info("chunk scored")
		},
	}

	start := time.Now()
	results, err := sched.ScoreAll(ctx, table.Reviews)
	if err != nil {
		return summary{}, err
	}
	sum := summary{Total: len(results), Workers: workers, Duration: time.Since(start)}
	for _, r := range results {
		switch r.Label {
		case sentiment.LabelPositive:
			sum.Positive++
		case sentiment.LabelNegative:
			sum.Negative++
		default:
			sum.Neutral++
		}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.OutPath), 0o755); err != nil {
		return summary{}, fmt.Errorf("mkdir -out: %w", err)
	}
	if err := reviewio.WriteResults(cfg.OutPath, table, results); err != nil {
		return summary{}, err
	}
	log.WithField("path", cfg.OutPath).Info("results written")

	if cfg.ExportDir != "" {
		if err := writeExport(cfg.ExportDir, table, results); err != nil {
			return summary{}, err
		}
		log.WithField("dir", cfg.ExportDir).Info("export written")
	}

	if cfg.DBPath != "" {
		id, err := persist(ctx, cfg, table, results, sum)
		if err != nil {
			return summary{}, err
		}
		sum.RunID = id
		log.WithFields(logrus.Fields{"db": cfg.DBPath, "run_id": id}).Info("run stored")
	}

	dist := report.Distribution(entries(table, results))
	log.WithFields(logrus.Fields{
		"positive_pct": report.Share(dist, sentiment.LabelPositive),
		"neutral_pct":  report.Share(dist, sentiment.LabelNeutral),
		"negative_pct": report.Share(dist, sentiment.LabelNegative),
	}).Info("label distribution")
	return sum, nil
}

func entries(table *reviewio.Table, results []sentiment.Result) []report.Entry {
	out := make([]report.Entry, len(results))
	for i, res := range results {
		out[i] = report.FromResult(table.Reviews[i], table.Meta[i].ProductID, res)
	}
	return out
}

func writeExport(dir string, table *reviewio.Table, results []sentiment.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir -export-dir: %w", err)
	}
	rows, err := reviewio.BuildExport(table, results)
	if err != nil {
		return err
	}
	if err := reviewio.WriteExportCSV(filepath.Join(dir, "ulasan_sentimen.csv"), rows); err != nil {
		return err
	}
	if err := reviewio.WriteExportJSONL(filepath.Join(dir, "ulasan_sentimen.jsonl"), rows); err != nil {
		return err
	}
	return reviewio.WriteExportSchema(filepath.Join(dir, "ulasan_sentimen.schema.json"))
}

func persist(ctx context.Context, cfg Config, table *reviewio.Table, results []sentiment.Result, sum summary) (string, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return "", fmt.Errorf("mkdir -db: %w", err)
	}
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return "", err
	}
	defer st.Close()

	records := make([]store.ReviewRecord, len(results))
	for i, res := range results {
		m := table.Meta[i]
		records[i] = store.NewRecord(i, m.ProductID, m.User, table.Reviews[i], res)
	}
	run := &store.Run{
		InputPath:  cfg.InPath,
		Total:      sum.Total,
		Positive:   sum.Positive,
		Neutral:    sum.Neutral,
		Negative:   sum.Negative,
		Workers:    sum.Workers,
		DurationMs: sum.Duration.Milliseconds(),
	}
	if err := st.SaveRun(ctx, run, records); err != nil {
		return "", err
	}
	return run.ID, nil
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.InPath, "in", cfg.InPath, "Input review CSV (.tsv for tab-separated)")
	fs.StringVar(&cfg.OutPath, "out", cfg.OutPath, "Result CSV: source columns plus score, label and matched terms")
	fs.StringVar(&cfg.ExportDir, "export-dir", "", "Optional directory for the document export (CSV, JSONL and JSON Schema)")
	fs.StringVar(&cfg.DBPath, "db", "", "Optional sqlite path to store the run for review-report and review-api")
	fs.StringVar(&cfg.LexiconPath, "lexicon", "", "Optional YAML lexicon replacing the built-in domain lexicon")
	fs.IntVar(&cfg.Workers, "workers", 0, "Parallel scoring workers (0 uses every CPU)")
	fs.StringVar(&cfg.TextCol, "text-col", cfg.TextCol, "Column holding the review text")
	fs.StringVar(&cfg.RatingCol, "rating-col", cfg.RatingCol, "Column holding the 1-5 star rating")
	fs.StringVar(&cfg.ProductCol, "product-col", "", "Column holding the product id (default: produk_id, else produk)")
	fs.StringVar(&cfg.UserCol, "user-col", cfg.UserCol, "Column holding the reviewer name")
	fs.BoolVar(&cfg.Pretty, "pretty", false, "Force colored text logs even when stderr is not a terminal")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug|info|warn|error")
	fs.BoolVar(&cfg.LogJSON, "log-json", false, "Log as JSON lines")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags]\n\nFlags:\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output(), "\nExamples:")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/review-scorer -in data/ulasan.csv -out data/ulasan_sentimen.csv")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/review-scorer -in data/ulasan.csv -export-dir data/export -db data/ulasan.db -workers 8")
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.InPath = filepath.Clean(cfg.InPath)
	cfg.OutPath = filepath.Clean(cfg.OutPath)
	if cfg.ExportDir != "" {
		cfg.ExportDir = filepath.Clean(cfg.ExportDir)
	}
	if cfg.DBPath != "" {
		cfg.DBPath = filepath.Clean(cfg.DBPath)
	}
	if cfg.LexiconPath != "" {
		cfg.LexiconPath = filepath.Clean(cfg.LexiconPath)
	}
	return cfg, nil
}

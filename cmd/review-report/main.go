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

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sirupsen/logrus"

	"github.com/theimaginaryfoundation/ulasan-sentimen/sentiment"
	"github.com/theimaginaryfoundation/ulasan-sentimen/sentiment/fileutils"
	"github.com/theimaginaryfoundation/ulasan-sentimen/sentiment/provider"
	"github.com/theimaginaryfoundation/ulasan-sentimen/sentiment/report"
	"github.com/theimaginaryfoundation/ulasan-sentimen/sentiment/store"
)

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
	logger, err := newLogger(cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	log := logger.WithField("component", "review-report")

	var gen insightGenerator
	if cfg.Insights {
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			fmt.Fprintln(os.Stderr, "missing OPENAI_API_KEY (or pass -api-key)")
			os.Exit(2)
		}
		client := openai.NewClient(option.WithAPIKey(apiKey))
		gen = provider.NewInsightGenerator(&client, cfg.Model)
	}

	st, err := openStore(cfg.DBPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	out, err := writeReport(ctx, cfg, st, gen, log)
	stop()
	if cerr := st.Close(); cerr != nil {
		log.WithError(cerr).Warn("close store")
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		if errors.Is(err, store.ErrRunNotFound) {
			os.Exit(2)
		}
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "run_id=%s reviews=%d positive_pct=%.1f insights=%t out=%s\n",
		out.RunID, out.Total, report.Share(out.Distribution, sentiment.LabelPositive), out.Insights != nil, cfg.OutPath)
}

// writeReport builds the report for the selected run and writes it to -out.
func writeReport(ctx context.Context, cfg Config, st *store.Store, gen insightGenerator, log logrus.FieldLogger) (reportFile, error) {
	out, err := buildReport(ctx, cfg, st, gen, log)
	if err != nil {
		return reportFile{}, err
	}
	if dir := filepath.Dir(cfg.OutPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return reportFile{}, fmt.Errorf("mkdir -out: %w", err)
		}
	}
	if err := fileutils.WriteJSONFileAtomic(cfg.OutPath, out, cfg.Pretty); err != nil {
		return reportFile{}, err
	}
	return out, nil
}

type insightGenerator interface {
	Generate(ctx context.Context, in provider.InsightInput) (provider.Insights, error)
}

// reportFile is the JSON document written to -out.
type reportFile struct {
	report.Report
	Insights *provider.Insights `json:"insights,omitempty"`
}

func buildReport(ctx context.Context, cfg Config, st *store.Store, gen insightGenerator, log logrus.FieldLogger) (reportFile, error) {
	run, err := st.ResolveRun(ctx, cfg.RunID)
	if err != nil {
		return reportFile{}, err
	}
	records, err := st.Records(ctx, run.ID)
	if err != nil {
		return reportFile{}, err
	}
	entries := make([]report.Entry, len(records))
	for i, r := range records {
		entries[i] = r.Entry()
	}

	rep, err := report.Build(entries, report.Options{TopN: cfg.Top, TopProducts: cfg.TopProducts})
	if err != nil {
		return reportFile{}, err
	}
	rep.RunID = run.ID
	log.WithFields(logrus.Fields{"run_id": run.ID, "reviews": rep.Total, "issues": len(rep.TopIssues)}).Info("report built")

	out := reportFile{Report: rep}
	if gen == nil || rep.Total == 0 {
		return out, nil
	}
	in, err := insightInput(rep, entries, cfg)
	if err != nil {
		return reportFile{}, err
	}
	ins, err := gen.Generate(ctx, in)
	if err != nil {
		// Not fatal; the report is written without insights.
		log.WithError(err).Warn("insight generation failed")
		return out, nil
	}
	out.Insights = &ins
	log.Info("insights generated")
	return out, nil
}

func insightInput(rep report.Report, entries []report.Entry, cfg Config) (provider.InsightInput, error) {
	kw, err := report.LabeledKeywords(entries, cfg.Top)
	if err != nil {
		return provider.InsightInput{}, err
	}
	in := provider.InsightInput{
		TotalReviews: rep.Total,
		Positive:     report.Share(rep.Distribution, sentiment.LabelPositive),
		Neutral:      report.Share(rep.Distribution, sentiment.LabelNeutral),
		Negative:     report.Share(rep.Distribution, sentiment.LabelNegative),
	}
	for _, k := range kw {
		in.Keywords = append(in.Keywords, provider.Keyword{Term: k.Name, Count: k.Value, Sentiment: string(k.Sentiment)})
	}
	for _, is := range rep.TopIssues {
		in.TopIssues = append(in.TopIssues, provider.Issue{Aspect: is.Aspect, Count: is.Count, Percentage: is.Percentage})
	}
	for _, e := range entries {
		if len(in.Samples) == cfg.Samples {
			break
		}
		if e.Label == sentiment.LabelNegative && e.Text != "" {
			in.Samples = append(in.Samples, e.Text)
		}
	}
	return in, nil
}

var errNoDatabase = errors.New("database not found")

// openStore refuses a -db path that does not exist so a typo does not
// create an empty database.
func openStore(path string) (*store.Store, error) {
	if !fileutils.FileExists(path) {
		return nil, fmt.Errorf("%w: %s (run review-scorer -db first)", errNoDatabase, path)
	}
	return store.Open(path)
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "sqlite database written by review-scorer -db")
	fs.StringVar(&cfg.RunID, "run", "", "Run id to report on (default: latest run)")
	fs.StringVar(&cfg.OutPath, "out", cfg.OutPath, "Report JSON output path")
	fs.IntVar(&cfg.Top, "top", cfg.Top, "Number of terms and keywords per list")
	fs.IntVar(&cfg.TopProducts, "top-products", cfg.TopProducts, "Number of products in the product crosstab")
	fs.BoolVar(&cfg.Insights, "insights", false, "Ask an OpenAI model for a narrative summary of the report")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "OpenAI model to use for -insights (e.g. gpt-5-mini)")
	fs.StringVar(&cfg.APIKey, "api-key", "", "OpenAI API key (overrides OPENAI_API_KEY env var)")
	fs.IntVar(&cfg.Samples, "samples", cfg.Samples, "Negative review texts quoted in the insight prompt")
	fs.BoolVar(&cfg.Pretty, "pretty", false, "Pretty-print the report JSON")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug|info|warn|error")
	fs.BoolVar(&cfg.LogJSON, "log-json", false, "Log as JSON lines")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags]\n\nFlags:\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output(), "\nExamples:")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/review-report -db data/ulasan.db -pretty")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/review-report -db data/ulasan.db -insights -model gpt-5-mini")
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.DBPath = filepath.Clean(cfg.DBPath)
	cfg.OutPath = filepath.Clean(cfg.OutPath)
	return cfg, nil
}

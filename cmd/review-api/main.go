package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/theimaginaryfoundation/ulasan-sentimen/sentiment/api"
	"github.com/theimaginaryfoundation/ulasan-sentimen/sentiment/fileutils"
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
	log := logger.WithField("component", "review-api")

	st, err := openStore(cfg.DBPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	gin.SetMode(cfg.GinMode)
	srv := &http.Server{Addr: cfg.Addr, Handler: newRouter(st, log)}
	err = serve(ctx, srv, cfg.ShutdownTimeout, log)

	stop()
	if cerr := st.Close(); cerr != nil {
		log.WithError(cerr).Warn("close store")
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// serve runs srv until it fails or ctx is done, then gives in-flight
// requests at most timeout to finish.
func serve(ctx context.Context, srv *http.Server, timeout time.Duration, log logrus.FieldLogger) error {
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newRouter(st api.Store, log logrus.FieldLogger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), api.RequestLogger(log))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api.New(st, log).Register(r)
	return r
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
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	fs.StringVar(&cfg.GinMode, "gin-mode", cfg.GinMode, "gin mode: debug|release|test")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "Grace period for in-flight requests on shutdown")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug|info|warn|error")
	fs.BoolVar(&cfg.LogJSON, "log-json", false, "Log as JSON lines")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags]\n\nFlags:\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output(), "\nExamples:")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/review-api -db data/ulasan.db -addr :8080")
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.DBPath = filepath.Clean(cfg.DBPath)
	return cfg, nil
}

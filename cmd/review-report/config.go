package main

import (
	"errors"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

type Config struct {
	DBPath      string
	RunID       string
	OutPath     string
	Top         int
	TopProducts int
	Insights    bool
	Model       string
	APIKey      string
	Samples     int
	Pretty      bool
	LogLevel    string
	LogJSON     bool
}

func (c Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("missing -db")
	}
	if c.OutPath == "" {
		return errors.New("missing -out")
	}
	if c.Top < 1 {
		return errors.New("top must be >= 1")
	}
	if c.TopProducts < 1 {
		return errors.New("top-products must be >= 1")
	}
	if c.Samples < 0 {
		return errors.New("samples must be >= 0")
	}
	if c.Insights && c.Model == "" {
		return errors.New("missing -model")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.New("log-level must be one of debug|info|warn|error")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		DBPath:      filepath.FromSlash("data/ulasan.db"),
		OutPath:     filepath.FromSlash("data/sentiment_report.json"),
		Top:         10,
		TopProducts: 10,
		Model:       "gpt-5-mini",
		Samples:     5,
		LogLevel:    "info",
	}
}

func newLogger(level string, asJSON bool) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	log := logrus.New()
	log.SetLevel(lvl)
	if asJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log, nil
}

package main

import (
	"errors"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

type Config struct {
	InPath      string
	OutPath     string
	ExportDir   string
	DBPath      string
	LexiconPath string
	Workers     int
	TextCol     string
	RatingCol   string
	ProductCol  string
	UserCol     string
	Pretty      bool
	LogLevel    string
	LogJSON     bool
}

func (c Config) Validate() error {
	if c.InPath == "" {
		return errors.New("missing -in")
	}
	if c.OutPath == "" {
		return errors.New("missing -out")
	}
	if c.TextCol == "" {
		return errors.New("missing -text-col")
	}
	if c.Workers < 0 {
		return errors.New("workers must be >= 0")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.New("log-level must be one of debug|info|warn|error")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		InPath:    filepath.FromSlash("data/ulasan.csv"),
		OutPath:   filepath.FromSlash("data/ulasan_sentimen.csv"),
		TextCol:   "komentar",
		RatingCol: "rating",
		UserCol:   "pengguna",
		LogLevel:  "info",
	}
}

func newLogger(level string, asJSON, pretty bool) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	log := logrus.New()
	log.SetLevel(lvl)
	if asJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, ForceColors: pretty})
	}
	return log, nil
}

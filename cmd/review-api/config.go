package main

import (
	"errors"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Config struct {
	DBPath          string
	Addr            string
	GinMode         string
	ShutdownTimeout time.Duration
	LogLevel        string
	LogJSON         bool
}

func (c Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("missing -db")
	}
	if c.Addr == "" {
		return errors.New("missing -addr")
	}
	switch c.GinMode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		return errors.New("gin-mode must be one of debug|release|test")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("shutdown-timeout must be > 0")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.New("log-level must be one of debug|info|warn|error")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		DBPath:          filepath.FromSlash("data/ulasan.db"),
		Addr:            ":8080",
		GinMode:         gin.ReleaseMode,
		ShutdownTimeout: 10 * time.Second,
		LogLevel:        "info",
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

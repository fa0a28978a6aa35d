package config

import (
	"os"
	"strconv"
)

// loadDevelopmentConfig fills in local paths so `ENVIRONMENT=development`
// works without a config file. Values set explicitly are kept.
func loadDevelopmentConfig(cfg *Config) {
	if port, err := strconv.Atoi(os.Getenv("PORT")); err == nil {
		cfg.ServerPort = port
	}
	if cfg.DatabaseFilePath == "" {
		cfg.DatabaseFilePath = "./tmp/techshelf.sqlite"
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "development-secret"
	}
	if cfg.MediaDir == defaultMediaDir {
		cfg.MediaDir = "./tmp/media"
	}
	cfg.DatabaseDebug = true
	cfg.ServerHost = "127.0.0.1"
}

// IsDevelopment reports whether local development defaults apply.
func (cfg *Config) IsDevelopment() bool {
	return cfg.Environment == "development"
}

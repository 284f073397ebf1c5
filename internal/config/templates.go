package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# PCR Journal Configuration

[journal]
# Default trading capital in INR, used until "capital set" stores one
capital = "10000"
# Daily profit target in INR
daily_target = "3000"
# Maximum trades per day
max_trades_per_day = 5
# Time zone that defines a trading day
timezone = "Asia/Kolkata"

[storage]
# Backend: "sqlite", "redis" or "memory"
backend = "sqlite"
# SQLite database file (default: <config dir>/journal.db)
path = ""
# Redis connection
redis_addr = "localhost:6379"
redis_password = ""
redis_db = 0
redis_prefix = "pcr:"

[log]
# Level: debug, info, warn, error
level = "info"
# Log to stderr
console = false
# Log to a rotating file (default: <config dir>/logs/journal.log)
file = true
file_path = ""
# Rotation limits: megabytes, files, days
max_size = 10
max_backups = 5
max_age = 30

[ui]
# Enable colored output
color_enabled = true
`

const envTemplate = `# Environment overrides for PCR Journal.
# Keys mirror config.toml, e.g. PCR_JOURNAL_STORAGE_BACKEND=redis
# WARNING: Keep this file secure if it holds a Redis password.
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	envPath := filepath.Join(configDir, ".env")
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		// Use restricted permissions, the file may carry credentials
		if err := os.WriteFile(envPath, []byte(envTemplate), 0600); err != nil {
			return fmt.Errorf("writing env template: %w", err)
		}
	}

	return nil
}

// Package config loads the process-wide settings for tosd: where to listen,
// where the database and audit log live, and how logging is configured.
// Precedence (highest to lowest): environment variables (prefix TOSD_) >
// config file > built-in defaults. No command-line flag is bound to an
// individual setting; the only flag, --config, selects the config file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the resolved set of settings tosd runs with.
type Config struct {
	HTTPAddr string

	DBPath     string
	DBPoolSize int

	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogDebug      bool

	AuditPath string

	WatchDir string

	MaxConns       int
	RequestTimeout string
}

// Load builds a viper instance from the environment, an optional config
// file, and built-in defaults, and returns the resolved Config.
//
// configFile, when non-empty, is read explicitly (as --config would set);
// otherwise the first of ./tosd.yaml or $XDG_CONFIG_HOME/tosd/config.yaml
// that exists is used.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else if path, ok := discoverConfigFile(); ok {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("TOSD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("db.path", "./tos.db")
	v.SetDefault("db.pool_size", 5)
	v.SetDefault("log.path", "")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.debug", false)
	v.SetDefault("audit.path", "./tos-audit.jsonl")
	v.SetDefault("watch.dir", "")
	v.SetDefault("server.max_conns", 100)
	v.SetDefault("server.request_timeout", "30s")

	if v.ConfigFileUsed() != "" || configFile != "" {
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	return &Config{
		HTTPAddr:       v.GetString("http.addr"),
		DBPath:         v.GetString("db.path"),
		DBPoolSize:     v.GetInt("db.pool_size"),
		LogPath:        v.GetString("log.path"),
		LogMaxSizeMB:   v.GetInt("log.max_size_mb"),
		LogMaxBackups:  v.GetInt("log.max_backups"),
		LogMaxAgeDays:  v.GetInt("log.max_age_days"),
		LogDebug:       v.GetBool("log.debug"),
		AuditPath:      v.GetString("audit.path"),
		WatchDir:       v.GetString("watch.dir"),
		MaxConns:       v.GetInt("server.max_conns"),
		RequestTimeout: v.GetString("server.request_timeout"),
	}, nil
}

// discoverConfigFile looks for ./tosd.yaml, then
// $XDG_CONFIG_HOME/tosd/config.yaml (falling back to ~/.config).
func discoverConfigFile() (string, bool) {
	if _, err := os.Stat("tosd.yaml"); err == nil {
		return "tosd.yaml", true
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", false
	}
	path := filepath.Join(configDir, "tosd", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return path, true
	}
	return "", false
}

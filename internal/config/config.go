package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig `json:"server"`
	Logs   LogsConfig   `json:"logs"`
	Cache  CacheConfig  `json:"cache"`
}

type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type LogsConfig struct {
	// Dir is the root of the transcript corpus, one .jsonl file per session.
	Dir string `json:"dir"`
}

type CacheConfig struct {
	// Dir holds the manifest, snapshot and per-session timeline files.
	Dir string `json:"dir"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("json")

	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	homeDir, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(filepath.Join(homeDir, ".traceview"))
	}

	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("logs.dir", defaultLogDir(homeDir))
	viper.SetDefault("cache.dir", defaultCacheDir(homeDir))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// No config file; defaults plus env overrides apply.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	loadEnvOverrides(&cfg)

	return &cfg, nil
}

func defaultLogDir(homeDir string) string {
	if homeDir == "" {
		return ".codex/sessions"
	}
	return filepath.Join(homeDir, ".codex", "sessions")
}

func defaultCacheDir(homeDir string) string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "traceview")
	}
	if homeDir == "" {
		return ".traceview-cache"
	}
	return filepath.Join(homeDir, ".cache", "traceview")
}

func loadEnvOverrides(cfg *Config) {
	if host := os.Getenv("TRACEVIEW_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("TRACEVIEW_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if dir := os.Getenv("TRACEVIEW_LOG_DIR"); dir != "" {
		cfg.Logs.Dir = dir
	}
	if dir := os.Getenv("TRACEVIEW_CACHE_DIR"); dir != "" {
		cfg.Cache.Dir = dir
	}
}

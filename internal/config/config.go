package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is loaded once at startup and threaded through constructors.
// Core logic never reads configuration from globals.
type Config struct {
	AppEnv   string `yaml:"app_env"`
	HTTPAddr string `yaml:"http_addr"`
	DBPath   string `yaml:"db_path"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`

	DefaultProvider string `yaml:"default_provider"`
	DoubaoBaseURL   string `yaml:"doubao_base_url"`
	GeminiBaseURL   string `yaml:"gemini_base_url"`
	DoubaoAPIKey    string `yaml:"doubao_api_key"`
	GeminiAPIKey    string `yaml:"gemini_api_key"`
	DoubaoModel     string `yaml:"doubao_model"`
	GeminiModel     string `yaml:"gemini_model"`

	BatchSize    int `yaml:"batch_size"`
	MaxSentences int `yaml:"max_sentences"`

	VocabularyDir string `yaml:"vocabulary_dir"`

	HistoryRetentionDays int    `yaml:"history_retention_days"`
	HistoryCleanupSpec   string `yaml:"history_cleanup_spec"`
	TaskMaxRetries       int    `yaml:"task_max_retries"`
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// Load reads config.yaml (or CONFIG_PATH) when present, then applies
// environment overrides and defaults.
func Load() Config {
	var cfg Config

	configPath := getenv("CONFIG_PATH", "config.yaml")
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("parsing %s: %v", configPath, err)
		}
	}

	cfg.AppEnv = getenv("APP_ENV", fallback(cfg.AppEnv, "development"))
	cfg.HTTPAddr = getenv("HTTP_ADDR", fallback(cfg.HTTPAddr, ":8082"))
	cfg.DBPath = getenv("DB_PATH", fallback(cfg.DBPath, "./data/tutor.db"))

	cfg.RedisAddr = getenv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getenv("REDIS_PASSWORD", cfg.RedisPassword)

	cfg.DefaultProvider = getenv("AI_PROVIDER", fallback(cfg.DefaultProvider, "doubao"))
	cfg.DoubaoBaseURL = getenv("DOUBAO_BASE_URL", fallback(cfg.DoubaoBaseURL, "https://ark.cn-beijing.volces.com/api/v3"))
	cfg.GeminiBaseURL = getenv("GEMINI_BASE_URL", fallback(cfg.GeminiBaseURL, "https://generativelanguage.googleapis.com/v1beta"))
	cfg.DoubaoAPIKey = getenv("DOUBAO_API_KEY", cfg.DoubaoAPIKey)
	cfg.GeminiAPIKey = getenv("GEMINI_API_KEY", cfg.GeminiAPIKey)
	cfg.DoubaoModel = getenv("DOUBAO_MODEL", fallback(cfg.DoubaoModel, "deepseek-v3-1-250821"))
	cfg.GeminiModel = getenv("GEMINI_MODEL", fallback(cfg.GeminiModel, "gemini-2.0-flash-exp"))

	if cfg.BatchSize = getenvInt("BATCH_SIZE", cfg.BatchSize); cfg.BatchSize <= 0 {
		cfg.BatchSize = 5
	}
	if cfg.MaxSentences = getenvInt("MAX_SENTENCES", cfg.MaxSentences); cfg.MaxSentences <= 0 {
		cfg.MaxSentences = 10
	}

	cfg.VocabularyDir = getenv("VOCABULARY_DIR", fallback(cfg.VocabularyDir, "./data/vocabulary"))

	if cfg.HistoryRetentionDays = getenvInt("HISTORY_RETENTION_DAYS", cfg.HistoryRetentionDays); cfg.HistoryRetentionDays <= 0 {
		cfg.HistoryRetentionDays = 180
	}
	cfg.HistoryCleanupSpec = getenv("HISTORY_CLEANUP_SPEC", fallback(cfg.HistoryCleanupSpec, "0 4 * * *"))
	if cfg.TaskMaxRetries = getenvInt("TASK_MAX_RETRIES", cfg.TaskMaxRetries); cfg.TaskMaxRetries <= 0 {
		cfg.TaskMaxRetries = 3
	}

	return cfg
}

func fallback(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

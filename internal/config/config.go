// Package config loads service settings from defaults, an optional YAML file
// and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"interviewai/internal/llm"
)

var DefaultModels = []string{
	"tngtech/deepseek-r1t2-chimera:free",
	"openai/gpt-oss-20b:free",
	"deepseek/deepseek-r1:free",
	"deepseek/deepseek-chat-v3-0324:free",
}

type Config struct {
	Env            string        `yaml:"env"`
	LogLevel       string        `yaml:"log_level"`
	Port           string        `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	LLM     LLMConfig     `yaml:"llm"`
	Cache   CacheConfig   `yaml:"cache"`
	Upload  UploadConfig  `yaml:"upload"`
	Auth    AuthConfig    `yaml:"auth"`
	Archive ArchiveConfig `yaml:"archive"`
}

type LLMConfig struct {
	BaseURL     string        `yaml:"base_url"`
	APIKeys     []string      `yaml:"api_keys"`
	KeyIndex    int           `yaml:"current_key_index"`
	Models      []string      `yaml:"models"`
	Temperature float32       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
	Referer     string        `yaml:"referer"`
	Title       string        `yaml:"title"`
}

type CacheConfig struct {
	Backend    string `yaml:"backend"`
	Path       string `yaml:"path"`
	RedisAddr  string `yaml:"redis_addr"`
	SQLitePath string `yaml:"sqlite_path"`
	Prefix     string `yaml:"prefix"`
}

type UploadConfig struct {
	MaxResumeLength int   `yaml:"max_resume_length"`
	MaxBytes        int64 `yaml:"max_bytes"`
}

type AuthConfig struct {
	Secret       string `yaml:"secret_key"`
	SessionHours int    `yaml:"session_hours"`
	BcryptCost   int    `yaml:"bcrypt_cost"`
}

type ArchiveConfig struct {
	Bucket      string `yaml:"bucket"`
	EndpointURL string `yaml:"endpoint_url"`
	Region      string `yaml:"region"`
	AccessKey   string `yaml:"access_key"`
	SecretKey   string `yaml:"secret_key"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Env:            "production",
		LogLevel:       "info",
		Port:           "8080",
		RequestTimeout: 3 * time.Minute,
		LLM: LLMConfig{
			BaseURL:     llm.DefaultBaseURL,
			Models:      append([]string(nil), DefaultModels...),
			Temperature: 0.6,
			MaxTokens:   400,
			Timeout:     90 * time.Second,
			Referer:     "http://localhost:5000",
			Title:       "InterViewAI",
		},
		Cache: CacheConfig{
			Backend:    "file",
			Path:       "resume_cache.json",
			RedisAddr:  "127.0.0.1:6379",
			SQLitePath: "interviewai.db",
			Prefix:     "interviewai",
		},
		Upload: UploadConfig{
			MaxResumeLength: 1500,
			MaxBytes:        4 * 1024 * 1024,
		},
		Auth: AuthConfig{
			SessionHours: 24,
			BcryptCost:   12,
		},
	}
}

// Load reads .env (if present), then the YAML file at path or $CONFIG_FILE
// with ${VAR} expansion, then environment overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	envString("ENV", &c.Env)
	envString("LOG_LEVEL", &c.LogLevel)
	envString("PORT", &c.Port)
	collect(envDuration("REQUEST_TIMEOUT", &c.RequestTimeout))

	envString("LLM_BASE_URL", &c.LLM.BaseURL)
	envList("API_KEYS", &c.LLM.APIKeys)
	collect(envInt("CURRENT_KEY_INDEX", &c.LLM.KeyIndex))
	envList("MODELS", &c.LLM.Models)
	collect(envFloat32("LLM_TEMPERATURE", &c.LLM.Temperature))
	collect(envInt("LLM_MAX_TOKENS", &c.LLM.MaxTokens))
	collect(envDuration("LLM_TIMEOUT", &c.LLM.Timeout))
	envString("APP_REFERER", &c.LLM.Referer)
	envString("APP_TITLE", &c.LLM.Title)

	envString("CACHE_BACKEND", &c.Cache.Backend)
	envString("CACHE_PATH", &c.Cache.Path)
	envString("REDIS_ADDR", &c.Cache.RedisAddr)
	envString("SQLITE_PATH", &c.Cache.SQLitePath)

	collect(envInt("MAX_RESUME_LENGTH", &c.Upload.MaxResumeLength))
	collect(envInt64("MAX_UPLOAD_BYTES", &c.Upload.MaxBytes))

	envString("SECRET_KEY", &c.Auth.Secret)
	collect(envInt("SESSION_HOURS", &c.Auth.SessionHours))
	collect(envInt("BCRYPT_COST", &c.Auth.BcryptCost))

	envString("S3_BUCKET", &c.Archive.Bucket)
	envString("S3_ENDPOINT_URL", &c.Archive.EndpointURL)
	envString("S3_REGION", &c.Archive.Region)
	envString("S3_ACCESS_KEY", &c.Archive.AccessKey)
	envString("S3_SECRET_KEY", &c.Archive.SecretKey)

	return errors.Join(errs...)
}

// Validate checks everything needed to generate questions. Cache
// maintenance commands can skip it.
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if len(cleanList(c.LLM.APIKeys)) == 0 {
		errs = append(errs, errors.New("API_KEYS must list at least one key"))
	}
	if len(cleanList(c.LLM.Models)) == 0 {
		errs = append(errs, errors.New("MODELS must list at least one model"))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, fmt.Errorf("LLM_TEMPERATURE out of range: %v", c.LLM.Temperature))
	}
	if c.LLM.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("LLM_MAX_TOKENS must be positive: %d", c.LLM.MaxTokens))
	}
	switch c.Cache.Backend {
	case "", "file", "redis", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unknown CACHE_BACKEND %q", c.Cache.Backend))
	}
	if c.Upload.MaxResumeLength <= 0 {
		errs = append(errs, fmt.Errorf("MAX_RESUME_LENGTH must be positive: %d", c.Upload.MaxResumeLength))
	}
	if c.Upload.MaxBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_BYTES must be positive: %d", c.Upload.MaxBytes))
	}

	return errors.Join(errs...)
}

// getenv returns the value of the environment variable key or def if not set.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envString(key string, dst *string) {
	*dst = getenv(key, *dst)
}

func envList(key string, dst *[]string) {
	if v := os.Getenv(key); v != "" {
		*dst = cleanList(strings.Split(v, ","))
	}
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func envInt64(key string, dst *int64) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func envFloat32(key string, dst *float32) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 32)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = float32(f)
	return nil
}

func envDuration(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

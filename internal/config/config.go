// Package config provides application configuration.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// BUDDY_* environment variables. A .env file is loaded into the environment
// by the CLI before Load runs.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/buddy/internal/llm"
	"github.com/abhisek/buddy/internal/tutor"
)

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds all application configuration.
type Config struct {
	// Env is "dev" or "prod". It selects the log encoder.
	Env string `yaml:"env"`

	HTTP  HTTPConfig   `yaml:"http"`
	Store StoreConfig  `yaml:"store"`
	LLM   llm.Config   `yaml:"llm"`
	Tutor tutor.Config `yaml:"tutor"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	AccessLog       bool          `yaml:"access_log"`
}

// StoreConfig selects and configures the session store.
type StoreConfig struct {
	Backend    string      `yaml:"backend"`
	DBPath     string      `yaml:"db_path"`
	SessionDir string      `yaml:"session_dir"`
	Redis      RedisConfig `yaml:"redis"`
}

// RedisConfig configures the redis session backend.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"-"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Env: "dev",
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    90 * time.Second, // LLM calls dominate
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			AccessLog:       true,
		},
		Store: StoreConfig{
			Backend:    BackendSQLite,
			SessionDir: "./data/sessions",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "buddy",
			},
		},
		LLM:   llm.DefaultConfig(),
		Tutor: tutor.DefaultConfig(),
	}
}

// Load builds the configuration. path names an optional YAML file; when
// empty, BUDDY_CONFIG is consulted.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("BUDDY_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Env = getEnv("BUDDY_ENV", c.Env)

	c.HTTP.Addr = getEnv("BUDDY_ADDR", c.HTTP.Addr)
	if port, ok := os.LookupEnv("PORT"); ok && port != "" {
		c.HTTP.Addr = ":" + port
	}
	c.HTTP.ReadTimeout = getEnvDuration("BUDDY_HTTP_READ_TIMEOUT", c.HTTP.ReadTimeout)
	c.HTTP.WriteTimeout = getEnvDuration("BUDDY_HTTP_WRITE_TIMEOUT", c.HTTP.WriteTimeout)
	c.HTTP.AccessLog = getEnvBool("BUDDY_ACCESS_LOG", c.HTTP.AccessLog)
	if v := getEnv("BUDDY_CORS_ORIGINS", ""); v != "" {
		c.HTTP.CORSOrigins = splitList(v)
	}

	c.Store.Backend = strings.ToLower(getEnv("BUDDY_STORE", c.Store.Backend))
	c.Store.DBPath = getEnv("BUDDY_DB", c.Store.DBPath)
	c.Store.SessionDir = getEnv("BUDDY_SESSION_DIR", c.Store.SessionDir)
	c.Store.Redis.Addr = getEnv("BUDDY_REDIS_ADDR", c.Store.Redis.Addr)
	c.Store.Redis.Password = getEnv("BUDDY_REDIS_PASSWORD", c.Store.Redis.Password)
	c.Store.Redis.DB = getEnvInt("BUDDY_REDIS_DB", c.Store.Redis.DB)
	c.Store.Redis.Prefix = getEnv("BUDDY_REDIS_PREFIX", c.Store.Redis.Prefix)

	c.LLM = llm.ConfigFromEnv(c.LLM)
	if !c.LLM.HasAPIKey() {
		if discovered, ok := llm.DiscoverConfig(c.LLM); ok {
			c.LLM = discovered
		}
	}

	c.Tutor.MaxDiagnosticQuestions = getEnvInt("BUDDY_MAX_DIAGNOSTIC_QUESTIONS", c.Tutor.MaxDiagnosticQuestions)
	c.Tutor.ConversationWindow = getEnvInt("BUDDY_CONVERSATION_WINDOW", c.Tutor.ConversationWindow)
	c.Tutor.Mastery.MaxAttempts = getEnvInt("BUDDY_MAX_CONCEPT_ATTEMPTS", c.Tutor.Mastery.MaxAttempts)
	c.Tutor.Mastery.MaxReteaches = getEnvInt("BUDDY_MAX_RETEACHES", c.Tutor.Mastery.MaxReteaches)
	c.Tutor.Mastery.MasteryThreshold = getEnvFloat("BUDDY_MASTERY_THRESHOLD", c.Tutor.Mastery.MasteryThreshold)
	c.Tutor.Temperature = c.LLM.Temperature
	c.Tutor.MaxTokens = c.LLM.MaxTokens
}

// Validate checks that all required configuration fields are set. LLM
// credentials are checked separately by the commands that need them.
func (c *Config) Validate() error {
	if c.HTTP.Addr == "" {
		return fmt.Errorf("BUDDY_ADDR cannot be empty")
	}
	switch c.Store.Backend {
	case BackendSQLite, BackendMemory:
	case BackendFile:
		if c.Store.SessionDir == "" {
			return fmt.Errorf("BUDDY_SESSION_DIR cannot be empty for the file store")
		}
	case BackendRedis:
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("BUDDY_REDIS_ADDR cannot be empty for the redis store")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Tutor.MaxDiagnosticQuestions < 1 {
		return fmt.Errorf("max diagnostic questions must be >= 1")
	}
	if c.Tutor.ConversationWindow < 1 {
		return fmt.Errorf("conversation window must be >= 1")
	}
	if t := c.Tutor.Mastery.MasteryThreshold; t <= 0 || t > 1 {
		return fmt.Errorf("mastery threshold must be in (0, 1], got %v", t)
	}
	return nil
}

// IsProduction reports whether the production log encoder should be used.
func (c *Config) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

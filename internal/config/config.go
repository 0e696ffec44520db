package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	NATS     NATSConfig     `yaml:"nats"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Engine   EngineConfig   `yaml:"engine"`
	Compare  CompareConfig  `yaml:"compare"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port               int    `yaml:"port"`
	MetricsPort        int    `yaml:"metrics_port"`
	AdminToken         string `yaml:"admin_token"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
	// Migrate creates the tables on startup.
	Migrate bool `yaml:"migrate"`
}

type NATSConfig struct {
	URL            string `yaml:"url"`
	RequestSubject string `yaml:"request_subject"`
}

type CatalogConfig struct {
	// SeedFile is a YAML or JSON snapshot served when no database is configured.
	SeedFile string `yaml:"seed_file"`
}

type EngineConfig struct {
	CandidateLimit    int     `yaml:"candidate_limit"`
	HighTierCPUBoost  float64 `yaml:"high_tier_cpu_boost"`
	RefinePSUWattage  bool    `yaml:"refine_psu_wattage"`
	AssemblyTimeoutMs int     `yaml:"assembly_timeout_ms"`
}

type CompareConfig struct {
	MinBudgets int `yaml:"min_budgets"`
	MaxBudgets int `yaml:"max_budgets"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) AssemblyTimeout() time.Duration {
	return time.Duration(c.Engine.AssemblyTimeoutMs) * time.Millisecond
}

// LogLevel maps logging.level to a slog level; unknown values mean info.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Logging.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Load reads defaults, then the YAML file at path (if any), then RIGGER_* variables.
// Outside production a .env file in the working directory is loaded first; it never
// overrides variables already set.
func Load(path string) (*Config, error) {
	if os.Getenv("RIGGER_ENV") != "production" {
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:               8700,
			MetricsPort:        8701,
			RateLimitPerMinute: 120,
		},
		NATS: NATSConfig{
			URL:            "nats://localhost:4222",
			RequestSubject: "rigger.build.request",
		},
		Engine: EngineConfig{
			CandidateLimit:    10,
			HighTierCPUBoost:  1.2,
			AssemblyTimeoutMs: 10000,
		},
		Compare: CompareConfig{
			MinBudgets: 2,
			MaxBudgets: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.MetricsPort <= 0 || c.Server.MetricsPort > 65535 {
		errs = append(errs, fmt.Errorf("server.metrics_port %d out of range", c.Server.MetricsPort))
	}
	if c.Engine.CandidateLimit <= 0 || c.Engine.CandidateLimit > 100 {
		errs = append(errs, fmt.Errorf("engine.candidate_limit must be 1..100, got %d", c.Engine.CandidateLimit))
	}
	if c.Engine.HighTierCPUBoost < 1 {
		errs = append(errs, fmt.Errorf("engine.high_tier_cpu_boost must be at least 1, got %g", c.Engine.HighTierCPUBoost))
	}
	if c.Compare.MinBudgets < 1 || c.Compare.MaxBudgets < c.Compare.MinBudgets {
		errs = append(errs, fmt.Errorf("compare budgets range %d..%d is invalid", c.Compare.MinBudgets, c.Compare.MaxBudgets))
	}
	if c.Database.URL == "" && c.Catalog.SeedFile == "" {
		errs = append(errs, errors.New("either database.url or catalog.seed_file is required"))
	}
	return errors.Join(errs...)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("RIGGER_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("RIGGER_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("RIGGER_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("RIGGER_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.RateLimitPerMinute = n
		}
	}
	if v := os.Getenv("RIGGER_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("RIGGER_DATABASE_MIGRATE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Database.Migrate = b
		}
	}
	if v := os.Getenv("RIGGER_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("RIGGER_NATS_REQUEST_SUBJECT"); v != "" {
		cfg.NATS.RequestSubject = v
	}
	if v := os.Getenv("RIGGER_CATALOG_SEED_FILE"); v != "" {
		cfg.Catalog.SeedFile = v
	}
	if v := os.Getenv("RIGGER_CANDIDATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.CandidateLimit = n
		}
	}
	if v := os.Getenv("RIGGER_REFINE_PSU_WATTAGE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Engine.RefinePSUWattage = b
		}
	}
	if v := os.Getenv("RIGGER_ASSEMBLY_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.AssemblyTimeoutMs = n
		}
	}
	if v := os.Getenv("RIGGER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("RIGGER_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

type Config struct {
	Server   ServerConfig
	Projects ProjectsConfig
	Analysis AnalysisConfig
	Redis    RedisConfig
	App      AppConfig
}

type ServerConfig struct {
	Port               string
	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration
}

type ProjectsConfig struct {
	Dir         string
	MaxUploadMB int
}

type AnalysisConfig struct {
	// EngineURL selects the remote analysis engine; empty runs analyses
	// in process.
	EngineURL     string
	EngineTimeout time.Duration
	StatsSchedule string
}

type RedisConfig struct {
	URL string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	LogFormat   string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			ShutdownTimeout:    getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Projects: ProjectsConfig{
			Dir:         getEnv("PROJECTS_DIR", "data/projects"),
			MaxUploadMB: getEnvAsInt("MAX_UPLOAD_MB", 512),
		},
		Analysis: AnalysisConfig{
			EngineURL:     getEnv("ANALYSIS_ENGINE_URL", ""),
			EngineTimeout: getEnvAsDuration("ANALYSIS_ENGINE_TIMEOUT", 0),
			StatsSchedule: getEnv("STATS_SCHEDULE", "@every 1m"),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "json"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Projects.Dir == "" {
		return fmt.Errorf("PROJECTS_DIR is required")
	}
	if c.Projects.MaxUploadMB < 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must not be negative")
	}
	if c.Projects.MaxUploadMB > MaxUploadMBLimit {
		return fmt.Errorf("MAX_UPLOAD_MB must not exceed %d", MaxUploadMBLimit)
	}
	if c.Analysis.EngineTimeout < 0 {
		return fmt.Errorf("ANALYSIS_ENGINE_TIMEOUT must not be negative")
	}
	if c.App.LogFormat != "json" && c.App.LogFormat != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console")
	}
	if c.Analysis.StatsSchedule != "" {
		if _, err := cron.ParseStandard(c.Analysis.StatsSchedule); err != nil {
			return fmt.Errorf("invalid STATS_SCHEDULE: %w", err)
		}
	}

	return nil
}

// MaxUploadMBLimit caps MAX_UPLOAD_MB (64 GiB).
const MaxUploadMBLimit = 1 << 16

// MaxUploadBytes is the upload limit in bytes; 0 means unlimited. Values
// above MaxUploadMBLimit are clamped.
func (p ProjectsConfig) MaxUploadBytes() int64 {
	return int64(min(p.MaxUploadMB, MaxUploadMBLimit)) << 20
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

package config

import (
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads .env style files into the process environment. Missing files
// are ignored; variables already set in the environment win.
func Load(files ...string) {
	_ = godotenv.Load(files...)
}

// CacheConfig holds Redis connection settings
type CacheConfig struct {
	Enabled  bool          `json:"enabled"`
	Host     string        `json:"host"`
	Port     int           `json:"port"`
	Password string        `json:"-"`
	DB       int           `json:"db"`
	TTL      time.Duration `json:"ttl"`
}

// MonitoringConfig holds error reporting and metrics settings
type MonitoringConfig struct {
	SentryDSN      string  `json:"-"`
	SentrySample   float64 `json:"sentry_sample_rate"`
	MetricsEnabled bool    `json:"metrics_enabled"`
	LogLevel       string  `json:"log_level"`
	LogFile        string  `json:"log_file,omitempty"`
	ServiceVersion string  `json:"service_version"`
	TracesSample   float64 `json:"traces_sample_rate"`
}

// LoadCache reads the CACHE_* / REDIS_* variables.
func LoadCache() CacheConfig {
	return CacheConfig{
		Enabled:  GetBool("CACHE_ENABLED", false),
		Host:     GetString("REDIS_HOST", "localhost"),
		Port:     GetInt("REDIS_PORT", 6379),
		Password: GetString("REDIS_PASSWORD", ""),
		DB:       GetInt("REDIS_DB", 0),
		TTL:      GetDuration("VIEW_CACHE_TTL", 30*time.Second),
	}
}

// LoadMonitoring reads SENTRY_* / LOG_* / METRICS_* variables.
func LoadMonitoring() MonitoringConfig {
	return MonitoringConfig{
		SentryDSN:      GetString("SENTRY_DSN", ""),
		SentrySample:   GetFloat("SENTRY_SAMPLE_RATE", 1.0),
		TracesSample:   GetFloat("SENTRY_TRACES_SAMPLE_RATE", 0.1),
		MetricsEnabled: GetBool("METRICS_ENABLED", true),
		LogLevel:       GetString("LOG_LEVEL", "info"),
		LogFile:        GetString("LOG_FILE", ""),
		ServiceVersion: GetString("SERVICE_VERSION", "dev"),
	}
}

func GetString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func GetBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func GetDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// ToJSON renders any config struct; fields tagged json:"-" stay hidden.
func ToJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

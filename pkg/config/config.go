package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env string

	Log        LogConfig
	Weights    WeightConfig
	Scheduling SchedulingConfig
	Matching   MatchingConfig
	Redis      RedisConfig
	Cache      CacheConfig
	Export     ExportConfig
	Metrics    MetricsConfig
}

type LogConfig struct {
	Level  string
	Format string
}

// WeightConfig holds the raw compatibility component weights. They are
// rescaled to sum to 1.0 when the engine is constructed.
type WeightConfig struct {
	Personality      float64
	StudyPreferences float64
	AcademicGoals    float64
	Availability     float64
}

// SchedulingConfig bounds session load per student.
type SchedulingConfig struct {
	MaxSessionsPerDay     int
	MaxSessionsPerWeek    int
	MaxPartnersPerStudent int
	SessionHours          float64
}

// MatchingConfig carries defaults for match queries and scheduling runs.
type MatchingConfig struct {
	MinScore    float64
	MaxResults  int
	MaxSessions int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig governs the optional compatibility-matrix cache.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// ExportConfig controls schedule export output.
type ExportConfig struct {
	OutputDir string
}

// MetricsConfig exposes the Prometheus scrape endpoint. An empty address
// leaves the listener off.
type MetricsConfig struct {
	Addr string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Weights = WeightConfig{
		Personality:      v.GetFloat64("WEIGHT_PERSONALITY"),
		StudyPreferences: v.GetFloat64("WEIGHT_STUDY_PREFERENCES"),
		AcademicGoals:    v.GetFloat64("WEIGHT_ACADEMIC_GOALS"),
		Availability:     v.GetFloat64("WEIGHT_AVAILABILITY"),
	}

	cfg.Scheduling = SchedulingConfig{
		MaxSessionsPerDay:     v.GetInt("MAX_SESSIONS_PER_DAY"),
		MaxSessionsPerWeek:    v.GetInt("MAX_SESSIONS_PER_WEEK"),
		MaxPartnersPerStudent: v.GetInt("MAX_PARTNERS_PER_STUDENT"),
		SessionHours:          v.GetFloat64("SESSION_HOURS"),
	}

	cfg.Matching = MatchingConfig{
		MinScore:    v.GetFloat64("MATCH_MIN_SCORE"),
		MaxResults:  v.GetInt("MATCH_MAX_RESULTS"),
		MaxSessions: v.GetInt("MATCH_MAX_SESSIONS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_MATRIX_CACHE"),
		TTL:     parseDuration(v.GetString("MATRIX_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Export = ExportConfig{
		OutputDir: v.GetString("EXPORT_OUTPUT_DIR"),
	}

	cfg.Metrics = MetricsConfig{
		Addr: v.GetString("METRICS_ADDR"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("WEIGHT_PERSONALITY", 0.25)
	v.SetDefault("WEIGHT_STUDY_PREFERENCES", 0.25)
	v.SetDefault("WEIGHT_ACADEMIC_GOALS", 0.25)
	v.SetDefault("WEIGHT_AVAILABILITY", 0.25)

	v.SetDefault("MAX_SESSIONS_PER_DAY", 2)
	v.SetDefault("MAX_SESSIONS_PER_WEEK", 6)
	v.SetDefault("MAX_PARTNERS_PER_STUDENT", 3)
	v.SetDefault("SESSION_HOURS", 2.0)

	v.SetDefault("MATCH_MIN_SCORE", 50.0)
	v.SetDefault("MATCH_MAX_RESULTS", 10)
	v.SetDefault("MATCH_MAX_SESSIONS", 20)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ENABLE_MATRIX_CACHE", false)
	v.SetDefault("MATRIX_CACHE_TTL", "10m")

	v.SetDefault("EXPORT_OUTPUT_DIR", "./exports")

	v.SetDefault("METRICS_ADDR", "")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

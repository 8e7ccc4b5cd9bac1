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
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	CORS     CORSConfig
	Log      LogConfig
	Solver   SolverConfig
	Datasets DatasetsConfig
	Jobs     JobsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// AuthConfig carries the admin credential and token settings.
type AuthConfig struct {
	AdminUser         string
	AdminPasswordHash string
	JWTSecret         string
	TokenExpiry       time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SolverConfig tunes the timetable search engine.
type SolverConfig struct {
	MaxAttempts    int
	SolveTimeout   time.Duration
	AttemptBudget  time.Duration
	CandidateCap   int
	ProposalTTL    time.Duration
	ResultCacheTTL time.Duration
	CacheEnabled   bool
}

// DatasetsConfig bounds uploaded entity collections.
type DatasetsConfig struct {
	MaxCourses     int
	MaxInstructors int
	MaxRooms       int
	MaxTimeslots   int
	RetentionTTL   time.Duration
}

// JobsConfig sizes the asynchronous solve queue.
type JobsConfig struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
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
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Auth = AuthConfig{
		AdminUser:         v.GetString("ADMIN_USER"),
		AdminPasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		TokenExpiry:       parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Solver = SolverConfig{
		MaxAttempts:    v.GetInt("SOLVER_MAX_ATTEMPTS"),
		SolveTimeout:   parseDuration(v.GetString("SOLVER_TIMEOUT"), 60*time.Second),
		AttemptBudget:  parseDuration(v.GetString("SOLVER_ATTEMPT_BUDGET"), 20*time.Second),
		CandidateCap:   v.GetInt("SOLVER_CANDIDATE_CAP"),
		ProposalTTL:    parseDuration(v.GetString("SOLVER_PROPOSAL_TTL"), 30*time.Minute),
		ResultCacheTTL: parseDuration(v.GetString("SOLVER_RESULT_CACHE_TTL"), 10*time.Minute),
		CacheEnabled:   v.GetBool("SOLVER_CACHE_ENABLED"),
	}

	cfg.Datasets = DatasetsConfig{
		MaxCourses:     v.GetInt("DATASETS_MAX_COURSES"),
		MaxInstructors: v.GetInt("DATASETS_MAX_INSTRUCTORS"),
		MaxRooms:       v.GetInt("DATASETS_MAX_ROOMS"),
		MaxTimeslots:   v.GetInt("DATASETS_MAX_TIMESLOTS"),
		RetentionTTL:   parseDuration(v.GetString("DATASETS_RETENTION_TTL"), 12*time.Hour),
	}

	cfg.Jobs = JobsConfig{
		Workers:    v.GetInt("JOBS_WORKERS"),
		MaxRetries: v.GetInt("JOBS_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("JOBS_RETRY_DELAY"), 5*time.Second),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "timetable_api")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ADMIN_USER", "admin")
	v.SetDefault("ADMIN_PASSWORD_HASH", "")
	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SOLVER_MAX_ATTEMPTS", 5)
	v.SetDefault("SOLVER_TIMEOUT", "60s")
	v.SetDefault("SOLVER_ATTEMPT_BUDGET", "20s")
	v.SetDefault("SOLVER_CANDIDATE_CAP", 100)
	v.SetDefault("SOLVER_PROPOSAL_TTL", "30m")
	v.SetDefault("SOLVER_RESULT_CACHE_TTL", "10m")
	v.SetDefault("SOLVER_CACHE_ENABLED", false)

	v.SetDefault("DATASETS_MAX_COURSES", 512)
	v.SetDefault("DATASETS_MAX_INSTRUCTORS", 512)
	v.SetDefault("DATASETS_MAX_ROOMS", 256)
	v.SetDefault("DATASETS_MAX_TIMESLOTS", 64)
	v.SetDefault("DATASETS_RETENTION_TTL", "12h")

	v.SetDefault("JOBS_WORKERS", 1)
	v.SetDefault("JOBS_MAX_RETRIES", 1)
	v.SetDefault("JOBS_RETRY_DELAY", "5s")
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

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

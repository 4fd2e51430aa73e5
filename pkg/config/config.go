package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/sakthi0701/SIH2025-sub000/internal/optimizer"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	CORS      CORSConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	Progress  ProgressConfig
	Events    EventsConfig
	Optimizer OptimizerConfig
}

type CORSConfig struct {
	AllowedOrigins []string
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

type LogConfig struct {
	Level  string
	Format string
}

// ProgressConfig governs the Redis mirror of live job progress and results.
type ProgressConfig struct {
	Enabled  bool
	CacheTTL time.Duration
}

// EventsConfig toggles publishing of optimization lifecycle events to Kafka.
type EventsConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

// OptimizerConfig sizes the worker pool and seeds the default search tuning.
type OptimizerConfig struct {
	Workers     int
	QueueBuffer int
	MaxRetries  int
	RetryDelay  time.Duration
	// ProgressStep is the progress delta, in percent, between database progress writes.
	ProgressStep float64

	PopulationSize       int
	Generations          int
	Runs                 int
	EliteCount           int
	TournamentSize       int
	PreferredClusterSize int
	MinClusterBreak      int
	MaxContinuousClasses int
	InitialMutationRate  float64
	MinMutationRate      float64
	MaxMutationRate      float64
	ResultLimit          int
	BaseScore            float64

	WeightHardConflict float64
	WeightContinuous   float64
	WeightClustering   float64
	WeightDistribution float64
	WeightGap          float64
}

// Parameters converts the configured tuning; unset values keep the optimizer defaults.
func (c OptimizerConfig) Parameters() optimizer.Parameters {
	p := optimizer.DefaultParameters()
	setInt(&p.PopulationSize, c.PopulationSize)
	setInt(&p.Generations, c.Generations)
	setInt(&p.Runs, c.Runs)
	setInt(&p.EliteCount, c.EliteCount)
	setInt(&p.TournamentSize, c.TournamentSize)
	setInt(&p.PreferredClusterSize, c.PreferredClusterSize)
	setInt(&p.MinClusterBreak, c.MinClusterBreak)
	setInt(&p.MaxContinuousClasses, c.MaxContinuousClasses)
	setInt(&p.ResultLimit, c.ResultLimit)
	setFloat(&p.InitialMutationRate, c.InitialMutationRate)
	setFloat(&p.MinMutationRate, c.MinMutationRate)
	setFloat(&p.MaxMutationRate, c.MaxMutationRate)
	setFloat(&p.BaseScore, c.BaseScore)
	setFloat(&p.Weights.HardConflict, c.WeightHardConflict)
	setFloat(&p.Weights.Continuous, c.WeightContinuous)
	setFloat(&p.Weights.Clustering, c.WeightClustering)
	setFloat(&p.Weights.Distribution, c.WeightDistribution)
	setFloat(&p.Weights.Gap, c.WeightGap)
	return p
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func setFloat(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
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
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.CORS = CORSConfig{
		AllowedOrigins: splitAndTrim(v.GetString("CORS_ALLOWED_ORIGINS")),
	}

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

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Progress = ProgressConfig{
		Enabled:  v.GetBool("ENABLE_PROGRESS_CACHE"),
		CacheTTL: parseDuration(v.GetString("PROGRESS_CACHE_TTL"), time.Hour),
	}

	cfg.Events = EventsConfig{
		Enabled: v.GetBool("ENABLE_EVENTS"),
		Brokers: splitAndTrim(v.GetString("KAFKA_BROKERS")),
		Topic:   v.GetString("KAFKA_TOPIC"),
	}

	cfg.Optimizer = OptimizerConfig{
		Workers:     v.GetInt("OPTIMIZER_WORKERS"),
		QueueBuffer: v.GetInt("OPTIMIZER_QUEUE_BUFFER"),
		MaxRetries:  v.GetInt("OPTIMIZER_MAX_RETRIES"),
		RetryDelay:  parseDuration(v.GetString("OPTIMIZER_RETRY_DELAY"), 2*time.Second),

		ProgressStep: v.GetFloat64("OPTIMIZER_PROGRESS_STEP"),

		PopulationSize:       v.GetInt("OPTIMIZER_POPULATION_SIZE"),
		Generations:          v.GetInt("OPTIMIZER_GENERATIONS"),
		Runs:                 v.GetInt("OPTIMIZER_RUNS"),
		EliteCount:           v.GetInt("OPTIMIZER_ELITE_COUNT"),
		TournamentSize:       v.GetInt("OPTIMIZER_TOURNAMENT_SIZE"),
		PreferredClusterSize: v.GetInt("OPTIMIZER_CLUSTER_SIZE"),
		MinClusterBreak:      v.GetInt("OPTIMIZER_CLUSTER_BREAK"),
		MaxContinuousClasses: v.GetInt("OPTIMIZER_MAX_CONTINUOUS"),
		InitialMutationRate:  v.GetFloat64("OPTIMIZER_MUTATION_RATE"),
		MinMutationRate:      v.GetFloat64("OPTIMIZER_MIN_MUTATION_RATE"),
		MaxMutationRate:      v.GetFloat64("OPTIMIZER_MAX_MUTATION_RATE"),
		ResultLimit:          v.GetInt("OPTIMIZER_RESULT_LIMIT"),
		BaseScore:            v.GetFloat64("OPTIMIZER_BASE_SCORE"),

		WeightHardConflict: v.GetFloat64("OPTIMIZER_WEIGHT_HARD"),
		WeightContinuous:   v.GetFloat64("OPTIMIZER_WEIGHT_CONTINUOUS"),
		WeightClustering:   v.GetFloat64("OPTIMIZER_WEIGHT_CLUSTERING"),
		WeightDistribution: v.GetFloat64("OPTIMIZER_WEIGHT_DISTRIBUTION"),
		WeightGap:          v.GetFloat64("OPTIMIZER_WEIGHT_GAP"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "timetable_optimizer")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_PROGRESS_CACHE", true)
	v.SetDefault("PROGRESS_CACHE_TTL", "1h")

	v.SetDefault("ENABLE_EVENTS", false)
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_TOPIC", "timetable.optimizations")

	v.SetDefault("OPTIMIZER_WORKERS", 2)
	v.SetDefault("OPTIMIZER_QUEUE_BUFFER", 32)
	v.SetDefault("OPTIMIZER_MAX_RETRIES", 2)
	v.SetDefault("OPTIMIZER_RETRY_DELAY", "2s")
	v.SetDefault("OPTIMIZER_PROGRESS_STEP", 5)
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

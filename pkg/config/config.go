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

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Scheduler SchedulerConfig
	Oracle    OracleConfig
	Cache     CacheConfig
	Jobs      JobsConfig
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

// JWTConfig configures bearer-token validation for audit attribution.
type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig drives the slot-allocation engine: the teaching grid,
// the mandatory daily break window and the conflict-resolution budgets.
type SchedulerConfig struct {
	Days             []string
	SlotStarts       []string
	SlotMinutes      int
	BreakStart       string
	BreakEnd         string
	StudentsPerGroup int
	ResolverAttempts int
	MaxResolveRounds int
}

// OracleConfig points the engine at the external recommendation service.
type OracleConfig struct {
	Enabled bool
	BaseURL string
	Timeout time.Duration
}

// CacheConfig tunes read-side caching of schedule lookups.
type CacheConfig struct {
	Enabled     bool
	ScheduleTTL time.Duration
	ConflictTTL time.Duration
}

// JobsConfig controls the background regeneration queue.
type JobsConfig struct {
	Workers    int
	BufferSize int
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

	cfg.JWT = JWTConfig{Secret: v.GetString("JWT_SECRET")}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scheduler = SchedulerConfig{
		Days:             splitAndTrim(v.GetString("SCHEDULER_DAYS")),
		SlotStarts:       splitAndTrim(v.GetString("SCHEDULER_SLOT_STARTS")),
		SlotMinutes:      v.GetInt("SCHEDULER_SLOT_MINUTES"),
		BreakStart:       v.GetString("SCHEDULER_BREAK_START"),
		BreakEnd:         v.GetString("SCHEDULER_BREAK_END"),
		StudentsPerGroup: v.GetInt("STUDENTS_PER_GROUP"),
		ResolverAttempts: v.GetInt("RESOLVER_MAX_ATTEMPTS"),
		MaxResolveRounds: v.GetInt("RESOLVER_MAX_ROUNDS"),
	}

	cfg.Oracle = OracleConfig{
		Enabled: v.GetBool("ORACLE_ENABLED"),
		BaseURL: v.GetString("ORACLE_BASE_URL"),
		Timeout: parseDuration(v.GetString("ORACLE_TIMEOUT"), 15*time.Second),
	}

	cfg.Cache = CacheConfig{
		Enabled:     v.GetBool("ENABLE_CACHE"),
		ScheduleTTL: parseDuration(v.GetString("CACHE_SCHEDULE_TTL"), 5*time.Minute),
		ConflictTTL: parseDuration(v.GetString("CACHE_CONFLICT_TTL"), time.Minute),
	}

	cfg.Jobs = JobsConfig{
		Workers:    v.GetInt("JOBS_WORKERS"),
		BufferSize: v.GetInt("JOBS_BUFFER_SIZE"),
		MaxRetries: v.GetInt("JOBS_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("JOBS_RETRY_DELAY"), time.Second),
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
	v.SetDefault("DB_NAME", "timetable")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	// Friday and the weekend carry no classes; the midday hour is the
	// institution-wide break window.
	v.SetDefault("SCHEDULER_DAYS", "MONDAY,TUESDAY,WEDNESDAY,THURSDAY")
	v.SetDefault("SCHEDULER_SLOT_STARTS", "09:00,10:00,11:00,13:00,14:00,15:00,16:00")
	v.SetDefault("SCHEDULER_SLOT_MINUTES", 60)
	v.SetDefault("SCHEDULER_BREAK_START", "12:00")
	v.SetDefault("SCHEDULER_BREAK_END", "13:00")
	v.SetDefault("STUDENTS_PER_GROUP", 25)
	v.SetDefault("RESOLVER_MAX_ATTEMPTS", 50)
	v.SetDefault("RESOLVER_MAX_ROUNDS", 3)

	v.SetDefault("ORACLE_ENABLED", false)
	v.SetDefault("ORACLE_BASE_URL", "http://localhost:9090")
	v.SetDefault("ORACLE_TIMEOUT", "15s")

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CACHE_SCHEDULE_TTL", "5m")
	v.SetDefault("CACHE_CONFLICT_TTL", "1m")

	v.SetDefault("JOBS_WORKERS", 1)
	v.SetDefault("JOBS_BUFFER_SIZE", 8)
	v.SetDefault("JOBS_MAX_RETRIES", 1)
	v.SetDefault("JOBS_RETRY_DELAY", "1s")
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

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Matching MatchingConfig
	Token    TokenConfig
	Notify   NotifyConfig
	Gemini   GeminiConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
	BaseURL     string
	LogJSON     bool
	LogDebug    bool
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

type JWTConfig struct {
	AccessSecret    string
	AccessExpiresIn time.Duration
}

// MatchingConfig carries every pacing and threshold knob of the pipeline.
// Everything has a working default so only the secrets are mandatory.
type MatchingConfig struct {
	FanoutMinScore    float64
	ListingMinScore   float64
	BatchSize         int
	InterItemDelay    time.Duration
	InterBatchDelay   time.Duration
	RateLimitBackoff  time.Duration
	ScorerCallTimeout time.Duration
	LookupBatchSize   int
}

type TokenConfig struct {
	Secret         string
	PreviousSecret string
	MaxAge         time.Duration
	FutureSkew     time.Duration
}

type NotifyConfig struct {
	ChatAPIURL      string
	ChatAPIKey      string
	ChatFromAddress string
	EmailAPIURL     string
	EmailAPIKey     string
	EmailFrom       string
	DefaultAddress  string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

func Load() (Config, error) {
	cfg := Config{}

	var missing []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}

	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
		BaseURL:     opt("APP_BASE_URL"),
		LogJSON:     optBool("LOG_JSON", false),
		LogDebug:    optBool("LOG_DEBUG", false),
	}

	cfg.Database = DatabaseConfig{
		DBHost:     opt("DB_HOST"),
		DBPort:     opt("DB_PORT"),
		DBName:     opt("DB_NAME"),
		DBUser:     opt("DB_USER"),
		DBPassword: opt("DB_PASSWORD"),
		DBSSLMode:  opt("DB_SSL_MODE"),
	}

	cfg.Redis = RedisConfig{
		Host:     opt("REDIS_HOST"),
		Port:     opt("REDIS_PORT"),
		Password: opt("REDIS_PASSWORD"),
	}

	cfg.JWT = JWTConfig{
		AccessSecret:    req("JWT_ACCESS_SECRET"),
		AccessExpiresIn: optDuration("JWT_ACCESS_EXPIRES_IN", 24*time.Hour),
	}

	cfg.Matching = MatchingConfig{
		FanoutMinScore:    optFloat("MATCH_FANOUT_MIN_SCORE", 70),
		ListingMinScore:   optFloat("MATCH_LISTING_MIN_SCORE", 40),
		BatchSize:         optInt("MATCH_BATCH_SIZE", 2),
		InterItemDelay:    optDuration("MATCH_ITEM_DELAY", 500*time.Millisecond),
		InterBatchDelay:   optDuration("MATCH_BATCH_DELAY", 3*time.Second),
		RateLimitBackoff:  optDuration("MATCH_RATE_LIMIT_BACKOFF", 30*time.Second),
		ScorerCallTimeout: optDuration("MATCH_SCORER_TIMEOUT", 60*time.Second),
		LookupBatchSize:   optInt("NOTIFY_LOOKUP_BATCH_SIZE", 200),
	}

	cfg.Token = TokenConfig{
		Secret:         req("RECOMMENDATION_SECRET"),
		PreviousSecret: opt("RECOMMENDATION_PREVIOUS_SECRET"),
		MaxAge:         optDuration("RECOMMENDATION_TOKEN_MAX_AGE", 90*24*time.Hour),
		FutureSkew:     optDuration("RECOMMENDATION_TOKEN_FUTURE_SKEW", time.Hour),
	}

	cfg.Notify = NotifyConfig{
		ChatAPIURL:      opt("CHAT_API_URL"),
		ChatAPIKey:      opt("CHAT_API_KEY"),
		ChatFromAddress: opt("CHAT_FROM_ADDRESS"),
		EmailAPIURL:     opt("EMAIL_API_URL"),
		EmailAPIKey:     opt("EMAIL_API_KEY"),
		EmailFrom:       opt("EMAIL_FROM"),
		DefaultAddress:  opt("NOTIFY_DEFAULT_ADDRESS"),
	}

	cfg.Gemini = GeminiConfig{
		APIKey: opt("GEMINI_API_KEY"),
		Model:  opt("GEMINI_MODEL"),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	return cfg, nil
}

func optInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func optFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return def
	}
	return f
}

func optDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func optBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// Package config reads the service settings from the environment, optionally
// seeded from a .env file, and opens the rotating log output.
package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Anthropic AnthropicConfig

	DefaultTimezone string        `env:"DEFAULT_TIMEZONE" envDefault:"Asia/Tokyo"`
	RateLimit       int           `env:"RATE_LIMIT" envDefault:"100"`
	RateWindow      time.Duration `env:"RATE_WINDOW" envDefault:"1m"`

	// Coach routes call the paid model and get their own per-user budget.
	CoachRateLimit  int           `env:"COACH_RATE_LIMIT" envDefault:"20"`
	CoachRateWindow time.Duration `env:"COACH_RATE_WINDOW" envDefault:"1h"`

	Log           string `env:"LOG_FILE"`
	LogMaxSize    int    `env:"LOG_MAX_SIZE" envDefault:"100"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	LogMaxAge     int    `env:"LOG_MAX_AGE" envDefault:"14"`
}

type DBConfig struct {
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

type RedisConfig struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     string `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type JWTConfig struct {
	Secret string        `env:"JWT_SECRET"`
	Issuer string        `env:"JWT_ISSUER" envDefault:"kanso-rise"`
	TTL    time.Duration `env:"JWT_TTL" envDefault:"72h"`
}

// AnthropicConfig leaves the coach disabled when APIKey is empty.
type AnthropicConfig struct {
	APIKey    string        `env:"ANTHROPIC_API_KEY"`
	Model     string        `env:"ANTHROPIC_MODEL" envDefault:"claude-3-5-sonnet-20241022"`
	BaseURL   string        `env:"ANTHROPIC_BASE_URL" envDefault:"https://api.anthropic.com/v1"`
	MaxTokens int           `env:"ANTHROPIC_MAX_TOKENS" envDefault:"2048"`
	Timeout   time.Duration `env:"ANTHROPIC_TIMEOUT" envDefault:"60s"`
}

var ErrMissingJWTSecret = errors.New("JWT_SECRET is required")

// Load overlays envfile (when it exists) on the process environment and
// parses the result.
func Load(envfile string) (*Config, error) {
	if envfile != "" {
		if _, err := os.Stat(envfile); err == nil {
			if err := godotenv.Load(envfile); err != nil {
				return nil, fmt.Errorf("config: failed to read %s: %w", envfile, err)
			}
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if cfg.JWT.Secret == "" {
		return nil, ErrMissingJWTSecret
	}
	if _, err := time.LoadLocation(cfg.DefaultTimezone); err != nil {
		return nil, fmt.Errorf("config: invalid DEFAULT_TIMEZONE %q: %w", cfg.DefaultTimezone, err)
	}

	return cfg, nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name, c.DB.SSLMode)
}

// OpenLog sends the standard logger and gin output to a rotating file when
// LOG_FILE is set. The returned closer is a no-op otherwise.
func (c *Config) OpenLog() (io.Closer, error) {
	if c.Log == "" {
		return io.NopCloser(nil), nil
	}

	logfile, err := filepath.Abs(c.Log)
	if err != nil {
		return nil, fmt.Errorf("config: bad LOG_FILE: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(logfile), 0o755); err != nil {
		return nil, fmt.Errorf("config: cannot create log dir: %w", err)
	}

	out := &lumberjack.Logger{
		Filename:   logfile,
		MaxSize:    c.LogMaxSize, // megabytes
		MaxBackups: c.LogMaxBackups,
		MaxAge:     c.LogMaxAge, // days
	}

	w := io.MultiWriter(os.Stdout, out)
	log.SetOutput(w)
	gin.DefaultWriter = w
	gin.DefaultErrorWriter = w

	return out, nil
}

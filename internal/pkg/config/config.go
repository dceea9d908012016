package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth      AuthConfig
	RateLimit RateLimitConfig
	Mongo     MongoConfig
	Redis     RedisConfig
}

type AuthConfig struct {
	JWTSecret       string        `env:"JWT_SECRET"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL,  default=30m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL, default=168h"`
	MaxLoginFails   int           `env:"MAX_LOGIN_FAILS,   default=5"`
	LockoutDuration time.Duration `env:"LOCKOUT_DURATION,  default=30m"`
	BcryptCost      int           `env:"BCRYPT_COST,       default=10"`
	AuditWorkers    int           `env:"AUDIT_WORKERS,     default=4"`
}

type RateLimitConfig struct {
	LoginRequests    int64         `env:"LOGIN_RATE_LIMIT,       default=10"`
	LoginWindow      time.Duration `env:"LOGIN_RATE_WINDOW,      default=1m"`
	RegisterRequests int64         `env:"REGISTER_RATE_LIMIT,    default=5"`
	RegisterWindow   time.Duration `env:"REGISTER_RATE_WINDOW,   default=1h"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=trade_finance"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET is required")
	}
	return &cfg, nil
}

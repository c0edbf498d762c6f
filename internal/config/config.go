package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const minSecretLength = 32

type Config struct {
	Server   ServerConfig   `env:",prefix=SERVER_"`
	Postgres PostgresConfig `env:",prefix=POSTGRES_"`
	Redis    RedisConfig    `env:",prefix=REDIS_"`
	AMQP     AMQPConfig     `env:",prefix=AMQP_"`
	JWT      JWTConfig      `env:",prefix=JWT_"`
	Argon2   Argon2Config   `env:",prefix=ARGON2_"`
	Security SecurityConfig `env:",prefix="`
	Cache    CacheConfig    `env:",prefix=CACHE_"`
	Orders   OrdersConfig   `env:",prefix=ORDERS_"`
	CORS     CORSConfig     `env:",prefix=CORS_"`

	TokenCleanupInterval Duration `env:"TOKEN_CLEANUP_INTERVAL,default=1h"`
	Env                  string   `env:"ENV,default=development"`
}

type ServerConfig struct {
	Port         string   `env:"PORT,default=8080"`
	Host         string   `env:"HOST,default=0.0.0.0"`
	ReadTimeout  Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout Duration `env:"WRITE_TIMEOUT,default=15s"`
}

type PostgresConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=5432"`
	User     string `env:"USER,default=autoimport"`
	Password string `env:"PASSWORD,default=autoimport_password"`
	DBName   string `env:"DB,default=autoimport_db"`
	SSLMode  string `env:"SSLMODE,default=disable"`
	Migrate  bool   `env:"MIGRATE,default=true"`
}

type RedisConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=6379"`
	Password string `env:"PASSWORD,default="`
	DB       int    `env:"DB,default=0"`
}

// AMQPConfig configures order event publishing. An empty URL disables it.
type AMQPConfig struct {
	URL      string `env:"URL,default="`
	Exchange string `env:"EXCHANGE,default=orders"`
}

type JWTConfig struct {
	AccessSecret       string   `env:"ACCESS_SECRET,required"`
	RefreshSecret      string   `env:"REFRESH_SECRET,required"`
	Issuer             string   `env:"ISSUER,default=autoimport"`
	AccessTokenExpiry  Duration `env:"ACCESS_TOKEN_EXPIRY,default=15m"`
	RefreshTokenExpiry Duration `env:"REFRESH_TOKEN_EXPIRY,default=7d"`
}

type Argon2Config struct {
	MemoryKB      uint32 `env:"MEMORY_KB,default=65536"`
	Time          uint32 `env:"TIME,default=3"`
	Parallelism   uint8  `env:"PARALLELISM,default=4"`
	MaxConcurrent int64  `env:"MAX_CONCURRENT,default=4"`
}

type SecurityConfig struct {
	RateLimitRequests       int      `env:"RATE_LIMIT_REQUESTS,default=10"`
	RateLimitWindow         Duration `env:"RATE_LIMIT_WINDOW,default=1m"`
	GlobalRateLimitRequests int      `env:"GLOBAL_RATE_LIMIT_REQUESTS,default=100"`
}

type CacheConfig struct {
	TTL Duration `env:"TTL,default=5m"`
}

type OrdersConfig struct {
	AllowBackwardTransitions bool `env:"ALLOW_BACKWARD_TRANSITIONS,default=false"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=http://localhost:3000"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Content-Type,Authorization"`
}

// DSN returns PostgreSQL connection string
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// Address returns the HTTP listen address
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

// Address returns Redis connection address
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load loads configuration from environment variables. Values from a local
// .env file are applied first without overriding the real environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	var config Config

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadWithDefaults loads configuration with default context
func LoadWithDefaults() (*Config, error) {
	return Load(context.Background())
}

func (c *Config) validate() error {
	if len(c.JWT.AccessSecret) < minSecretLength {
		return fmt.Errorf("JWT_ACCESS_SECRET must be at least %d characters long", minSecretLength)
	}
	if len(c.JWT.RefreshSecret) < minSecretLength {
		return fmt.Errorf("JWT_REFRESH_SECRET must be at least %d characters long", minSecretLength)
	}
	if c.JWT.AccessSecret == c.JWT.RefreshSecret {
		return errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if c.Argon2.MaxConcurrent < 1 {
		return errors.New("ARGON2_MAX_CONCURRENT must be positive")
	}
	if c.Argon2.Parallelism < 1 || c.Argon2.Time < 1 {
		return errors.New("ARGON2_TIME and ARGON2_PARALLELISM must be positive")
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"JWT_ACCESS_TOKEN_EXPIRY", c.JWT.AccessTokenExpiry.Duration},
		{"JWT_REFRESH_TOKEN_EXPIRY", c.JWT.RefreshTokenExpiry.Duration},
		{"RATE_LIMIT_WINDOW", c.Security.RateLimitWindow.Duration},
		{"CACHE_TTL", c.Cache.TTL.Duration},
		{"TOKEN_CLEANUP_INTERVAL", c.TokenCleanupInterval.Duration},
	}
	for _, d := range durations {
		if d.value <= 0 {
			return fmt.Errorf("%s must be a positive duration", d.name)
		}
	}
	return nil
}

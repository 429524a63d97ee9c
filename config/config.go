// Package config loads Redis connection settings from the environment.
package config

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v7"
	goredis "github.com/redis/go-redis/v9"
)

// EnvPrefix is prepended to every variable name, e.g. REDIS_HOST.
const EnvPrefix = "REDIS_"

// Config is the flat connection option set. URL, when set, wins over the
// discrete fields (redis://[:password@]host:port/db).
type Config struct {
	URL          string        `env:"URL"`
	Host         string        `env:"HOST"          envDefault:"127.0.0.1"`
	Port         int           `env:"PORT"          envDefault:"6379"`
	Password     string        `env:"PASSWORD"`
	DB           int           `env:"DB"            envDefault:"0"`
	TTL          time.Duration `env:"TTL"           envDefault:"1m"`
	Prefix       string        `env:"PREFIX"`
	DialTimeout  time.Duration `env:"DIAL_TIMEOUT"  envDefault:"5s"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT"  envDefault:"3s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"3s"`
	PoolSize     int           `env:"POOL_SIZE"     envDefault:"0"`
	MaxRetries   int           `env:"MAX_RETRIES"   envDefault:"3"`
}

// Load parses REDIS_* variables from the process environment.
func Load() (Config, error) {
	return LoadFrom(nil)
}

// LoadFrom parses REDIS_* variables from environ; nil means the process environment.
func LoadFrom(environ map[string]string) (Config, error) {
	var cfg Config
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.Parse(&cfg, opts); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Addr is host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Options builds go-redis client options. Pool sizing, timeouts and retry
// policy live in the client; the store adds none of its own.
func (c Config) Options() (*goredis.Options, error) {
	if c.URL != "" {
		opts, err := goredis.ParseURL(c.URL)
		if err != nil {
			return nil, err
		}
		if c.Password != "" && opts.Password == "" {
			opts.Password = c.Password
		}
		return opts, nil
	}
	return &goredis.Options{
		Addr:         c.Addr(),
		Password:     c.Password,
		DB:           c.DB,
		DialTimeout:  c.DialTimeout,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
		PoolSize:     c.PoolSize,
		MaxRetries:   c.MaxRetries,
	}, nil
}

// Connect creates a client and verifies the server answers PING.
func Connect(ctx context.Context, c Config) (*goredis.Client, error) {
	opts, err := c.Options()
	if err != nil {
		return nil, err
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

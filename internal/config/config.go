package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
)

// Config is the process configuration, read from the environment. Store
// settings (tax rate, currency, order-number prefix) live in the menu file,
// not here: they belong to the catalog, this is infrastructure only.
type Config struct {
	HTTPPort int    `env:"HTTP_PORT" envDefault:"3000"`
	MenuPath string `env:"MENU_PATH" envDefault:"config/menu.json"`

	DBHost string `env:"DB_HOST,required"`
	DBPort int    `env:"DB_PORT" envDefault:"5432"`
	DBUser string `env:"DB_USER,required"`
	DBPass string `env:"DB_PASSWORD,required"`
	DBName string `env:"DB_NAME,required"`

	RabbitHost string `env:"RABBIT_HOST,required"`
	RabbitPort int    `env:"RABBIT_PORT" envDefault:"5672"`
	RabbitUser string `env:"RABBIT_USER,required"`
	RabbitPass string `env:"RABBIT_PASSWORD,required"`

	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	MenuCacheTTL  time.Duration `env:"MENU_CACHE_TTL" envDefault:"5m"`

	SettlementDelay time.Duration `env:"SETTLEMENT_DELAY" envDefault:"2s"`
}

// Load parses and validates the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP_PORT %d", cfg.HTTPPort)
	}
	return &cfg, nil
}

// PostgresDSN builds the connection string for the order store.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s", c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
}

// RabbitURL builds the broker URL for the ticket queue.
func (c *Config) RabbitURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", c.RabbitUser, c.RabbitPass, c.RabbitHost, c.RabbitPort)
}

package postgres

import (
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5"
)

// Config describes how to reach PostgreSQL. URL wins over the discrete fields.
type Config struct {
	URL            string `split_words:"true"`
	Host           string `envconfig:"DB_HOST" default:"localhost"`
	Port           string `envconfig:"DB_PORT" default:"5432"`
	Name           string `envconfig:"DB_NAME"`
	User           string `envconfig:"DB_USER"`
	Password       string `envconfig:"DB_PASSWORD"`
	SSLMode        string `envconfig:"DB_SSLMODE" default:"disable"`
	ConnectTimeout int    `envconfig:"DB_CONNECT_TIMEOUT" default:"5"`
	ReadOnly       bool   `envconfig:"DB_READ_ONLY" default:"true"`
}

// ConnString returns a libpq-style URL for pgx.
func (c *Config) ConnString() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, c.Port),
		Path:   "/" + c.Name,
	}
	if c.User != "" {
		if c.Password != "" {
			u.User = url.UserPassword(c.User, c.Password)
		} else {
			u.User = url.User(c.User)
		}
	}
	q := url.Values{}
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	if c.ConnectTimeout > 0 {
		q.Set("connect_timeout", fmt.Sprint(c.ConnectTimeout))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// ParseConfig validates the connection settings without dialing.
func (c *Config) ParseConfig() (*pgx.ConnConfig, error) {
	cfg, err := pgx.ParseConfig(c.ConnString())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	if cfg.ConnectTimeout == 0 && c.ConnectTimeout > 0 {
		cfg.ConnectTimeout = time.Duration(c.ConnectTimeout) * time.Second
	}
	return cfg, nil
}

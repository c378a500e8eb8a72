// Package dbconfig resolves the Postgres connection from the
// environment. Credentials never live in config.yaml; everything here is
// env-only so deployments can inject secrets without touching files.
package dbconfig

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	_ "github.com/lib/pq"
)

// Postgres holds connection and pool settings for the market database.
type Postgres struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// PostgresFromEnv reads DB_* environment variables, with defaults fit
// for local development.
func PostgresFromEnv() Postgres {
	return Postgres{
		Host:     EnvOr("DB_HOST", "localhost"),
		Port:     envInt("DB_PORT", 5432),
		User:     EnvOr("DB_USER", "postgres"),
		Password: EnvOr("DB_PASSWORD", "postgres"),
		Database: EnvOr("DB_NAME", "fantamarket"),
		SSLMode:  EnvOr("DB_SSLMODE", "disable"),

		MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: time.Duration(envInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)) * time.Minute,
	}
}

// DSN returns the lib/pq connection string.
func (p Postgres) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// Open connects, applies the pool limits and verifies the connection.
func (p Postgres) Open() (*sql.DB, error) {
	database, err := sql.Open("postgres", p.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	database.SetMaxOpenConns(p.MaxOpenConns)
	database.SetMaxIdleConns(p.MaxIdleConns)
	database.SetConnMaxLifetime(p.ConnMaxLifetime)

	if err := database.Ping(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return database, nil
}

// EnvOr returns the environment value for key, or fallback when the
// variable is unset or empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(EnvOr(key, strconv.Itoa(fallback)))
	if err != nil {
		return fallback
	}
	return v
}

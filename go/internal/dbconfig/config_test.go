package dbconfig

import (
	"strings"
	"testing"
	"time"
)

func TestPostgresFromEnv(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")

	cfg := PostgresFromEnv()
	if cfg.Host != "db.internal" {
		t.Errorf("host = %s, want db.internal", cfg.Host)
	}
	if cfg.Port != 6543 {
		t.Errorf("port = %d, want 6543", cfg.Port)
	}
	// Unparseable values fall back to the default.
	if cfg.MaxOpenConns != 25 {
		t.Errorf("max open conns = %d, want default 25", cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime != 30*time.Minute {
		t.Errorf("conn max lifetime = %s, want 30m", cfg.ConnMaxLifetime)
	}
}

func TestDSN(t *testing.T) {
	cfg := Postgres{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "secret",
		Database: "market",
		SSLMode:  "disable",
	}

	dsn := cfg.DSN()
	for _, part := range []string{"host=localhost", "port=5432", "dbname=market", "sslmode=disable"} {
		if !strings.Contains(dsn, part) {
			t.Errorf("dsn %q missing %q", dsn, part)
		}
	}
}

func TestEnvOr(t *testing.T) {
	t.Setenv("DBCONFIG_TEST_KEY", "set")
	if got := EnvOr("DBCONFIG_TEST_KEY", "fallback"); got != "set" {
		t.Errorf("EnvOr = %q, want set", got)
	}
	if got := EnvOr("DBCONFIG_TEST_MISSING", "fallback"); got != "fallback" {
		t.Errorf("EnvOr = %q, want fallback", got)
	}
}

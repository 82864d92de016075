package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	t.Setenv("CATAN_STORAGE", "memory")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Game.MaxPlayers != 4 || cfg.Game.BankTradeRatio != 4 {
		t.Fatalf("unexpected game defaults: %+v", cfg.Game)
	}
	if cfg.Storage.Driver != "memory" {
		t.Fatalf("driver = %q", cfg.Storage.Driver)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
server:
  addr: ":9000"
  debug_errors: true
storage:
  driver: mysql
  mysql_dsn: "catan:catan@tcp(127.0.0.1:3306)/catan"
  lock_wait_timeout: 3s
game:
  max_players: 3
  bank_trade_ratio: 3
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9000" || !cfg.Server.DebugErrors {
		t.Fatalf("server section: %+v", cfg.Server)
	}
	if cfg.Storage.LockWaitTimeout != 3*time.Second {
		t.Fatalf("lock wait = %v", cfg.Storage.LockWaitTimeout)
	}
	if cfg.Game.MaxPlayers != 3 || cfg.Game.BankSupply != 19 {
		t.Fatalf("game section: %+v", cfg.Game)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"MYSQL_DSN":  "u:p@tcp(db:3306)/catan",
		"REDIS_ADDR": "cache:6379",
		"REDIS_DB":   "2",
		"JWT_SECRET": "s3cret",
	}
	cfg := Defaults()
	err := cfg.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	if err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.Storage.Driver != "mysql" || cfg.Storage.MySQLDSN != env["MYSQL_DSN"] {
		t.Fatalf("storage: %+v", cfg.Storage)
	}
	if !cfg.Redis.Enabled || cfg.Redis.Addr != "cache:6379" || cfg.Redis.DB != 2 {
		t.Fatalf("redis: %+v", cfg.Redis)
	}
	if cfg.Auth.JWTSecret != "s3cret" {
		t.Fatalf("jwt secret = %q", cfg.Auth.JWTSecret)
	}

	bad := Defaults()
	if err := bad.applyEnv(func(k string) (string, bool) {
		if k == "REDIS_DB" {
			return "x", true
		}
		return "", false
	}); err == nil {
		t.Fatalf("expected REDIS_DB parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Storage.Driver = "sqlite" }},
		{"mysql without dsn", func(c *Config) { c.Storage.Driver = "mysql" }},
		{"no players", func(c *Config) { c.Game.MaxPlayers = 0 }},
		{"zero ratio", func(c *Config) { c.Game.BankTradeRatio = 0 }},
		{"empty secret", func(c *Config) { c.Auth.JWTSecret = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

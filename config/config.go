package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Redis   RedisConfig   `yaml:"redis"`
	Auth    AuthConfig    `yaml:"auth"`
	Game    GameConfig    `yaml:"game"`
}

type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	Debug       bool     `yaml:"debug"`
	DebugErrors bool     `yaml:"debug_errors"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type StorageConfig struct {
	Driver          string        `yaml:"driver"` // mysql | memory
	MySQLDSN        string        `yaml:"mysql_dsn"`
	LockWaitTimeout time.Duration `yaml:"lock_wait_timeout"`
}

type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Channel  string        `yaml:"channel"`
	HexTTL   time.Duration `yaml:"hex_ttl"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	AccessTTL time.Duration `yaml:"access_ttl"`
}

type GameConfig struct {
	MaxPlayers     int `yaml:"max_players"`
	BankTradeRatio int `yaml:"bank_trade_ratio"`
	BankSupply     int `yaml:"bank_supply"`
}

func Defaults() Config {
	return Config{
		Server: ServerConfig{Addr: ":8000"},
		Storage: StorageConfig{
			Driver:          "memory",
			LockWaitTimeout: 5 * time.Second,
		},
		Redis: RedisConfig{
			Addr:    "127.0.0.1:6379",
			Channel: "catan:events",
			HexTTL:  10 * time.Minute,
		},
		Auth: AuthConfig{
			JWTSecret: "access-secret",
			AccessTTL: 24 * time.Hour,
		},
		Game: GameConfig{
			MaxPlayers:     4,
			BankTradeRatio: 4,
			BankSupply:     19,
		},
	}
}

// Load reads path (empty means defaults only), then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("读取配置失败: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("配置无效: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("CATAN_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := lookup("CATAN_STORAGE"); ok {
		c.Storage.Driver = v
	}
	if v, ok := lookup("MYSQL_DSN"); ok {
		c.Storage.MySQLDSN = v
		if _, set := lookup("CATAN_STORAGE"); !set {
			c.Storage.Driver = "mysql"
		}
	}
	if v, ok := lookup("REDIS_ADDR"); ok {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v, ok := lookup("REDIS_DB"); ok {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		c.Redis.DB = db
	}
	if v, ok := lookup("JWT_SECRET"); ok {
		c.Auth.JWTSecret = v
	}
	return nil
}

func (c Config) Validate() error {
	switch c.Storage.Driver {
	case "memory":
	case "mysql":
		if c.Storage.MySQLDSN == "" {
			return fmt.Errorf("storage.mysql_dsn is required for the mysql driver")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}
	if c.Game.MaxPlayers < 1 {
		return fmt.Errorf("game.max_players must be positive, got %d", c.Game.MaxPlayers)
	}
	if c.Game.BankTradeRatio < 1 {
		return fmt.Errorf("game.bank_trade_ratio must be positive, got %d", c.Game.BankTradeRatio)
	}
	if c.Game.BankSupply < 0 {
		return fmt.Errorf("game.bank_supply must not be negative, got %d", c.Game.BankSupply)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is empty")
	}
	if c.Auth.AccessTTL <= 0 {
		return fmt.Errorf("auth.access_ttl must be positive")
	}
	return nil
}

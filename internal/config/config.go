// File: internal/config/config.go
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type ServerConfig struct {
	Port           int           `yaml:"port"`
	APIKey         string        `yaml:"api_key"`    // guards the trace endpoint
	JWTSecret      string        `yaml:"jwt_secret"` // HMAC secret for bearer tokens
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type ChainConfig struct {
	RPCURL          string        `yaml:"rpc_url"`
	ChainID         int64         `yaml:"chain_id"`
	OperatorKey     string        `yaml:"operator_key"` // hex, no 0x prefix
	RewardPool      string        `yaml:"reward_pool"`  // NFT pool contract address
	RewardToken     string        `yaml:"reward_token"` // ERC-20 token contract address
	NonprofitWallet string        `yaml:"nonprofit_wallet"`
	ConfirmTimeout  time.Duration `yaml:"confirm_timeout"`
}

type ScanConfig struct {
	MaxDistanceMeters float64 `yaml:"max_distance_meters"`
	RatePerMinute     int     `yaml:"rate_per_minute"` // anonymous scans per IP
}

type ReconcilerConfig struct {
	Interval   time.Duration `yaml:"interval"`
	MinAge     time.Duration `yaml:"min_age"` // leave fresh failures to in-flight retries
	BatchLimit int           `yaml:"batch_limit"`
}

type Config struct {
	Log        LogConfig        `yaml:"log"`
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Chain      ChainConfig      `yaml:"chain"`
	Scan       ScanConfig       `yaml:"scan"`
	Reconciler ReconcilerConfig `yaml:"reconciler"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig() (*Config, error) {
	var configPath string = ""
	var dev bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.Parse()

	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RequestTimeout <= 0 {
		cfg.Server.RequestTimeout = 30 * time.Second
	}
	if cfg.Chain.ConfirmTimeout <= 0 {
		cfg.Chain.ConfirmTimeout = 90 * time.Second
	}
	if cfg.Scan.MaxDistanceMeters <= 0 {
		cfg.Scan.MaxDistanceMeters = 1000
	}
	if cfg.Scan.RatePerMinute <= 0 {
		cfg.Scan.RatePerMinute = 30
	}
	if cfg.Reconciler.Interval <= 0 {
		cfg.Reconciler.Interval = 10 * time.Minute
	}
	if cfg.Reconciler.MinAge <= 0 {
		cfg.Reconciler.MinAge = 5 * time.Minute
	}
	if cfg.Reconciler.BatchLimit <= 0 {
		cfg.Reconciler.BatchLimit = 50
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Server.JWTSecret == "" {
		return nil, errors.New("server.jwt_secret is required")
	}
	if cfg.Chain.NonprofitWallet == "" {
		return nil, errors.New("chain.nonprofit_wallet is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}

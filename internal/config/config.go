// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goldium-io/gold-core/internal/domain"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

type Config struct {
	RPCList        []string        `mapstructure:"rpc_list"`
	Network        string          `mapstructure:"network"`
	Ledger         LedgerConfig    `mapstructure:"ledger"`
	PostgresURL    string          `mapstructure:"postgres_url"`
	Staking        StakingConfig   `mapstructure:"staking"`
	Bridge         BridgeConfig    `mapstructure:"bridge"`
	ListenAddr     string          `mapstructure:"listen_addr"`
	DebugLogging   bool            `mapstructure:"debug_logging"`
	LogFile        string          `mapstructure:"log_file"`
	RateLimit      RateLimitConfig `mapstructure:"rate_limit"`
	TokenOverrides string          `mapstructure:"token_overrides"`
	Wallet         WalletConfig    `mapstructure:"wallet"`
}

type LedgerConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

type StakingConfig struct {
	APYPercent float64 `mapstructure:"apy_percent"`
}

type BridgeConfig struct {
	Delay     time.Duration `mapstructure:"delay"`
	SweepSpec string        `mapstructure:"sweep_spec"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// WalletConfig: локальный keypair для on-chain переводов; пустой File отключает их.
type WalletConfig struct {
	File string `mapstructure:"file"`
	Name string `mapstructure:"name"`
}

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"

	DefaultRPC        = "https://api.devnet.solana.com"
	DefaultListenAddr = ":8080"
	DefaultAPY        = 15.0
	DefaultBridgeWait = 10 * time.Second
	DefaultSweepSpec  = "@every 30s"
	DefaultRPS        = 10.0
	DefaultBurst      = 20
)

// LoadConfig читает файл (если path не пуст) и переменные окружения GOLD_*.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	defaults := map[string]interface{}{
		"rpc_list":            []string{DefaultRPC},
		"network":             string(domain.Devnet),
		"ledger.backend":      BackendMemory,
		"ledger.path":         "data/ledger.json",
		"postgres_url":        "",
		"staking.apy_percent": DefaultAPY,
		"bridge.delay":        DefaultBridgeWait,
		"bridge.sweep_spec":   DefaultSweepSpec,
		"listen_addr":         DefaultListenAddr,
		"debug_logging":       false,
		"log_file":            "goldd.log",
		"rate_limit.rps":      DefaultRPS,
		"rate_limit.burst":    DefaultBurst,
		"token_overrides":     "",
		"wallet.file":         "",
		"wallet.name":         "",
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix("GOLD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	loadEnvironmentVariables(v, &cfg)

	return &cfg, validateConfig(&cfg)
}

// NetworkValue возвращает разобранную сеть; конфиг уже провалидирован.
func (c *Config) NetworkValue() domain.Network {
	n, _ := domain.ParseNetwork(c.Network)
	return n
}

func validateConfig(cfg *Config) error {
	if len(cfg.RPCList) == 0 {
		return errors.New("rpc_list is empty")
	}
	for _, rpcURL := range cfg.RPCList {
		if err := validateURLWithCache(rpcURL, "http"); err != nil {
			return fmt.Errorf("invalid RPC URL %q: %w", rpcURL, err)
		}
	}
	if _, err := domain.ParseNetwork(cfg.Network); err != nil {
		return err
	}

	switch cfg.Ledger.Backend {
	case BackendMemory:
	case BackendFile:
		if cfg.Ledger.Path == "" {
			return errors.New("ledger.path is required for the file backend")
		}
	case BackendPostgres:
		if cfg.PostgresURL == "" {
			return errors.New("postgres_url is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown ledger.backend %q", cfg.Ledger.Backend)
	}

	if cfg.ListenAddr == "" {
		return errors.New("listen_addr is empty")
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.Staking.APYPercent < 0 {
		return errors.New("invalid staking.apy_percent")
	}
	if cfg.Bridge.Delay <= 0 {
		return errors.New("invalid bridge.delay")
	}
	if cfg.Bridge.SweepSpec == "" {
		return errors.New("bridge.sweep_spec is empty")
	}
	// тот же парсер, что у cron.New() в BridgeSweeper
	if _, err := cron.ParseStandard(cfg.Bridge.SweepSpec); err != nil {
		return fmt.Errorf("invalid bridge.sweep_spec: %w", err)
	}
	if cfg.RateLimit.RPS <= 0 {
		return errors.New("invalid rate_limit.rps")
	}
	if cfg.RateLimit.Burst <= 0 {
		return errors.New("invalid rate_limit.burst")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) || parsed.Host == "" {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

// GOLD_RPC_LIST задаётся через запятую; viper сам такое не делит.
func loadEnvironmentVariables(v *viper.Viper, cfg *Config) {
	envRPCList := v.GetString("RPC_LIST")
	if envRPCList == "" || !strings.Contains(envRPCList, ",") {
		return
	}
	var cleanRPCs []string
	for _, rpc := range strings.Split(envRPCList, ",") {
		if clean := strings.TrimSpace(rpc); clean != "" {
			cleanRPCs = append(cleanRPCs, clean)
		}
	}
	if len(cleanRPCs) > 0 {
		cfg.RPCList = cleanRPCs
	}
}

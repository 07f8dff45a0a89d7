package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/castpass/castpass/internal/domain/payment"
	vo "github.com/castpass/castpass/internal/domain/payment/valueobjects"
	sharedConfig "github.com/castpass/castpass/internal/shared/config"
)

const envPrefix = "CASTPASS"

type Config struct {
	Server    sharedConfig.ServerConfig    `mapstructure:"server"`
	Database  sharedConfig.DatabaseConfig  `mapstructure:"database"`
	Logger    sharedConfig.LoggerConfig    `mapstructure:"logger"`
	Auth      sharedConfig.AuthConfig      `mapstructure:"auth"`
	Redis     sharedConfig.RedisConfig     `mapstructure:"redis"`
	RateLimit sharedConfig.RateLimitConfig `mapstructure:"ratelimit"`
	Payment   sharedConfig.PaymentConfig   `mapstructure:"payment"`
	Ledger    sharedConfig.LedgerConfig    `mapstructure:"ledger"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load reads configuration from configPath, or from config.yaml in the
// usual config directories when configPath is empty, then applies CASTPASS_*
// environment variables. A missing config file is not an error.
func Load(env, configPath string) (*Config, error) {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
	}

	// Set environment variable prefix and replacer
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Allow env parameter to override server mode if provided
	if env != "" && env != "default" {
		v.Set("server.mode", env)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Database defaults
	v.SetDefault("database.driver", sharedConfig.DriverSQLite)
	v.SetDefault("database.path", "data/castpass.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "castpass")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.conn_max_lifetime", 60)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	// Auth defaults (empty secret disables bearer binding)
	v.SetDefault("auth.jwt.secret", "")
	v.SetDefault("auth.jwt.issuer", "")

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("ratelimit.verify_per_minute", 10)

	// Payment defaults
	v.SetDefault("payment.receiving_address", "")
	v.SetDefault("payment.subscription_months", 1)
	v.SetDefault("payment.window", 24*time.Hour)
	v.SetDefault("payment.required_amounts", map[string]any{
		"ETH":  "0.002",
		"USDC": "5",
		"USDT": "5",
	})
	v.SetDefault("payment.accepted_tokens", []string{"USDC", "USDT"})
	v.SetDefault("payment.compaction.interval", 24*time.Hour)
	v.SetDefault("payment.compaction.retention", 30*24*time.Hour)

	// Ledger defaults (Etherscan V2 multichain endpoint)
	v.SetDefault("ledger.api_key", "")
	v.SetDefault("ledger.timeout", 10*time.Second)
	v.SetDefault("ledger.page_size", 100)
	v.SetDefault("ledger.min_interval", 250*time.Millisecond)
	v.SetDefault("ledger.networks.mainnet.endpoint", "https://api.etherscan.io/v2/api")
	v.SetDefault("ledger.networks.mainnet.chain_id", 1)
	v.SetDefault("ledger.networks.mainnet.native_symbol", "ETH")
	v.SetDefault("ledger.networks.mainnet.native_decimals", 18)
	v.SetDefault("ledger.networks.mainnet.token_contracts", map[string]any{
		"USDC": "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48",
		"USDT": "0xdac17f958d2ee523a2206206994597c13d831ec7",
	})
	v.SetDefault("ledger.networks.base.endpoint", "https://api.etherscan.io/v2/api")
	v.SetDefault("ledger.networks.base.chain_id", 8453)
	v.SetDefault("ledger.networks.base.native_symbol", "ETH")
	v.SetDefault("ledger.networks.base.native_decimals", 18)
	v.SetDefault("ledger.networks.base.token_contracts", map[string]any{
		"USDC": "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913",
		"USDT": "0xfde4c96c8593536e31f229ea8f37b2ada2699bb2",
	})
}

// ToPaymentConfig validates the payment and ledger sections and builds the
// immutable domain configuration. Map keys are upper-cased because viper
// lowercases them.
func (c *Config) ToPaymentConfig() (*payment.Config, error) {
	amounts := make(map[vo.Currency]decimal.Decimal, len(c.Payment.RequiredAmounts))
	for symbol, raw := range c.Payment.RequiredAmounts {
		amount, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("payment.required_amounts.%s: %w", symbol, err)
		}
		amounts[vo.NewCurrency(symbol)] = amount
	}

	tokens := make([]vo.Currency, 0, len(c.Payment.AcceptedTokens))
	for _, symbol := range c.Payment.AcceptedTokens {
		tokens = append(tokens, vo.NewCurrency(symbol))
	}

	networks := make([]payment.NetworkParams, 0, len(c.Ledger.Networks))
	for name, n := range c.Ledger.Networks {
		network, err := vo.NewNetwork(strings.ToLower(name))
		if err != nil {
			return nil, fmt.Errorf("ledger.networks: %w", err)
		}
		contracts := make(map[vo.Currency]string, len(n.TokenContracts))
		for symbol, address := range n.TokenContracts {
			contracts[vo.NewCurrency(symbol)] = address
		}
		networks = append(networks, payment.NetworkParams{
			Network:        network,
			Endpoint:       n.Endpoint,
			ChainID:        n.ChainID,
			NativeCurrency: vo.NewCurrency(n.NativeSymbol),
			NativeDecimals: n.NativeDecimals,
			TokenContracts: contracts,
		})
	}

	cfg, err := payment.NewConfig(payment.ConfigParams{
		ReceivingAddress:   c.Payment.ReceivingAddress,
		RequiredAmounts:    amounts,
		AcceptedTokens:     tokens,
		SubscriptionMonths: c.Payment.SubscriptionMonths,
		Window:             c.Payment.Window,
		APIKey:             c.Ledger.APIKey,
		Networks:           networks,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid payment configuration: %w", err)
	}
	return cfg, nil
}

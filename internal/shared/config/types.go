package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Database drivers understood by database.Init.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Path            string `mapstructure:"path"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// GetDSN returns the mysql DSN. Times are parsed as UTC.
func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig configures bearer-token binding of a fid to the caller.
// An empty Secret disables authentication.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

type AuthConfig struct {
	JWT JWTConfig `mapstructure:"jwt"`
}

type RateLimitConfig struct {
	VerifyPerMinute int `mapstructure:"verify_per_minute"`
}

// PaymentConfig is the raw payment section. Amounts are decimal strings so
// that no precision is lost through float parsing.
type PaymentConfig struct {
	ReceivingAddress   string            `mapstructure:"receiving_address"`
	SubscriptionMonths int               `mapstructure:"subscription_months"`
	Window             time.Duration     `mapstructure:"window"`
	RequiredAmounts    map[string]string `mapstructure:"required_amounts"`
	AcceptedTokens     []string          `mapstructure:"accepted_tokens"`
	Compaction         CompactionConfig  `mapstructure:"compaction"`
}

// CompactionConfig schedules removal of long-expired entitlements by the
// server. A zero Interval disables the schedule.
type CompactionConfig struct {
	Interval  time.Duration `mapstructure:"interval"`
	Retention time.Duration `mapstructure:"retention"`
}

type LedgerNetworkConfig struct {
	Endpoint       string            `mapstructure:"endpoint"`
	ChainID        int64             `mapstructure:"chain_id"`
	NativeSymbol   string            `mapstructure:"native_symbol"`
	NativeDecimals int32             `mapstructure:"native_decimals"`
	TokenContracts map[string]string `mapstructure:"token_contracts"`
}

type LedgerConfig struct {
	APIKey      string                         `mapstructure:"api_key"`
	Timeout     time.Duration                  `mapstructure:"timeout"`
	PageSize    int                            `mapstructure:"page_size"`
	MinInterval time.Duration                  `mapstructure:"min_interval"`
	Networks    map[string]LedgerNetworkConfig `mapstructure:"networks"`
}

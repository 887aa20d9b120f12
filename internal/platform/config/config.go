// Package config loads VegaExchange's layered configuration: a TOML file
// overridable by VEGA_-prefixed environment variables, adapted from the
// teacher's pkg/config.
package config

import (
	"errors"
	"io/fs"
	"reflect"
	"strings"

	"github.com/spf13/viper"

	"github.com/davidting0918/VegaExchange/internal/platform/logging"
)

// Config is the root configuration tree.
type Config struct {
	HTTP     HTTPConfig     `mapstructure:"http"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Logger   logging.Config `mapstructure:"logger"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Trading  TradingConfig  `mapstructure:"trading"`
}

type HTTPConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeoutS int    `mapstructure:"read_timeout_s"`
	WriteTimeoutS int   `mapstructure:"write_timeout_s"`
}

type DatabaseConfig struct {
	DSN             string `mapstructure:"dsn"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifeS    int    `mapstructure:"conn_max_life_s"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Enabled  bool   `mapstructure:"enabled"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// TradingConfig holds defaults the engines and router fall back to when a
// symbol's own configuration is silent.
type TradingConfig struct {
	DefaultFeeRate        string `mapstructure:"default_fee_rate"`
	DefaultPricePrecision int32  `mapstructure:"default_price_precision"`
	DefaultQtyPrecision   int32  `mapstructure:"default_qty_precision"`
	SymbolLockTimeoutMS   int    `mapstructure:"symbol_lock_timeout_ms"`
	WSOutboundQueueSize   int    `mapstructure:"ws_outbound_queue_size"`
	WSWriteDeadlineS      int    `mapstructure:"ws_write_deadline_s"`
	// PriceImpactWarnThreshold is the fractional deviation (spec §3's price
	// impact) above which a swap's trade row is tagged "large_price_impact".
	// Zero disables tagging.
	PriceImpactWarnThreshold string `mapstructure:"price_impact_warn_threshold"`
}

// Default returns a configuration with every field set to a value that
// lets the service boot with zero external configuration.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{Host: "0.0.0.0", Port: 8080, ReadTimeoutS: 30, WriteTimeoutS: 30},
		Database: DatabaseConfig{
			DSN:          "host=localhost user=vega password=vega dbname=vegaexchange sslmode=disable",
			MaxOpenConns: 25, MaxIdleConns: 5, ConnMaxLifeS: 300,
		},
		Redis: RedisConfig{Addr: "localhost:6379", DB: 0, Enabled: false},
		Logger: logging.Config{
			Level: "info", Format: "json", Output: "stdout",
			FilePath: "logs/vegaexchange.log", MaxSizeMB: 100, MaxBackups: 10, MaxAgeDays: 30,
			Compress: true, WithCaller: true,
		},
		Metrics: MetricsConfig{Enabled: true, Path: "/metrics"},
		Auth:    AuthConfig{JWTSecret: "dev-secret-change-me"},
		Trading: TradingConfig{
			DefaultFeeRate: "0.003", DefaultPricePrecision: 8, DefaultQtyPrecision: 8,
			SymbolLockTimeoutMS: 5000, WSOutboundQueueSize: 256, WSWriteDeadlineS: 10,
			PriceImpactWarnThreshold: "0.05",
		},
	}
}

// Load reads configPath (if it exists) over Default(), then applies
// VEGA_-prefixed environment variable overrides.
func Load(configPath string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetEnvPrefix("VEGA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Register every field of Default() as a key so AutomaticEnv can
	// override it even when no config file names that key.
	root := reflect.ValueOf(cfg)
	for i := 0; i < root.NumField(); i++ {
		section := root.Type().Field(i).Tag.Get("mapstructure")
		for j := 0; j < root.Field(i).NumField(); j++ {
			key := root.Field(i).Type().Field(j).Tag.Get("mapstructure")
			v.SetDefault(section+"."+key, root.Field(i).Field(j).Interface())
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, fs.ErrNotExist) {
			return cfg, err
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

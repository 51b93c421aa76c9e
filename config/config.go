package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Exchange names accepted by the "exchange.name" key.
const (
	ExchangeBitflyer  = "bitflyer"
	ExchangeCoincheck = "coincheck"
)

type Config struct {
	Environment string `mapstructure:"environment"` // "dev" or "prod"

	Exchange ExchangeConfig `mapstructure:"exchange"`
	Polling  PollingConfig  `mapstructure:"polling"`
	Scalping ScalpingConfig `mapstructure:"scalping"`
	Sell     SellConfig     `mapstructure:"sell"`
	IPC      IPCConfig      `mapstructure:"ipc"`
	CSV      CSVConfig      `mapstructure:"csv"`
	Log      LogConfig      `mapstructure:"log"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type ExchangeConfig struct {
	Name        string        `mapstructure:"name"`         // "bitflyer" or "coincheck"
	Product     string        `mapstructure:"product"`      // e.g., "btc_jpy", "fx_btc_jpy"
	APIKey      string        `mapstructure:"api_key"`      // SSM-backed in prod
	APISecret   string        `mapstructure:"api_secret"`   // SSM-backed in prod
	BaseURL     string        `mapstructure:"base_url"`     // REST endpoint override (tests)
	Timeout     time.Duration `mapstructure:"timeout"`      // per-request HTTP timeout
	RealtimeURL string        `mapstructure:"realtime_url"` // WS endpoint (bitflyer only)
	UseRealtime bool          `mapstructure:"use_realtime"` // back the poller with the WS feed
}

type PollingConfig struct {
	Interval   time.Duration `mapstructure:"interval"`    // fetch interval
	Count      int           `mapstructure:"count"`       // fetch count, negative = infinite
	MaxHistory int           `mapstructure:"max_history"` // ticker/indicator series cap
}

type ScalpingConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	Size          float64       `mapstructure:"size"`            // order amount
	ExpireMinutes int           `mapstructure:"expiration_date"` // limit order expiry (minutes)
}

type SellConfig struct {
	Interval     time.Duration `mapstructure:"interval"`
	Size         float64       `mapstructure:"size"`
	ProfitBorder float64       `mapstructure:"profit_border"` // e.g., 1.05
	CutBorder    float64       `mapstructure:"cut_border"`    // e.g., 0.98
}

type IPCConfig struct {
	ReceiveTimeout time.Duration `mapstructure:"receive_timeout"` // snapshot receive budget
}

type CSVConfig struct {
	Dir string `mapstructure:"dir"` // ticker CSV output directory; empty disables the sink
}

// LogConfig defines the logger configuration options.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // log level: "debug", "info", "warn", "error"
	Format string `mapstructure:"format"` // log format: "json" or "console"
	Dir    string `mapstructure:"dir"`    // directory for per-component log files (optional)
}

// Load loads application configuration using Viper.
// It reads from config.yaml next to the binary and overrides with environment variables.
func Load() (*Config, error) {
	ex, _ := os.Executable()
	if strings.Contains(ex, "go-build") {
		pwd, _ := os.Getwd()
		return LoadFrom(filepath.Join(pwd, "../../config"))
	}
	return LoadFrom(filepath.Join(filepath.Dir(ex), "../config"))
}

// LoadFrom reads config.yaml from the given directory.
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config") // config.yaml
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	setDefaults(v)

	// Support environment variables with dot notation (e.g., EXCHANGE_PRODUCT)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Environment == "prod" {
		cfg.resolveSecrets()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "dev")
	v.SetDefault("exchange.timeout", 10*time.Second)
	v.SetDefault("polling.interval", time.Second)
	v.SetDefault("polling.count", -1)
	v.SetDefault("polling.max_history", 86400) // one reading per second per day
	v.SetDefault("scalping.interval", time.Second)
	v.SetDefault("sell.interval", time.Second)
	v.SetDefault("sell.profit_border", 1.05)
	v.SetDefault("sell.cut_border", 0.98)
	v.SetDefault("ipc.receive_timeout", 5*time.Second)
	v.SetDefault("log.level", "info")
}

// resolveSecrets replaces credential fields with values from AWS SSM Parameter Store.
func (c *Config) resolveSecrets() {
	if key := getParameterStoreValue("VCTS_API_KEY", true); key != "" {
		c.Exchange.APIKey = key
	}
	if secret := getParameterStoreValue("VCTS_API_SECRET", true); secret != "" {
		c.Exchange.APISecret = secret
	}
}

// Validate checks the configuration before any worker loop starts.
// A validation failure here is the only fatal error class in the system.
func (c *Config) Validate() error {
	switch c.Exchange.Name {
	case ExchangeBitflyer, ExchangeCoincheck:
	case "":
		return fmt.Errorf("exchange.name is required")
	default:
		return fmt.Errorf("unsupported exchange: %q", c.Exchange.Name)
	}
	if c.Exchange.Product == "" {
		return fmt.Errorf("exchange.product is required")
	}
	if c.Exchange.Timeout <= 0 {
		return fmt.Errorf("exchange.timeout must be positive")
	}
	if c.Polling.Interval <= 0 {
		return fmt.Errorf("polling.interval must be positive")
	}
	if c.Polling.MaxHistory <= 0 {
		return fmt.Errorf("polling.max_history must be positive")
	}
	if c.Scalping.Interval <= 0 {
		return fmt.Errorf("scalping.interval must be positive")
	}
	if c.Scalping.Size <= 0 {
		return fmt.Errorf("scalping.size must be positive")
	}
	if c.Sell.Interval <= 0 {
		return fmt.Errorf("sell.interval must be positive")
	}
	if c.Sell.Size <= 0 {
		return fmt.Errorf("sell.size must be positive")
	}
	if c.Sell.ProfitBorder <= 1 {
		return fmt.Errorf("sell.profit_border must be greater than 1")
	}
	if c.Sell.CutBorder <= 0 || c.Sell.CutBorder >= 1 {
		return fmt.Errorf("sell.cut_border must be between 0 and 1")
	}
	if c.IPC.ReceiveTimeout <= 0 {
		return fmt.Errorf("ipc.receive_timeout must be positive")
	}
	return nil
}

// Package config loads the service configuration from YAML with environment
// overrides, and builds the zap logger it describes.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	DefaultConfigFile = "indemnity.yml"
	EnvPrefix         = "INDEMNITY"
)

// Configuration holds all configuration for the indemnity service.
type Configuration struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Datasets DatasetsConfig `mapstructure:"datasets"`
	Refresh  RefreshConfig  `mapstructure:"refresh"`
	Policy   PolicyConfig   `mapstructure:"policy"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
	AdminRate      float64       `mapstructure:"admin_rate"` // requests per second, 0 disables
	AdminBurst     int           `mapstructure:"admin_burst"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver string `mapstructure:"driver"` // memory, sqlite, postgres
	DSN    string `mapstructure:"dsn"`
}

// DatasetsConfig locates the published series files.
type DatasetsConfig struct {
	Dir           string            `mapstructure:"dir"`
	Files         map[string]string `mapstructure:"files"`
	ImportOnStart bool              `mapstructure:"import_on_start"`
}

// RefreshConfig drives the periodic snapshot reload.
type RefreshConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

// PolicyConfig holds the legal rates as decimal strings. File, when set,
// names a JSON policy document that replaces these rates.
type PolicyConfig struct {
	File                    string `mapstructure:"file"`
	SeveranceIndexSurcharge string `mapstructure:"severance_index_surcharge"`
	InjuryInterestRate      string `mapstructure:"injury_interest_rate"`
	InjurySurchargeRate     string `mapstructure:"injury_surcharge_rate"`
	CourtFeeRate            string `mapstructure:"court_fee_rate"`
	BarSurchargeRate        string `mapstructure:"bar_surcharge_rate"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputFile string `mapstructure:"output_file"` // optional file output
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.max_upload_bytes", 10<<20)
	v.SetDefault("server.admin_rate", 1.0)
	v.SetDefault("server.admin_burst", 5)

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.dsn", "indemnity.db")

	v.SetDefault("datasets.dir", "data")
	v.SetDefault("datasets.import_on_start", true)

	v.SetDefault("refresh.enabled", true)
	v.SetDefault("refresh.interval", 15*time.Minute)

	v.SetDefault("policy.file", "")
	v.SetDefault("policy.severance_index_surcharge", "0.03")
	v.SetDefault("policy.injury_interest_rate", "0.03")
	v.SetDefault("policy.injury_surcharge_rate", "0.20")
	v.SetDefault("policy.court_fee_rate", "0.022")
	v.SetDefault("policy.bar_surcharge_rate", "0.10")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// LoadConfiguration reads the YAML file at configPath. An empty path uses
// defaults and environment only. INDEMNITY_SERVER_PORT overrides server.port
// and so on.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file, %w", err)
		}
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	if err := configuration.Validate(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

// Validate checks enumerations and that every rate is a decimal.
func (c *Configuration) Validate() error {
	switch c.Storage.Driver {
	case "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("storage.driver: unsupported %q", c.Storage.Driver)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port: out of range %d", c.Server.Port)
	}
	if c.Server.AdminRate < 0 || (c.Server.AdminRate > 0 && c.Server.AdminBurst <= 0) {
		return fmt.Errorf("server.admin_rate: needs a positive admin_burst")
	}
	if c.Refresh.Enabled && c.Refresh.Interval <= 0 {
		return fmt.Errorf("refresh.interval: must be positive")
	}
	_, err := c.Policy.Rates()
	return err
}

// Rates holds the parsed PolicyConfig.
type Rates struct {
	SeveranceIndexSurcharge decimal.Decimal
	InjuryInterestRate      decimal.Decimal
	InjurySurchargeRate     decimal.Decimal
	CourtFeeRate            decimal.Decimal
	BarSurchargeRate        decimal.Decimal
}

// Rates parses every rate.
func (p PolicyConfig) Rates() (Rates, error) {
	var (
		r   Rates
		err error
	)
	fields := []struct {
		key string
		raw string
		dst *decimal.Decimal
	}{
		{"severance_index_surcharge", p.SeveranceIndexSurcharge, &r.SeveranceIndexSurcharge},
		{"injury_interest_rate", p.InjuryInterestRate, &r.InjuryInterestRate},
		{"injury_surcharge_rate", p.InjurySurchargeRate, &r.InjurySurchargeRate},
		{"court_fee_rate", p.CourtFeeRate, &r.CourtFeeRate},
		{"bar_surcharge_rate", p.BarSurchargeRate, &r.BarSurchargeRate},
	}
	for _, f := range fields {
		if *f.dst, err = decimal.NewFromString(strings.TrimSpace(f.raw)); err != nil {
			return Rates{}, fmt.Errorf("policy.%s: %w", f.key, err)
		}
		if f.dst.IsNegative() {
			return Rates{}, fmt.Errorf("policy.%s: must not be negative", f.key)
		}
	}
	return r, nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Environment string         `mapstructure:"environment"` // "dev" or "prod"
	Binance     BinanceConfig  `mapstructure:"binance"`
	Schedule    ScheduleConfig `mapstructure:"schedule"`
	Telegram    TelegramConfig `mapstructure:"telegram"`
	Relay       RelayConfig    `mapstructure:"relay"`
	Metrics     MetricsConfig  `mapstructure:"metrics"`
	Log         LogConfig      `mapstructure:"log"`
	Postgres    PostgresConfig `mapstructure:"postgres"`
}

// BinanceConfig points the poller at the futures statistics endpoints.
type BinanceConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Symbol            string        `mapstructure:"symbol"`
	Period            string        `mapstructure:"period"`
	Limit             int           `mapstructure:"limit"`
	Timeout           time.Duration `mapstructure:"timeout"` // 0 keeps the transport default (no timeout)
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

type ScheduleConfig struct {
	Interval   time.Duration `mapstructure:"interval"`
	RunOnStart bool          `mapstructure:"run_on_start"`
}

type TelegramConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	BaseURL  string        `mapstructure:"base_url"`
	Token    string        `mapstructure:"token"`
	ChatID   string        `mapstructure:"chat_id"`
	Timeout  time.Duration `mapstructure:"timeout"`
	TokenSSM string        `mapstructure:"token_ssm"`   // parameter name, prod only
	ChatSSM  string        `mapstructure:"chat_id_ssm"` // parameter name, prod only
}

type RelayConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	URL              string        `mapstructure:"url"`
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// LogConfig controls logger output and log file rotation.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
	MaxSizeMB   int    `mapstructure:"max_size_mb"`
	MaxBackups  int    `mapstructure:"max_backups"`
	MaxAgeDays  int    `mapstructure:"max_age_days"`
	Compress    bool   `mapstructure:"compress"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "dev")

	v.SetDefault("binance.base_url", "https://www.binance.com")
	v.SetDefault("binance.symbol", "BTCUSDT")
	v.SetDefault("binance.period", "5m")
	v.SetDefault("binance.limit", 30)
	v.SetDefault("binance.timeout", 0)
	v.SetDefault("binance.requests_per_second", 5)
	v.SetDefault("binance.burst", 4)

	v.SetDefault("schedule.interval", 5*time.Minute)
	v.SetDefault("schedule.run_on_start", false)

	v.SetDefault("telegram.enabled", true)
	v.SetDefault("telegram.base_url", "https://api.telegram.org")
	v.SetDefault("telegram.timeout", 10*time.Second)
	v.SetDefault("telegram.token_ssm", "")
	v.SetDefault("telegram.chat_id_ssm", "")

	v.SetDefault("relay.enabled", false)
	v.SetDefault("relay.url", "")
	v.SetDefault("relay.handshake_timeout", 5*time.Second)
	v.SetDefault("relay.write_timeout", 5*time.Second)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9108")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output_file", "logs/ratiowatch.log")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 7)
	v.SetDefault("log.compress", true)

	v.SetDefault("postgres.enabled", false)
	v.SetDefault("postgres.create_db", false)
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.dbname", "ratiowatch")
	v.SetDefault("postgres.host_ssm", "")
	v.SetDefault("postgres.user_ssm", "")
	v.SetDefault("postgres.password_ssm", "")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.timezone", "UTC")
	v.SetDefault("postgres.max_open_conns", 5)
	v.SetDefault("postgres.max_idle_conns", 2)
	v.SetDefault("postgres.conn_max_lifetime", time.Hour)
	v.SetDefault("postgres.retention", 30*24*time.Hour)
}

// Load loads application configuration using Viper.
// It reads from config.yaml (optional) and overrides with environment variables.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config") // config.yaml
	v.SetConfigType("yaml")

	if path := os.Getenv("RATIOWATCH_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("./config")
		v.AddConfigPath("../config")
		v.AddConfigPath("../../config")
	}

	// Support environment variables with dot notation (e.g., BINANCE_BASE_URL)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Legacy .env names (API_TOKEN, CHAT_ID) are still honoured.
	_ = v.BindEnv("telegram.token", "TELEGRAM_TOKEN", "API_TOKEN")
	_ = v.BindEnv("telegram.chat_id", "TELEGRAM_CHAT_ID", "CHAT_ID")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Log.Environment == "" {
		cfg.Log.Environment = cfg.Environment
	}
	if cfg.Schedule.Interval <= 0 {
		return nil, fmt.Errorf("schedule.interval must be positive, got %s", cfg.Schedule.Interval)
	}

	return &cfg, nil
}

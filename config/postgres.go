package config

import (
	"fmt"
	"time"
)

// PostgresConfig defines the configuration for the optional report archive.
type PostgresConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CreateDB bool   `mapstructure:"create_db"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	TimeZone string `mapstructure:"timezone"`

	// Parameter Store names, resolved by Config.ResolveSecrets in prod.
	HostSSM     string `mapstructure:"host_ssm"`
	UserSSM     string `mapstructure:"user_ssm"`
	PasswordSSM string `mapstructure:"password_ssm"`

	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`

	// Reports older than this are deleted after each insert. Zero keeps everything.
	Retention time.Duration `mapstructure:"retention"`
}

func (cfg *PostgresConfig) DSN() string {
	return cfg.dsnFor(cfg.DBName)
}

// MaintenanceDSN targets the server's default database, used to create DBName.
func (cfg *PostgresConfig) MaintenanceDSN() string {
	return cfg.dsnFor("postgres")
}

func (cfg *PostgresConfig) dsnFor(dbName string) string {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, dbName, cfg.SSLMode,
	)

	if cfg.TimeZone != "" {
		dsn += fmt.Sprintf(" TimeZone=%s", cfg.TimeZone)
	}

	return dsn
}

package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DatabaseConfig holds PostgreSQL connection parameters for the moderation
// store (bans, reservations).
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`

	// Connection pool parameters (optional, defaults from pgxpool apply if not set)
	MaxConns          int32  `yaml:"max_conns"`
	MinConns          int32  `yaml:"min_conns"`
	MaxConnLifetime   string `yaml:"max_conn_lifetime"`
	MaxConnIdleTime   string `yaml:"max_conn_idle_time"`
	HealthCheckPeriod string `yaml:"health_check_period"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	base := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)

	var params []string
	if d.MaxConns > 0 {
		params = append(params, fmt.Sprintf("pool_max_conns=%d", d.MaxConns))
	}
	if d.MinConns > 0 {
		params = append(params, fmt.Sprintf("pool_min_conns=%d", d.MinConns))
	}
	if d.MaxConnLifetime != "" {
		params = append(params, fmt.Sprintf("pool_max_conn_lifetime=%s", d.MaxConnLifetime))
	}
	if d.MaxConnIdleTime != "" {
		params = append(params, fmt.Sprintf("pool_max_conn_idle_time=%s", d.MaxConnIdleTime))
	}
	if d.HealthCheckPeriod != "" {
		params = append(params, fmt.Sprintf("pool_health_check_period=%s", d.HealthCheckPeriod))
	}
	if len(params) > 0 {
		return base + "&" + strings.Join(params, "&")
	}
	return base
}

// DefaultDatabase returns DatabaseConfig pointed at a local dev database.
func DefaultDatabase() DatabaseConfig {
	return DatabaseConfig{
		Host:    "127.0.0.1",
		Port:    5432,
		User:    "aura",
		Password: "aura",
		DBName:  "aura",
		SSLMode: "disable",
	}
}

const databaseConfigPath = "config/database.yaml"

// LoadDatabase loads DatabaseConfig from path, falling back to
// DefaultDatabase for whatever the file leaves unset.
func LoadDatabase(path string) (DatabaseConfig, error) {
	cfg := DefaultDatabase()
	if err := loadYAML(path, &cfg); err != nil {
		return DatabaseConfig{}, err
	}
	return cfg, nil
}

// DatabaseConfigPath resolves the database config path: AURA_DATABASE_CONFIG
// if set, otherwise the package default.
func DatabaseConfigPath() string {
	if p := os.Getenv("AURA_DATABASE_CONFIG"); p != "" {
		return p
	}
	return databaseConfigPath
}

// loadYAML reads path, applying defaults when it doesn't exist.
func loadYAML(path string, cfg any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

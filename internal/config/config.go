package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

// CatalogConfig points at the exercise catalog CSV.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// TailscaleConfig enables serving on the tailnet via tsnet. When disabled the
// server listens on Server.Host:Server.Port and every request is the local
// dev user.
type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

const defaultCatalogPath = "data/megaGymDataset.csv"

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix FITREC_ and underscore-separated paths:
//
//	FITREC_SERVER_HOST, FITREC_SERVER_PORT,
//	FITREC_DB_HOST, FITREC_DB_PORT, FITREC_DB_NAME,
//	FITREC_DB_USER, FITREC_DB_PASSWORD, FITREC_DB_SSLMODE,
//	FITREC_AUTH_API_KEY, FITREC_CATALOG_PATH,
//	FITREC_TAILSCALE_ENABLED, FITREC_TAILSCALE_HOSTNAME, FITREC_TAILSCALE_STATE_DIR
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setString("FITREC_SERVER_HOST", &cfg.Server.Host)
	setInt("FITREC_SERVER_PORT", &cfg.Server.Port)
	setString("FITREC_DB_HOST", &cfg.Database.Host)
	setInt("FITREC_DB_PORT", &cfg.Database.Port)
	setString("FITREC_DB_NAME", &cfg.Database.Name)
	setString("FITREC_DB_USER", &cfg.Database.User)
	setString("FITREC_DB_PASSWORD", &cfg.Database.Password)
	setString("FITREC_DB_SSLMODE", &cfg.Database.SSLMode)
	setString("FITREC_AUTH_API_KEY", &cfg.Auth.APIKey)
	setString("FITREC_CATALOG_PATH", &cfg.Catalog.Path)
	setString("FITREC_TAILSCALE_HOSTNAME", &cfg.Tailscale.Hostname)
	setString("FITREC_TAILSCALE_STATE_DIR", &cfg.Tailscale.StateDir)

	if v := os.Getenv("FITREC_TAILSCALE_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = enabled
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = defaultCatalogPath
	}
	if cfg.Tailscale.Enabled && cfg.Tailscale.Hostname == "" {
		cfg.Tailscale.Hostname = "fitrec"
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Map       MapConfig       `yaml:"map"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig selects the blob backend. Driver is one of sqlite,
// postgres, valkey or memory.
type StorageConfig struct {
	Driver   string         `yaml:"driver"`
	Key      string         `yaml:"key"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres DatabaseConfig `yaml:"postgres"`
	Valkey   ValkeyConfig   `yaml:"valkey"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type ValkeyConfig struct {
	Addr string `yaml:"addr"`
}

// MapConfig configures the map view and the position source. A nil Home
// means the position request is denied.
type MapConfig struct {
	Zoom               int           `yaml:"zoom"`
	Home               *Coordinate   `yaml:"home"`
	GeolocationTimeout time.Duration `yaml:"geolocation_timeout"`
}

type Coordinate struct {
	Lat float64 `yaml:"lat"`
	Lng float64 `yaml:"lng"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, applies defaults, then environment
// variable overrides. Env vars use the prefix MAPTY_:
//
//	MAPTY_SERVER_HOST, MAPTY_SERVER_PORT,
//	MAPTY_STORAGE_DRIVER, MAPTY_STORAGE_KEY, MAPTY_SQLITE_PATH,
//	MAPTY_DB_HOST, MAPTY_DB_PORT, MAPTY_DB_NAME,
//	MAPTY_DB_USER, MAPTY_DB_PASSWORD, MAPTY_DB_SSLMODE,
//	MAPTY_VALKEY_ADDR, MAPTY_HOME_LAT, MAPTY_HOME_LNG,
//	MAPTY_TAILSCALE_ENABLED, MAPTY_LOG_LEVEL, MAPTY_LOG_FORMAT
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite"
	}
	if cfg.Storage.Key == "" {
		cfg.Storage.Key = "workouts"
	}
	if cfg.Storage.SQLite.Path == "" {
		cfg.Storage.SQLite.Path = "data/mapty.db"
	}
	if cfg.Map.Zoom == 0 {
		cfg.Map.Zoom = 13
	}
	if cfg.Map.GeolocationTimeout == 0 {
		cfg.Map.GeolocationTimeout = 10 * time.Second
	}
	if cfg.Tailscale.Hostname == "" {
		cfg.Tailscale.Hostname = "mapty"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MAPTY_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("MAPTY_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("MAPTY_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("MAPTY_STORAGE_KEY"); v != "" {
		cfg.Storage.Key = v
	}
	if v := os.Getenv("MAPTY_SQLITE_PATH"); v != "" {
		cfg.Storage.SQLite.Path = v
	}
	if v := os.Getenv("MAPTY_DB_HOST"); v != "" {
		cfg.Storage.Postgres.Host = v
	}
	if v := os.Getenv("MAPTY_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Storage.Postgres.Port = port
		}
	}
	if v := os.Getenv("MAPTY_DB_NAME"); v != "" {
		cfg.Storage.Postgres.Name = v
	}
	if v := os.Getenv("MAPTY_DB_USER"); v != "" {
		cfg.Storage.Postgres.User = v
	}
	if v := os.Getenv("MAPTY_DB_PASSWORD"); v != "" {
		cfg.Storage.Postgres.Password = v
	}
	if v := os.Getenv("MAPTY_DB_SSLMODE"); v != "" {
		cfg.Storage.Postgres.SSLMode = v
	}
	if v := os.Getenv("MAPTY_VALKEY_ADDR"); v != "" {
		cfg.Storage.Valkey.Addr = v
	}
	lat, latErr := strconv.ParseFloat(os.Getenv("MAPTY_HOME_LAT"), 64)
	lng, lngErr := strconv.ParseFloat(os.Getenv("MAPTY_HOME_LNG"), 64)
	if latErr == nil && lngErr == nil {
		cfg.Map.Home = &Coordinate{Lat: lat, Lng: lng}
	}
	if v := os.Getenv("MAPTY_TAILSCALE_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = enabled
		}
	}
	if v := os.Getenv("MAPTY_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("MAPTY_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	switch c.Storage.Driver {
	case "sqlite", "memory":
	case "postgres":
		p := c.Storage.Postgres
		if p.Host == "" || p.Port == 0 || p.Name == "" || p.User == "" {
			return fmt.Errorf("storage.postgres host, port, name and user are required")
		}
	case "valkey":
		if c.Storage.Valkey.Addr == "" {
			return fmt.Errorf("storage.valkey.addr is required")
		}
	default:
		return fmt.Errorf("storage.driver %q is not one of sqlite, postgres, valkey, memory", c.Storage.Driver)
	}
	if c.Map.Zoom < 0 || c.Map.Zoom > 19 {
		return fmt.Errorf("map.zoom must be 0-19, got %d", c.Map.Zoom)
	}
	if h := c.Map.Home; h != nil && (h.Lat < -90 || h.Lat > 90 || h.Lng < -180 || h.Lng > 180) {
		return fmt.Errorf("map.home (%v, %v) is out of range", h.Lat, h.Lng)
	}
	if c.Map.GeolocationTimeout < 0 {
		return fmt.Errorf("map.geolocation_timeout must be positive")
	}
	return nil
}

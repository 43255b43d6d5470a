// Package config loads the service configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// PaperSize is a portrait page size in inches.
type PaperSize struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// PostgresConfig describes the optional API token store connection.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// Config is the full service configuration.
type Config struct {
	Server struct {
		Host    string `yaml:"host"`
		Port    string `yaml:"port"`
		Prefork bool   `yaml:"prefork"`
	} `yaml:"server"`

	Logger struct {
		File       string `yaml:"file"`
		Level      string `yaml:"level"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
		Compress   bool   `yaml:"compress"`
	} `yaml:"logger"`

	Target struct {
		DefaultPaper    string               `yaml:"default_paper"`
		PaperSizes      map[string]PaperSize `yaml:"paper_sizes"`
		MarginInches    float64              `yaml:"margin_inches"`
		MinTickInches   float64              `yaml:"min_tick_inches"`
		MaxDistance     float64              `yaml:"max_distance"`
		MaxMOA          float64              `yaml:"max_moa"`
		MaxThicknessIn  float64              `yaml:"max_thickness_inches"`
		MaxAimRings     int                  `yaml:"max_aim_rings"`
		DefaultThickIn  float64              `yaml:"default_thickness_inches"`
		DefaultDistance float64              `yaml:"default_distance"`
		DefaultMOA      float64              `yaml:"default_moa"`
	} `yaml:"target"`

	RateLimiter struct {
		Interval          time.Duration `yaml:"interval"`
		UserLimit         int           `yaml:"user_limit"`
		EnableUserLimiter bool          `yaml:"enable_user_limiter"`
	} `yaml:"rate_limiter"`

	Redis struct {
		Addr        string `yaml:"addr"`
		RateLimitDB int    `yaml:"rate_limit_db"`
	} `yaml:"redis"`

	Auth struct {
		Postgres       PostgresConfig `yaml:"postgres"`
		ReloadInterval time.Duration  `yaml:"reload_interval"`
	} `yaml:"auth"`
}

// Default returns the configuration used when no config file is present.
func Default() Config {
	var cfg Config
	cfg.Server.Host = ""
	cfg.Server.Port = ":8080"

	cfg.Logger.File = "targetgen.log"
	cfg.Logger.Level = "info"
	cfg.Logger.MaxSizeMB = 10
	cfg.Logger.MaxBackups = 3
	cfg.Logger.MaxAgeDays = 30

	cfg.Target.DefaultPaper = "LETTER"
	cfg.Target.PaperSizes = map[string]PaperSize{
		"LETTER": {Width: 8.5, Height: 11},
		"A4":     {Width: 8.27, Height: 11.69},
		"LEGAL":  {Width: 8.5, Height: 14},
	}
	cfg.Target.MarginInches = 0.5
	cfg.Target.MinTickInches = 0.1
	cfg.Target.MaxDistance = 2000
	cfg.Target.MaxMOA = 20
	cfg.Target.MaxThicknessIn = 1
	cfg.Target.MaxAimRings = 10
	cfg.Target.DefaultThickIn = 0.125
	cfg.Target.DefaultDistance = 100
	cfg.Target.DefaultMOA = 0.25

	cfg.RateLimiter.Interval = time.Minute
	cfg.RateLimiter.UserLimit = 30
	cfg.RateLimiter.EnableUserLimiter = true

	cfg.Auth.ReloadInterval = time.Minute
	return cfg
}

// Load reads the configuration from CONFIG_PATH, falling back to
// ./config.yaml. A missing file yields the built-in defaults so the
// service runs out of the box.
func Load() Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default()
	}
	return LoadFrom(path)
}

// LoadFrom reads and validates the configuration at path. Invalid
// configuration is a deployment error and panics.
func LoadFrom(path string) Config {
	raw, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("config: read %s: %v", path, err))
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		panic(fmt.Sprintf("config: parse %s: %v", path, err))
	}
	validate(cfg)
	return cfg
}

func validate(cfg Config) {
	if len(cfg.Target.PaperSizes) == 0 {
		panic("config: target.paper_sizes must not be empty")
	}
	if _, ok := cfg.Target.PaperSizes[cfg.Target.DefaultPaper]; !ok {
		panic(fmt.Sprintf("config: target.default_paper %q not in target.paper_sizes", cfg.Target.DefaultPaper))
	}
	for name, p := range cfg.Target.PaperSizes {
		if p.Width <= 0 || p.Height <= 0 {
			panic(fmt.Sprintf("config: paper size %q has non-positive dimensions", name))
		}
	}
	if cfg.Target.MarginInches < 0 {
		panic("config: target.margin_inches must not be negative")
	}
	if cfg.Target.MinTickInches <= 0 {
		panic("config: target.min_tick_inches must be positive")
	}
	if cfg.Target.MaxDistance <= 0 || cfg.Target.MaxMOA <= 0 {
		panic("config: target bounds must be positive")
	}
	if cfg.RateLimiter.Interval <= 0 {
		panic("config: rate_limiter.interval must be positive")
	}
	if cfg.RateLimiter.UserLimit < 0 {
		panic("config: rate_limiter.user_limit must not be negative")
	}
	if cfg.Auth.Postgres.Host != "" && cfg.Auth.ReloadInterval <= 0 {
		panic("config: auth.reload_interval must be positive when postgres is configured")
	}
}

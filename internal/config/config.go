package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	defaultListen      = ":8080"
	defaultURL         = "http://localhost:8080"
	defaultRedisURL    = "redis://localhost:6379/0"
	defaultDataDir     = "data"
	defaultSessionTTL  = 12 * time.Hour
	defaultUploadLimit = 512 << 20
)

// Duration parses yaml values like "12h" or "30m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}

	dd, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("cannot parse duration %q: %w", s, err)
	}

	*d = Duration(dd)

	return nil
}

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

type SessionConfig struct {
	TTL          Duration `yaml:"ttl"`
	SecureCookie bool     `yaml:"secure_cookie"`
}

type Config struct {
	URL          string        `yaml:"url"`
	Listen       string        `yaml:"listen"`
	RedisURL     string        `yaml:"redis_url"`
	DataDir      string        `yaml:"data_dir"`
	AccessSecret string        `yaml:"access_secret"`
	NoticeFile   string        `yaml:"notice_file"`
	UploadLimit  int64         `yaml:"upload_limit"`
	LogLevel     string        `yaml:"log_level"`
	Session      SessionConfig `yaml:"session"`
}

func (c *Config) SetDefaults() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.URL == "" {
		c.URL = defaultURL
	}
	if c.RedisURL == "" {
		c.RedisURL = defaultRedisURL
	}
	if c.DataDir == "" {
		c.DataDir = defaultDataDir
	}
	if c.UploadLimit < 1 {
		c.UploadLimit = defaultUploadLimit
	}
	if c.LogLevel == "" {
		c.LogLevel = LogLevelInfo
	}
	if c.Session.TTL < 1 {
		c.Session.TTL = Duration(defaultSessionTTL)
	}
}

func (c *Config) validate() error {
	if c.AccessSecret == "" {
		return fmt.Errorf("access_secret must be set")
	}

	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("unknown log level: %s", c.LogLevel)
	}

	return nil
}

// Load reads the yaml config file, expanding ${VAR} references from the
// environment. A .env file next to the process is picked up first if present.
func Load(fileName string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file: %w", err)
	}

	cfg.SetDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func MustLoad(fileName string) *Config {
	cfg, err := Load(fileName)
	if err != nil {
		panic(err)
	}

	return cfg
}

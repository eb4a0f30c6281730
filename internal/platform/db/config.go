package db

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "config/config.yaml"

	ModeDev     = "dev"
	ModeRelease = "release"
)

type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Username        string        `yaml:"user"`
	Password        string        `yaml:"password"`
	DBName          string        `yaml:"dbname"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

type Certs struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	BasePath        string        `yaml:"base_path"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// dev モードのみ CORS を許可するオリジン（ダッシュボード）
	AllowOrigins []string `yaml:"allow_origins"`
	Certificate  Certs    `yaml:"certificate"`
}

type AuthConfig struct {
	Enabled   bool          `yaml:"enabled"`
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type Config struct {
	Version string         `yaml:"version"`
	Mode    string         `yaml:"mode"`
	Server  ServerConfig   `yaml:"server"`
	DB      DatabaseConfig `yaml:"database"`
	Auth    AuthConfig     `yaml:"auth"`
	Log     LogConfig      `yaml:"log"`
}

// LoadEnv reads .env into the process environment. Variables already set
// in the environment are never overwritten.
func LoadEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		log.Println("[INFO] no .env file found, using system environment")
	}
}

// LoadConfig reads the YAML file at path, then applies environment overrides and defaults.
func LoadConfig(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Mode, "APP_MODE")
	setString(&c.Server.Addr, "APP_ADDR")
	setString(&c.DB.Host, "DB_HOST")
	setString(&c.DB.Username, "DB_USER")
	setString(&c.DB.Password, "DB_PASSWORD")
	setString(&c.DB.DBName, "DB_NAME")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	if v, ok := os.LookupEnv("DB_PORT"); ok && v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DB_PORT must be a number: %w", err)
		}
		c.DB.Port = p
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func (c *Config) applyDefaults() {
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.BasePath == "" {
		c.Server.BasePath = "/api/v1"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if len(c.Server.AllowOrigins) == 0 {
		c.Server.AllowOrigins = []string{"http://localhost:3000"}
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.DB.Port == 0 {
		c.DB.Port = 3306
	}
	if c.DB.MaxOpenConns == 0 {
		c.DB.MaxOpenConns = 40
	}
	if c.DB.MaxIdleConns == 0 {
		c.DB.MaxIdleConns = 10
	}
	if c.DB.ConnMaxLifetime == 0 {
		c.DB.ConnMaxLifetime = 30 * time.Minute
	}
	if c.DB.ConnMaxIdleTime == 0 {
		c.DB.ConnMaxIdleTime = 5 * time.Minute
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) Validate() error {
	if c.Mode != ModeDev && c.Mode != ModeRelease {
		return fmt.Errorf("mode must be %q or %q, got %q", ModeDev, ModeRelease, c.Mode)
	}
	if c.DB.Host == "" || c.DB.DBName == "" {
		return fmt.Errorf("database host and dbname are required")
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.enabled requires jwt_secret (or JWT_SECRET)")
	}
	return nil
}

func (c *Config) TLSEnabled() bool {
	return c.Server.Certificate.Cert != "" && c.Server.Certificate.Key != ""
}

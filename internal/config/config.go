package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Cache     CacheConfig     `yaml:"cache"`
	Log       LogConfig       `yaml:"log"`
	Stats     StatsConfig     `yaml:"stats"`
}

type ServerConfig struct {
	Host            string `yaml:"host"`
	Port            string `yaml:"port"`
	Mode            string `yaml:"mode"` // debug, release, test
	ShutdownTimeout int    `yaml:"shutdown_timeout"` // seconds
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, mysql, postgres
	DSN    string `yaml:"dsn"`
}

// AuthConfig guards the /v1 API. APIKey is required on every request,
// admin routes additionally need a JWT obtained from /v1/auth/login.
type AuthConfig struct {
	APIKey            string `yaml:"api_key"`
	JWTSecret         string `yaml:"jwt_secret"`
	JWTExpireHour     int    `yaml:"jwt_expire_hour"`
	AdminUsername     string `yaml:"admin_username"`
	AdminPasswordHash string `yaml:"admin_password_hash"` // bcrypt
}

type CORSConfig struct {
	AllowOrigins []string `yaml:"allow_origins"`
}

type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled"`
	RPS     float64 `yaml:"rps"`
	Burst   int     `yaml:"burst"`
}

type CacheConfig struct {
	ConfigMaxAge int `yaml:"config_max_age"` // seconds, Cache-Control on GET /v1/config
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// StatsConfig controls the cron job refreshing the store gauges.
type StatsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"`
}

// Load reads the YAML file at configPath (defaults are used when it does not
// exist) and then applies .env and environment overrides.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	var cfg *Config

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg = DefaultConfig()
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}

		fileCfg := DefaultConfig()
		if err := yaml.Unmarshal(data, fileCfg); err != nil {
			return nil, err
		}
		cfg = fileCfg
	}

	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg.overrideFromEnv()
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			Mode:            "debug",
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "geoconfig.db",
		},
		Auth: AuthConfig{
			JWTSecret:     "geoconfig-secret-key-change-in-production",
			JWTExpireHour: 24,
			AdminUsername: "admin",
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"http://localhost:5173"},
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			RPS:     20,
			Burst:   40,
		},
		Cache: CacheConfig{
			ConfigMaxAge: 300,
		},
		Log: LogConfig{
			Level: "info",
		},
		Stats: StatsConfig{
			Enabled:  true,
			Schedule: "@every 1m",
		},
	}
}

func (c *Config) overrideFromEnv() {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		c.Server.Port = port
	}
	if mode := os.Getenv("SERVER_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if apiKey := os.Getenv("PUBLIC_API_KEY"); apiKey != "" {
		c.Auth.APIKey = apiKey
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		c.Auth.JWTSecret = secret
	}
	if username := os.Getenv("ADMIN_USERNAME"); username != "" {
		c.Auth.AdminUsername = username
	}
	if hash := os.Getenv("ADMIN_PASSWORD_HASH"); hash != "" {
		c.Auth.AdminPasswordHash = hash
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	// Comma separated, e.g. "https://admin.example.com,http://localhost:5173"
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		c.CORS.AllowOrigins = splitAndTrim(origins, ",")
	}
	if maxAge := os.Getenv("CONFIG_CACHE_MAX_AGE"); maxAge != "" {
		if v, err := strconv.Atoi(maxAge); err == nil && v >= 0 {
			c.Cache.ConfigMaxAge = v
		}
	}
}

func splitAndTrim(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Addr returns the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

func (c *Config) Save(configPath string) error {
	if configPath == "" {
		configPath = "config.yaml"
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

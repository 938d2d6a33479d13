package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const defaultJWTSecret = "change-me"

// Config holds all configuration for the application. Keys are flat so the
// same name works in YAML, in the environment (upper-cased) and as a Docker
// secret file name.
type Config struct {
	Environment Environment `koanf:"-"`

	// Server configuration
	ServerHost  string   `koanf:"server_host"`
	ServerPort  string   `koanf:"server_port"`
	CORSOrigins []string `koanf:"cors_origins"`

	// Database configuration
	DBDriver   string `koanf:"db_driver"`
	DBHost     string `koanf:"db_host"`
	DBPort     string `koanf:"db_port"`
	DBUser     string `koanf:"db_user"`
	DBPassword string `koanf:"db_password"`
	DBName     string `koanf:"db_name"`
	DBSSLMode  string `koanf:"db_ssl_mode"`
	DBLogLevel string `koanf:"db_log_level"`
	SQLitePath string `koanf:"sqlite_path"`

	// Redis configuration. Empty RedisURL and RedisHost disable Redis.
	RedisURL      string `koanf:"redis_url"`
	RedisHost     string `koanf:"redis_host"`
	RedisPort     string `koanf:"redis_port"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	// JWT configuration
	JWTSecret string        `koanf:"jwt_secret"`
	JWTTTL    time.Duration `koanf:"jwt_ttl"`

	// Media configuration
	ImageBackend string `koanf:"image_backend"`
	MediaRoot    string `koanf:"media_root"`
	MediaURL     string `koanf:"media_url"`
	S3BucketName string `koanf:"s3_bucket_name"`
	AWSRegion    string `koanf:"aws_region"`

	PageSize          int `koanf:"page_size"`
	RecipeCreateLimit int `koanf:"recipe_create_limit"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`
}

// secretKeys are read from SECRETS_DIR last and win over every other source.
var secretKeys = []string{"db_user", "db_password", "jwt_secret", "redis_password", "redis_url"}

func defaultConfig() *Config {
	return &Config{
		ServerHost:        "0.0.0.0",
		ServerPort:        "8080",
		CORSOrigins:       []string{"http://localhost:3000"},
		DBDriver:          "postgres",
		DBHost:            "localhost",
		DBPort:            "5432",
		DBUser:            "foodgram",
		DBName:            "foodgram",
		DBSSLMode:         "disable",
		DBLogLevel:        "warn",
		SQLitePath:        "foodgram.db",
		RedisPort:         "6379",
		JWTSecret:         defaultJWTSecret,
		JWTTTL:            24 * time.Hour,
		ImageBackend:      "local",
		MediaRoot:         "media",
		MediaURL:          "/media",
		PageSize:          6,
		RecipeCreateLimit: 20,
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// LoadConfig reads configuration from defaults, an optional YAML file named by
// CONFIG_FILE, a .env file, the process environment and Docker secrets, in
// that order of increasing priority.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg, err := load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return nil, err
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func load(configFile string) (*Config, error) {
	k := koanf.New(".")

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configFile, err)
		}
	}

	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	for _, name := range secretKeys {
		if value := readSecret(name); value != "" {
			if err := k.Set(name, value); err != nil {
				return nil, fmt.Errorf("failed to apply secret %s: %w", name, err)
			}
		}
	}

	cfg := defaultConfig()
	err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			WeaklyTypedInput: true,
			Result:           cfg,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	cfg.Environment = GetEnvironment()
	return cfg, nil
}

// PostgresDSN builds the lib/pq style connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

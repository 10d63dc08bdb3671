package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	ServiceName  string          `yaml:"service_name" validate:"required"`
	Environment  string          `yaml:"environment" validate:"required,oneof=development test production"`
	Port         string          `yaml:"port" validate:"required,numeric"`
	Database     DatabaseConfig  `yaml:"database"`
	Storage      StorageConfig   `yaml:"storage"`
	Log          LogConfig       `yaml:"log"`
	Telemetry    TelemetryConfig `yaml:"telemetry"`
	RateLimit    RateLimitConfig `yaml:"rate_limit"`
	EnforceHTTPS bool            `yaml:"enforce_https"`
	CORSOrigins  []string        `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	Driver     string `yaml:"driver" validate:"required,oneof=sqlite postgres"`
	Path       string `yaml:"path" validate:"required_if=Driver sqlite"`
	URL        string `yaml:"url" validate:"required_if=Driver postgres"`
	MaxConns   int    `yaml:"max_conns" validate:"gte=1"`
	LogQueries bool   `yaml:"log_queries"`
}

type StorageConfig struct {
	UploadDir string `yaml:"upload_dir" validate:"required"`
	URLPrefix string `yaml:"url_prefix" validate:"required,startswith=/"`
}

type LogConfig struct {
	Level   string `yaml:"level" validate:"oneof=debug info warn error"`
	LokiURL string `yaml:"loki_url" validate:"omitempty,url"`
}

type TelemetryConfig struct {
	Enabled      bool   `yaml:"enabled"`
	OTLPEndpoint string `yaml:"otlp_endpoint" validate:"required_if=Enabled true"`
	MetricsPort  string `yaml:"metrics_port" validate:"omitempty,numeric"`
}

type RateLimitConfig struct {
	Enabled  bool                  `yaml:"enabled"`
	Backend  string                `yaml:"backend" validate:"oneof=memory redis"`
	RedisURL string                `yaml:"redis_url" validate:"required_if=Backend redis"`
	Routes   map[string]RouteLimit `yaml:"routes" validate:"dive"`
}

// RouteLimit allows Requests per Window. Routes are keyed by
// "METHOD /gin/path"; "default" applies to everything else.
type RouteLimit struct {
	Requests int           `yaml:"requests" validate:"gte=1"`
	Window   time.Duration `yaml:"window" validate:"gt=0"`
}

func GetDefaultConfig() *AppConfig {
	return &AppConfig{
		ServiceName: "todolist",
		Environment: "development",
		Port:        "8080",
		Database: DatabaseConfig{
			Driver:   "sqlite",
			Path:     "todolist.db",
			MaxConns: 10,
		},
		Storage: StorageConfig{
			UploadDir: "static/uploads",
			URLPrefix: "/uploads",
		},
		Log: LogConfig{
			Level: "info",
		},
		Telemetry: TelemetryConfig{
			Enabled:      false,
			OTLPEndpoint: "localhost:4317",
			MetricsPort:  "9090",
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			Backend: "memory",
			Routes: map[string]RouteLimit{
				"POST /api/todos": {
					Requests: 20,
					Window:   time.Minute,
				},
				"POST /todo/createTodo": {
					Requests: 10,
					Window:   time.Minute,
				},
				"POST /todo/:id/createTodo": {
					Requests: 10,
					Window:   time.Minute,
				},
				"DELETE /api/todos/:id": {
					Requests: 10,
					Window:   time.Minute,
				},
				"default": {
					Requests: 100,
					Window:   time.Minute,
				},
			},
		},
		EnforceHTTPS: false,
		CORSOrigins:  []string{"*"},
	}
}

// Load starts from the defaults, applies the YAML file at path when one is
// given and then the environment, and validates the result.
func Load(path string) (*AppConfig, error) {
	cfg := GetDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)

		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *AppConfig) applyEnv() {
	c.ServiceName = getEnv("SERVICE_NAME", c.ServiceName)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.Port = getEnv("PORT", c.Port)

	c.Database.Driver = getEnv("DATABASE_DRIVER", c.Database.Driver)
	c.Database.Path = getEnv("DATABASE_PATH", c.Database.Path)
	c.Database.URL = getEnv("DATABASE_URL", c.Database.URL)
	c.Database.MaxConns = getEnvInt("DATABASE_MAX_CONNS", c.Database.MaxConns)
	c.Database.LogQueries = getEnvBool("DATABASE_LOG_QUERIES", c.Database.LogQueries)

	c.Storage.UploadDir = getEnv("UPLOAD_DIR", c.Storage.UploadDir)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.LokiURL = getEnv("LOKI_URL", c.Log.LokiURL)

	c.Telemetry.Enabled = getEnvBool("TELEMETRY_ENABLED", c.Telemetry.Enabled)
	c.Telemetry.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.Telemetry.OTLPEndpoint)
	c.Telemetry.MetricsPort = getEnv("METRICS_PORT", c.Telemetry.MetricsPort)

	c.RateLimit.Enabled = getEnvBool("RATE_LIMIT_ENABLED", c.RateLimit.Enabled)
	c.RateLimit.Backend = getEnv("RATE_LIMIT_BACKEND", c.RateLimit.Backend)
	c.RateLimit.RedisURL = getEnv("REDIS_URL", c.RateLimit.RedisURL)

	if os.Getenv("GIN_MODE") == "release" {
		c.EnforceHTTPS = true
	}

	c.EnforceHTTPS = getEnvBool("ENFORCE_HTTPS", c.EnforceHTTPS)

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		c.CORSOrigins = strings.Split(origins, ",")
	}
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

// Validate reports every invalid field in one error.
func (c *AppConfig) Validate() error {
	validate, translator, err := newValidator()

	if err != nil {
		return err
	}

	err = validate.Struct(c)

	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors

	if !errors.As(err, &fieldErrors) {
		return fmt.Errorf("validate config: %w", err)
	}

	messages := make([]string, 0, len(fieldErrors))

	for _, fieldError := range fieldErrors {
		messages = append(messages, fieldError.Namespace()+": "+fieldError.Translate(translator))
	}

	return fmt.Errorf("invalid config: %s", strings.Join(messages, "; "))
}

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	english := en.New()
	uni := ut.New(english, english)

	translator, found := uni.GetTranslator("en")

	if !found {
		return nil, nil, errors.New("translator en not found")
	}

	if err := en_translations.RegisterDefaultTranslations(validate, translator); err != nil {
		return nil, nil, err
	}

	return validate, translator, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	DatabaseURL   string `envconfig:"DATABASE_URL"   required:"true"`
	HTTPPort      string `envconfig:"HTTP_PORT"      default:":8080"`
	GrpcPort      string `envconfig:"GRPC_PORT"      default:":50051"` // health + reflection only
	LogLevel      string `envconfig:"LOG_LEVEL"      default:"info"`
	RunMigrations bool   `envconfig:"RUN_MIGRATIONS" default:"false"`

	RedisAddr     string `envconfig:"REDIS_ADDR"     default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB"       default:"0"`

	JWTSecret  string        `envconfig:"JWT_SECRET"  required:"true"`
	JWTIssuer  string        `envconfig:"JWT_ISSUER"  default:"storefront"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"24h"`

	// When BaaSURL is empty the catalog, cart and wishlist are read from
	// DATABASE_URL directly.
	BaaSURL     string        `envconfig:"BAAS_URL"`
	BaaSAPIKey  string        `envconfig:"BAAS_API_KEY"`
	BaaSTimeout time.Duration `envconfig:"BAAS_TIMEOUT" default:"5s"`

	FreeShippingThreshold float64  `envconfig:"FREE_SHIPPING_THRESHOLD" default:"499"`
	ShippingFee           float64  `envconfig:"SHIPPING_FEE"            default:"40"`
	CORSOrigins           []string `envconfig:"CORS_ORIGINS"`
}

// Load reads an optional .env file and then the process environment.
func Load(logger *logrus.Logger) (*Config, error) {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		logger.Warnf("Error loading .env file (but continuing): %v", err)
	} else if err == nil {
		logger.Info("Loaded configuration from .env file")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration from environment variables: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger.Infof("Configuration loaded: HTTP Port=%s, GRPC Port=%s, LogLevel=%s", cfg.HTTPPort, cfg.GrpcPort, cfg.LogLevel)
	if cfg.UseBaaS() {
		logger.Infof("Configuration loaded: data backend is BaaS at %s", cfg.BaaSURL)
	} else {
		logger.Info("Configuration loaded: data backend is Postgres")
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is not set")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.BaaSTimeout <= 0 {
		return fmt.Errorf("BAAS_TIMEOUT must be positive, got %s", c.BaaSTimeout)
	}
	if c.UseBaaS() && c.BaaSAPIKey == "" {
		return fmt.Errorf("BAAS_API_KEY is required when BAAS_URL is set")
	}
	if c.FreeShippingThreshold < 0 || c.ShippingFee < 0 {
		return fmt.Errorf("shipping settings cannot be negative")
	}
	return nil
}

func (c *Config) UseBaaS() bool {
	return c.BaaSURL != ""
}

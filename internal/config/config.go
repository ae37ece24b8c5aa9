package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/yellowpin/yellowpin/internal/types"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Postgres   PostgresConfig
	Payment    PaymentConfig
	Webhook    WebhookConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// PaymentConfig configures the external payment gateway integration
type PaymentConfig struct {
	Gateway string
	// Timeout bounds a single gateway charge call. A call exceeding it is
	// treated as a failed payment, never left pending.
	Timeout time.Duration
}

// WebhookConfig configures outbound plan-change notifications
type WebhookConfig struct {
	Topic   string
	Enabled bool
	// EndpointURL receives delivered events; delivery is skipped when empty
	EndpointURL string

	// Delivery retry policy
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	MaxElapsedTime  time.Duration
}

func NewConfig() (*Configuration, error) {
	// Load .env if present; real deployments rely on the environment
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/yellowpin")

	v.SetEnvPrefix("YELLOWPIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Configuration) applyDefaults() {
	if c.Payment.Timeout <= 0 {
		c.Payment.Timeout = 30 * time.Second
	}
	if c.Webhook.Topic == "" {
		c.Webhook.Topic = "billing_webhooks"
	}
	if c.Webhook.MaxRetries <= 0 {
		c.Webhook.MaxRetries = 3
	}
	if c.Webhook.InitialInterval <= 0 {
		c.Webhook.InitialInterval = time.Second
	}
	if c.Webhook.MaxInterval <= 0 {
		c.Webhook.MaxInterval = 10 * time.Second
	}
	if c.Webhook.Multiplier <= 0 {
		c.Webhook.Multiplier = 2
	}
	if c.Webhook.MaxElapsedTime <= 0 {
		c.Webhook.MaxElapsedTime = time.Minute
	}
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts or other non-web applications
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Payment:    PaymentConfig{Timeout: 30 * time.Second},
		Webhook:    WebhookConfig{Topic: "billing_webhooks", Enabled: true},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}

// Package config provides environment-variable-first configuration loading
// with optional YAML file fallback for mailcompose.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shineum/mailcompose/internal/email"
)

// defaultTimeoutMillis matches the builder's default socket timeouts.
const defaultTimeoutMillis = 60000

// Config holds the complete application configuration.
type Config struct {
	Provider string        `yaml:"provider"`
	Mail     MailConfig    `yaml:"mail"`
	SES      SESConfig     `yaml:"ses"`
	Resend   ResendConfig  `yaml:"resend"`
	Graph    GraphConfig   `yaml:"graph"`
	Logging  LoggingConfig `yaml:"logging"`
}

// MailConfig holds message defaults and the session properties.
type MailConfig struct {
	Host                    string `yaml:"host"`
	Port                    int    `yaml:"port"`
	From                    string `yaml:"from"`
	BounceAddress           string `yaml:"bounce_address"`
	Charset                 string `yaml:"charset"`
	ConnectionTimeoutMillis int    `yaml:"connection_timeout_ms"`
	TimeoutMillis           int    `yaml:"timeout_ms"`
}

// SESConfig holds AWS SES configuration.
type SESConfig struct {
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// ResendConfig holds Resend API configuration.
type ResendConfig struct {
	APIKey string `yaml:"api_key"`
}

// GraphConfig holds Microsoft Graph API configuration.
type GraphConfig struct {
	TenantID     string `yaml:"tenant_id"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	Sender       string `yaml:"sender"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load loads configuration from environment variables with sensible defaults.
// Environment variables always take precedence.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnvVars()
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file as the base layer,
// then overrides with environment variables. Returns an error if the
// specified file path does not exist.
func LoadFromFile(path string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))

	// Environment variables always override YAML values
	cfg.applyEnvVars()

	return cfg, nil
}

// SESConfigured returns true if an SES region is set.
func (c *Config) SESConfigured() bool {
	return c.SES.Region != ""
}

// ResendConfigured returns true if a Resend API key is set.
func (c *Config) ResendConfigured() bool {
	return c.Resend.APIKey != ""
}

// GraphConfigured returns true if the Graph client credentials are set.
// The sender is optional and defaults to the message's from address.
func (c *Config) GraphConfigured() bool {
	return c.Graph.TenantID != "" && c.Graph.ClientID != "" && c.Graph.ClientSecret != ""
}

// ConnectionTimeout returns the configured connect timeout.
func (c *Config) ConnectionTimeout() time.Duration {
	return time.Duration(c.Mail.ConnectionTimeoutMillis) * time.Millisecond
}

// Timeout returns the configured read/write timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Mail.TimeoutMillis) * time.Millisecond
}

// Session builds the mail session described by the configuration.
func (c *Config) Session() *email.Session {
	props := map[string]string{
		email.PropConnectionTimeout: strconv.Itoa(c.Mail.ConnectionTimeoutMillis),
		email.PropTimeout:           strconv.Itoa(c.Mail.TimeoutMillis),
	}
	if c.Mail.Host != "" {
		props[email.PropMailHost] = c.Mail.Host
	}
	if c.Mail.Port > 0 {
		props[email.PropMailPort] = strconv.Itoa(c.Mail.Port)
	}
	return email.NewSession(props)
}

// applyDefaults sets sensible default values for all configuration fields.
func (c *Config) applyDefaults() {
	c.Mail.ConnectionTimeoutMillis = defaultTimeoutMillis
	c.Mail.TimeoutMillis = defaultTimeoutMillis
	c.Logging.Level = "info"
}

// applyEnvVars overrides configuration with environment variable values.
// Only non-empty environment variables override existing values.
func (c *Config) applyEnvVars() {
	if v := os.Getenv("PROVIDER"); v != "" {
		c.Provider = strings.ToLower(v)
	}

	if v := os.Getenv("MAIL_HOST"); v != "" {
		c.Mail.Host = v
	}
	if v := os.Getenv("MAIL_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Mail.Port = port
		}
	}
	if v := os.Getenv("MAIL_FROM"); v != "" {
		c.Mail.From = v
	}
	if v := os.Getenv("MAIL_BOUNCE_ADDRESS"); v != "" {
		c.Mail.BounceAddress = v
	}
	if v := os.Getenv("MAIL_CHARSET"); v != "" {
		c.Mail.Charset = v
	}
	if v := os.Getenv("MAIL_CONNECTION_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			c.Mail.ConnectionTimeoutMillis = ms
		}
	}
	if v := os.Getenv("MAIL_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			c.Mail.TimeoutMillis = ms
		}
	}

	if v := os.Getenv("SES_REGION"); v != "" {
		c.SES.Region = v
	}
	if v := os.Getenv("SES_ACCESS_KEY_ID"); v != "" {
		c.SES.AccessKeyID = v
	}
	if v := os.Getenv("SES_SECRET_ACCESS_KEY"); v != "" {
		c.SES.SecretAccessKey = v
	}

	if v := os.Getenv("RESEND_API_KEY"); v != "" {
		c.Resend.APIKey = v
	}

	if v := os.Getenv("GRAPH_TENANT_ID"); v != "" {
		c.Graph.TenantID = v
	}
	if v := os.Getenv("GRAPH_CLIENT_ID"); v != "" {
		c.Graph.ClientID = v
	}
	if v := os.Getenv("GRAPH_CLIENT_SECRET"); v != "" {
		c.Graph.ClientSecret = v
	}
	if v := os.Getenv("GRAPH_SENDER"); v != "" {
		c.Graph.Sender = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
}

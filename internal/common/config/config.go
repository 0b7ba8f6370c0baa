// internal/common/config/config.go
package config

import "time"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Trigger   TriggerConfig   `mapstructure:"trigger"`
	Dispatch  DispatchConfig  `mapstructure:"dispatch"`
	Templates TemplatesConfig `mapstructure:"templates"`
	Transport TransportConfig `mapstructure:"transport"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// TriggerConfig describes the stream the dispatcher consumes record-created
// events from.
type TriggerConfig struct {
	Stream         string `mapstructure:"stream"`
	Group          string `mapstructure:"group"`
	Consumer       string `mapstructure:"consumer"`
	BlockMs        int    `mapstructure:"block_ms"`
	MaxInFlight    int    `mapstructure:"max_in_flight"`
	UserCollection string `mapstructure:"user_collection"`
}

// DispatchConfig holds the pipeline limits and defaults.
type DispatchConfig struct {
	MaxRecipients      int    `mapstructure:"max_recipients"`
	MaxDocumentSizeKB  int    `mapstructure:"max_document_size_kb"`
	DefaultLanguage    string `mapstructure:"default_language"`
	MaxRetries         int    `mapstructure:"max_retries"`
	RetryDelaySeconds  int    `mapstructure:"retry_delay_seconds"`
	BackoffFactor      int    `mapstructure:"backoff_factor"`
	DefaultEngine      string `mapstructure:"template_engine"`
	InvocationTimeout  int    `mapstructure:"invocation_timeout_ms"`
}

// RetryDelay converts the configured delay to a time.Duration.
func (d DispatchConfig) RetryDelay() time.Duration {
	return time.Duration(d.RetryDelaySeconds) * time.Second
}

// TemplatesConfig points at an optional JSON template registry; when the
// path is empty the built-in templates are used.
type TemplatesConfig struct {
	RegistryPath string `mapstructure:"registry_path"`
}

// TransportConfig selects and configures the mail transport.
type TransportConfig struct {
	Provider    string     `mapstructure:"provider"` // "smtp" or "ses"
	FromAddress string     `mapstructure:"from_address"`
	FromName    string     `mapstructure:"from_name"`
	SMTP        SMTPConfig `mapstructure:"smtp"`
	SES         SESConfig  `mapstructure:"ses"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	UseTLS   bool   `mapstructure:"use_tls"`
}

type SESConfig struct {
	Region string `mapstructure:"region"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

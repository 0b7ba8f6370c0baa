// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like TRANSPORT_SMTP_HOST
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment overlay, e.g. config.production.yaml
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig() // ignore error if not found

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the working directory or the project root.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up directories looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string config values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// applyDefaults sets default values for optional configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "email-dispatch"
	}

	// Trigger defaults
	if cfg.Trigger.Stream == "" {
		cfg.Trigger.Stream = "email-requests"
	}
	if cfg.Trigger.Group == "" {
		cfg.Trigger.Group = "dispatchers"
	}
	if cfg.Trigger.Consumer == "" {
		host, _ := os.Hostname()
		if host == "" {
			host = "dispatcher"
		}
		cfg.Trigger.Consumer = host
	}
	if cfg.Trigger.BlockMs == 0 {
		cfg.Trigger.BlockMs = 5000
	}
	if cfg.Trigger.MaxInFlight == 0 {
		cfg.Trigger.MaxInFlight = 10
	}
	if cfg.Trigger.UserCollection == "" {
		cfg.Trigger.UserCollection = "users"
	}

	// Dispatch limits mirror the historical deployment defaults.
	if cfg.Dispatch.MaxRecipients == 0 {
		cfg.Dispatch.MaxRecipients = 10
	}
	if cfg.Dispatch.MaxDocumentSizeKB == 0 {
		cfg.Dispatch.MaxDocumentSizeKB = 1024
	}
	if cfg.Dispatch.DefaultLanguage == "" {
		cfg.Dispatch.DefaultLanguage = "ru"
	}
	if cfg.Dispatch.MaxRetries == 0 {
		cfg.Dispatch.MaxRetries = 3
	}
	if cfg.Dispatch.RetryDelaySeconds == 0 {
		cfg.Dispatch.RetryDelaySeconds = 5
	}
	if cfg.Dispatch.BackoffFactor == 0 {
		cfg.Dispatch.BackoffFactor = 2
	}
	if cfg.Dispatch.DefaultEngine == "" {
		cfg.Dispatch.DefaultEngine = "simple"
	}
	if cfg.Dispatch.InvocationTimeout == 0 {
		cfg.Dispatch.InvocationTimeout = 60000
	}

	// Transport defaults
	if cfg.Transport.Provider == "" {
		cfg.Transport.Provider = "smtp"
	}
	if cfg.Transport.SMTP.Port == 0 {
		cfg.Transport.SMTP.Port = 587
	}

	// Metrics defaults
	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = ":9102"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// validateConfig validates critical configuration fields.
func validateConfig(cfg *Config) error {
	if cfg.Redis.Address == "" {
		return fmt.Errorf("redis.address is required")
	}

	if cfg.Transport.FromAddress == "" {
		return fmt.Errorf("transport.from_address is required")
	}

	switch cfg.Transport.Provider {
	case "smtp":
		if cfg.Transport.SMTP.Host == "" {
			return fmt.Errorf("transport.smtp.host is required")
		}
		if cfg.Transport.SMTP.Port <= 0 || cfg.Transport.SMTP.Port > 65535 {
			return fmt.Errorf("transport.smtp.port must be between 1 and 65535")
		}
	case "ses":
		if cfg.Transport.SES.Region == "" {
			return fmt.Errorf("transport.ses.region is required")
		}
	default:
		return fmt.Errorf("transport.provider must be \"smtp\" or \"ses\", got %q", cfg.Transport.Provider)
	}

	if cfg.Dispatch.MaxRetries < 1 {
		return fmt.Errorf("dispatch.max_retries must be at least 1")
	}
	if cfg.Dispatch.BackoffFactor < 1 {
		return fmt.Errorf("dispatch.backoff_factor must be at least 1")
	}

	return nil
}

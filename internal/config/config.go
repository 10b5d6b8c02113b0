package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Notifier   NotifierConfig   `mapstructure:"notifier"`
	Escalation EscalationConfig `mapstructure:"escalation"`
	Logger     LoggerConfig     `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds SQLite configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// NotifierConfig holds Kafka transition-event publishing configuration.
type NotifierConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// EscalationConfig holds the stale-request sweep configuration.
type EscalationConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Schedule is a cron spec, e.g. "*/5 * * * *".
	Schedule string        `mapstructure:"schedule"`
	Kind     string        `mapstructure:"kind"`
	From     string        `mapstructure:"from_status"`
	To       string        `mapstructure:"to_status"`
	MaxAge   time.Duration `mapstructure:"max_age"`
	ActorID  string        `mapstructure:"actor_id"`
	Reason   string        `mapstructure:"reason"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Debug bool `mapstructure:"debug"`
}

// Load reads configuration from the given YAML file, with VERCFLOW_ prefixed
// environment variables taking precedence.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("database.path", "vercflow.db")
	v.SetDefault("notifier.enabled", false)
	v.SetDefault("notifier.topic", "workflow-transitions")
	v.SetDefault("escalation.enabled", false)
	v.SetDefault("escalation.schedule", "*/5 * * * *")
	v.SetDefault("escalation.kind", "request")
	v.SetDefault("escalation.from_status", "open")
	v.SetDefault("escalation.to_status", "urgent")
	v.SetDefault("escalation.max_age", 48*time.Hour)
	v.SetDefault("escalation.actor_id", "system")
	v.SetDefault("escalation.reason", "")
	v.SetDefault("logger.debug", false)

	v.SetEnvPrefix("VERCFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Notifier.Enabled && len(c.Notifier.Brokers) == 0 {
		return fmt.Errorf("notifier enabled but no brokers configured")
	}

	if c.Escalation.Enabled && c.Escalation.MaxAge <= 0 {
		return fmt.Errorf("escalation enabled but max_age is not positive")
	}

	return nil
}

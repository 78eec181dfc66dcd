package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the coach service
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Interview InterviewConfig `mapstructure:"interview"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Listen   string `mapstructure:"listen"`
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// OpenAIConfig contains the assistant backend settings
type OpenAIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// InterviewConfig contains interview pacing settings
type InterviewConfig struct {
	Rounds        int           `mapstructure:"rounds"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	QuestionWait  time.Duration `mapstructure:"question_wait"`
	SynthesisWait time.Duration `mapstructure:"synthesis_wait"`
}

// StorageConfig selects and configures the session store
type StorageConfig struct {
	Type       string        `mapstructure:"type"` // inmemory or redis
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	Redis      RedisConfig   `mapstructure:"redis"`
}

// RedisConfig contains redis connection settings
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// TelemetryConfig contains monitoring settings
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoadConfig reads configuration from file and COACH_* environment variables.
// A missing config file is fine when no explicit path was given; env and
// defaults carry the day.
func LoadConfig(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("json")

	viper.SetDefault("general.listen", ":5001")
	viper.SetDefault("general.log_level", "info")
	viper.SetDefault("openai.model", "gpt-4o-mini")
	viper.SetDefault("openai.timeout", "90s")
	viper.SetDefault("interview.rounds", 9)
	viper.SetDefault("interview.poll_interval", "1s")
	viper.SetDefault("interview.question_wait", "30s")
	viper.SetDefault("interview.synthesis_wait", "60s")
	viper.SetDefault("storage.type", "inmemory")
	viper.SetDefault("storage.session_ttl", "30m")
	viper.SetDefault("storage.redis.port", "6379")
	viper.SetDefault("storage.redis.timeout", "5s")
	viper.SetDefault("telemetry.enabled", true)

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("COACH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
	return &config
}

// Package config loads application configuration from config.yaml and
// FINDORIGIN_* environment variables, and installs the global zap logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram" mapstructure:"telegram"`
	Serpstack SerpstackConfig `yaml:"serpstack" mapstructure:"serpstack"`
	OpenAI    OpenAIConfig    `yaml:"openai" mapstructure:"openai"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Input     InputConfig     `yaml:"input" mapstructure:"input"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// TelegramConfig holds Bot API credentials.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token" mapstructure:"bot_token"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
}

// SerpstackConfig holds search provider settings.
type SerpstackConfig struct {
	AccessKey string `yaml:"access_key" mapstructure:"access_key"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
}

// OpenAIConfig holds ranking provider settings.
type OpenAIConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// SearchConfig configures the category fan-out.
type SearchConfig struct {
	PerCategory int `yaml:"per_category" mapstructure:"per_category"`
}

// InputConfig bounds accepted input text length.
type InputConfig struct {
	MinChars int `yaml:"min_chars" mapstructure:"min_chars"`
	MaxChars int `yaml:"max_chars" mapstructure:"max_chars"`
}

// PipelineConfig bounds one full analysis run.
type PipelineConfig struct {
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ServerConfig configures the webhook/API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FINDORIGIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("telegram.base_url", "https://api.telegram.org")
	v.SetDefault("serpstack.base_url", "https://api.serpstack.com")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.max_tokens", 800)
	v.SetDefault("search.per_category", 3)
	v.SetDefault("input.min_chars", 10)
	v.SetDefault("input.max_chars", 5000)
	v.SetDefault("pipeline.timeout_secs", 60)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

// Package config loads application configuration from file and environment
// and initializes the global logger.
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
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Perplexity PerplexityConfig `yaml:"perplexity" mapstructure:"perplexity"`
	Serper     SerperConfig     `yaml:"serper" mapstructure:"serper"`
	CoreSignal CoreSignalConfig `yaml:"coresignal" mapstructure:"coresignal"`
	Tracxn     TracxnConfig     `yaml:"tracxn" mapstructure:"tracxn"`
	Scraper    ScraperConfig    `yaml:"scraper" mapstructure:"scraper"`
	Filings    FilingsConfig    `yaml:"filings" mapstructure:"filings"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Notion     NotionConfig     `yaml:"notion" mapstructure:"notion"`
	Screen     ScreenConfig     `yaml:"screen" mapstructure:"screen"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend: "memory", "sqlite", or
// "postgres".
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	Model       string  `yaml:"model" mapstructure:"model"`
	MaxTokens   int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	RPS         float64 `yaml:"rps" mapstructure:"rps"`
	MaxInFlight int     `yaml:"max_in_flight" mapstructure:"max_in_flight"`
}

// PerplexityConfig holds Perplexity API settings.
type PerplexityConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// SerperConfig holds Serper search API settings.
type SerperConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// CoreSignalConfig holds CoreSignal API settings.
type CoreSignalConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// TracxnConfig holds Tracxn API settings.
type TracxnConfig struct {
	Token   string `yaml:"token" mapstructure:"token"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// ScraperConfig holds reader-style scraping API settings.
type ScraperConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// FilingsConfig points at the open-data registry dump consumed by the
// filings source.
type FilingsConfig struct {
	URL         string `yaml:"url" mapstructure:"url"`
	Format      string `yaml:"format" mapstructure:"format"`
	SheetName   string `yaml:"sheet_name" mapstructure:"sheet_name"`
	MatchColumn string `yaml:"match_column" mapstructure:"match_column"`
}

// SalesforceConfig holds Salesforce auth settings for the crm source.
type SalesforceConfig struct {
	Domain         string  `yaml:"domain" mapstructure:"domain"`
	ConsumerKey    string  `yaml:"consumer_key" mapstructure:"consumer_key"`
	ConsumerSecret string  `yaml:"consumer_secret" mapstructure:"consumer_secret"`
	RPS            float64 `yaml:"rps" mapstructure:"rps"`
}

// NotionConfig holds Notion API credentials and the schema database id.
type NotionConfig struct {
	Token    string `yaml:"token" mapstructure:"token"`
	SchemaDB string `yaml:"schema_db" mapstructure:"schema_db"`
}

// ScreenConfig tunes the screening pipeline.
type ScreenConfig struct {
	TimeoutSeconds       int      `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	Sources              []string `yaml:"sources" mapstructure:"sources"`
	MaxModelRetries      int      `yaml:"max_model_retries" mapstructure:"max_model_retries"`
	MaxValidationRetries int      `yaml:"max_validation_retries" mapstructure:"max_validation_retries"`
	PromptMaxChars       int      `yaml:"prompt_max_chars" mapstructure:"prompt_max_chars"`
	SourcePriority       []string `yaml:"source_priority" mapstructure:"source_priority"`
}

// ServerConfig configures the HTTP API server.
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
	v.SetEnvPrefix("SCREENER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "screener.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("anthropic.rps", 2)
	v.SetDefault("anthropic.max_in_flight", 4)
	v.SetDefault("perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("perplexity.model", "sonar-pro")
	v.SetDefault("serper.base_url", "https://google.serper.dev")
	v.SetDefault("coresignal.base_url", "https://api.coresignal.com/v1")
	v.SetDefault("tracxn.base_url", "https://platform.tracxn.com/api/2.2")
	v.SetDefault("scraper.base_url", "https://r.jina.ai")
	v.SetDefault("filings.format", "csv")
	v.SetDefault("salesforce.rps", 5)
	v.SetDefault("screen.timeout_seconds", 120)
	v.SetDefault("screen.max_model_retries", 3)
	v.SetDefault("screen.max_validation_retries", 3)

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

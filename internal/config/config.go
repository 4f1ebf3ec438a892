// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Anthropic   AnthropicConfig   `yaml:"anthropic" mapstructure:"anthropic"`
	Serper      SerperConfig      `yaml:"serper" mapstructure:"serper"`
	Fetch       FetchConfig       `yaml:"fetch" mapstructure:"fetch"`
	Extract     ExtractConfig     `yaml:"extract" mapstructure:"extract"`
	Competitors CompetitorsConfig `yaml:"competitors" mapstructure:"competitors"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// SerperConfig holds Serper.dev search API settings. An empty key disables
// competitor discovery.
type SerperConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// FetchConfig configures page retrieval.
type FetchConfig struct {
	TimeoutSecs      int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxContentLength int `yaml:"max_content_length" mapstructure:"max_content_length"`
}

// Timeout returns the fetch timeout as a duration.
func (c FetchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// ExtractConfig configures entity extraction.
type ExtractConfig struct {
	PromptContentLength int `yaml:"prompt_content_length" mapstructure:"prompt_content_length"`
}

// CompetitorsConfig configures competitor discovery and analysis.
type CompetitorsConfig struct {
	MaxResults    int `yaml:"max_results" mapstructure:"max_results"`
	MaxAnalyzed   int `yaml:"max_analyzed" mapstructure:"max_analyzed"`
	BatchSize     int `yaml:"batch_size" mapstructure:"batch_size"`
	BatchPauseMS  int `yaml:"batch_pause_ms" mapstructure:"batch_pause_ms"`
	SearchRetries int `yaml:"search_retries" mapstructure:"search_retries"`
}

// BatchPause returns the inter-batch pause as a duration.
func (c CompetitorsConfig) BatchPause() time.Duration {
	return time.Duration(c.BatchPauseMS) * time.Millisecond
}

// CacheConfig configures the in-memory analysis cache.
type CacheConfig struct {
	TTLMinutes int `yaml:"ttl_minutes" mapstructure:"ttl_minutes"`
}

// TTL returns the cache TTL as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// ServerConfig configures the HTTP server.
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
	v.SetEnvPrefix("MARKETINTEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Every key gets one so env-only values survive Unmarshal.
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("serper.key", "")
	v.SetDefault("serper.base_url", "https://google.serper.dev")
	v.SetDefault("fetch.timeout_secs", 10)
	v.SetDefault("fetch.max_content_length", 8000)
	v.SetDefault("extract.prompt_content_length", 4000)
	v.SetDefault("competitors.max_results", 10)
	v.SetDefault("competitors.max_analyzed", 10)
	v.SetDefault("competitors.batch_size", 3)
	v.SetDefault("competitors.batch_pause_ms", 1000)
	v.SetDefault("competitors.search_retries", 1)
	v.SetDefault("cache.ttl_minutes", 10)
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

	// The conventional env names win when the prefixed forms are unset.
	if cfg.Anthropic.Key == "" {
		cfg.Anthropic.Key = os.Getenv("ANTHROPIC_API_KEY")
	}
	if cfg.Serper.Key == "" {
		cfg.Serper.Key = os.Getenv("SERPER_API_KEY")
	}

	return &cfg, nil
}

// Validate checks the fields a given run mode depends on.
func (c *Config) Validate(mode string) error {
	var missing []string

	switch mode {
	case "serve":
		if c.Server.Port <= 0 {
			missing = append(missing, "server.port must be > 0")
		}
	case "analyze":
		if c.Anthropic.Key == "" {
			missing = append(missing, "anthropic.key is required (or set ANTHROPIC_API_KEY)")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Competitors.BatchSize < 1 || c.Competitors.BatchSize > 10 {
		missing = append(missing, "competitors.batch_size must be between 1 and 10")
	}
	if c.Competitors.MaxAnalyzed < 1 || c.Competitors.MaxAnalyzed > 50 {
		missing = append(missing, "competitors.max_analyzed must be between 1 and 50")
	}
	if c.Fetch.TimeoutSecs <= 0 {
		missing = append(missing, "fetch.timeout_secs must be > 0")
	}
	if c.Cache.TTLMinutes <= 0 {
		missing = append(missing, "cache.ttl_minutes must be > 0")
	}

	if len(missing) > 0 {
		return eris.New("config: " + strings.Join(missing, "; "))
	}
	return nil
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

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
	Timezone  string          `yaml:"timezone" mapstructure:"timezone"`
	Data      DataConfig      `yaml:"data" mapstructure:"data"`
	Sources   SourcesConfig   `yaml:"sources" mapstructure:"sources"`
	Collect   CollectConfig   `yaml:"collect" mapstructure:"collect"`
	Content   ContentConfig   `yaml:"content" mapstructure:"content"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	GitHub    GitHubConfig    `yaml:"github" mapstructure:"github"`
	Slack     SlackConfig     `yaml:"slack" mapstructure:"slack"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the durable record store and dedup index.
type DataConfig struct {
	ItemsDir  string `yaml:"items_dir" mapstructure:"items_dir"`
	IndexFile string `yaml:"index_file" mapstructure:"index_file"`
}

// SourcesConfig locates the source and theme catalogs.
type SourcesConfig struct {
	HighFile   string `yaml:"high_file" mapstructure:"high_file"`
	TrendFile  string `yaml:"trend_file" mapstructure:"trend_file"`
	ThemesFile string `yaml:"themes_file" mapstructure:"themes_file"`
}

// CollectConfig bounds the collection stage.
type CollectConfig struct {
	MaxHighItems   int `yaml:"max_high_items" mapstructure:"max_high_items"`
	MaxTrendItems  int `yaml:"max_trend_items" mapstructure:"max_trend_items"`
	MaxPerSource   int `yaml:"max_per_source" mapstructure:"max_per_source"`
	FeedTimeoutSec int `yaml:"feed_timeout_secs" mapstructure:"feed_timeout_secs"`
	Concurrency    int `yaml:"concurrency" mapstructure:"concurrency"`
}

// ContentConfig bounds article text fetch and extraction.
type ContentConfig struct {
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MinChars       int     `yaml:"min_chars" mapstructure:"min_chars"`
	MaxChars       int     `yaml:"max_chars" mapstructure:"max_chars"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// GitHubConfig holds Discussions API settings.
type GitHubConfig struct {
	Token        string `yaml:"token" mapstructure:"token"`
	Owner        string `yaml:"owner" mapstructure:"owner"`
	Repo         string `yaml:"repo" mapstructure:"repo"`
	CategoryFile string `yaml:"category_file" mapstructure:"category_file"`
}

// SlackConfig holds the incoming webhook settings.
type SlackConfig struct {
	WebhookURL string `yaml:"webhook_url" mapstructure:"webhook_url"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from config.yaml and EIC_-prefixed
// environment variables.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("EIC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Credentials have no defaults, so AutomaticEnv alone never surfaces
	// them to Unmarshal; each key needs an explicit binding.
	for _, key := range []string{
		"anthropic.key",
		"github.token",
		"github.owner",
		"github.repo",
		"slack.webhook_url",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", key)
		}
	}

	v.SetDefault("timezone", "Asia/Tokyo")
	v.SetDefault("data.items_dir", "data/items")
	v.SetDefault("data.index_file", "data/index.json")
	v.SetDefault("sources.high_file", "config/sources_high.yaml")
	v.SetDefault("sources.trend_file", "config/sources_trend.yaml")
	v.SetDefault("sources.themes_file", "config/themes.yaml")
	v.SetDefault("collect.max_high_items", 20)
	v.SetDefault("collect.max_trend_items", 20)
	v.SetDefault("collect.max_per_source", 30)
	v.SetDefault("collect.feed_timeout_secs", 30)
	v.SetDefault("collect.concurrency", 4)
	v.SetDefault("content.timeout_secs", 20)
	v.SetDefault("content.min_chars", 100)
	v.SetDefault("content.max_chars", 12000)
	v.SetDefault("content.requests_per_sec", 2.0)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 2000)
	v.SetDefault("github.category_file", "config/categories.json")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Config file is optional; env vars alone can carry a deployment.
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

// Validate fails fast when a required credential is absent, naming each
// missing one. Runs before any collection work.
func (c *Config) Validate() error {
	var missing []string
	if c.Anthropic.Key == "" {
		missing = append(missing, "EIC_ANTHROPIC_KEY")
	}
	if c.GitHub.Token == "" {
		missing = append(missing, "EIC_GITHUB_TOKEN")
	}
	if c.GitHub.Owner == "" {
		missing = append(missing, "EIC_GITHUB_OWNER")
	}
	if c.GitHub.Repo == "" {
		missing = append(missing, "EIC_GITHUB_REPO")
	}
	if c.Slack.WebhookURL == "" {
		missing = append(missing, "EIC_SLACK_WEBHOOK_URL")
	}
	if len(missing) > 0 {
		return eris.Errorf("config: missing required credentials: %s", strings.Join(missing, ", "))
	}
	return nil
}

// RepoURL returns the repository web URL, the fallback link when
// discussion publication fails.
func (c *Config) RepoURL() string {
	return "https://github.com/" + c.GitHub.Owner + "/" + c.GitHub.Repo
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

package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Username     string   `mapstructure:"username" yaml:"username"`
	OutputFile   string   `mapstructure:"output_file" yaml:"output_file"`
	ExcludeForks bool     `mapstructure:"exclude_forks" yaml:"exclude_forks"`
	MinStars     int      `mapstructure:"min_stars" yaml:"min_stars"`
	ExcludeRepos []string `mapstructure:"exclude_repos" yaml:"exclude_repos"`

	APIURL       string `mapstructure:"api_url" yaml:"api_url"`
	PagesDomain  string `mapstructure:"pages_domain" yaml:"pages_domain"`
	FetchDetails bool   `mapstructure:"fetch_details" yaml:"fetch_details"`
	Concurrency  int    `mapstructure:"concurrency" yaml:"concurrency"`

	GitHubToken string `mapstructure:"github_token" yaml:"github_token"`

	SurrealURL  string `mapstructure:"surreal_url" yaml:"surreal_url"`
	SurrealNS   string `mapstructure:"surreal_ns" yaml:"surreal_ns"`
	SurrealDB   string `mapstructure:"surreal_db" yaml:"surreal_db"`
	SurrealUser string `mapstructure:"surreal_user" yaml:"surreal_user"`
	SurrealPass string `mapstructure:"surreal_pass" yaml:"surreal_pass"`

	LLMBaseURL string `mapstructure:"llm_base_url" yaml:"llm_base_url"`
	LLMAPIKey  string `mapstructure:"llm_api_key" yaml:"llm_api_key"`
	LLMModel   string `mapstructure:"llm_model" yaml:"llm_model"`
}

// envAliases are read without the PORTFOLIO_ prefix so existing tokens and
// service settings keep working.
var envAliases = map[string]string{
	"github_token": "GITHUB_TOKEN",
	"surreal_url":  "SURREAL_URL",
	"surreal_ns":   "SURREAL_NS",
	"surreal_db":   "SURREAL_DB",
	"surreal_user": "SURREAL_USER",
	"surreal_pass": "SURREAL_PASS",
	"llm_base_url": "LLM_BASE_URL",
	"llm_api_key":  "LLM_API_KEY",
	"llm_model":    "LLM_MODEL",
}

// Load reads configuration once: defaults, then the optional YAML file at
// cfgFile (or ./portfolio-sync.yaml), then PORTFOLIO_* environment variables
// and the unprefixed aliases. A .env file in the working directory is loaded
// first if present.
func Load(cfgFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PORTFOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for key, env := range envAliases {
		if err := v.BindEnv(key, "PORTFOLIO_"+strings.ToUpper(key), env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	v.SetDefault("username", "miqdad-dev")
	v.SetDefault("output_file", "projects.json")
	v.SetDefault("exclude_forks", true)
	v.SetDefault("min_stars", 0)
	v.SetDefault("exclude_repos", []string{"Portfolio"})
	v.SetDefault("api_url", "https://api.github.com")
	v.SetDefault("pages_domain", "github.io")
	v.SetDefault("fetch_details", true)
	v.SetDefault("concurrency", 1)
	v.SetDefault("llm_base_url", "https://api.openai.com/v1")
	v.SetDefault("llm_model", "gpt-4o-mini")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", cfgFile, err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("portfolio-sync")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// The SDK appends /rpc automatically
	cfg.SurrealURL = strings.TrimSuffix(cfg.SurrealURL, "/rpc")
	cfg.SurrealURL = strings.TrimSuffix(cfg.SurrealURL, "/")

	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields the sync cannot run without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Username) == "" {
		return fmt.Errorf("config: username is required")
	}
	if strings.TrimSpace(c.OutputFile) == "" {
		return fmt.Errorf("config: output_file is required")
	}
	if c.MinStars < 0 {
		return fmt.Errorf("config: min_stars must be >= 0, got %d", c.MinStars)
	}
	return nil
}

// MirrorEnabled reports whether projects are also upserted into SurrealDB.
func (c *Config) MirrorEnabled() bool {
	return c.SurrealURL != ""
}

// YAML renders the configuration with secrets redacted.
func (c *Config) YAML() ([]byte, error) {
	redacted := *c
	redacted.GitHubToken = redact(c.GitHubToken)
	redacted.SurrealPass = redact(c.SurrealPass)
	redacted.LLMAPIKey = redact(c.LLMAPIKey)
	return yaml.Marshal(redacted)
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}

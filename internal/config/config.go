package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	domfeed "github.com/kailas-cloud/dlf/internal/domain/feed"
)

// MinEncryptionKeyLength mirrors the settings codec requirement.
const MinEncryptionKeyLength = 16

// Config holds the dlf service configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Security SecurityConfig `yaml:"security"`
	Search   SearchConfig   `yaml:"search"`
	Links    LinksConfig    `yaml:"links"`
	Feeds    []FeedConfig   `yaml:"feeds"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
	RateLimitRPS    float64  `yaml:"rate_limit_rps"` // 0 = unlimited
	RateLimitBurst  int      `yaml:"rate_limit_burst"`
	MetricsTokens   []string `yaml:"metrics_tokens"` // empty = /metrics is open
}

// DatabaseConfig holds the search store connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// CatalogConfig holds the catalog database settings.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// SecurityConfig holds the settings token secret.
type SecurityConfig struct {
	EncryptionKey string `yaml:"encryption_key"`
}

// SearchConfig holds search store layout and limits.
type SearchConfig struct {
	KeyPrefix       string `yaml:"key_prefix"`
	TimeoutMS       int    `yaml:"timeout_ms"`
	FulltextMaxHits int    `yaml:"fulltext_max_hits"`
	ChildLimit      int    `yaml:"child_limit"`
}

// LinksConfig holds the viewer deep link base.
type LinksConfig struct {
	BaseURL string `yaml:"base_url"`
	Path    string `yaml:"path"`
}

// FeedConfig configures the feed of one library.
type FeedConfig struct {
	Library                 int          `yaml:"library"`
	Collections             []int        `yaml:"collections"`
	ExcludeOtherCollections bool         `yaml:"exclude_other_collections"`
	Limit                   int          `yaml:"limit"`
	PrependSuperiorTitle    bool         `yaml:"prepend_superior_title"`
	PageViewPID             int          `yaml:"page_view_pid"`
	Title                   string       `yaml:"title"`
	Description             string       `yaml:"description"`
	Labels                  LabelsConfig `yaml:"labels"`
}

// LabelsConfig holds the item title labels of a feed.
type LabelsConfig struct {
	NoTitle string `yaml:"no_title"`
	Volume  string `yaml:"volume"`
	New     string `yaml:"new"`
	Update  string `yaml:"update"`
}

// Settings converts the feed configuration into its domain form.
func (f FeedConfig) Settings() domfeed.Settings {
	return domfeed.Settings{
		Library:                 f.Library,
		Collections:             f.Collections,
		ExcludeOtherCollections: f.ExcludeOtherCollections,
		Limit:                   f.Limit,
		PrependSuperiorTitle:    f.PrependSuperiorTitle,
		PageViewPID:             f.PageViewPID,
		Title:                   f.Title,
		Description:             f.Description,
		Labels: domfeed.Labels{
			NoTitle: f.Labels.NoTitle,
			Volume:  f.Labels.Volume,
			New:     f.Labels.New,
			Update:  f.Labels.Update,
		},
	}
}

// FeedSettings returns the domain settings of all configured feeds.
func (c *Config) FeedSettings() []domfeed.Settings {
	out := make([]domfeed.Settings, len(c.Feeds))
	for i, f := range c.Feeds {
		out[i] = f.Settings()
	}
	return out
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit YAML file path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.RateLimitRPS > 0 && c.HTTP.RateLimitBurst <= 0 {
		c.HTTP.RateLimitBurst = max(1, int(c.HTTP.RateLimitRPS))
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Catalog.Path == "" {
		c.Catalog.Path = "dlf.db"
	}
	if c.Search.KeyPrefix == "" {
		c.Search.KeyPrefix = "dlf:"
	}
	if c.Search.TimeoutMS <= 0 {
		c.Search.TimeoutMS = 3000
	}
	if c.Search.FulltextMaxHits <= 0 {
		c.Search.FulltextMaxHits = 1000
	}
	if c.Search.ChildLimit <= 0 {
		c.Search.ChildLimit = 100
	}
	if c.Links.Path == "" {
		c.Links.Path = "/"
	}
	for i := range c.Feeds {
		if c.Feeds[i].Limit <= 0 {
			c.Feeds[i].Limit = 50
		}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.HTTP.RateLimitRPS < 0 {
		return fmt.Errorf("http.rate_limit_rps must not be negative, got %v", c.HTTP.RateLimitRPS)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if len(c.Security.EncryptionKey) < MinEncryptionKeyLength {
		return fmt.Errorf("security.encryption_key must be at least %d characters", MinEncryptionKeyLength)
	}
	if err := validateBaseURL(c.Links.BaseURL); err != nil {
		return err
	}

	seen := make(map[int]struct{}, len(c.Feeds))
	for i, f := range c.Feeds {
		if f.Library <= 0 {
			return fmt.Errorf("feeds[%d].library must be positive", i)
		}
		if _, dup := seen[f.Library]; dup {
			return fmt.Errorf("feeds[%d]: duplicate feed for library %d", i, f.Library)
		}
		seen[f.Library] = struct{}{}
		if f.PageViewPID <= 0 {
			return fmt.Errorf("feeds[%d].page_view_pid must be positive", i)
		}
	}
	return nil
}

func validateBaseURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("links.base_url is required")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("links.base_url must be an absolute URL, got %q", raw)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}

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

	"github.com/kailas-cloud/shakesearch/internal/domain/search/mode"
)

// Config holds the shakesearch server configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Corpus  CorpusConfig  `yaml:"corpus"`
	Search  SearchConfig  `yaml:"search"`
	Cache   CacheConfig   `yaml:"cache"`
	UI      UIConfig      `yaml:"ui"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CorpusConfig points at the text to search.
type CorpusConfig struct {
	// Path to a plain-text corpus. The bundled data/completeworks.txt is a short
	// excerpt; production sets CORPUS_PATH to the full text.
	Path string `yaml:"path"`
}

// SearchConfig holds matcher settings.
type SearchConfig struct {
	// Matchers lists matcher modes in priority order.
	Matchers   []string `yaml:"matchers"`
	Strategy   string   `yaml:"strategy"`    // first, fuse (default: first)
	MaxResults int      `yaml:"max_results"` // 0 = unlimited
	TimeoutSec int      `yaml:"timeout_sec"`
}

// CacheConfig holds the optional result cache settings.
type CacheConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	Standalone       bool     `yaml:"standalone"`
	TTLSec           int      `yaml:"ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// UIConfig holds settings for the server-rendered search page.
type UIConfig struct {
	// BackendURL is where the page sends its /search requests. Empty means this
	// server, called in process. A URL is called over HTTP, so pointing it back at
	// this server logs and counts every page view twice.
	BackendURL        string `yaml:"backend_url"`
	RequestTimeoutSec int    `yaml:"request_timeout_sec"`
}

// Modes returns the configured matcher modes.
func (s SearchConfig) Modes() []mode.Mode {
	out := make([]mode.Mode, len(s.Matchers))
	for i, m := range s.Matchers {
		out[i] = mode.Mode(m)
	}
	return out
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands environment variables in data, decodes it, applies defaults and validates.
func Parse(data []byte) (Config, error) {
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
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 3001
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if len(c.Search.Matchers) == 0 {
		for _, m := range mode.Default() {
			c.Search.Matchers = append(c.Search.Matchers, string(m))
		}
	}
	if c.Search.Strategy == "" {
		c.Search.Strategy = "first"
	}
	if c.Search.MaxResults < 0 {
		c.Search.MaxResults = 0
	}
	if c.Search.TimeoutSec <= 0 {
		c.Search.TimeoutSec = 5
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 300
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.UI.RequestTimeoutSec <= 0 {
		c.UI.RequestTimeoutSec = 5
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Corpus.Path == "" {
		return fmt.Errorf("corpus.path is required")
	}
	seen := make(map[string]struct{}, len(c.Search.Matchers))
	for _, m := range c.Search.Matchers {
		if !mode.Mode(m).IsValid() {
			return fmt.Errorf("search.matchers: unknown matcher %q", m)
		}
		if _, dup := seen[m]; dup {
			return fmt.Errorf("search.matchers: duplicate matcher %q", m)
		}
		seen[m] = struct{}{}
	}
	switch c.Search.Strategy {
	case "first", "fuse":
	default:
		return fmt.Errorf("search.strategy must be \"first\" or \"fuse\", got %q", c.Search.Strategy)
	}
	if c.Cache.Enabled {
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required when cache is enabled")
		}
	}
	if c.UI.BackendURL != "" {
		u, err := url.Parse(c.UI.BackendURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("ui.backend_url must be an absolute URL, got %q", c.UI.BackendURL)
		}
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

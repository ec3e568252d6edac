package dokuwiki

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds DokuWiki connection settings
type Config struct {
	// BaseURL is the XML-RPC endpoint (e.g., https://wiki.example.com/lib/exe/xmlrpc.php)
	BaseURL string

	// Username used by dokuwiki_login when the tool is called without one
	Username string

	// Password used by dokuwiki_login when the tool is called without one
	Password string

	// Timeout for a single round trip
	Timeout time.Duration

	// UserAgent identifies the client to the wiki
	UserAgent string

	// MaxRetries for failed transport requests; 0 means one attempt
	MaxRetries int

	// Debug starts the server with debug logging enabled
	Debug bool

	// MainNamespaceOnly restricts random articles to ids without any
	// namespace separator. Off by default: only index: and playground:
	// pages are excluded.
	MainNamespaceOnly bool
}

// fileConfig is the TOML representation of Config
type fileConfig struct {
	URL               string `toml:"url"`
	Username          string `toml:"username"`
	Password          string `toml:"password"`
	Timeout           string `toml:"timeout"`
	UserAgent         string `toml:"userAgent"`
	MaxRetries        *int   `toml:"maxRetries"`
	Debug             bool   `toml:"debug"`
	MainNamespaceOnly bool   `toml:"mainNamespaceOnly"`
}

// DefaultConfig returns a Config with defaults and no endpoint
func DefaultConfig() *Config {
	return &Config{
		Timeout:    30 * time.Second,
		UserAgent:  "DokuWikiMCPServer/1.0 (https://github.com/olgasafonova/dokuwiki-mcp-server)",
		MaxRetries: 0,
	}
}

// LoadConfig builds the configuration from an optional TOML file and the
// environment. path falls back to DOKUWIKI_CONFIG; environment variables
// override values from the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = os.Getenv("DOKUWIKI_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if cfg.BaseURL == "" {
		return nil, errors.New("DOKUWIKI_URL environment variable (or url in the config file) is required")
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.URL != "" {
		c.BaseURL = fc.URL
	}
	if fc.Username != "" {
		c.Username = fc.Username
	}
	if fc.Password != "" {
		c.Password = fc.Password
	}
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q in %s: %w", fc.Timeout, path, err)
		}
		c.Timeout = d
	}
	if fc.UserAgent != "" {
		c.UserAgent = fc.UserAgent
	}
	if fc.MaxRetries != nil && *fc.MaxRetries >= 0 {
		c.MaxRetries = *fc.MaxRetries
	}
	c.Debug = c.Debug || fc.Debug
	c.MainNamespaceOnly = c.MainNamespaceOnly || fc.MainNamespaceOnly
	return nil
}

func (c *Config) applyEnv() {
	if u := os.Getenv("DOKUWIKI_URL"); u != "" {
		c.BaseURL = u
	}
	if u := os.Getenv("DOKUWIKI_USERNAME"); u != "" {
		c.Username = u
	}
	if p := os.Getenv("DOKUWIKI_PASSWORD"); p != "" {
		c.Password = p
	}
	if t := os.Getenv("DOKUWIKI_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			c.Timeout = d
		}
	}
	if r := os.Getenv("DOKUWIKI_MAX_RETRIES"); r != "" {
		if n, err := strconv.Atoi(r); err == nil && n >= 0 {
			c.MaxRetries = n
		}
	}
	if ua := os.Getenv("DOKUWIKI_USER_AGENT"); ua != "" {
		c.UserAgent = ua
	}
	if d := os.Getenv("DOKUWIKI_DEBUG"); d != "" {
		if b, err := strconv.ParseBool(d); err == nil {
			c.Debug = b
		}
	}
	if m := os.Getenv("DOKUWIKI_MAIN_NAMESPACE_ONLY"); m != "" {
		if b, err := strconv.ParseBool(m); err == nil {
			c.MainNamespaceOnly = b
		}
	}
}

// HasCredentials returns true if login credentials are configured
func (c *Config) HasCredentials() bool {
	return c.Username != "" && c.Password != ""
}

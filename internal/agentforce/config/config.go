// Package config holds the configuration for the agentbridge service. The
// configuration file is TOML with {{ .ENV.VAR }} placeholders resolved from
// the process environment or a .env file before parsing.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// SalesforceConfig holds the tenant and OAuth client settings used by the
// direct credential strategy and for session callback endpoints.
type SalesforceConfig struct {
	MyDomainURL    string `toml:"my_domain_url"`    // tenant My Domain base URL
	ClientID       string `toml:"client_id"`        // connected app consumer key
	ClientSecret   string `toml:"client_secret"`    // connected app consumer secret
	DefaultAgentID string `toml:"default_agent_id"` // agent used when callers pass none
}

// AppLinkConfig holds the settings for the delegated credential strategy,
// where a pre-authorized token is fetched from the Heroku AppLink broker.
type AppLinkConfig struct {
	APIURL      string `toml:"api_url"`       // AppLink add-on API base URL
	Token       string `toml:"token"`         // AppLink add-on bearer token
	Connection  string `toml:"connection"`    // name of the JWT bearer connection
	AgentAPIURL string `toml:"agent_api_url"` // override for the canonical agent API host
}

// DefaultAgentAPIBaseURL is the canonical host for the conversational agent
// API. Delegated-mode calls always go here, regardless of the org domain the
// broker reports.
const DefaultAgentAPIBaseURL = "https://api.salesforce.com"

// GetAgentAPIURL returns the base URL for agent API calls in delegated mode.
func (a *AppLinkConfig) GetAgentAPIURL() string {
	if a.AgentAPIURL != "" {
		return a.AgentAPIURL
	}
	return DefaultAgentAPIBaseURL
}

// CacheConfig holds the validity window for credential and session
// memoization.
type CacheConfig struct {
	Window string `toml:"window"` // cache validity window, e.g. "5m"
}

// GetWindow returns the cache window as a time.Duration.
func (c *CacheConfig) GetWindow() (time.Duration, error) {
	return ParseDuration(c.Window)
}

// GetWindowOrDefault returns the cache window as a time.Duration
// or panics if the value is invalid.
func (c *CacheConfig) GetWindowOrDefault() time.Duration {
	d, err := c.GetWindow()
	if err != nil {
		panic(fmt.Sprintf("invalid cache window: %v", err))
	}
	return d
}

// ConfigParam holds all configuration parameters for the agentbridge service.
type ConfigParam struct {
	// Configuration version
	FormatVersion string `toml:"format_version"` // version of this configuration file format

	// Server configuration
	ServerHostName string `toml:"server_hostname"` // hostname the server binds to
	ServerPort     string `toml:"server_port"`     // port for the server
	HandleCORS     bool   `toml:"handle_cors"`     // whether to handle CORS

	// Salesforce tenant configuration
	Salesforce SalesforceConfig `toml:"salesforce"`

	// Heroku AppLink configuration
	AppLink AppLinkConfig `toml:"applink"`

	// Cache configuration
	Cache CacheConfig `toml:"cache"`
}

var cfg *ConfigParam

// Config returns the current configuration.
func Config() *ConfigParam {
	return cfg
}

// ParseDuration parses a duration string in the format "<number><unit>" where
// unit can be:
// - d: days
// - h: hours
// - m: minutes
// - s: seconds
func ParseDuration(input string) (time.Duration, error) {
	if len(input) < 2 {
		return 0, fmt.Errorf("invalid input format")
	}

	unit := input[len(input)-1:]
	valueStr := input[:len(input)-1]
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", err)
	}

	var duration time.Duration
	switch unit {
	case "d":
		duration = time.Duration(value) * 24 * time.Hour
	case "h":
		duration = time.Duration(value) * time.Hour
	case "m":
		duration = time.Duration(value) * time.Minute
	case "s":
		duration = time.Duration(value) * time.Second
	default:
		return 0, fmt.Errorf("unknown time unit: %s", unit)
	}

	return duration, nil
}

// ValidateConfig checks if all required configuration values are present and valid.
func ValidateConfig(cfg *ConfigParam) error {
	if cfg.FormatVersion != ConfigFormatVersion {
		return fmt.Errorf("unsupported config file format version: %s", cfg.FormatVersion)
	}

	if cfg.ServerPort == "" {
		return fmt.Errorf("server_port is required")
	}

	// Salesforce validation. The My Domain URL doubles as the session
	// callback endpoint, so it is required in both auth modes.
	if cfg.Salesforce.MyDomainURL == "" {
		return fmt.Errorf("salesforce.my_domain_url is required")
	}
	if cfg.Salesforce.ClientID == "" {
		return fmt.Errorf("salesforce.client_id is required")
	}
	if cfg.Salesforce.ClientSecret == "" {
		return fmt.Errorf("salesforce.client_secret is required")
	}

	// AppLink settings are validated only when a connection is configured;
	// direct-only deployments leave the section empty.
	if cfg.AppLink.Connection != "" {
		if cfg.AppLink.APIURL == "" {
			return fmt.Errorf("applink.api_url is required when applink.connection is set")
		}
		if cfg.AppLink.Token == "" {
			return fmt.Errorf("applink.token is required when applink.connection is set")
		}
	}

	if cfg.Cache.Window == "" {
		cfg.Cache.Window = "5m"
	}
	if _, err := ParseDuration(cfg.Cache.Window); err != nil {
		return fmt.Errorf("invalid cache.window: %v", err)
	}

	return nil
}

// LoadConfig loads configuration from a file. Environment placeholders in the
// file are resolved before parsing.
func LoadConfig(filename string) error {
	if filename == "" {
		return fmt.Errorf("config filename is required")
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	content, err = ResolveEnv(content)
	if err != nil {
		return fmt.Errorf("error resolving environment in config file: %v", err)
	}

	cfg = &ConfigParam{}
	if _, err := toml.Decode(string(content), cfg); err != nil {
		return fmt.Errorf("error parsing config file: %v", err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %v", err)
	}

	return nil
}

// GetURL returns the externally reachable URL of the agentbridge server.
func GetURL() string {
	return "http://" + Config().ServerHostName + ":" + Config().ServerPort
}

// ConfigFormatVersion is the current version of the configuration file format.
const ConfigFormatVersion = "0.1.0"

// SetTestConfig installs the given configuration directly, bypassing file
// loading. Intended for tests that need to point endpoints at local servers.
func SetTestConfig(c *ConfigParam) {
	if c.Cache.Window == "" {
		c.Cache.Window = "5m"
	}
	cfg = c
}

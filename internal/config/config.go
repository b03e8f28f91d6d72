/*
PURPOSE:
  Resolves the Jira connection (base URL + bearer token) for one invocation.

REQUIREMENTS:
  User-specified:
  - MCP_CONFIG (JSON blob with a "jira" object) wins when present.
  - Otherwise JIRA_BASE_URL + JIRA_API_TOKEN, both non-empty.
  - Otherwise fail with "configuration not found".

  Implementation-discovered:
  - A --config file (YAML, same shape as MCP_CONFIG) is a handy last resort
    for local use. It is only read when the flag is set.
  - The credential must never reach the logs in clear text.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli
  - Dependencies: gopkg.in/yaml.v3, internal/output (logger)

ERROR HANDLING:
  - ErrInvalidConfig wraps any parse or validation failure.
  - ErrNotFound when no source yields a descriptor.
  - Both are fatal: the CLI exits before any command runs.

IMPLEMENTATION RULES:
  - Environment access goes through a Getenv func so tests stay hermetic.
  - Struct tags support both json (MCP_CONFIG) and yaml (--config).

USAGE:
  conn, err := config.Resolve(os.Getenv)
  conn, err := config.Load(os.Getenv, "jira.yaml")

SELF-HEALING INSTRUCTIONS:
  - If MCP_CONFIG grows new fields, extend Document and keep the lookup order.

RELATED FILES:
  - internal/cli/root.go

MAINTENANCE:
  - Update when adding another configuration source.
*/

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/daryltucker/jira-bridge/internal/output"
)

// Environment variables consulted during resolution.
const (
	EnvMCPConfig = "MCP_CONFIG"
	EnvBaseURL   = "JIRA_BASE_URL"
	EnvAPIToken  = "JIRA_API_TOKEN"
)

var (
	// ErrNotFound is returned when no source yields a usable connection.
	ErrNotFound = errors.New("Configuração não encontrada")
	// ErrInvalidConfig wraps malformed configuration documents.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Getenv looks up an environment variable. os.Getenv satisfies it.
type Getenv func(key string) string

// Connection is the immutable connection descriptor for the Jira API.
type Connection struct {
	BaseURL string
	Token   string
}

// Document is the shape of MCP_CONFIG and of --config files.
type Document struct {
	Jira *Service `json:"jira" yaml:"jira"`
}

// Service holds one service's connection settings.
type Service struct {
	BaseURL        string         `json:"baseUrl" yaml:"baseUrl"`
	Authentication Authentication `json:"authentication" yaml:"authentication"`
}

type Authentication struct {
	Basic BasicAuth `json:"basic" yaml:"basic"`
}

type BasicAuth struct {
	APIToken string `json:"apiToken" yaml:"apiToken"`
}

// Resolve builds a Connection from environment sources only.
func Resolve(getenv Getenv) (*Connection, error) {
	return Load(getenv, "")
}

// Load builds a Connection from the environment, falling back to the file at
// path when it is non-empty and no environment source matched.
func Load(getenv Getenv, path string) (*Connection, error) {
	rawConfig := getenv(EnvMCPConfig)
	baseURL := getenv(EnvBaseURL)
	token := getenv(EnvAPIToken)

	output.Logger.Debug("Resolving configuration",
		EnvMCPConfig, rawConfig != "",
		EnvBaseURL, baseURL,
		EnvAPIToken, token,
		"config_file", path,
	)

	if rawConfig != "" {
		var doc Document
		if err := json.Unmarshal([]byte(rawConfig), &doc); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, EnvMCPConfig, err)
		}
		conn, err := doc.connection(EnvMCPConfig)
		if err != nil {
			return nil, err
		}
		output.Logger.Debug("Configuration resolved", "source", EnvMCPConfig, "base_url", conn.BaseURL)
		return conn, nil
	}

	if baseURL != "" && token != "" {
		conn := &Connection{BaseURL: baseURL, Token: token}
		if err := conn.validate(); err != nil {
			return nil, err
		}
		output.Logger.Debug("Configuration resolved", "source", "environment", "base_url", conn.BaseURL)
		return conn, nil
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		var doc Document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: failed to parse config file %s: %v", ErrInvalidConfig, path, err)
		}
		conn, err := doc.connection(path)
		if err != nil {
			return nil, err
		}
		output.Logger.Debug("Configuration resolved", "source", path, "base_url", conn.BaseURL)
		return conn, nil
	}

	return nil, ErrNotFound
}

func (d Document) connection(source string) (*Connection, error) {
	if d.Jira == nil {
		return nil, fmt.Errorf("%w: %s has no \"jira\" section", ErrInvalidConfig, source)
	}
	conn := &Connection{
		BaseURL: d.Jira.BaseURL,
		Token:   d.Jira.Authentication.Basic.APIToken,
	}
	if conn.Token == "" {
		return nil, fmt.Errorf("%w: %s is missing jira.authentication.basic.apiToken", ErrInvalidConfig, source)
	}
	if err := conn.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return conn, nil
}

func (c *Connection) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL is empty", ErrInvalidConfig)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: parse base URL: %v", ErrInvalidConfig, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: base URL %q must be an absolute http(s) URL", ErrInvalidConfig, c.BaseURL)
	}
	return nil
}

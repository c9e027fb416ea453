// Package config loads routemend settings.
//
// Precedence, lowest to highest: built-in defaults, YAML file, environment, CLI flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFile is read from the working directory when no --config is given.
const DefaultFile = ".routemend.yaml"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all routemend configuration.
type Config struct {
	Root        string   `yaml:"root"`
	FileName    string   `yaml:"file_name"`
	ExcludeDirs []string `yaml:"exclude_dirs"`
	Jobs        int      `yaml:"jobs"`
	Verify      bool     `yaml:"verify"`

	Tokens  TokenConfig  `yaml:"tokens"`
	Modules ModuleConfig `yaml:"modules"`
	Rules   RulesConfig  `yaml:"rules"`
	Log     LogConfig    `yaml:"log"`
}

// TokenConfig names the legacy constructs the engine looks for.
type TokenConfig struct {
	Legacy      string `yaml:"legacy"`       // Gate token, e.g. NextResponse
	LegacyCall  string `yaml:"legacy_call"`  // Call rewritten by the rules, e.g. NextResponse.json
	RequestType string `yaml:"request_type"` // Symbol kept when narrowing the import
}

// ModuleConfig names the import sources.
type ModuleConfig struct {
	Request    string `yaml:"request"`    // Module the legacy constructor is imported from
	Exceptions string `yaml:"exceptions"` // Also the already-integrated marker
	Responses  string `yaml:"responses"`
}

// RulesConfig toggles optional rules.
type RulesConfig struct {
	ExtendedStatus bool `yaml:"extended_status"` // Adds 429 and 502 error rules
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the canonical Next.js settings.
func Default() *Config {
	return &Config{
		Root:        "src/app/api",
		FileName:    "route.ts",
		ExcludeDirs: []string{"node_modules", ".next", ".git", "dist"},
		Jobs:        1,
		Tokens: TokenConfig{
			Legacy:      "NextResponse",
			LegacyCall:  "NextResponse.json",
			RequestType: "NextRequest",
		},
		Modules: ModuleConfig{
			Request:    "next/server",
			Exceptions: "@/lib/utils/error-handler",
			Responses:  "@/lib/utils/response-handler",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads path over the defaults. A missing DefaultFile is not an error;
// a missing explicit path is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			cfg.ApplyEnv(os.Getenv)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.ApplyEnv(os.Getenv)
	return cfg, nil
}

// ApplyEnv overlays ROUTEMEND_* variables. Unparseable values are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv("ROUTEMEND_ROOT")); v != "" {
		c.Root = v
	}
	if v := strings.TrimSpace(getenv("ROUTEMEND_JOBS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Jobs = n
		}
	}
	if v := strings.TrimSpace(getenv("ROUTEMEND_VERIFY")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Verify = b
		}
	}
	if v := strings.TrimSpace(getenv("ROUTEMEND_LOG_LEVEL")); v != "" {
		c.Log.Level = v
	}
}

// Validate reports the first problem found.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Root) == "":
		return fmt.Errorf("%w: root is empty", ErrInvalid)
	case strings.TrimSpace(c.FileName) == "":
		return fmt.Errorf("%w: file_name is empty", ErrInvalid)
	case strings.ContainsAny(c.FileName, `/\`):
		return fmt.Errorf("%w: file_name %q must be a base name", ErrInvalid, c.FileName)
	case c.Jobs < 1:
		return fmt.Errorf("%w: jobs must be >= 1, got %d", ErrInvalid, c.Jobs)
	case c.Tokens.Legacy == "" || c.Tokens.LegacyCall == "":
		return fmt.Errorf("%w: legacy tokens are required", ErrInvalid)
	case !strings.Contains(c.Tokens.LegacyCall, c.Tokens.Legacy):
		return fmt.Errorf("%w: legacy_call %q must contain legacy token %q", ErrInvalid, c.Tokens.LegacyCall, c.Tokens.Legacy)
	case c.Tokens.RequestType == "":
		return fmt.Errorf("%w: request_type is required", ErrInvalid)
	case c.Modules.Request == "" || c.Modules.Exceptions == "" || c.Modules.Responses == "":
		return fmt.Errorf("%w: modules.request, modules.exceptions and modules.responses are required", ErrInvalid)
	case c.Modules.Exceptions == c.Modules.Responses:
		return fmt.Errorf("%w: exceptions and responses modules must differ", ErrInvalid)
	}
	return nil
}

// Marker is the substring that identifies an already-integrated file.
func (c *Config) Marker() string {
	return c.Modules.Exceptions
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Package config holds the configuration record the client is constructed
// from. It overlays an optional flat JSON file (LoadFile) and environment
// variable overrides (ApplyEnv, LoadEnvTimeouts) on top of the defaults,
// the way the teacher's pkg/infrastructure/config does for its own
// settings; richer config-file formats and profiles are not handled here.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
)

// DefaultEndpoint is used when no endpoint is configured.
const DefaultEndpoint = "https://cloud.dwavesys.com/sapi"

// DefaultRequestTimeout bounds every individual HTTP call unless overridden.
const DefaultRequestTimeout = 60 * time.Second

// Config is the record consumed by client.New. Everything here can be set
// programmatically, loaded from a JSON file via LoadFile, or overridden
// from the environment variables named in spec.md §6 via ApplyEnv.
type Config struct {
	Endpoint string `json:"endpoint"`
	Token    string `json:"token"`

	// DefaultSolver is either a solver name string or a filter map. It is
	// only stored on the record: solver.Catalog.GetSolver does not read it
	// and applies only the name and filters its caller passes.
	DefaultSolver interface{} `json:"default_solver,omitempty"`

	Proxy          string `json:"proxy,omitempty"`
	PermissiveSSL  bool   `json:"permissive_ssl"`
	ConnectionClose bool  `json:"connection_close"`

	RequestTimeout time.Duration `json:"request_timeout"`
	// PollingTimeout bounds the total age a future may spend in the poll
	// stage. Zero means unset (no limit).
	PollingTimeout time.Duration `json:"polling_timeout"`

	// ClientAppName is folded into the outgoing User-Agent header.
	ClientAppName string `json:"client_app_name,omitempty"`

	Logging LoggingConfig `json:"logging"`
}

// LoggingConfig configures the package-level logger built from this Config.
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
	// File, if set, redirects log output to this path instead of stderr.
	File string `json:"file,omitempty"`
}

// Default returns a Config with the documented defaults applied: the
// public cloud endpoint, a 60s request timeout, no polling timeout, info
// logging.
func Default() *Config {
	return &Config{
		Endpoint:       DefaultEndpoint,
		RequestTimeout: DefaultRequestTimeout,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadFile overlays JSON-encoded fields from path onto the config. A
// missing file is not an error — it leaves the config at its current
// values, mirroring the teacher's loadFromFile behavior for a
// not-yet-created config file.
func (c *Config) LoadFile(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to load config file: %w", err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// ApplyEnv applies the environment variable overrides named in spec.md §6:
// DWAVE_API_ENDPOINT, DWAVE_API_TOKEN, DWAVE_API_SOLVER, DWAVE_API_PROXY,
// plus DWAVE_API_CLIENT for the User-Agent app name. DWAVE_CONFIG_FILE and
// DWAVE_PROFILE select *which* config file an external loader should have
// read before calling this; they have no effect here.
func (c *Config) ApplyEnv() {
	if val := os.Getenv("DWAVE_API_ENDPOINT"); val != "" {
		c.Endpoint = val
	}
	if val := os.Getenv("DWAVE_API_TOKEN"); val != "" {
		c.Token = val
	}
	if val := os.Getenv("DWAVE_API_SOLVER"); val != "" {
		c.DefaultSolver = val
	}
	if val := os.Getenv("DWAVE_API_PROXY"); val != "" {
		c.Proxy = val
	}
	if val := os.Getenv("DWAVE_API_CLIENT"); val != "" {
		c.ClientAppName = val
	}
}

// LoadEnvTimeouts applies override support for request/polling timeouts
// expressed in whole seconds, a convenience not named by spec.md §6 but
// consistent with the teacher's per-field NOISEFS_* override idiom.
func (c *Config) LoadEnvTimeouts() {
	if val := os.Getenv("DWAVE_API_REQUEST_TIMEOUT"); val != "" {
		if secs, err := strconv.Atoi(val); err == nil {
			c.RequestTimeout = time.Duration(secs) * time.Second
		}
	}
	if val := os.Getenv("DWAVE_API_POLLING_TIMEOUT"); val != "" {
		if secs, err := strconv.Atoi(val); err == nil {
			c.PollingTimeout = time.Duration(secs) * time.Second
		}
	}
}

// Load builds a Config from defaults, an optional file, and the
// environment, in that precedence order (environment wins), then
// validates it.
func Load(configPath string) (*Config, error) {
	c := Default()
	if err := c.LoadFile(configPath); err != nil {
		return nil, err
	}
	c.ApplyEnv()
	c.LoadEnvTimeouts()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

// Validate checks the fields client.New depends on being sane. Every
// violation is reported at once, rather than just the first encountered.
func (c *Config) Validate() error {
	var err error
	if strings.TrimSpace(c.Endpoint) == "" {
		err = multierr.Append(err, fmt.Errorf("endpoint cannot be empty"))
	}
	if strings.TrimSpace(c.Token) == "" {
		err = multierr.Append(err, fmt.Errorf("token is required"))
	}
	if c.RequestTimeout <= 0 {
		err = multierr.Append(err, fmt.Errorf("request timeout must be positive"))
	}
	if c.PollingTimeout < 0 {
		err = multierr.Append(err, fmt.Errorf("polling timeout cannot be negative"))
	}
	return err
}

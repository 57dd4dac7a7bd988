package runtime

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config captures every knob shared across the hivectl entry points.
// Keeping it a lightweight struct makes it trivial to reuse in tests or
// future headless workflows.
type Config struct {
	// Agents lists the orchestrator ids to bring up. Every agent shares
	// the bus, registries and store.
	Agents []string `yaml:"agents"`

	// Oracle endpoint configuration. APIKey is usually injected via
	// HIVEMIND_API_KEY rather than written to disk.
	OracleBaseURL string `yaml:"oracle_base_url"`
	OracleModel   string `yaml:"oracle_model"`
	APIKey        string `yaml:"-"`
	Referer       string `yaml:"referer,omitempty"`

	// Store selects the mission history backend: "file" or "sqlite".
	Store     string `yaml:"store"`
	StorePath string `yaml:"store_path"`

	// TelemetryPath receives the NDJSON mission event stream. Empty
	// disables the file sink.
	TelemetryPath string `yaml:"telemetry_path,omitempty"`

	// TaskRoutes maps mailbox task names to dispatchable actions for the
	// reserved mailbox goal.
	TaskRoutes map[string]string `yaml:"task_routes,omitempty"`
}

// DefaultConfig returns a config rooted in the current working directory.
func DefaultConfig() Config {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return Config{
		Agents:        []string{"queen"},
		OracleBaseURL: "https://openrouter.ai/api/v1",
		OracleModel:   "meta-llama/llama-3.1-405b-instruct",
		Store:         "file",
		StorePath:     filepath.Join(cwd, ".hivemind", "missions.json"),
		TelemetryPath: filepath.Join(cwd, ".hivemind", "events.ndjson"),
	}
}

// Normalize fills missing defaults and absolutizes paths so runtime
// initialization never has to re-check the same invariants.
func (c *Config) Normalize() error {
	if len(c.Agents) == 0 {
		c.Agents = []string{"queen"}
	}
	seen := make(map[string]struct{}, len(c.Agents))
	for _, id := range c.Agents {
		if id == "" {
			return fmt.Errorf("agent ids must be non-empty")
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate agent id %q", id)
		}
		seen[id] = struct{}{}
	}
	if c.OracleBaseURL == "" {
		c.OracleBaseURL = "https://openrouter.ai/api/v1"
	}
	if c.OracleModel == "" {
		c.OracleModel = "meta-llama/llama-3.1-405b-instruct"
	}
	if c.APIKey == "" {
		c.APIKey = os.Getenv("HIVEMIND_API_KEY")
	}
	switch c.Store {
	case "":
		c.Store = "file"
	case "file", "sqlite":
	default:
		return fmt.Errorf("unknown store backend %q (want file or sqlite)", c.Store)
	}
	if c.StorePath == "" {
		name := "missions.json"
		if c.Store == "sqlite" {
			name = "missions.db"
		}
		c.StorePath = filepath.Join(".hivemind", name)
	}
	if abs, err := filepath.Abs(c.StorePath); err == nil {
		c.StorePath = abs
	}
	if c.TelemetryPath != "" {
		if abs, err := filepath.Abs(c.TelemetryPath); err == nil {
			c.TelemetryPath = abs
		}
	}
	return nil
}

// LoadConfig reads a YAML config from disk and applies defaults. A missing
// file yields the defaults untouched.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, cfg.Normalize()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.Normalize()
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Normalize()
}

// SaveConfig persists the config for future sessions.
func SaveConfig(path string, cfg Config) error {
	if path == "" {
		return fmt.Errorf("config path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

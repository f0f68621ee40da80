// Package config loads the storewatch configuration: monitored repositories,
// the script registry location, and daemon settings.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/storewatch/internal/scripts"
	"git.home.luguber.info/inful/storewatch/internal/store"
)

// Config represents the application configuration
type Config struct {
	Monitors []store.Monitor `yaml:"monitors"`

	// ScriptsFile points at the shared script registry file. Inline Scripts
	// take precedence when both are set.
	ScriptsFile string           `yaml:"scripts_file,omitempty"`
	Scripts     []scripts.Script `yaml:"scripts,omitempty"`

	Daemon DaemonConfig `yaml:"daemon,omitempty"`
}

// DaemonConfig represents daemon-mode configuration
type DaemonConfig struct {
	DataDir             string        `yaml:"data_dir,omitempty"`
	MetricsAddr         string        `yaml:"metrics_addr,omitempty"`
	DefaultPollInterval time.Duration `yaml:"default_poll_interval,omitempty"`
	Events              EventsConfig  `yaml:"events,omitempty"`
}

// EventsConfig configures optional NATS event publishing
type EventsConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	if err := loadEnvFile(); err != nil {
		// Don't fail if .env doesn't exist, just log it
		fmt.Fprintf(os.Stderr, "Note: .env file not found or couldn't be loaded: %v\n", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- path comes from the CLI
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Daemon.DataDir == "" {
		c.Daemon.DataDir = "./storewatch-data"
	}
	if c.Daemon.DefaultPollInterval == 0 {
		c.Daemon.DefaultPollInterval = 5 * time.Minute
	}
	if c.Daemon.Events.Subject == "" {
		c.Daemon.Events.Subject = "storewatch.events"
	}

	for i := range c.Monitors {
		m := &c.Monitors[i]
		if m.VersionRegex == "" {
			m.VersionRegex = store.DefaultVersionRegex
		}
		if m.MinimumBlessing == "" {
			m.MinimumBlessing = store.DefaultMinimumBlessing
		}
		if m.GenerateParcelBuilderFile && m.ParcelBuilderFilename == "" {
			m.ParcelBuilderFilename = store.DefaultParcelBuilderFilename
		}
		if m.PollInterval == 0 {
			m.PollInterval = c.Daemon.DefaultPollInterval
		}
	}
}

// Validate checks the configuration for errors that would only surface at
// poll time otherwise.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Monitors))
	for i := range c.Monitors {
		m := &c.Monitors[i]
		if m.Repository == "" {
			return fmt.Errorf("monitor %d: repository name is required", i)
		}
		if m.Script == "" {
			return fmt.Errorf("monitor %q: script name is required", m.Repository)
		}
		if seen[m.Repository] {
			return fmt.Errorf("duplicate monitor for repository %q", m.Repository)
		}
		seen[m.Repository] = true

		if !store.ValidBlessingLevel(m.MinimumBlessing) {
			return fmt.Errorf("monitor %q: unknown blessing level %q", m.Repository, m.MinimumBlessing)
		}
		for _, spec := range m.Pundles {
			if !spec.Type.Valid() {
				return fmt.Errorf("monitor %q: unknown pundle type %q for %q", m.Repository, spec.Type, spec.Name)
			}
			if spec.Name == "" {
				return fmt.Errorf("monitor %q: pundle with empty name", m.Repository)
			}
		}
	}
	return nil
}

// LoadRegistry builds the script registry for this configuration: inline
// scripts when present, otherwise the shared scripts file.
func (c *Config) LoadRegistry() (*scripts.Registry, error) {
	if len(c.Scripts) > 0 {
		r := scripts.NewRegistry()
		if err := r.Replace(c.Scripts); err != nil {
			return nil, err
		}
		return r, nil
	}
	if c.ScriptsFile != "" {
		return scripts.Load(c.ScriptsFile)
	}
	return scripts.NewRegistry(), nil
}

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/storewatch/internal/scripts"
	"git.home.luguber.info/inful/storewatch/internal/store"
)

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	exampleConfig := Config{
		Monitors: []store.Monitor{
			{
				Script:          "storeci",
				Repository:      "MainRepository",
				VersionRegex:    store.DefaultVersionRegex,
				MinimumBlessing: store.DefaultMinimumBlessing,
				Pundles: []store.PundleSpec{
					{Type: store.PundleTypeBundle, Name: "MyApp"},
					{Type: store.PundleTypePackage, Name: "MyApp-Tools"},
				},
				PollInterval: 5 * time.Minute,
			},
		},
		Scripts: []scripts.Script{
			{Name: "storeci", Path: "/usr/local/bin/storeci.sh"},
		},
		Daemon: DaemonConfig{
			DataDir:     "./storewatch-data",
			MetricsAddr: ":9190",
		},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

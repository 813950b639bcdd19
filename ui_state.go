package main

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultBaseURL = "http://localhost:5005"

type popupConfig struct {
	BaseURL        string `yaml:"base_url,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"`
	Theme          string `yaml:"theme,omitempty"`
}

// loadPopupConfig reads config.yaml from the user config dir, falling back to
// defaults on any error. APPLISNAP_API_URL overrides the configured base URL.
func loadPopupConfig(path string) (*popupConfig, string) {
	if path == "" {
		configDir := resolveConfigDir()
		if err := ensureDir(configDir); err != nil {
			return applyConfigDefaults(&popupConfig{}), filepath.Join(configDir, "config.yaml")
		}
		path = filepath.Join(configDir, "config.yaml")
	}
	cfg := &popupConfig{}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			cfg = &popupConfig{}
		}
	}
	return applyConfigDefaults(cfg), path
}

func applyConfigDefaults(cfg *popupConfig) *popupConfig {
	if env := strings.TrimSpace(os.Getenv("APPLISNAP_API_URL")); env != "" {
		cfg.BaseURL = env
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 10
	}
	return cfg
}

func savePopupConfig(cfg *popupConfig, path string) error {
	if cfg == nil {
		cfg = &popupConfig{}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func resolveConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "applisnap")
}

func ensureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

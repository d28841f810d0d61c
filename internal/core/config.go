package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	configDirName   = ".toolrig"
	configFileName  = "config.json"
	overlayFileName = ".toolrig.yaml"
)

// ConfigManager handles reading and writing the toolrig configuration.
type ConfigManager struct {
	configDir string
	mu        sync.RWMutex
}

// NewConfigManager creates a ConfigManager using the default config path (~/.toolrig/).
func NewConfigManager() (*ConfigManager, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting home directory: %w", err)
	}
	return &ConfigManager{
		configDir: filepath.Join(home, configDirName),
	}, nil
}

// NewConfigManagerWithDir creates a ConfigManager using a custom config directory.
// Useful for testing.
func NewConfigManagerWithDir(dir string) *ConfigManager {
	return &ConfigManager{configDir: dir}
}

// ConfigDir returns the configuration directory path.
func (cm *ConfigManager) ConfigDir() string {
	return cm.configDir
}

// ConfigPath returns the full path to the config file.
func (cm *ConfigManager) ConfigPath() string {
	return filepath.Join(cm.configDir, configFileName)
}

// Load reads the config from disk. Returns default config if file doesn't exist.
func (cm *ConfigManager) Load() (*Config, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	path := cm.ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	applyDefaults(&cfg.Settings)
	return &cfg, nil
}

// Save writes the config to disk, creating the directory if needed.
func (cm *ConfigManager) Save(cfg *Config) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if err := os.MkdirAll(cm.configDir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	// Write atomically: write to temp file then rename
	tmpPath := cm.ConfigPath() + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.Rename(tmpPath, cm.ConfigPath()); err != nil {
		_ = os.Remove(tmpPath) // clean up on failure
		return fmt.Errorf("saving config: %w", err)
	}

	return nil
}

// ResolveSettings loads the global settings and applies the project
// overlay (.toolrig.yaml in projectDir) on top. Non-zero overlay fields win.
func (cm *ConfigManager) ResolveSettings(projectDir string) (Settings, error) {
	cfg, err := cm.Load()
	if err != nil {
		return Settings{}, err
	}
	s := cfg.Settings

	overlay, err := loadOverlay(filepath.Join(projectDir, overlayFileName))
	if err != nil {
		return Settings{}, err
	}
	if overlay == nil {
		return s, nil
	}

	if overlay.ScriptName != "" {
		s.ScriptName = overlay.ScriptName
	}
	if overlay.ScriptPath != "" {
		s.ScriptPath = overlay.ScriptPath
	}
	if overlay.EnvVar != "" {
		s.EnvVar = overlay.EnvVar
	}
	if overlay.GlobalRoot != "" {
		s.GlobalRoot = overlay.GlobalRoot
	}
	if overlay.UserRoot != "" {
		s.UserRoot = overlay.UserRoot
	}
	if overlay.Shell != "" {
		s.Shell = overlay.Shell
	}
	if overlay.CaptureTimeoutSeconds > 0 {
		s.CaptureTimeoutSeconds = overlay.CaptureTimeoutSeconds
	}
	return s, nil
}

// loadOverlay parses a project .toolrig.yaml. Returns nil if the file
// does not exist.
func loadOverlay(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &s, nil
}

func defaultConfig() *Config {
	cfg := &Config{Settings: Settings{AutoGitignore: true}}
	applyDefaults(&cfg.Settings)
	return cfg
}

func applyDefaults(s *Settings) {
	if s.ScriptName == "" {
		s.ScriptName = "setvars.sh"
	}
	if s.EnvVar == "" {
		s.EnvVar = "ONEAPI_ROOT"
	}
	if s.GlobalRoot == "" {
		s.GlobalRoot = "/opt/intel/oneapi"
	}
	if s.UserRoot == "" {
		s.UserRoot = "~/intel/oneapi"
	}
	if s.CaptureTimeoutSeconds <= 0 {
		s.CaptureTimeoutSeconds = 60
	}
}

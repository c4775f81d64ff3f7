// Package config loads the workspace-local threadview configuration.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configDirName = "threadview_cfg"

// Dir returns the workspace-local configuration directory.
func Dir(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, configDirName)
}

// DefaultPath returns threadview_cfg/config.yaml within the workspace.
func DefaultPath(workspace string) string {
	return filepath.Join(Dir(workspace), "config.yaml")
}

// Config matches threadview_cfg/config.yaml inside the workspace.
type Config struct {
	Version string        `yaml:"version"`
	Storage StorageConfig `yaml:"storage"`
	Feed    FeedConfig    `yaml:"feed"`
	Render  RenderConfig  `yaml:"render"`
	Logging LoggingConfig `yaml:"logging"`
}

// StorageConfig locates the transcript stores.
type StorageConfig struct {
	Root   string `yaml:"root"`
	DBPath string `yaml:"db_path"`
}

// FeedConfig describes the push feed endpoints.
type FeedConfig struct {
	Address     string `yaml:"address"`
	HTTPAddress string `yaml:"http_address"`
}

// RenderConfig tunes the terminal renderer.
type RenderConfig struct {
	Width    int `yaml:"width"`
	MaxDepth int `yaml:"max_depth"`
}

// LoggingConfig describes log output.
type LoggingConfig struct {
	File  string `yaml:"file"`
	Debug bool   `yaml:"pipeline_debug"`
}

// Default returns the configuration used when no file exists.
func Default(workspace string) *Config {
	return &Config{
		Version: "v1",
		Storage: StorageConfig{
			Root:   filepath.Join(Dir(workspace), "transcripts"),
			DBPath: filepath.Join(Dir(workspace), "history.db"),
		},
		Feed: FeedConfig{
			Address:     "127.0.0.1:7421",
			HTTPAddress: "127.0.0.1:7420",
		},
		Render: RenderConfig{
			Width:    100,
			MaxDepth: 4,
		},
	}
}

// Load reads the config or returns defaults when the file is missing. The
// os.ErrNotExist case is reported so callers can distinguish it, mirroring
// the defaults-on-missing contract.
func Load(path, workspace string) (*Config, error) {
	cfg := Default(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, err
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.fillDefaults(workspace)
	return cfg, nil
}

func (c *Config) fillDefaults(workspace string) {
	def := Default(workspace)
	if c.Storage.Root == "" {
		c.Storage.Root = def.Storage.Root
	}
	if c.Storage.DBPath == "" {
		c.Storage.DBPath = def.Storage.DBPath
	}
	if c.Feed.Address == "" {
		c.Feed.Address = def.Feed.Address
	}
	if c.Feed.HTTPAddress == "" {
		c.Feed.HTTPAddress = def.Feed.HTTPAddress
	}
	if c.Render.Width <= 0 {
		c.Render.Width = def.Render.Width
	}
	if c.Render.MaxDepth <= 0 {
		c.Render.MaxDepth = def.Render.MaxDepth
	}
}

// Save writes the config back to path, creating directories as needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

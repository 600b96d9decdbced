// Package appconfig loads the replink CLI configuration file.
package appconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk CLI configuration. Fields mirror the library's
// options; flags override anything loaded here.
type Config struct {
	Command    string    `yaml:"command"`
	Args       []string  `yaml:"args"`
	BootScript string    `yaml:"boot_script"`
	Literate   bool      `yaml:"literate"`
	Marker     string    `yaml:"literate_marker"`
	ChunkSize  int       `yaml:"chunk_size"`
	PTY        bool      `yaml:"pty"`
	Markers    Markers   `yaml:"block_markers"`
	Templates  Templates `yaml:"templates"`
}

// Markers is the compound-block sentinel pair.
type Markers struct {
	Begin string `yaml:"begin"`
	End   string `yaml:"end"`
}

// Templates is the interpreter command vocabulary.
type Templates struct {
	Boot    string `yaml:"boot"`
	Load    string `yaml:"load"`
	Silence string `yaml:"silence"`
	Hush    string `yaml:"hush"`
	Main    string `yaml:"main"`
}

// DefaultConfig returns the GHCi/Tidal defaults.
func DefaultConfig() Config {
	return Config{
		Command:   "ghci",
		Args:      []string{},
		ChunkSize: 1024,
		Marker:    "> ",
		Markers:   Markers{Begin: ":{", End: ":}"},
		Templates: Templates{
			Boot:    ":script %s",
			Load:    ":load %s",
			Silence: "%s silence",
			Hush:    "hush",
			Main:    "main",
		},
	}
}

// DefaultConfigPath returns the per-user config file location.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}

	return filepath.Join(dir, "replink", "config.yaml"), nil
}

// Load reads configuration from path, or from DefaultConfigPath when
// path is empty. A missing file is not an error: defaults apply.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}

		path = defaultPath
	}

	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("command", cfg.Command)
	v.SetDefault("args", cfg.Args)
	v.SetDefault("boot_script", cfg.BootScript)
	v.SetDefault("literate", cfg.Literate)
	v.SetDefault("literate_marker", cfg.Marker)
	v.SetDefault("chunk_size", cfg.ChunkSize)
	v.SetDefault("pty", cfg.PTY)
	v.SetDefault("block_markers.begin", cfg.Markers.Begin)
	v.SetDefault("block_markers.end", cfg.Markers.End)
	v.SetDefault("templates.boot", cfg.Templates.Boot)
	v.SetDefault("templates.load", cfg.Templates.Load)
	v.SetDefault("templates.silence", cfg.Templates.Silence)
	v.SetDefault("templates.hush", cfg.Templates.Hush)
	v.SetDefault("templates.main", cfg.Templates.Main)

	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	cfg.Command = v.GetString("command")
	cfg.Args = v.GetStringSlice("args")
	cfg.BootScript = v.GetString("boot_script")
	cfg.Literate = v.GetBool("literate")
	cfg.Marker = v.GetString("literate_marker")
	cfg.ChunkSize = v.GetInt("chunk_size")
	cfg.PTY = v.GetBool("pty")
	cfg.Markers.Begin = v.GetString("block_markers.begin")
	cfg.Markers.End = v.GetString("block_markers.end")
	cfg.Templates.Boot = v.GetString("templates.boot")
	cfg.Templates.Load = v.GetString("templates.load")
	cfg.Templates.Silence = v.GetString("templates.silence")
	cfg.Templates.Hush = v.GetString("templates.hush")
	cfg.Templates.Main = v.GetString("templates.main")

	if cfg.ChunkSize <= 0 {
		return Config{}, fmt.Errorf("chunk_size must be positive, got %d", cfg.ChunkSize)
	}

	return cfg, nil
}

// Render renders the config as YAML, for `replink config init`.
func (c Config) Render() ([]byte, error) {
	return yaml.Marshal(c)
}

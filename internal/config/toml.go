// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Analysis AnalysisConfig `toml:"analysis"`
	Check    CheckConfig    `toml:"check"`
}

// AnalysisConfig maps analysis session settings.
type AnalysisConfig struct {
	QuietWindowMs     *int    `toml:"quiet-window-ms"`
	HistoryCapacity   *int    `toml:"history-capacity"`
	Dictionary        *string `toml:"dictionary"`
	LongSentenceWords *int    `toml:"long-sentence-words"`
	WordsPerMinute    *int    `toml:"words-per-minute"`
}

// CheckConfig maps settings of the check command.
type CheckConfig struct {
	Color     *bool `toml:"color"`
	Jobs      *int  `toml:"jobs"`
	FailBelow *int  `toml:"fail-below"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

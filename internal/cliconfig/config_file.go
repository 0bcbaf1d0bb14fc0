package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config for TOML and YAML config files.
type FileConfig struct {
	SessionLog   string `toml:"session" yaml:"session"`
	Tag          string `toml:"tag" yaml:"tag"`
	MinLines     int    `toml:"min_lines" yaml:"min_lines"`
	OutDir       string `toml:"out_dir" yaml:"out_dir"`
	Strict       *bool  `toml:"strict" yaml:"strict"`
	DecodeInput  string `toml:"input" yaml:"input"`
	DecodeOutput string `toml:"output" yaml:"output"`
	Tokens       int    `toml:"tokens" yaml:"tokens"`
	Report       string `toml:"report" yaml:"report"`
	Watch        *bool  `toml:"watch" yaml:"watch"`
	LogLevel     string `toml:"log_level" yaml:"log_level"`
	LogFormat    string `toml:"log_format" yaml:"log_format"`
}

// LoadFileConfig reads a config file. Files ending in .yaml or .yml are
// parsed as YAML, everything else as TOML.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		if err := toml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse toml: %w", err)
		}
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.rdsparse/config.toml, or "" when the home
// directory cannot be determined.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".rdsparse", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies file values to cfg, skipping flags that were set
// explicitly.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) {
	s := newConfigSetter(changed)

	s.setString("session", fc.SessionLog, &cfg.SessionLog)
	s.setString("tag", fc.Tag, &cfg.Tag)
	s.setString("out-dir", fc.OutDir, &cfg.OutDir)
	s.setString("input", fc.DecodeInput, &cfg.DecodeInput)
	s.setString("output", fc.DecodeOutput, &cfg.DecodeOutput)
	s.setString("report", fc.Report, &cfg.Report)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("log-format", fc.LogFormat, &cfg.LogFormat)

	s.setInt("min-lines", fc.MinLines, &cfg.MinLines)
	s.setInt("tokens", fc.Tokens, &cfg.Tokens)

	s.setBool("strict", fc.Strict, &cfg.Strict)
	s.setBool("watch", fc.Watch, &cfg.Watch)
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

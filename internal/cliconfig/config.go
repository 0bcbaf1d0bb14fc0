package cliconfig

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bft-labs/rdsparse/pkg/rds"
)

// ErrInvalidConfig is returned when configuration validation fails.
var ErrInvalidConfig = errors.New("rdsparse: invalid configuration")

// Default input and output names of the capture workflow.
const (
	DefaultSessionLog   = "session.log"
	DefaultDecodeInput  = "958.csv"
	DefaultDecodeOutput = "958_ascii.txt"
)

// Log output formats.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Config holds CLI configuration for rdsparse.
type Config struct {
	// Splitter
	SessionLog string
	Tag        string
	MinLines   int
	OutDir     string
	Strict     bool

	// Decoder
	DecodeInput  string
	DecodeOutput string
	Tokens       int

	Report    string
	Watch     bool
	LogLevel  string
	LogFormat string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		SessionLog:   DefaultSessionLog,
		Tag:          rds.DefaultTag,
		MinLines:     rds.DefaultMinLines,
		OutDir:       ".",
		DecodeInput:  DefaultDecodeInput,
		DecodeOutput: DefaultDecodeOutput,
		Tokens:       rds.DefaultTokens,
		LogLevel:     "info",
		LogFormat:    LogFormatConsole,
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.Tag == "" {
		return fmt.Errorf("%w: tag is required", ErrInvalidConfig)
	}
	if c.MinLines < 0 {
		return fmt.Errorf("%w: min-lines cannot be negative: %d", ErrInvalidConfig, c.MinLines)
	}
	if c.Tokens < 1 {
		return fmt.Errorf("%w: tokens must be at least 1: %d", ErrInvalidConfig, c.Tokens)
	}
	if c.OutDir == "" {
		c.OutDir = "."
	}

	c.LogFormat = strings.ToLower(c.LogFormat)
	if c.LogFormat == "" {
		c.LogFormat = LogFormatConsole
	}
	if c.LogFormat != LogFormatConsole && c.LogFormat != LogFormatJSON {
		return fmt.Errorf("%w: invalid log-format %q: must be console or json", ErrInvalidConfig, c.LogFormat)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("%w: invalid log-level %q", ErrInvalidConfig, c.LogLevel)
	}

	return nil
}

// configSetter applies configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if positive.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString accepts "true" and "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}

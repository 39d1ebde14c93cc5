// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"slices"
)

const (
	// BackendAPI talks to the Docker daemon through the Engine API.
	BackendAPI Backend = "api"
	// BackendCLI shells out to the docker binary.
	BackendCLI Backend = "cli"

	// DefaultBinary is the program the run command starts with.
	DefaultBinary = "docker"
	// DefaultStyle lets glamour pick a style for the terminal.
	DefaultStyle = "auto"
)

var (
	// ErrInvalidBackend is the sentinel error wrapped by InvalidBackendError.
	ErrInvalidBackend = errors.New("invalid engine backend")

	// ErrConfigNotFound is returned when an explicit config file does not exist.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrUnsupportedFormat is returned for config files with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported config format")
)

type (
	// Backend selects the engine implementation.
	Backend string

	// InvalidBackendError is returned when a Backend value is not recognized.
	// It wraps ErrInvalidBackend for errors.Is() compatibility.
	InvalidBackendError struct {
		Value Backend
	}

	// Config holds the application configuration.
	Config struct {
		Engine EngineConfig `json:"engine" mapstructure:"engine"`
		UI     UIConfig     `json:"ui" mapstructure:"ui"`
		// Defaults maps flag names to their configured default values.
		Defaults map[string]any `json:"defaults" mapstructure:"defaults"`
	}

	// EngineConfig configures the container engine.
	EngineConfig struct {
		Backend Backend `json:"backend" mapstructure:"backend"`
		Binary  string  `json:"binary" mapstructure:"binary"`
	}

	// UIConfig configures user interface settings.
	UIConfig struct {
		Verbose bool   `json:"verbose" mapstructure:"verbose"`
		Style   string `json:"style" mapstructure:"style"`
	}
)

// Error implements the error interface.
func (e *InvalidBackendError) Error() string {
	return fmt.Sprintf("invalid engine backend %q (valid: %s, %s)", e.Value, BackendAPI, BackendCLI)
}

// Unwrap returns ErrInvalidBackend so callers can use errors.Is for programmatic detection.
func (e *InvalidBackendError) Unwrap() error { return ErrInvalidBackend }

// Validate returns an error if the Backend is not one of the defined values.
func (b Backend) Validate() error {
	if slices.Contains([]Backend{BackendAPI, BackendCLI}, b) {
		return nil
	}
	return &InvalidBackendError{Value: b}
}

// String returns the string representation of the Backend.
func (b Backend) String() string { return string(b) }

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Backend: BackendAPI,
			Binary:  DefaultBinary,
		},
		UI: UIConfig{
			Style: DefaultStyle,
		},
		Defaults: map[string]any{},
	}
}

// Default returns the configured default for a flag and whether one is set.
// Keys match with either "-" or "_" as the word separator.
func (c *Config) Default(name string) (any, bool) {
	if c == nil {
		return nil, false
	}
	for _, key := range []string{name, flagKey(name), optionKey(name)} {
		if v, ok := c.Defaults[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/adrg/xdg"
	"github.com/drone/envsubst"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/invowk/dockhand/internal/issue"
)

const (
	// AppName is the application name.
	AppName = "dockhand"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// EnvPrefix prefixes environment variables that override settings.
	EnvPrefix = "DOCKHAND"

	// maxFileSize bounds config files read into memory.
	maxFileSize = 1 << 20
)

//go:embed config_schema.cue
var configSchema string

// fileExtensions lists the supported formats in lookup order.
var fileExtensions = []string{".cue", ".yaml", ".yml", ".toml"}

// Dir returns the dockhand configuration directory, $XDG_CONFIG_HOME/dockhand.
func Dir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// loadWithOptions performs option-driven config loading and returns the
// configuration with the path it was read from ("" when only defaults apply).
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("engine.backend", defaults.Engine.Backend)
	v.SetDefault("engine.binary", defaults.Engine.Binary)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("ui.style", defaults.UI.Style)
	v.SetDefault("defaults", defaults.Defaults)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath, err := findConfigFile(opts)
	if err != nil {
		return nil, "", err
	}
	if resolvedPath != "" {
		if err := loadFileIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file is valid CUE, YAML or TOML").
				WithSuggestion("Verify the configuration values match the expected schema").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Engine.Backend.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Set engine.backend (or DOCKHAND_ENGINE_BACKEND) to \"api\" or \"cli\"").
			Wrap(err).
			BuildError()
	}

	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	expanded, err := expandDefaults(cfg.Defaults, getenv)
	if err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("expand configuration defaults").
			WithResource(resolvedPath).
			WithSuggestion("Use ${NAME} or $NAME to reference environment variables").
			Wrap(err).
			BuildError()
	}
	cfg.Defaults = expanded

	return &cfg, resolvedPath, nil
}

// findConfigFile resolves the file to load: the explicit path when given
// (which must exist), else the first config.<ext> in the config directory.
func findConfigFile(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				Wrap(fmt.Errorf("%w: %s", ErrConfigNotFound, opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	dir := opts.ConfigDirPath
	if dir == "" {
		dir = Dir()
	}
	for _, ext := range fileExtensions {
		path := filepath.Join(dir, ConfigFileName+ext)
		if fileExists(path) {
			return path, nil
		}
	}
	// No config file is not an error: defaults apply.
	return "", nil
}

// loadFileIntoViper decodes path according to its extension, validates the
// document against the #Config schema and merges it into Viper.
func loadFileIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := checkFileSize(data, maxFileSize, path); err != nil {
		return err
	}

	ctx := cuecontext.New()
	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	var userValue cue.Value
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".cue":
		userValue = ctx.CompileBytes(data, cue.Filename(path))
	case ".yaml", ".yml":
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		userValue = ctx.Encode(doc)
	case ".toml":
		var doc map[string]any
		if err := toml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		userValue = ctx.Encode(doc)
	default:
		return fmt.Errorf("%w %q (use .cue, .yaml, .yml or .toml)", ErrUnsupportedFormat, ext)
	}
	if userValue.Err() != nil {
		return formatCUEError(userValue.Err(), path)
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return formatCUEError(err, path)
	}

	// Merge into Viper (preserves defaults, allows env overrides)
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// expandDefaults substitutes environment references in string values and
// string list elements.
func expandDefaults(defaults map[string]any, getenv func(string) string) (map[string]any, error) {
	out := make(map[string]any, len(defaults))
	for key, value := range defaults {
		switch val := value.(type) {
		case string:
			s, err := envsubst.Eval(val, getenv)
			if err != nil {
				return nil, fmt.Errorf("defaults.%s: %w", key, err)
			}
			out[key] = s
		case []any:
			items := make([]any, len(val))
			for i, item := range val {
				s, ok := item.(string)
				if !ok {
					items[i] = item
					continue
				}
				expanded, err := envsubst.Eval(s, getenv)
				if err != nil {
					return nil, fmt.Errorf("defaults.%s[%d]: %w", key, i, err)
				}
				items[i] = expanded
			}
			out[key] = items
		default:
			out[key] = value
		}
	}
	return out, nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// SPDX-License-Identifier: MPL-2.0

// Package config handles dockhand configuration using Viper.
//
// The config file is looked up as config.cue, config.yaml, config.yml or
// config.toml under $XDG_CONFIG_HOME/dockhand (see github.com/adrg/xdg), or
// given explicitly with --config. Whatever the format, the decoded document is
// validated against the embedded CUE schema (config_schema.cue) before it is
// merged over the built-in defaults. DOCKHAND_* environment variables override
// scalar settings.
//
// The defaults section maps flag names to default values for the command line.
// String values are expanded with ${VAR} substitution when the file is loaded.
package config

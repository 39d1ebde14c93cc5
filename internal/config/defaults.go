// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
)

// ApplyDefaults sets every flag the user did not pass on the command line to
// its configured default. It returns the sorted configured names that match
// no flag; skip lists names the caller consumes itself (such as "image").
func (c *Config) ApplyDefaults(fs *pflag.FlagSet, skip ...string) ([]string, error) {
	if c == nil {
		return nil, nil
	}

	var unknown []string
	for _, key := range sortedKeys(c.Defaults) {
		name := flagKey(key)
		if slices.Contains(skip, name) || slices.Contains(skip, optionKey(key)) {
			continue
		}
		flag := fs.Lookup(name)
		if flag == nil {
			unknown = append(unknown, key)
			continue
		}
		if flag.Changed {
			continue
		}
		for _, value := range flagValues(c.Defaults[key]) {
			if err := fs.Set(name, value); err != nil {
				return unknown, fmt.Errorf("defaults.%s: %w", key, err)
			}
		}
	}
	return unknown, nil
}

// DefaultString returns the configured default for name as a string, or "".
func (c *Config) DefaultString(name string) string {
	v, ok := c.Default(name)
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// flagValues renders a configured value as the strings to pass to
// pflag.FlagSet.Set; lists set one element per call.
func flagValues(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case []string:
		return val
	default:
		return []string{fmt.Sprint(val)}
	}
}

func flagKey(name string) string { return strings.ReplaceAll(name, "_", "-") }

func optionKey(name string) string { return strings.ReplaceAll(name, "-", "_") }

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

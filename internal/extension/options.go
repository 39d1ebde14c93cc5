// SPDX-License-Identifier: MPL-2.0

package extension

import (
	"maps"
	"strings"

	"github.com/spf13/pflag"
)

// BaseImageKey is the option the generator injects the base image reference under.
const BaseImageKey = "base_image"

// Options is the flat option map shared by every extension. Keys are flag names
// with dashes replaced by underscores.
type Options map[string]any

// OptionKey converts a flag name to its option key ("container-name" -> "container_name").
func OptionKey(flagName string) string {
	return strings.ReplaceAll(flagName, "-", "_")
}

// FlagName converts an option key to its flag name ("container_name" -> "container-name").
func FlagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// OptionsFromFlags collects every flag of fs into an Options map, keeping the
// flag's native type for bool, string, int and string list flags.
func OptionsFromFlags(fs *pflag.FlagSet) Options {
	opts := make(Options)
	fs.VisitAll(func(f *pflag.Flag) {
		key := OptionKey(f.Name)
		var (
			v   any
			err error
		)
		switch f.Value.Type() {
		case "bool":
			v, err = fs.GetBool(f.Name)
		case "string":
			v, err = fs.GetString(f.Name)
		case "int":
			v, err = fs.GetInt(f.Name)
		case "stringSlice":
			v, err = fs.GetStringSlice(f.Name)
		case "stringArray":
			v, err = fs.GetStringArray(f.Name)
		default:
			v = f.Value.String()
		}
		if err != nil {
			v = f.Value.String()
		}
		opts[key] = v
	})
	return opts
}

// Clone returns a shallow copy of the options.
func (o Options) Clone() Options {
	if o == nil {
		return make(Options)
	}
	return maps.Clone(o)
}

// Truthy reports whether key is present with a non-zero value.
func (o Options) Truthy(key string) bool {
	v, ok := o[key]
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case []string:
		return len(t) > 0
	case []any:
		return len(t) > 0
	default:
		return true
	}
}

// Bool returns the value of key as a bool, false when absent.
func (o Options) Bool(key string) bool {
	b, _ := o[key].(bool)
	return b
}

// String returns the value of key as a string, "" when absent or not a string.
func (o Options) String(key string) string {
	s, _ := o[key].(string)
	return s
}

// Strings returns the value of key as a string list. A single string is
// returned as a one-element list.
func (o Options) Strings(key string) []string {
	switch t := o[key].(type) {
	case []string:
		return t
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

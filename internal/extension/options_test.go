// SPDX-License-Identifier: MPL-2.0

package extension

import (
	"slices"
	"testing"

	"github.com/spf13/pflag"
)

func TestOptionKeyAndFlagName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		flag string
		key  string
	}{
		{flag: "asdf", key: "asdf"},
		{flag: "container-name", key: "container_name"},
		{flag: "env-file", key: "env_file"},
	}
	for _, tt := range tests {
		if got := OptionKey(tt.flag); got != tt.key {
			t.Errorf("OptionKey(%q) = %q, want %q", tt.flag, got, tt.key)
		}
		if got := FlagName(tt.key); got != tt.flag {
			t.Errorf("FlagName(%q) = %q, want %q", tt.key, got, tt.flag)
		}
	}
}

func TestOptionsTruthy(t *testing.T) {
	t.Parallel()

	opts := Options{
		"true_bool":   true,
		"false_bool":  false,
		"empty":       "",
		"name":        "foo",
		"zero":        0,
		"seven":       7,
		"no_items":    []string{},
		"items":       []string{"/dev/snd"},
		"nil":         nil,
		"other_value": struct{}{},
	}

	tests := []struct {
		key  string
		want bool
	}{
		{key: "true_bool", want: true},
		{key: "false_bool", want: false},
		{key: "empty", want: false},
		{key: "name", want: true},
		{key: "zero", want: false},
		{key: "seven", want: true},
		{key: "no_items", want: false},
		{key: "items", want: true},
		{key: "nil", want: false},
		{key: "missing", want: false},
		{key: "other_value", want: true},
	}
	for _, tt := range tests {
		if got := opts.Truthy(tt.key); got != tt.want {
			t.Errorf("Truthy(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestOptionsAccessors(t *testing.T) {
	t.Parallel()

	opts := Options{
		"network": "host",
		"devices": []string{"/dev/random", "/dev/null"},
		"single":  "one",
		"mixed":   []any{"a", 1, "b"},
		"home":    true,
	}

	if got := opts.String("network"); got != "host" {
		t.Errorf("String(network) = %q", got)
	}
	if got := opts.String("home"); got != "" {
		t.Errorf("String(home) = %q, want empty for non-string", got)
	}
	if !opts.Bool("home") || opts.Bool("network") {
		t.Error("Bool accessor returned unexpected values")
	}
	if got := opts.Strings("devices"); !slices.Equal(got, []string{"/dev/random", "/dev/null"}) {
		t.Errorf("Strings(devices) = %v", got)
	}
	if got := opts.Strings("single"); !slices.Equal(got, []string{"one"}) {
		t.Errorf("Strings(single) = %v", got)
	}
	if got := opts.Strings("mixed"); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Strings(mixed) = %v", got)
	}
	if got := opts.Strings("missing"); got != nil {
		t.Errorf("Strings(missing) = %v, want nil", got)
	}
}

func TestOptionsClone(t *testing.T) {
	t.Parallel()

	orig := Options{"a": true}
	clone := orig.Clone()
	clone[BaseImageKey] = "ubuntu:24.04"
	if _, ok := orig[BaseImageKey]; ok {
		t.Error("mutating the clone changed the original")
	}

	var nilOpts Options
	if c := nilOpts.Clone(); c == nil {
		t.Error("Clone of nil options must be writable")
	}
}

func TestOptionsFromFlags(t *testing.T) {
	t.Parallel()

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Bool("home", false, "")
	fs.String("container-name", "", "")
	fs.StringSlice("devices", nil, "")
	fs.StringArray("env-file", nil, "")
	fs.Int("retries", 0, "")

	if err := fs.Parse([]string{"--home", "--container-name", "box", "--devices", "/dev/a,/dev/b", "--env-file", "x.env", "--retries", "3"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	opts := OptionsFromFlags(fs)
	if !opts.Bool("home") {
		t.Error("home should be true")
	}
	if opts.String("container_name") != "box" {
		t.Errorf("container_name = %v", opts["container_name"])
	}
	if got := opts.Strings("devices"); !slices.Equal(got, []string{"/dev/a", "/dev/b"}) {
		t.Errorf("devices = %v", got)
	}
	if got := opts.Strings("env_file"); !slices.Equal(got, []string{"x.env"}) {
		t.Errorf("env_file = %v", got)
	}
	if opts["retries"] != 3 {
		t.Errorf("retries = %v", opts["retries"])
	}
}

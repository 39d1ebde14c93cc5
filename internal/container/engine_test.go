// SPDX-License-Identifier: MPL-2.0

package container

import (
	"errors"
	"slices"
	"testing"
)

func TestEngineType_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value   EngineType
		wantErr bool
	}{
		{EngineTypeAPI, false},
		{EngineTypeCLI, false},
		{"podman", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.value), func(t *testing.T) {
			t.Parallel()
			err := tt.value.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidEngineType) {
				t.Errorf("Validate() error = %v, want ErrInvalidEngineType", err)
			}
		})
	}
}

func TestNewEngine(t *testing.T) {
	t.Setenv("DOCKER_HOST", "tcp://127.0.0.1:1")

	for _, tt := range []struct {
		value EngineType
		want  string
	}{
		{EngineTypeAPI, "*container.APIEngine"},
		{"", "*container.APIEngine"},
		{EngineTypeCLI, "*container.CLIEngine"},
	} {
		engine, err := NewEngine(tt.value, "")
		if err != nil {
			t.Fatalf("NewEngine(%q) error = %v", tt.value, err)
		}
		switch engine.(type) {
		case *APIEngine:
			if tt.want != "*container.APIEngine" {
				t.Errorf("NewEngine(%q) = %T, want %s", tt.value, engine, tt.want)
			}
		case *CLIEngine:
			if tt.want != "*container.CLIEngine" {
				t.Errorf("NewEngine(%q) = %T, want %s", tt.value, engine, tt.want)
			}
		}
		if engine.Binary() != DefaultBinary {
			t.Errorf("Binary() = %q, want %q", engine.Binary(), DefaultBinary)
		}
	}

	for _, backend := range []EngineType{EngineTypeAPI, EngineTypeCLI} {
		engine, err := NewEngine(backend, "/usr/local/bin/docker")
		if err != nil {
			t.Fatalf("NewEngine(%q) error = %v", backend, err)
		}
		if engine.Binary() != "/usr/local/bin/docker" {
			t.Errorf("NewEngine(%q).Binary() = %q, want override", backend, engine.Binary())
		}
	}

	if _, err := NewEngine("podman", ""); !errors.Is(err, ErrInvalidEngineType) {
		t.Errorf("NewEngine(podman) error = %v, want ErrInvalidEngineType", err)
	}
}

func TestEngineUnavailableError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := &EngineUnavailableError{Engine: "docker", Err: cause}
	if !errors.Is(err, ErrEngineUnavailable) || !errors.Is(err, cause) {
		t.Errorf("errors.Is failed for %v", err)
	}
}

func TestSplitLines(t *testing.T) {
	t.Parallel()

	var got []string
	splitLines("a\r\n\n  b  \nc", func(l string) { got = append(got, l) })
	if want := []string{"a", "  b", "c"}; !slices.Equal(got, want) {
		t.Errorf("splitLines() = %q, want %q", got, want)
	}
	splitLines("ignored", nil)
}

// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "build image"},
			expected: "failed to build image",
		},
		{
			name: "resource and cause",
			err: &ActionableError{
				Operation: "build image",
				Resource:  "dockhand:dev",
				Cause:     errors.New("exit status 1"),
			},
			expected: "failed to build image: dockhand:dev: exit status 1",
		},
		{
			name: "one extension",
			err: &ActionableError{
				Operation:  "prepare the host",
				Extensions: []string{"x11"},
				Cause:      errors.New("xauth not found"),
			},
			expected: "failed to prepare the host for extension x11: xauth not found",
		},
		{
			name: "several extensions",
			err: &ActionableError{
				Operation:  "order extensions",
				Extensions: []string{"a", "b"},
			},
			expected: "failed to order extensions for extensions a, b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	cause := errors.New("no such network")
	err := NewErrorContext().WithOperation("validate the host environment").Wrap(cause).BuildError()

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if (&ActionableError{Operation: "test"}).Unwrap() != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestActionableError_Format(t *testing.T) {
	tests := []struct {
		name     string
		err      *ActionableError
		verbose  bool
		contains []string
		excludes []string
	}{
		{
			name: "suggestions",
			err: &ActionableError{
				Operation:   "prepare the host",
				Extensions:  []string{"x11"},
				Suggestions: []string{"Install xauth", "Run without --x11"},
			},
			contains: []string{
				"failed to prepare the host for extension x11",
				"\n  - Install xauth",
				"\n  - Run without --x11",
			},
		},
		{
			name: "no chain unless verbose",
			err: &ActionableError{
				Operation: "load configuration",
				Cause:     errors.New("syntax error"),
			},
			contains: []string{"failed to load configuration: syntax error"},
			excludes: []string{"Caused by:"},
		},
		{
			name: "verbose chain",
			err: &ActionableError{
				Operation: "run container",
				Cause: &ActionableError{
					Operation: "start engine",
					Cause:     errors.New("file not found"),
				},
			},
			verbose: true,
			contains: []string{
				"Caused by:",
				"1. failed to start engine: file not found",
				"2. file not found",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Format(tt.verbose)
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("Format() missing %q\ngot:\n%s", s, got)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(got, s) {
					t.Errorf("Format() should not contain %q\ngot:\n%s", s, got)
				}
			}
		})
	}
}

func TestErrorContext_Build(t *testing.T) {
	if NewErrorContext().WithResource("config.cue").Build() != nil {
		t.Error("Build() without an operation should return nil")
	}
	if err := NewErrorContext().BuildError(); err != nil {
		t.Errorf("BuildError() without an operation = %v, want nil", err)
	}

	ae := NewErrorContext().
		WithOperation("order extensions").
		WithExtensions("git").
		WithExtensions("user").
		WithResource("--git").
		WithSuggestion("Exclude one of them").
		Wrap(errors.New("cycle")).
		Build()
	if ae == nil {
		t.Fatal("Build() returned nil")
	}
	if strings.Join(ae.Extensions, ",") != "git,user" {
		t.Errorf("Extensions = %v, want [git user]", ae.Extensions)
	}
	if ae.Resource != "--git" || len(ae.Suggestions) != 1 || ae.Cause == nil {
		t.Errorf("Build() = %+v", ae)
	}
}

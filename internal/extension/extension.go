// SPDX-License-Identifier: MPL-2.0

package extension

import (
	"context"
	"slices"

	"github.com/spf13/pflag"
)

type (
	// Extension is the capability consumed by the build and run pipeline.
	// Implementations usually embed Base and override only what they contribute.
	Extension interface {
		// Name is the stable identifier used for activation lookup, ordering
		// tie-breaks and attribution comments.
		Name() string
		// DesiredPredecessors lists extensions this one would like to follow.
		// Inactive names are ignored.
		DesiredPredecessors() []string
		// ShouldActivate reports whether the options ask for this extension.
		ShouldActivate(opts Options) bool
		// RegisterOptions declares the flags this extension accepts. It may
		// return a DependencyMissingError when it needs the engine to do so.
		RegisterOptions(fs *pflag.FlagSet, defaults Options) error
		// Preamble is Dockerfile text placed before the FROM line.
		Preamble(opts Options) string
		// Snippet is Dockerfile text placed after the FROM and USER lines.
		Snippet(opts Options) string
		// RunArguments is a self-delimited fragment of "docker run" flags.
		RunArguments(opts Options) string
		// RequestedFiles maps build-context relative paths to file contents.
		RequestedFiles(opts Options) map[string]string
		// Precondition prepares the local environment before the run command is assembled.
		Precondition(ctx context.Context, opts Options) error
		// ValidateEnvironment checks the host can serve this extension. It is advisory.
		ValidateEnvironment(opts Options) error
	}

	// Factory creates a fresh instance of a registered extension.
	Factory func() Extension

	// Base provides the default behaviour for every Extension method except the
	// ones an extension chooses to override.
	Base struct {
		name  string
		after []string
	}
)

// NewBase returns a Base for the named extension that would like to follow after.
func NewBase(name string, after ...string) Base {
	return Base{name: name, after: after}
}

// Name returns the extension name.
func (b Base) Name() string { return b.name }

// DesiredPredecessors returns a copy of the names this extension wants to follow.
func (b Base) DesiredPredecessors() []string { return slices.Clone(b.after) }

// ShouldActivate reports whether the option named after the extension is truthy.
func (b Base) ShouldActivate(opts Options) bool { return opts.Truthy(b.name) }

// RegisterOptions declares no flags.
func (Base) RegisterOptions(*pflag.FlagSet, Options) error { return nil }

// Preamble contributes nothing.
func (Base) Preamble(Options) string { return "" }

// Snippet contributes nothing.
func (Base) Snippet(Options) string { return "" }

// RunArguments contributes nothing.
func (Base) RunArguments(Options) string { return "" }

// RequestedFiles requests no files.
func (Base) RequestedFiles(Options) map[string]string { return nil }

// Precondition does nothing.
func (Base) Precondition(context.Context, Options) error { return nil }

// ValidateEnvironment accepts any environment.
func (Base) ValidateEnvironment(Options) error { return nil }

// Names returns the names of exts in order.
func Names(exts []Extension) []string {
	names := make([]string, len(exts))
	for i, e := range exts {
		names[i] = e.Name()
	}
	return names
}

// SPDX-License-Identifier: MPL-2.0

package extension

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"

	"github.com/invowk/dockhand/internal/issue"
)

type (
	// Entry is a discovered extension: its name and the factory that creates it.
	Entry struct {
		Name string
		New  Factory
	}

	// Registry is the explicit registration table of available extensions.
	// It is built once at process start and passed by reference; the zero
	// value is not usable, use NewRegistry.
	Registry struct {
		factories map[string]Factory
	}
)

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a named extension factory.
func (r *Registry) Register(name string, f Factory) error {
	if strings.TrimSpace(name) == "" || f == nil {
		return fmt.Errorf("%w: %q", ErrInvalidExtensionName, name)
	}
	if _, exists := r.factories[name]; exists {
		return &DuplicateExtensionError{Name: name}
	}
	r.factories[name] = f
	return nil
}

// Discover returns every registered extension sorted by name.
func (r *Registry) Discover() []Entry {
	entries := make([]Entry, 0, len(r.factories))
	for name, f := range r.factories {
		entries = append(entries, Entry{Name: name, New: f})
	}
	slices.SortFunc(entries, func(a, b Entry) int { return strings.Compare(a.Name, b.Name) })
	return entries
}

// Names returns the registered extension names sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for _, e := range r.Discover() {
		names = append(names, e.Name)
	}
	return names
}

// RegisterOptions lets every discovered extension declare its flags on fs,
// in name order. The first failure stops registration; a DependencyMissingError
// is returned unchanged so callers can report it before doing anything else.
func (r *Registry) RegisterOptions(fs *pflag.FlagSet, defaults Options) error {
	if defaults == nil {
		defaults = make(Options)
	}
	for _, e := range r.Discover() {
		if err := e.New().RegisterOptions(fs, defaults); err != nil {
			return fmt.Errorf("register options for extension %q: %w", e.Name, err)
		}
	}
	return nil
}

// Activate instantiates every discovered extension whose activation predicate
// holds for opts and whose name is not in exclude. The result is sorted by name.
func (r *Registry) Activate(opts Options, exclude []string) []Extension {
	var active []Extension
	for _, e := range r.Discover() {
		if slices.Contains(exclude, e.Name) {
			continue
		}
		ext := e.New()
		if ext.ShouldActivate(opts) {
			active = append(active, ext)
		}
	}
	return active
}

// ValidateEnvironment runs every extension's advisory environment check and
// returns the failures as *issue.ActionableError naming the extension.
func ValidateEnvironment(exts []Extension, opts Options) []error {
	var errs []error
	for _, e := range exts {
		if err := e.ValidateEnvironment(opts); err != nil {
			errs = append(errs, issue.NewErrorContext().
				WithOperation("validate the host environment").
				WithExtensions(e.Name()).
				Wrap(err).
				BuildError())
		}
	}
	return errs
}

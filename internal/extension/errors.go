// SPDX-License-Identifier: MPL-2.0

package extension

import (
	"errors"
	"fmt"
	"strings"

	"github.com/invowk/dockhand/internal/dag"
)

var (
	// ErrDependencyMissing is the sentinel error wrapped by DependencyMissingError.
	ErrDependencyMissing = errors.New("dependency missing")

	// ErrCyclicDependency is the sentinel error wrapped by CyclicDependencyError.
	ErrCyclicDependency = errors.New("cyclic extension dependency")

	// ErrPreconditionFailed is the sentinel error wrapped by PreconditionError.
	ErrPreconditionFailed = errors.New("extension precondition failed")

	// ErrDuplicateExtension is the sentinel error wrapped by DuplicateExtensionError.
	ErrDuplicateExtension = errors.New("duplicate extension")

	// ErrInvalidExtensionName is returned when registering an extension without a name.
	ErrInvalidExtensionName = errors.New("invalid extension name")
)

type (
	// DependencyMissingError is returned when a backing service (usually the
	// container engine) is unreachable. It is fatal and surfaces before any
	// extension is resolved.
	DependencyMissingError struct {
		// Dependency names what is missing (e.g. "docker daemon").
		Dependency string
		// Err is the underlying failure, if any.
		Err error
	}

	// CyclicDependencyError is returned when the active extensions cannot be ordered.
	CyclicDependencyError struct {
		Cycle *dag.CycleError
	}

	// PreconditionError is returned when an extension fails to prepare the local environment.
	PreconditionError struct {
		Extension string
		Err       error
	}

	// DuplicateExtensionError is returned when two extensions register the same name.
	DuplicateExtensionError struct {
		Name string
	}
)

// Error implements the error interface.
func (e *DependencyMissingError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("dependency missing: %s", e.Dependency)
	}
	return fmt.Sprintf("dependency missing: %s: %v", e.Dependency, e.Err)
}

// Unwrap returns ErrDependencyMissing and the underlying cause.
func (e *DependencyMissingError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDependencyMissing}
	}
	return []error{ErrDependencyMissing, e.Err}
}

// Error implements the error interface.
func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("cyclic dependency between extensions: %s", strings.Join(e.Nodes(), ", "))
}

// Unwrap returns ErrCyclicDependency and the underlying *dag.CycleError.
func (e *CyclicDependencyError) Unwrap() []error {
	return []error{ErrCyclicDependency, e.Cycle}
}

// Nodes returns the names of the extensions forming the cycle.
func (e *CyclicDependencyError) Nodes() []string {
	if e.Cycle == nil {
		return nil
	}
	return e.Cycle.Cycle
}

// Error implements the error interface.
func (e *PreconditionError) Error() string {
	return fmt.Sprintf("failed to precondition extension [%s]: %v", e.Extension, e.Err)
}

// Unwrap returns ErrPreconditionFailed and the underlying cause.
func (e *PreconditionError) Unwrap() []error {
	return []error{ErrPreconditionFailed, e.Err}
}

// Error implements the error interface.
func (e *DuplicateExtensionError) Error() string {
	return fmt.Sprintf("extension %q is already registered", e.Name)
}

// Unwrap returns ErrDuplicateExtension for errors.Is() compatibility.
func (e *DuplicateExtensionError) Unwrap() error { return ErrDuplicateExtension }

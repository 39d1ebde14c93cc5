// SPDX-License-Identifier: MPL-2.0

package generator

import (
	"errors"
	"fmt"

	"github.com/invowk/dockhand/pkg/types"
)

var (
	// ErrNoImageID is returned when a build finishes without a
	// "Successfully built <id>" line.
	ErrNoImageID = errors.New("build finished but no image id was reported")

	// ErrNotBuilt is returned by Run before a successful Build.
	ErrNotBuilt = errors.New("cannot run if build has not passed")

	// ErrBuildFailed is the sentinel error wrapped by BuildError.
	ErrBuildFailed = errors.New("image build failed")

	// ErrRunFailed is the sentinel error wrapped by RunError.
	ErrRunFailed = errors.New("container run failed")
)

type (
	// BuildError is returned when the engine reports a build failure.
	BuildError struct {
		Err error
	}

	// RunError is returned when the run command cannot be started or exits
	// with a non-zero status.
	RunError struct {
		Command  string
		ExitCode types.ExitCode
		Err      error
	}
)

// Error implements the error interface.
func (e *BuildError) Error() string {
	return fmt.Sprintf("docker build failed [%v]", e.Err)
}

// Unwrap returns ErrBuildFailed and the engine error.
func (e *BuildError) Unwrap() []error {
	return []error{ErrBuildFailed, e.Err}
}

// Error implements the error interface.
func (e *RunError) Error() string {
	return fmt.Sprintf("docker run failed with exit code %d: %v", e.ExitCode, e.Err)
}

// Unwrap returns ErrRunFailed and the underlying cause.
func (e *RunError) Unwrap() []error {
	return []error{ErrRunFailed, e.Err}
}

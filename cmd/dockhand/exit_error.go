// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/invowk/dockhand/internal/extension"
	"github.com/invowk/dockhand/internal/generator"
	"github.com/invowk/dockhand/internal/issue"
	"github.com/invowk/dockhand/pkg/types"
)

// ExitError carries the process exit code of a failed build or run out of
// RunE, plus the issue page that explains the failure (0 for none).
type ExitError struct {
	Code  types.ExitCode
	Issue issue.Id
	Err   error
}

// newExitError returns an ExitError whose issue is derived from err.
func newExitError(code types.ExitCode, err error) *ExitError {
	return &ExitError{Code: code, Issue: issueFor(err), Err: err}
}

// Error returns the wrapped message, or the exit status when there is none.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// issueFor maps a failure to the issue page explaining it. An ExitError
// with an explicit issue wins over classification of its cause.
func issueFor(err error) issue.Id {
	var (
		exitErr    *ExitError
		missing    *extension.DependencyMissingError
		cycle      *extension.CyclicDependencyError
		precondErr *extension.PreconditionError
		buildErr   *generator.BuildError
	)
	switch {
	case err == nil:
		return 0
	case errors.As(err, &exitErr) && exitErr.Issue != 0:
		return exitErr.Issue
	case errors.As(err, &missing):
		return issue.DockerUnavailableId
	case errors.As(err, &cycle):
		return issue.DependencyCycleId
	case errors.As(err, &precondErr):
		return issue.PreconditionFailedId
	case errors.Is(err, generator.ErrNoImageID):
		return issue.ImageIdNotFoundId
	case errors.As(err, &buildErr):
		return issue.ImageBuildFailedId
	case errors.Is(err, fs.ErrPermission):
		return issue.PermissionDeniedId
	default:
		return 0
	}
}

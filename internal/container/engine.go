// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	// EngineTypeAPI selects the Docker Engine API backend.
	EngineTypeAPI EngineType = "api"
	// EngineTypeCLI selects the docker CLI backend.
	EngineTypeCLI EngineType = "cli"

	// DefaultBinary is the program the run command starts with.
	DefaultBinary = "docker"
)

var (
	// ErrEngineUnavailable is the sentinel error wrapped by EngineUnavailableError.
	ErrEngineUnavailable = errors.New("container engine unavailable")

	// ErrInvalidEngineType is the sentinel error wrapped by InvalidEngineTypeError.
	ErrInvalidEngineType = errors.New("invalid engine type")
)

type (
	// Engine defines the container operations dockhand needs.
	Engine interface {
		// Name returns the engine name used in messages.
		Name() string
		// Binary returns the program the run command line starts with.
		Binary() string
		// Ping checks the daemon answers.
		Ping(ctx context.Context) error
		// Networks lists the names of the networks the daemon knows.
		Networks(ctx context.Context) ([]string, error)
		// Build builds an image from a Dockerfile inside ContextDir, passing
		// every line of build output to opts.Output.
		Build(ctx context.Context, opts BuildOptions) error
	}

	// BuildOptions contains options for building an image.
	BuildOptions struct {
		// ContextDir is the build context directory.
		ContextDir string
		// Dockerfile is the path to the Dockerfile relative to ContextDir.
		Dockerfile string
		// Tag is the image tag (optional).
		Tag string
		// NoCache disables the build cache.
		NoCache bool
		// Pull always attempts to pull a newer base image.
		Pull bool
		// Output receives each line of build output, without the trailing newline.
		Output func(line string)
	}

	// EngineType identifies the engine backend.
	EngineType string

	// InvalidEngineTypeError is returned when an EngineType is not a known backend.
	InvalidEngineTypeError struct {
		Value EngineType
	}

	// EngineUnavailableError is returned when the daemon cannot be reached.
	EngineUnavailableError struct {
		Engine string
		Err    error
	}
)

// Validate returns an error if the EngineType is not a known backend.
func (t EngineType) Validate() error {
	switch t {
	case EngineTypeAPI, EngineTypeCLI:
		return nil
	default:
		return &InvalidEngineTypeError{Value: t}
	}
}

// String returns the string representation of the EngineType.
func (t EngineType) String() string { return string(t) }

// Error implements the error interface.
func (e *InvalidEngineTypeError) Error() string {
	return fmt.Sprintf("invalid engine type %q (valid: %s, %s)", e.Value, EngineTypeAPI, EngineTypeCLI)
}

// Unwrap returns ErrInvalidEngineType for errors.Is() compatibility.
func (e *InvalidEngineTypeError) Unwrap() error { return ErrInvalidEngineType }

// Error implements the error interface.
func (e *EngineUnavailableError) Error() string {
	return fmt.Sprintf("container engine '%s' is not available: %v", e.Engine, e.Err)
}

// Unwrap returns ErrEngineUnavailable and the underlying cause.
func (e *EngineUnavailableError) Unwrap() []error {
	return []error{ErrEngineUnavailable, e.Err}
}

// NewEngine creates the engine for the given backend. The API backend reads
// DOCKER_HOST and friends from the environment. binary overrides the program
// the run command starts with (and the CLI backend builds with); "" keeps docker.
func NewEngine(t EngineType, binary string) (Engine, error) {
	if binary == "" {
		binary = DefaultBinary
	}
	switch t {
	case EngineTypeAPI, "":
		engine, err := NewAPIEngine()
		if err != nil {
			return nil, err
		}
		engine.binary = binary
		return engine, nil
	case EngineTypeCLI:
		return NewCLIEngine(WithBinary(binary)), nil
	default:
		return nil, &InvalidEngineTypeError{Value: t}
	}
}

// splitLines passes every non-empty line of s, right-trimmed, to out.
func splitLines(s string, out func(string)) {
	if out == nil {
		return
	}
	for line := range strings.SplitSeq(s, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if line != "" {
			out(line)
		}
	}
}

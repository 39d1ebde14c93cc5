// SPDX-License-Identifier: MPL-2.0

package container

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
)

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// This allows injection of mock implementations for testing.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// CLIEngineOption configures a CLIEngine.
	CLIEngineOption func(*CLIEngine)

	// CLIEngine implements Engine by running the docker binary.
	CLIEngine struct {
		name            string // Engine name for error messages
		binary          string
		execCommand     ExecCommandFunc
		cmdEnvOverrides map[string]string // Per-command env var overrides (e.g., DOCKER_BUILDKIT)
	}
)

// WithName sets the engine name used in error messages.
func WithName(name string) CLIEngineOption {
	return func(e *CLIEngine) {
		e.name = name
	}
}

// WithBinary sets the program invoked for every engine command.
func WithBinary(binary string) CLIEngineOption {
	return func(e *CLIEngine) {
		e.binary = binary
	}
}

// WithExecCommand sets a custom exec command function for testing.
func WithExecCommand(fn ExecCommandFunc) CLIEngineOption {
	return func(e *CLIEngine) {
		e.execCommand = fn
	}
}

// WithCmdEnvOverride adds an environment variable override applied to every
// exec.Cmd created by this engine.
func WithCmdEnvOverride(key, value string) CLIEngineOption {
	return func(e *CLIEngine) {
		if e.cmdEnvOverrides == nil {
			e.cmdEnvOverrides = make(map[string]string)
		}
		e.cmdEnvOverrides[key] = value
	}
}

// NewCLIEngine creates a docker CLI engine that builds with the classic builder.
func NewCLIEngine(opts ...CLIEngineOption) *CLIEngine {
	e := &CLIEngine{
		name:        DefaultBinary,
		binary:      DefaultBinary,
		execCommand: exec.CommandContext,
	}
	WithCmdEnvOverride("DOCKER_BUILDKIT", "0")(e)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the engine name.
func (e *CLIEngine) Name() string { return e.name }

// Binary returns the docker binary.
func (e *CLIEngine) Binary() string { return e.binary }

// Ping checks the daemon answers "docker version".
func (e *CLIEngine) Ping(ctx context.Context) error {
	if _, err := e.RunCommandWithOutput(ctx, "version", "--format", "{{.Server.Version}}"); err != nil {
		return &EngineUnavailableError{Engine: e.name, Err: err}
	}
	return nil
}

// Networks lists network names with "docker network ls".
func (e *CLIEngine) Networks(ctx context.Context) ([]string, error) {
	out, err := e.RunCommandWithOutput(ctx, "network", "ls", "--format", "{{.Name}}")
	if err != nil {
		return nil, &EngineUnavailableError{Engine: e.name, Err: err}
	}
	var names []string
	splitLines(out, func(line string) { names = append(names, line) })
	slices.Sort(names)
	return names, nil
}

// BuildArgs constructs arguments for the build command.
//
// Generated command: <binary> build [options] <context>
func (e *CLIEngine) BuildArgs(opts BuildOptions) []string {
	args := []string{"build", "--rm"}

	if opts.Dockerfile != "" {
		args = append(args, "-f", opts.Dockerfile)
	}
	if opts.Tag != "" {
		args = append(args, "-t", opts.Tag)
	}
	if opts.NoCache {
		args = append(args, "--no-cache")
	}
	if opts.Pull {
		args = append(args, "--pull")
	}

	return append(args, opts.ContextDir)
}

// Build runs the build command, streaming stdout and stderr line by line to opts.Output.
func (e *CLIEngine) Build(ctx context.Context, opts BuildOptions) error {
	if opts.Dockerfile != "" && !filepath.IsAbs(opts.Dockerfile) && opts.ContextDir != "" {
		opts.Dockerfile = filepath.Join(opts.ContextDir, opts.Dockerfile)
	}
	cmd := e.CreateCommand(ctx, e.BuildArgs(opts)...)

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	done := make(chan struct{})
	go func() {
		defer close(done)
		sc := bufio.NewScanner(pr)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			splitLines(sc.Text(), opts.Output)
		}
		// Drain anything past an over-long line so the writer never blocks.
		_, _ = io.Copy(io.Discard, pr)
	}()

	err := cmd.Run()
	_ = pw.Close()
	<-done

	if err != nil {
		return buildContainerError(e.name, opts, err)
	}
	return nil
}

// RunCommandWithOutput executes a command with stdout captured to a buffer.
func (e *CLIEngine) RunCommandWithOutput(ctx context.Context, args ...string) (string, error) {
	cmd := e.CreateCommand(ctx, args...)
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(errOut.String()); msg != "" {
			return "", fmt.Errorf("command %s %v failed: %w: %s", e.binary, args, err, msg)
		}
		return "", fmt.Errorf("command %s %v failed: %w", e.binary, args, err)
	}

	return out.String(), nil
}

// CreateCommand creates an exec.Cmd for the given arguments with the engine's
// environment overrides applied.
func (e *CLIEngine) CreateCommand(ctx context.Context, args ...string) *exec.Cmd {
	cmd := e.execCommand(ctx, e.binary, args...)
	e.customizeCmd(cmd)
	return cmd
}

// customizeCmd applies env overrides to a command.
func (e *CLIEngine) customizeCmd(cmd *exec.Cmd) {
	if len(e.cmdEnvOverrides) == 0 {
		return
	}
	// exec.Cmd.Env being nil means "inherit everything", but once set to
	// a non-nil slice, only the listed vars are passed to the child.
	if cmd.Env == nil {
		cmd.Env = os.Environ()
	}
	keys := make([]string, 0, len(e.cmdEnvOverrides))
	for k := range e.cmdEnvOverrides {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		cmd.Env = append(cmd.Env, k+"="+e.cmdEnvOverrides[k])
	}
}

// SPDX-License-Identifier: MPL-2.0

package generator

import (
	"context"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/charmbracelet/log"
	"github.com/creack/pty"
	"golang.org/x/term"

	"github.com/invowk/dockhand/internal/console"
	"github.com/invowk/dockhand/internal/container"
	"github.com/invowk/dockhand/internal/dockerfile"
	"github.com/invowk/dockhand/internal/extension"
	"github.com/invowk/dockhand/internal/termbridge"
	"github.com/invowk/dockhand/pkg/types"
)

// DefaultSessionGrace is how long an interactive child may outlive its PTY
// session before it is killed.
const DefaultSessionGrace = 500 * time.Millisecond

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// This allows injection of mock implementations for testing.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// Option configures a Generator.
	Option func(*Generator)

	// BuildResult is the outcome of the single build a Generator performs.
	BuildResult struct {
		ExitCode types.ExitCode
		ImageID  string
		Err      error
	}

	// Generator builds and runs one image for a resolved set of extensions.
	Generator struct {
		engine     container.Engine
		extensions []extension.Extension
		opts       extension.Options
		baseImage  string
		dockerfile string

		result    *BuildResult
		imageName string

		logger  *log.Logger
		printer *console.Printer
		stdin   *os.File
		stdout  *os.File
		tempDir string

		isTerminal  func(fd int) bool
		execCommand ExecCommandFunc
		startPty    func(cmd *exec.Cmd) (*os.File, error)
		getenv      func(key string) string
		bridgeOpts  []termbridge.Option

		sessionGrace time.Duration
	}
)

// WithLogger sets the logger used for warnings and debug output.
func WithLogger(logger *log.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithOutput sets the sink for banners, the build log, and the output of
// non-interactive and interactive runs.
func WithOutput(w io.Writer) Option {
	return func(g *Generator) {
		g.printer = console.New(w)
	}
}

// WithStdio sets the host terminal: stdin is checked for a terminal and put in
// raw mode for interactive runs, stdout is the terminal whose size is forwarded.
func WithStdio(stdin, stdout *os.File) Option {
	return func(g *Generator) {
		g.stdin = stdin
		g.stdout = stdout
	}
}

// WithTerminalCheck replaces term.IsTerminal.
func WithTerminalCheck(isTerminal func(fd int) bool) Option {
	return func(g *Generator) {
		g.isTerminal = isTerminal
	}
}

// WithExecCommand sets a custom exec command function for testing.
func WithExecCommand(fn ExecCommandFunc) Option {
	return func(g *Generator) {
		g.execCommand = fn
	}
}

// WithPtyStart replaces pty.Start.
func WithPtyStart(start func(cmd *exec.Cmd) (*os.File, error)) Option {
	return func(g *Generator) {
		g.startPty = start
	}
}

// WithGetenv sets the environment lookup used when splitting the run command.
func WithGetenv(getenv func(key string) string) Option {
	return func(g *Generator) {
		g.getenv = getenv
	}
}

// WithTempDir sets the parent directory of build contexts.
func WithTempDir(dir string) Option {
	return func(g *Generator) {
		g.tempDir = dir
	}
}

// WithBridgeOptions passes options to the terminal bridge of interactive runs.
func WithBridgeOptions(opts ...termbridge.Option) Option {
	return func(g *Generator) {
		g.bridgeOpts = append(g.bridgeOpts, opts...)
	}
}

// WithSessionGrace sets how long an interactive child may keep running after
// its PTY session ended.
func WithSessionGrace(d time.Duration) Option {
	return func(g *Generator) {
		g.sessionGrace = d
	}
}

// New creates a Generator for the ordered extensions exts. The base image is
// injected into a copy of opts under extension.BaseImageKey, and the
// Dockerfile is synthesized immediately.
func New(engine container.Engine, exts []extension.Extension, opts extension.Options, baseImage string, options ...Option) *Generator {
	g := &Generator{
		engine:      engine,
		extensions:  exts,
		opts:        opts.Clone(),
		baseImage:   baseImage,
		logger:      log.New(io.Discard),
		printer:     console.New(os.Stdout),
		stdin:       os.Stdin,
		stdout:      os.Stdout,
		isTerminal:  term.IsTerminal,
		execCommand: exec.CommandContext,
		startPty:    pty.Start,
		getenv:      os.Getenv,

		sessionGrace: DefaultSessionGrace,
	}
	for _, opt := range options {
		opt(g)
	}
	g.opts[extension.BaseImageKey] = baseImage
	g.dockerfile = dockerfile.Generate(exts, g.opts, baseImage)
	return g
}

// Dockerfile returns the synthesized build document.
func (g *Generator) Dockerfile() string { return g.dockerfile }

// Extensions returns the ordered extensions.
func (g *Generator) Extensions() []extension.Extension { return g.extensions }

// Options returns the options the extensions see, including the base image.
func (g *Generator) Options() extension.Options { return g.opts }

// Built reports whether a build succeeded.
func (g *Generator) Built() bool {
	return g.result != nil && g.result.ExitCode.IsSuccess()
}

// ImageID returns the id of the built image, "" before a successful build.
func (g *Generator) ImageID() string {
	if g.result == nil {
		return ""
	}
	return g.result.ImageID
}

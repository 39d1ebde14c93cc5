// SPDX-License-Identifier: MPL-2.0

package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"slices"
	"strings"
	"time"

	"github.com/muesli/cancelreader"
	"golang.org/x/term"
	"mvdan.cc/sh/v3/shell"

	"github.com/invowk/dockhand/internal/extension"
	"github.com/invowk/dockhand/internal/termbridge"
	"github.com/invowk/dockhand/pkg/types"
)

const (
	// ModeInteractive attaches the container to a PTY.
	ModeInteractive Mode = "interactive"
	// ModeNonInteractive runs the container in the foreground without a terminal.
	ModeNonInteractive Mode = "non-interactive"
	// ModeDryRun prints the run command without executing it.
	ModeDryRun Mode = "dry-run"
)

type (
	// Mode selects how the run command is executed.
	Mode string

	// RunOptions controls the container run.
	RunOptions struct {
		// Command is appended to the run command line verbatim.
		Command string
		// Persistent keeps the container after it exits (no --rm).
		Persistent bool
		// Mode is the requested mode; it is resolved with ResolveMode.
		Mode Mode
	}
)

// Modes lists the valid modes, default first.
func Modes() []Mode {
	return []Mode{ModeInteractive, ModeNonInteractive, ModeDryRun}
}

// String returns the string representation of the Mode.
func (m Mode) String() string { return string(m) }

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool { return slices.Contains(Modes(), m) }

// ResolveMode turns a requested mode into the effective one. Unknown values
// become non-interactive, and interactive without a terminal on stdin is
// downgraded to non-interactive with a warning.
func (g *Generator) ResolveMode(requested Mode) Mode {
	if !requested.Valid() {
		return ModeNonInteractive
	}
	if requested == ModeInteractive && !g.stdinIsTerminal() {
		g.logger.Warn("No tty detected for stdin forcing non-interactive")
		return ModeNonInteractive
	}
	return requested
}

func (g *Generator) stdinIsTerminal() bool {
	return g.stdin != nil && g.isTerminal(int(g.stdin.Fd()))
}

// Command assembles the run command line:
// "<binary> run [--rm] [-it] <extension args...> <image> <command>".
func (g *Generator) Command(opts RunOptions) string {
	return g.command(opts, g.ResolveMode(opts.Mode))
}

func (g *Generator) command(opts RunOptions, mode Mode) string {
	var sb strings.Builder
	sb.WriteString(g.engine.Binary())
	sb.WriteString(" run")
	if !opts.Persistent {
		sb.WriteString(" --rm")
	}
	if mode == ModeInteractive {
		sb.WriteString(" -it")
	}
	for _, e := range g.extensions {
		sb.WriteString(e.RunArguments(g.opts))
	}

	image := g.imageName
	if image == "" {
		image = g.ImageID()
	}
	sb.WriteString(" ")
	sb.WriteString(image)
	sb.WriteString(" ")
	sb.WriteString(opts.Command)
	return sb.String()
}

// Run executes the built image. It fails with ErrNotBuilt before a successful
// Build, runs every extension precondition in order, then dispatches on the
// resolved mode. The exit code mirrors the container's.
func (g *Generator) Run(ctx context.Context, opts RunOptions) (types.ExitCode, error) {
	if !g.Built() {
		g.printer.Error(ErrNotBuilt.Error())
		return types.ExitFailure, ErrNotBuilt
	}

	for _, e := range g.extensions {
		if err := e.Precondition(ctx, g.opts); err != nil {
			precondErr := &extension.PreconditionError{Extension: e.Name(), Err: err}
			g.printer.Error(precondErr.Error())
			return types.ExitFailure, precondErr
		}
	}

	mode := g.ResolveMode(opts.Mode)
	cmdline := g.command(opts, mode)

	g.printer.Banner("Docker Run")
	g.printer.Println(cmdline + "\n")
	if mode == ModeDryRun {
		return types.ExitSuccess, nil
	}

	argv, err := shell.Fields(cmdline, g.getenv)
	if err != nil || len(argv) == 0 {
		if err == nil {
			err = errors.New("empty command")
		}
		return types.ExitFailure, &RunError{Command: cmdline, ExitCode: types.ExitFailure, Err: fmt.Errorf("split command: %w", err)}
	}

	if mode == ModeNonInteractive {
		return g.runForeground(ctx, cmdline, argv)
	}
	return g.runInteractive(ctx, cmdline, argv)
}

func (g *Generator) runForeground(ctx context.Context, cmdline string, argv []string) (types.ExitCode, error) {
	cmd := g.execCommand(ctx, argv[0], argv[1:]...)
	if g.stdin != nil {
		cmd.Stdin = g.stdin
	}
	cmd.Stdout = g.printer.Writer()
	cmd.Stderr = g.printer.Writer()

	if err := cmd.Run(); err != nil {
		code := types.ExitCodeFromError(err)
		runErr := &RunError{Command: cmdline, ExitCode: code, Err: err}
		g.printer.Error("Non-interactive Docker run failed: " + err.Error())
		return code, runErr
	}
	return types.ExitSuccess, nil
}

// runInteractive starts the command on a PTY and bridges it to the host
// terminal until the PTY closes, then reaps the child.
func (g *Generator) runInteractive(ctx context.Context, cmdline string, argv []string) (types.ExitCode, error) {
	cmd := g.execCommand(ctx, argv[0], argv[1:]...)
	ptmx, err := g.startPty(cmd)
	if err != nil {
		return types.ExitFailure, &RunError{Command: cmdline, ExitCode: types.ExitFailure, Err: fmt.Errorf("start command on PTY: %w", err)}
	}
	defer func() { _ = ptmx.Close() }()

	bridge := termbridge.Acquire(ptmx, g.stdout, g.bridgeOpts...)
	defer bridge.Release()

	if g.stdinIsTerminal() {
		fd := int(g.stdin.Fd())
		if oldState, rawErr := term.MakeRaw(fd); rawErr != nil {
			g.logger.Debug("cannot put stdin in raw mode", "err", rawErr)
		} else {
			defer func() { _ = term.Restore(fd, oldState) }()
		}
	}

	if g.stdin != nil {
		stop := g.forwardInput(ptmx)
		defer stop()
	}
	// Returns with EIO once every handle on the PTY's replica side is closed.
	_, _ = io.Copy(g.printer.Writer(), ptmx)

	if err := g.reap(cmd); err != nil {
		code := types.ExitCodeFromError(err)
		return code, &RunError{Command: cmdline, ExitCode: code, Err: err}
	}
	return types.ExitSuccess, nil
}

// forwardInput copies host input into the PTY until the returned stop
// function is called. Stdin that cannot be polled (a regular file) is copied
// without cancellation, so its goroutine ends on EOF or on the first write
// after the PTY is closed.
func (g *Generator) forwardInput(ptmx *os.File) (stop func()) {
	in, err := cancelreader.NewReader(g.stdin)
	if err != nil {
		g.logger.Debug("stdin is not cancelable", "err", err)
		go func() { _, _ = io.Copy(ptmx, g.stdin) }()
		return func() {}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = io.Copy(ptmx, in)
	}()
	return func() {
		if in.Cancel() {
			<-done
		}
		_ = in.Close()
	}
}

// reap waits for cmd after its PTY session ended. A child still alive after
// sessionGrace is killed.
func (g *Generator) reap(cmd *exec.Cmd) error {
	waited := make(chan error, 1)
	go func() { waited <- cmd.Wait() }()

	select {
	case err := <-waited:
		return err
	case <-time.After(g.sessionGrace):
	}
	g.logger.Warn("container command outlived its terminal session, killing it", "pid", cmd.Process.Pid)
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		g.logger.Debug("kill failed", "err", err)
	}
	return <-waited
}

// SPDX-License-Identifier: MPL-2.0

package extensions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"os/user"
	"slices"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/invowk/dockhand/internal/extension"
)

type (
	fakeLister struct {
		names []string
		err   error
	}

	// fakeFileInfo is the only thing the extensions need from Stat: success.
	fakeFileInfo struct{ name string }

	// execCall records one external command started by an extension.
	execCall struct {
		Name string
		Args []string
	}
)

func (f *fakeLister) Networks(context.Context) ([]string, error) {
	return slices.Clone(f.names), f.err
}

func (f fakeFileInfo) Name() string       { return f.name }
func (f fakeFileInfo) Size() int64        { return 0 }
func (f fakeFileInfo) Mode() fs.FileMode  { return 0o644 }
func (f fakeFileInfo) ModTime() time.Time { return time.Time{} }
func (f fakeFileInfo) IsDir() bool        { return false }
func (f fakeFileInfo) Sys() any           { return nil }

// statOnly returns a Stat function that succeeds for exactly the given paths.
func statOnly(paths ...string) func(string) (os.FileInfo, error) {
	return func(name string) (os.FileInfo, error) {
		if slices.Contains(paths, name) {
			return fakeFileInfo{name: name}, nil
		}
		return nil, fs.ErrNotExist
	}
}

func testDeps() Deps {
	return Deps{
		Engine:  &fakeLister{names: []string{"bridge", "host", "none"}},
		Stat:    statOnly(),
		HomeDir: func() (string, error) { return "/home/tester", nil },
		CurrentUser: func() (*user.User, error) {
			return &user.User{Uid: "1000", Gid: "1000", Username: "tester", HomeDir: "/home/tester"}, nil
		},
		LookupGroup: func(string) (*user.Group, error) { return &user.Group{Gid: "29", Name: "audio"}, nil },
		Getenv:      func(string) string { return "" },
	}
}

// parseFlags registers ext's flags, parses args and returns the resulting options.
func parseFlags(t *testing.T, ext extension.Extension, args ...string) extension.Options {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if err := ext.RegisterOptions(fs, extension.Options{}); err != nil {
		t.Fatalf("RegisterOptions() error = %v", err)
	}
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse(%v) error = %v", args, err)
	}
	return extension.OptionsFromFlags(fs)
}

// helperExec returns an ExecCommandFunc that records calls and runs
// TestHelperProcess with the configured stdout, exit code and stdin capture file.
func helperExec(calls *[]execCall, stdout string, exitCode int, stdinFile string) ExecCommandFunc {
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		*calls = append(*calls, execCall{Name: name, Args: args})
		cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
		//nolint:gosec // TestHelperProcess is a test-only pattern
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		cmd.Env = []string{
			"GO_WANT_HELPER_PROCESS=1",
			fmt.Sprintf("GO_HELPER_EXIT_CODE=%d", exitCode),
			"GO_HELPER_STDOUT=" + stdout,
			"GO_HELPER_STDIN_FILE=" + stdinFile,
		}
		return cmd
	}
}

// TestHelperProcess is invoked by helperExec to stand in for external commands.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	if path := os.Getenv("GO_HELPER_STDIN_FILE"); path != "" && slices.Contains(os.Args, "nmerge") {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			os.Exit(3)
		}
		if err := os.WriteFile(path, data, 0o600); err != nil {
			os.Exit(3)
		}
	}
	fmt.Fprint(os.Stdout, os.Getenv("GO_HELPER_STDOUT"))

	var code int
	if _, err := fmt.Sscanf(os.Getenv("GO_HELPER_EXIT_CODE"), "%d", &code); err != nil {
		code = 0
	}
	os.Exit(code)
}

var errLookup = errors.New("lookup failed")

// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/user"
	"strings"
	"testing"

	"github.com/invowk/dockhand/internal/config"
	"github.com/invowk/dockhand/internal/container"
	"github.com/invowk/dockhand/internal/extension"
	"github.com/invowk/dockhand/internal/extensions"
	"github.com/invowk/dockhand/internal/generator"
	"github.com/invowk/dockhand/internal/issue"
	"github.com/invowk/dockhand/internal/testutil"
	"github.com/invowk/dockhand/pkg/types"
)

type staticConfig struct {
	cfg *config.Config
	err error
	got config.LoadOptions
}

func (s *staticConfig) Load(_ context.Context, opts config.LoadOptions) (*config.Config, string, error) {
	s.got = opts
	if s.err != nil {
		return nil, "", s.err
	}
	return s.cfg, "", nil
}

// newTestApp wires an App around engine with deterministic host services.
// Output goes to the returned buffers.
func newTestApp(t *testing.T, engine *testutil.FakeEngine, cfg *config.Config) (*App, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	var stdout, stderr bytes.Buffer
	app := NewApp(Dependencies{
		Config: &staticConfig{cfg: cfg},
		NewEngine: func(config.Backend, string) (container.Engine, error) {
			return engine, nil
		},
		Extensions: extensions.Deps{
			Stat:    func(string) (os.FileInfo, error) { return nil, os.ErrNotExist },
			HomeDir: func() (string, error) { return "/home/tester", nil },
			CurrentUser: func() (*user.User, error) {
				return &user.User{Uid: "1000", Gid: "1000", Username: "tester", HomeDir: "/home/tester"}, nil
			},
			Getenv: func(string) string { return "" },
		},
		Generator: []generator.Option{
			generator.WithTempDir(t.TempDir()),
			generator.WithTerminalCheck(func(int) bool { return false }),
			generator.WithGetenv(func(string) string { return "" }),
		},
		Stdout: &stdout,
		Stderr: &stderr,
	})
	return app, &stdout, &stderr
}

func execute(t *testing.T, app *App, args ...string) error {
	t.Helper()
	root, err := NewRootCommand(t.Context(), app, args)
	if err != nil {
		return err
	}
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.ExecuteContext(t.Context())
}

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	t.Run("ldflags version takes priority", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "v1.2.3"
		Commit = "abc1234"
		BuildDate = "2025-06-15T10:00:00Z"

		got := getVersionString()
		want := "v1.2.3 (commit: abc1234, built: 2025-06-15T10:00:00Z)"
		if got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})

	t.Run("fallback to dev", func(t *testing.T) {
		origVersion := Version
		t.Cleanup(func() { Version = origVersion })

		Version = "dev"
		if got, want := getVersionString(), "dev (built from source)"; got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})
}

func TestPrescan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want rootFlags
	}{
		{"empty", nil, rootFlags{}},
		{
			name: "global flags among extension flags",
			args: []string{"--x11", "--network", "host", "--config", "/tmp/c.cue", "--engine=cli", "-v", "ubuntu"},
			want: rootFlags{configPath: "/tmp/c.cue", engine: "cli", verbose: true},
		},
		{
			name: "flags after the image belong to the command",
			args: []string{"ubuntu", "--config", "/tmp/c.cue"},
			want: rootFlags{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := prescan(tt.args)
			if got.configPath != tt.want.configPath || got.engine != tt.want.engine || got.verbose != tt.want.verbose {
				t.Errorf("prescan(%q) = %+v, want %+v", tt.args, got, tt.want)
			}
		})
	}
}

func TestNewRootCommand_RegistersExtensionFlags(t *testing.T) {
	t.Parallel()

	engine := &testutil.FakeEngine{NetworkNames: []string{"bridge", "host"}}
	app, _, _ := newTestApp(t, engine, nil)

	root, err := NewRootCommand(t.Context(), app, nil)
	if err != nil {
		t.Fatalf("NewRootCommand() error = %v", err)
	}
	for _, name := range []string{"mode", "nocache", "pull", "tag", "persistent", "exclude-extension",
		"list-extensions", "config", "engine", "verbose",
		"container-name", "devices", "env", "env-file", "git", "home", "network", "pulse", "user", "user-override-name", "x11"} {
		if root.Flags().Lookup(name) == nil {
			t.Errorf("flag --%s not registered", name)
		}
	}
	if usage := root.Flags().Lookup("network").Usage; !strings.Contains(usage, "bridge") {
		t.Errorf("--network usage %q does not list the daemon's networks", usage)
	}
}

func TestNewRootCommand_EngineUnreachable(t *testing.T) {
	t.Parallel()

	engine := &testutil.FakeEngine{PingErr: container.ErrEngineUnavailable}
	app, _, stderr := newTestApp(t, engine, nil)

	_, err := NewRootCommand(t.Context(), app, nil)
	if !errors.Is(err, extension.ErrDependencyMissing) {
		t.Fatalf("NewRootCommand() error = %v, want ErrDependencyMissing", err)
	}
	if code := app.reportError(err); code != types.ExitFailure {
		t.Errorf("reportError() = %d, want %d", code, types.ExitFailure)
	}
	if !strings.Contains(stderr.String(), "Cannot reach the docker daemon") {
		t.Errorf("stderr does not render the issue:\n%s", stderr.String())
	}
}

func TestNewRootCommand_ConfigError(t *testing.T) {
	t.Parallel()

	boom := errors.New("bad config")
	app, _, stderr := newTestApp(t, &testutil.FakeEngine{}, nil)
	app.Config = &staticConfig{err: boom}

	_, err := NewRootCommand(t.Context(), app, []string{"--config", "/etc/dockhand.cue"})
	if !errors.Is(err, boom) {
		t.Errorf("NewRootCommand() error = %v, want %v", err, boom)
	}
	if id := issueFor(err); id != issue.ConfigLoadFailedId {
		t.Errorf("issueFor() = %d, want ConfigLoadFailedId", id)
	}
	app.reportError(err)
	if !strings.Contains(stderr.String(), "Failed to load the configuration file") {
		t.Errorf("stderr does not render the issue page:\n%s", stderr.String())
	}
	if got := app.Config.(*staticConfig).got.ConfigFilePath; got != "/etc/dockhand.cue" {
		t.Errorf("config loaded from %q, want the --config value", got)
	}
}

func TestNewRootCommand_InvalidEngineFlag(t *testing.T) {
	t.Parallel()

	app, _, _ := newTestApp(t, &testutil.FakeEngine{}, nil)
	if _, err := NewRootCommand(t.Context(), app, []string{"--engine", "podman"}); !errors.Is(err, config.ErrInvalidBackend) {
		t.Errorf("NewRootCommand() error = %v, want ErrInvalidBackend", err)
	}
}

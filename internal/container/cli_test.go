// SPDX-License-Identifier: MPL-2.0

package container

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/invowk/dockhand/internal/issue"
)

func TestCLIEngine_BuildArgs(t *testing.T) {
	t.Parallel()

	engine := NewCLIEngine()

	tests := []struct {
		name string
		opts BuildOptions
		want []string
	}{
		{
			name: "context only",
			opts: BuildOptions{ContextDir: "/tmp/ctx"},
			want: []string{"build", "--rm", "/tmp/ctx"},
		},
		{
			name: "all options",
			opts: BuildOptions{ContextDir: "/tmp/ctx", Dockerfile: "/tmp/ctx/Dockerfile", Tag: "img:1", NoCache: true, Pull: true},
			want: []string{"build", "--rm", "-f", "/tmp/ctx/Dockerfile", "-t", "img:1", "--no-cache", "--pull", "/tmp/ctx"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := engine.BuildArgs(tt.opts); !slices.Equal(got, tt.want) {
				t.Errorf("BuildArgs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCLIEngine_Build_StreamsOutput(t *testing.T) {
	t.Parallel()

	stdout := "Step 1/2 : FROM ubuntu\n ---> 0123456789ab\n\nSuccessfully built 1a2b3c4d5e6f\n"
	engine, recorder := newMockCLIEngine(t, stdout, "warning: classic builder\n", 0)

	var lines []string
	err := engine.Build(t.Context(), BuildOptions{
		ContextDir: "/tmp/ctx",
		Dockerfile: "Dockerfile",
		Tag:        "dockhand:test",
		Output:     func(line string) { lines = append(lines, line) },
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	recorder.AssertInvocationCount(t, 1)
	recorder.AssertCommandName(t, "docker")
	if !recorder.HasArgPair("-f", "/tmp/ctx/Dockerfile") {
		t.Errorf("expected -f /tmp/ctx/Dockerfile, got %v", recorder.LastArgs())
	}
	if !recorder.HasArgPair("-t", "dockhand:test") {
		t.Errorf("expected -t dockhand:test, got %v", recorder.LastArgs())
	}
	recorder.AssertArgsNotContain(t, "--no-cache")
	if !recorder.LastEnvContains("DOCKER_BUILDKIT=0") {
		t.Errorf("build command env = %v, want DOCKER_BUILDKIT=0", recorder.LastInvocation().Cmd.Env)
	}

	for _, want := range []string{"Step 1/2 : FROM ubuntu", "---> 0123456789ab", "Successfully built 1a2b3c4d5e6f", "warning: classic builder"} {
		if !slices.Contains(lines, strings.TrimSpace(want)) && !slices.Contains(lines, " "+want) {
			t.Errorf("Output lines %q missing %q", lines, want)
		}
	}
	if slices.Contains(lines, "") {
		t.Errorf("Output received an empty line: %q", lines)
	}
}

func TestCLIEngine_Build_Failure(t *testing.T) {
	t.Parallel()

	engine, _ := newMockCLIEngine(t, "", "unknown instruction: RUNN\n", 1)
	err := engine.Build(t.Context(), BuildOptions{ContextDir: "/tmp/ctx", Tag: "broken"})
	if err == nil {
		t.Fatal("Build() succeeded, want error")
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("Build() error = %T, want *issue.ActionableError", err)
	}
	if ae.Resource != "broken" || len(ae.Suggestions) == 0 {
		t.Errorf("ActionableError = %+v", ae)
	}
}

func TestCLIEngine_Ping(t *testing.T) {
	t.Parallel()

	engine, recorder := newMockCLIEngine(t, "28.5.2\n", "", 0)
	if err := engine.Ping(t.Context()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	recorder.AssertArgsContain(t, "version --format {{.Server.Version}}")

	engine, _ = newMockCLIEngine(t, "", "Cannot connect to the Docker daemon", 1)
	err := engine.Ping(t.Context())
	if !errors.Is(err, ErrEngineUnavailable) {
		t.Fatalf("Ping() error = %v, want ErrEngineUnavailable", err)
	}
	if !strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
		t.Errorf("Ping() error = %v, want stderr in the message", err)
	}
}

func TestCLIEngine_Networks(t *testing.T) {
	t.Parallel()

	engine, recorder := newMockCLIEngine(t, "host\nbridge\nnone\n", "", 0)
	got, err := engine.Networks(t.Context())
	if err != nil {
		t.Fatalf("Networks() error = %v", err)
	}
	if want := []string{"bridge", "host", "none"}; !slices.Equal(got, want) {
		t.Errorf("Networks() = %v, want %v", got, want)
	}
	recorder.AssertArgsContain(t, "network ls --format {{.Name}}")

	engine, _ = newMockCLIEngine(t, "", "", 1)
	if _, err := engine.Networks(t.Context()); !errors.Is(err, ErrEngineUnavailable) {
		t.Errorf("Networks() error = %v, want ErrEngineUnavailable", err)
	}
}

func TestCLIEngine_Options(t *testing.T) {
	t.Parallel()

	engine := NewCLIEngine(WithName("remote-docker"), WithBinary("/opt/docker"), WithCmdEnvOverride("DOCKER_HOST", "tcp://10.0.0.1:2375"))
	if engine.Name() != "remote-docker" || engine.Binary() != "/opt/docker" {
		t.Errorf("Name/Binary = %q/%q", engine.Name(), engine.Binary())
	}

	cmd := engine.CreateCommand(t.Context(), "info")
	if cmd.Path != "/opt/docker" {
		t.Errorf("cmd.Path = %q, want /opt/docker", cmd.Path)
	}
	for _, kv := range []string{"DOCKER_BUILDKIT=0", "DOCKER_HOST=tcp://10.0.0.1:2375"} {
		if !slices.Contains(cmd.Env, kv) {
			t.Errorf("cmd.Env missing %q", kv)
		}
	}
}

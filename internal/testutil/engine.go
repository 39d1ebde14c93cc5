// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"context"
	"slices"
	"sync"

	"github.com/invowk/dockhand/internal/container"
)

// FakeEngine is a container.Engine that replays a scripted build log.
// Each Build snapshots the build context so tests can inspect it after the
// caller removed the directory.
type FakeEngine struct {
	// BinaryName is returned by Binary; "docker" when empty.
	BinaryName string
	// Lines are passed to BuildOptions.Output in order.
	Lines []string
	// Err is returned by Build after the lines were replayed.
	Err error
	// PingErr is returned by Ping and Networks.
	PingErr error
	// NetworkNames is returned by Networks.
	NetworkNames []string

	mu       sync.Mutex
	builds   []container.BuildOptions
	contexts []map[string]string
}

var _ container.Engine = (*FakeEngine)(nil)

// SuccessLog returns a classic-builder log that ends in "Successfully built id".
func SuccessLog(id string) []string {
	return []string{
		"Step 1/2 : FROM ubuntu:24.04",
		" ---> 0123456789ab",
		"Step 2/2 : RUN true",
		" ---> Running in 5d7a3c1f8e2b",
		"Successfully built " + id,
	}
}

// Name returns "fake".
func (f *FakeEngine) Name() string { return "fake" }

// Binary returns BinaryName or "docker".
func (f *FakeEngine) Binary() string {
	if f.BinaryName == "" {
		return container.DefaultBinary
	}
	return f.BinaryName
}

// Ping returns PingErr.
func (f *FakeEngine) Ping(context.Context) error { return f.PingErr }

// Networks returns NetworkNames, or PingErr when set.
func (f *FakeEngine) Networks(context.Context) ([]string, error) {
	if f.PingErr != nil {
		return nil, f.PingErr
	}
	return slices.Clone(f.NetworkNames), nil
}

// Build records opts, snapshots the build context and replays Lines.
func (f *FakeEngine) Build(_ context.Context, opts container.BuildOptions) error {
	files, err := ReadTree(opts.ContextDir)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.builds = append(f.builds, opts)
	f.contexts = append(f.contexts, files)
	f.mu.Unlock()

	if opts.Output != nil {
		for _, line := range f.Lines {
			opts.Output(line)
		}
	}
	return f.Err
}

// Builds returns the number of Build calls.
func (f *FakeEngine) Builds() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.builds)
}

// LastBuild returns the options and build context files of the last Build call.
func (f *FakeEngine) LastBuild() (container.BuildOptions, map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.builds) == 0 {
		return container.BuildOptions{}, nil
	}
	return f.builds[len(f.builds)-1], f.contexts[len(f.contexts)-1]
}

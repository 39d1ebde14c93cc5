// SPDX-License-Identifier: MPL-2.0

package extensions

import (
	"context"
	"io"
	"os"
	"os/exec"
	"os/user"

	"github.com/charmbracelet/log"

	"github.com/invowk/dockhand/internal/extension"
)

type (
	// NetworkLister lists the networks known to the container engine.
	NetworkLister interface {
		Networks(ctx context.Context) ([]string, error)
	}

	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// This allows injection of mock implementations for testing.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// Deps carries the host services the built-in extensions use.
	// Zero fields are replaced with the real implementations.
	Deps struct {
		Engine      NetworkLister
		Logger      *log.Logger
		Exec        ExecCommandFunc
		Stat        func(name string) (os.FileInfo, error)
		HomeDir     func() (string, error)
		CurrentUser func() (*user.User, error)
		LookupGroup func(name string) (*user.Group, error)
		Getenv      func(key string) string
		TempDir     func() string
	}
)

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = log.New(io.Discard)
	}
	if d.Exec == nil {
		d.Exec = exec.CommandContext
	}
	if d.Stat == nil {
		d.Stat = os.Stat
	}
	if d.HomeDir == nil {
		d.HomeDir = os.UserHomeDir
	}
	if d.CurrentUser == nil {
		d.CurrentUser = user.Current
	}
	if d.LookupGroup == nil {
		d.LookupGroup = user.LookupGroup
	}
	if d.Getenv == nil {
		d.Getenv = os.Getenv
	}
	if d.TempDir == nil {
		d.TempDir = os.TempDir
	}
	return d
}

func (d Deps) exists(path string) bool {
	_, err := d.Stat(path)
	return err == nil
}

// RegisterBuiltins adds every built-in extension to reg.
func RegisterBuiltins(reg *extension.Registry, deps Deps) error {
	deps = deps.withDefaults()
	network := &networkChoices{}

	builtins := map[string]extension.Factory{
		ContainerNameName: func() extension.Extension { return NewContainerName() },
		DevicesName:       func() extension.Extension { return NewDevices(deps) },
		EnvName:           func() extension.Extension { return NewEnv() },
		GitName:           func() extension.Extension { return NewGit(deps) },
		HomeName:          func() extension.Extension { return NewHome(deps) },
		NetworkName:       func() extension.Extension { return newNetwork(deps, network) },
		PulseName:         func() extension.Extension { return NewPulse(deps) },
		UserName:          func() extension.Extension { return NewUser(deps) },
		X11Name:           func() extension.Extension { return NewX11(deps) },
	}
	for name, f := range builtins {
		if err := reg.Register(name, f); err != nil {
			return err
		}
	}
	return nil
}

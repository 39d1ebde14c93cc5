// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/invowk/dockhand/internal/config"
	"github.com/invowk/dockhand/internal/container"
	"github.com/invowk/dockhand/internal/extensions"
	"github.com/invowk/dockhand/internal/generator"
)

type (
	// ConfigProvider loads configuration using explicit options.
	// This abstraction enables testing with custom config sources or mock implementations.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, string, error)
	}

	// EngineFactory creates the container engine for a backend.
	EngineFactory func(backend config.Backend, binary string) (container.Engine, error)

	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer.
	App struct {
		Config    ConfigProvider
		NewEngine EngineFactory
		// Extensions carries the host services of the built-in extensions.
		// Engine and Logger are filled in by the root command.
		Extensions extensions.Deps
		// Generator options are applied after the defaults the CLI sets.
		Generator []generator.Option

		stdin    *os.File
		terminal *os.File
		stdout   io.Writer
		stderr   io.Writer
		// style is the glamour style for rendered issues.
		style    string
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config     ConfigProvider
		NewEngine  EngineFactory
		Extensions extensions.Deps
		Generator  []generator.Option
		// Stdin is the host input for container runs.
		Stdin *os.File
		// Terminal is the host terminal whose size interactive runs follow.
		Terminal *os.File
		Stdout   io.Writer
		Stderr   io.Writer
	}
)

// NewApp creates an App, filling unset dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:     deps.Config,
		NewEngine:  deps.NewEngine,
		Extensions: deps.Extensions,
		Generator:  deps.Generator,
		stdin:      deps.Stdin,
		terminal:   deps.Terminal,
		stdout:     deps.Stdout,
		stderr:     deps.Stderr,
		style:      config.DefaultStyle,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.NewEngine == nil {
		app.NewEngine = newEngine
	}
	if app.stdin == nil {
		app.stdin = os.Stdin
	}
	if app.terminal == nil {
		app.terminal = os.Stdout
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

func newEngine(backend config.Backend, binary string) (container.Engine, error) {
	return container.NewEngine(container.EngineType(backend), binary)
}

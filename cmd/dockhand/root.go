// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/invowk/dockhand/internal/config"
	"github.com/invowk/dockhand/internal/container"
	"github.com/invowk/dockhand/internal/console"
	"github.com/invowk/dockhand/internal/extension"
	"github.com/invowk/dockhand/internal/extensions"
	"github.com/invowk/dockhand/internal/generator"
	"github.com/invowk/dockhand/internal/issue"
	"github.com/invowk/dockhand/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

type (
	// rootFlags holds the core flags; extension flags live only in the FlagSet.
	rootFlags struct {
		configPath     string
		engine         string
		verbose        bool
		noCache        bool
		pull           bool
		tag            string
		persistent     bool
		mode           string
		exclude        []string
		listExtensions bool
	}

	// rootState is what the RunE handler needs from command construction.
	rootState struct {
		flags    *rootFlags
		cfg      *config.Config
		logger   *log.Logger
		engine   container.Engine
		registry *extension.Registry
	}
)

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the root command for os.Args and runs it. This is called by
// main.main().
func Execute() {
	ctx := context.Background()
	app := NewApp(Dependencies{})

	rootCmd, err := NewRootCommand(ctx, app, os.Args[1:])
	if err != nil {
		os.Exit(int(app.reportError(err)))
	}

	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(int(types.ExitFailure))
	}
}

// NewRootCommand loads the configuration, creates the engine and registers
// every extension's flags. args are only pre-scanned here; cobra parses them
// when the command executes. A DependencyMissingError means the engine could
// not be reached while extensions declared their flags.
func NewRootCommand(ctx context.Context, app *App, args []string) (*cobra.Command, error) {
	pre := prescan(args)

	cfg, cfgPath, err := app.Config.Load(ctx, config.LoadOptions{ConfigFilePath: pre.configPath, Getenv: app.Extensions.Getenv})
	if err != nil {
		return nil, &ExitError{Code: types.ExitFailure, Issue: issue.ConfigLoadFailedId, Err: err}
	}

	if cfg.UI.Style != "" {
		app.style = cfg.UI.Style
	}

	logger := log.NewWithOptions(app.stderr, log.Options{Prefix: config.AppName})
	if pre.verbose || cfg.UI.Verbose {
		logger.SetLevel(log.DebugLevel)
	}
	if cfgPath != "" {
		logger.Debug("loaded configuration", "path", cfgPath)
	}

	backend := cfg.Engine.Backend
	if pre.engine != "" {
		backend = config.Backend(pre.engine)
		if err := backend.Validate(); err != nil {
			return nil, err
		}
	}
	engine, err := app.NewEngine(backend, cfg.Engine.Binary)
	if err != nil {
		return nil, err
	}

	registry := extension.NewRegistry()
	deps := app.Extensions
	deps.Engine = engine
	deps.Logger = logger
	if err := extensions.RegisterBuiltins(registry, deps); err != nil {
		return nil, err
	}

	st := &rootState{
		flags:    &rootFlags{},
		cfg:      cfg,
		logger:   logger,
		engine:   engine,
		registry: registry,
	}

	rootCmd := &cobra.Command{
		Use:   "dockhand [flags] IMAGE [COMMAND...]",
		Short: "Build and run a container image composed from extensions",
		Long: console.BannerStyle.Render("dockhand") + console.SubtitleStyle.Render(" - compose container images from extensions") + `

dockhand layers the Dockerfile snippets and run arguments of every active
extension on top of IMAGE, builds the result and runs COMMAND in it.

` + console.SubtitleStyle.Render("Examples:") + `
  dockhand --x11 --user ubuntu:24.04 xeyes     Run an X11 app as yourself
  dockhand --mode dry-run --home debian bash   Print the run command only
  dockhand --list-extensions                   Show available extensions`,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := app.run(cmd, args, st)
			// fang prints the error itself; only the help page is ours.
			app.renderIssue(issueFor(err))
			return err
		},
	}

	fs := rootCmd.Flags()
	fs.SetInterspersed(false)
	addGlobalFlags(fs, st.flags)
	fs.BoolVar(&st.flags.noCache, "nocache", false, "do not use the build cache")
	fs.BoolVar(&st.flags.pull, "pull", false, "always pull a newer base image")
	fs.StringVar(&st.flags.tag, "tag", "", "tag the built image as `NAME`")
	fs.BoolVar(&st.flags.persistent, "persistent", false, "keep the container after it exits")
	fs.StringVar(&st.flags.mode, "mode", string(generator.ModeInteractive),
		"run mode: interactive, non-interactive or dry-run")
	fs.StringArrayVar(&st.flags.exclude, "exclude-extension", nil, "never activate the extension `NAME` (repeatable)")
	fs.BoolVar(&st.flags.listExtensions, "list-extensions", false, "list the available extensions and exit")

	if err := registry.RegisterOptions(fs, configuredOptions(cfg)); err != nil {
		return nil, err
	}
	return rootCmd, nil
}

// addGlobalFlags declares the flags that are also pre-scanned.
func addGlobalFlags(fs *pflag.FlagSet, f *rootFlags) {
	fs.StringVar(&f.configPath, "config", "", "config `FILE` (CUE, YAML or TOML; default $XDG_CONFIG_HOME/dockhand/config.cue)")
	fs.StringVar(&f.engine, "engine", "", "engine backend: api or cli (default from config, else api)")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "enable verbose output")
}

// prescan extracts the global flags from args, ignoring everything else.
func prescan(args []string) rootFlags {
	var f rootFlags
	fs := pflag.NewFlagSet("prescan", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SetInterspersed(false)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Usage = func() {}
	addGlobalFlags(fs, &f)
	// Unknown flags and -h are handled by the real parse.
	_ = fs.Parse(args)
	return f
}

// configuredOptions returns the configured defaults keyed like options.
func configuredOptions(cfg *config.Config) extension.Options {
	opts := make(extension.Options, len(cfg.Defaults))
	for k, v := range cfg.Defaults {
		opts[extension.OptionKey(k)] = v
	}
	return opts
}

// reportError writes err and its issue page, if any, and returns the exit
// code. It handles failures that happen before fang takes over.
func (a *App) reportError(err error) types.ExitCode {
	a.renderIssue(issueFor(err))
	fmt.Fprintln(a.stderr, console.ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, false))

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return types.ExitFailure
}

// renderIssue writes the help page of id to stderr. Unknown ids and render
// failures print nothing.
func (a *App) renderIssue(id issue.Id) {
	entry := issue.Get(id)
	if entry == nil {
		return
	}
	if md, err := entry.Render(a.style); err == nil {
		fmt.Fprint(a.stderr, md)
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

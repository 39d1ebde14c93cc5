// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/invowk/dockhand/internal/console"
	"github.com/invowk/dockhand/internal/extension"
	"github.com/invowk/dockhand/internal/generator"
	"github.com/invowk/dockhand/internal/issue"
	"github.com/invowk/dockhand/pkg/types"
)

const (
	imageKey   = "image"
	commandKey = "command"
)

// ErrMissingImage is returned when neither the command line nor the config names a base image.
var ErrMissingImage = errors.New("an IMAGE argument is required")

// run is the RunE handler of the root command.
func (a *App) run(cmd *cobra.Command, args []string, st *rootState) error {
	ctx := cmd.Context()
	fs := cmd.Flags()
	printer := console.New(a.stdout)

	unknown, err := st.cfg.ApplyDefaults(fs, imageKey, commandKey)
	if err != nil {
		return &ExitError{Code: types.ExitFailure, Issue: issue.ConfigLoadFailedId, Err: err}
	}
	for _, name := range unknown {
		st.logger.Warn("configured default matches no flag", "name", name)
	}

	opts := extension.OptionsFromFlags(fs)

	if st.flags.listExtensions {
		active := extension.Names(st.registry.Activate(opts, st.flags.exclude))
		var items []string
		for _, name := range st.registry.Names() {
			state := "inactive"
			if slices.Contains(active, name) {
				state = "active"
			}
			items = append(items, fmt.Sprintf("%s (%s)", name, state))
		}
		printer.List("Available Extensions", items)
		return nil
	}

	image, command := st.cfg.DefaultString(imageKey), st.cfg.DefaultString(commandKey)
	if len(args) > 0 {
		image = args[0]
		if len(args) > 1 {
			command = strings.Join(args[1:], " ")
		}
	}
	if image == "" {
		return newExitError(types.ExitFailure, ErrMissingImage)
	}

	ordered, err := extension.Resolve(st.registry.Activate(opts, st.flags.exclude))
	if err != nil {
		ec := issue.NewErrorContext().WithOperation("order extensions")
		var cycle *extension.CyclicDependencyError
		if errors.As(err, &cycle) {
			ec.WithExtensions(cycle.Nodes()...).
				WithSuggestion("Exclude one of the extensions on the cycle with --exclude-extension")
		}
		return newExitError(types.ExitFailure, ec.Wrap(err).BuildError())
	}
	for _, verr := range extension.ValidateEnvironment(ordered, opts) {
		st.logger.Warn(verr.Error())
	}
	printer.List("Active Extensions", extension.Names(ordered))

	genOpts := append([]generator.Option{
		generator.WithLogger(st.logger),
		generator.WithOutput(a.stdout),
		generator.WithStdio(a.stdin, a.terminal),
	}, a.Generator...)
	g := generator.New(st.engine, ordered, opts, image, genOpts...)

	res := g.Build(ctx, generator.BuildOptions{
		NoCache: st.flags.noCache,
		Pull:    st.flags.pull,
		Tag:     st.flags.tag,
	})
	if !res.ExitCode.IsSuccess() {
		return newExitError(res.ExitCode, res.Err)
	}

	code, err := g.Run(ctx, generator.RunOptions{
		Command:    command,
		Persistent: st.flags.persistent,
		Mode:       generator.Mode(st.flags.mode),
	})
	var precondErr *extension.PreconditionError
	if errors.As(err, &precondErr) {
		err = issue.NewErrorContext().
			WithOperation("prepare the host").
			WithExtensions(precondErr.Extension).
			WithSuggestion("Leave it out with --exclude-extension " + precondErr.Extension).
			Wrap(err).
			BuildError()
	}
	if !code.IsSuccess() {
		return newExitError(code, err)
	}
	return nil
}

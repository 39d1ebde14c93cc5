// SPDX-License-Identifier: MPL-2.0

package extensions

import (
	"strings"

	"github.com/spf13/pflag"
	"mvdan.cc/sh/v3/syntax"

	"github.com/invowk/dockhand/internal/extension"
)

const (
	// EnvName is the name of the environment variable extension.
	EnvName = "env"

	envFileKey = "env_file"
)

// Env passes environment variables and env files to the container.
type Env struct {
	extension.Base
}

// NewEnv creates the environment extension.
func NewEnv() *Env {
	return &Env{Base: extension.NewBase(EnvName)}
}

// RegisterOptions declares --env/-e and --env-file, both repeatable.
func (e *Env) RegisterOptions(fs *pflag.FlagSet, defaults extension.Options) error {
	fs.StringArrayP(EnvName, "e", defaults.Strings(EnvName), "set environment variables (`NAME[=VALUE]`)")
	fs.StringArray(extension.FlagName(envFileKey), defaults.Strings(envFileKey), "set environment variables from a `FILE`")
	return nil
}

// ShouldActivate activates on either --env or --env-file.
func (e *Env) ShouldActivate(opts extension.Options) bool {
	return opts.Truthy(EnvName) || opts.Truthy(envFileKey)
}

// RunArguments passes every variable with -e and every file with --env-file,
// shell-quoted.
func (e *Env) RunArguments(opts extension.Options) string {
	args := []string{""}
	for _, env := range opts.Strings(EnvName) {
		args = append(args, "-e "+quote(env))
	}
	for _, file := range opts.Strings(envFileKey) {
		args = append(args, "--env-file "+quote(file))
	}
	return strings.Join(args, " ")
}

// quote shell-quotes s, falling back to single quotes for input the shell
// printer refuses (e.g. NUL bytes, which no shell word can carry anyway).
func quote(s string) string {
	q, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
	}
	return q
}

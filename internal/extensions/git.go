// SPDX-License-Identifier: MPL-2.0

package extensions

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/invowk/dockhand/internal/extension"
)

const (
	// GitName is the name of the git configuration extension.
	GitName = "git"

	systemGitConfig = "/etc/gitconfig"
)

// Git shares the host's git configuration with the container.
type Git struct {
	extension.Base
	deps Deps
}

// NewGit creates the git extension. It follows the user extension so the
// per-user config lands in the home of the created user.
func NewGit(deps Deps) *Git {
	return &Git{Base: extension.NewBase(GitName, UserName), deps: deps.withDefaults()}
}

// RegisterOptions declares --git.
func (g *Git) RegisterOptions(fs *pflag.FlagSet, defaults extension.Options) error {
	fs.Bool(GitName, defaults.Bool(GitName), "use the global git settings from the host")
	return nil
}

// RunArguments mounts the system and user git configs that exist on the host.
func (g *Git) RunArguments(opts extension.Options) string {
	var sb strings.Builder
	if g.deps.exists(systemGitConfig) {
		fmt.Fprintf(&sb, " -v %s:%s:ro ", systemGitConfig, systemGitConfig)
	}

	home, err := g.deps.HomeDir()
	if err != nil {
		g.deps.Logger.Warn("cannot determine home directory, not mounting user git config", "err", err)
		return sb.String()
	}
	userConfig := filepath.Join(home, ".gitconfig")
	if !g.deps.exists(userConfig) {
		return sb.String()
	}
	target := "/root/.gitconfig"
	if opts.Truthy(UserName) {
		target = userConfig
	}
	fmt.Fprintf(&sb, " -v %s:%s:ro ", userConfig, target)
	return sb.String()
}

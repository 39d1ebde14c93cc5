// SPDX-License-Identifier: MPL-2.0

package extensions

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/invowk/dockhand/internal/extension"
)

// HomeName is the name of the home directory extension.
const HomeName = "home"

// Home mounts the invoking user's home directory at the same path.
type Home struct {
	extension.Base
	deps Deps
}

// NewHome creates the home extension.
func NewHome(deps Deps) *Home {
	return &Home{Base: extension.NewBase(HomeName), deps: deps.withDefaults()}
}

// RegisterOptions declares --home.
func (h *Home) RegisterOptions(fs *pflag.FlagSet, defaults extension.Options) error {
	fs.Bool(HomeName, defaults.Bool(HomeName), "mount the user's home directory")
	return nil
}

// RunArguments bind-mounts the home directory.
func (h *Home) RunArguments(extension.Options) string {
	home, err := h.deps.HomeDir()
	if err != nil {
		h.deps.Logger.Warn("cannot determine home directory, not mounting it", "err", err)
		return ""
	}
	return fmt.Sprintf(" -v %s:%s ", home, home)
}

// SPDX-License-Identifier: MPL-2.0

package extensions

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/invowk/dockhand/internal/extension"
)

// ContainerNameName is the name of the container name extension.
const ContainerNameName = "container_name"

// ContainerName gives the container a human readable name.
type ContainerName struct {
	extension.Base
}

// NewContainerName creates the container name extension.
func NewContainerName() *ContainerName {
	return &ContainerName{Base: extension.NewBase(ContainerNameName)}
}

// RegisterOptions declares --container-name.
func (c *ContainerName) RegisterOptions(fs *pflag.FlagSet, defaults extension.Options) error {
	fs.String(extension.FlagName(ContainerNameName), defaults.String(ContainerNameName),
		"human readable `NAME` for the container")
	return nil
}

// RunArguments passes --name.
func (c *ContainerName) RunArguments(opts extension.Options) string {
	name := opts.String(ContainerNameName)
	if name == "" {
		return ""
	}
	return fmt.Sprintf(" --name %s ", name)
}

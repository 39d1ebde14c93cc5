// SPDX-License-Identifier: MPL-2.0

package extensions

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/invowk/dockhand/internal/extension"
)

// DevicesName is the name of the device passthrough extension.
const DevicesName = "devices"

// Devices mounts host devices into the container.
type Devices struct {
	extension.Base
	deps Deps
}

// NewDevices creates the devices extension.
func NewDevices(deps Deps) *Devices {
	return &Devices{Base: extension.NewBase(DevicesName), deps: deps.withDefaults()}
}

// RegisterOptions declares --devices.
func (d *Devices) RegisterOptions(fs *pflag.FlagSet, defaults extension.Options) error {
	fs.StringSlice(DevicesName, defaults.Strings(DevicesName), "mount devices into the container")
	return nil
}

// RunArguments passes --device for every device that exists on the host.
// Missing devices are skipped with a warning.
func (d *Devices) RunArguments(opts extension.Options) string {
	var sb strings.Builder
	for _, dev := range opts.Strings(DevicesName) {
		if !d.deps.exists(dev) {
			d.deps.Logger.Warn("device does not exist, skipping", "device", dev)
			continue
		}
		fmt.Fprintf(&sb, " --device %s ", dev)
	}
	return sb.String()
}

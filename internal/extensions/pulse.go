// SPDX-License-Identifier: MPL-2.0

package extensions

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/invowk/dockhand/internal/extension"
)

// PulseName is the name of the PulseAudio extension.
const PulseName = "pulse"

const pulseSnippet = `RUN mkdir -p /etc/pulse && printf '%%s\n' \
    'default-server = unix:/run/user/%[1]d/pulse/native' \
    'autospawn = no' \
    'daemon-binary = /bin/true' \
    'enable-shm = false' \
    > /etc/pulse/client.conf
`

// Pulse forwards the host's PulseAudio server and sound devices.
type Pulse struct {
	extension.Base
	deps Deps
	uid  int
}

// NewPulse creates the pulse extension for the invoking user.
func NewPulse(deps Deps) *Pulse {
	return &Pulse{Base: extension.NewBase(PulseName), deps: deps.withDefaults(), uid: os.Getuid()}
}

// RegisterOptions declares --pulse.
func (p *Pulse) RegisterOptions(fs *pflag.FlagSet, defaults extension.Options) error {
	fs.Bool(PulseName, defaults.Bool(PulseName), "mount pulse audio devices")
	return nil
}

// Snippet writes a client.conf pointing at the forwarded socket.
func (p *Pulse) Snippet(extension.Options) string {
	return fmt.Sprintf(pulseSnippet, p.uid)
}

// RunArguments mounts the pulse socket and /dev/snd and joins the audio group.
func (p *Pulse) RunArguments(extension.Options) string {
	args := fmt.Sprintf(" -v /run/user/%[1]d/pulse:/run/user/%[1]d/pulse --device /dev/snd "+
		" -e PULSE_SERVER=unix:/run/user/%[1]d/pulse/native"+
		" -v /run/user/%[1]d/pulse/native:/root/.pulse/native", p.uid)

	group, err := p.deps.LookupGroup("audio")
	if err != nil {
		p.deps.Logger.Warn("audio group not found, not adding it to the container", "err", err)
		return args + " "
	}
	if _, err := strconv.Atoi(group.Gid); err != nil {
		return args + " "
	}
	return args + " --group-add " + group.Gid + " "
}

// ValidateEnvironment checks the pulse socket directory exists.
func (p *Pulse) ValidateEnvironment(extension.Options) error {
	dir := fmt.Sprintf("/run/user/%d/pulse", p.uid)
	if !p.deps.exists(dir) {
		return fmt.Errorf("pulse socket directory %s not found", dir)
	}
	return nil
}

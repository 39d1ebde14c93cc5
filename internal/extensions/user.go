// SPDX-License-Identifier: MPL-2.0

package extensions

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/invowk/dockhand/internal/extension"
)

const (
	// UserName is the name of the user extension. It is the designated last
	// extension: its snippet changes the active user, so anything installing
	// as root must come before it.
	UserName = extension.DesignatedLast

	userOverrideKey = "user_override_name"

	// UserScript is the build-context file the user extension requests.
	UserScript = "dockhand-user.sh"
)

const userScript = `#!/bin/sh
# Recreate the invoking host user inside the image.
set -e
name="$1"
uid="$2"
gid="$3"
home="$4"

if ! getent group "$gid" >/dev/null 2>&1; then
    groupadd -g "$gid" "$name"
fi

existing="$(getent passwd "$uid" | cut -d: -f1 || true)"
if [ -n "$existing" ] && [ "$existing" != "$name" ]; then
    userdel "$existing"
fi

if ! getent passwd "$name" >/dev/null 2>&1; then
    mkdir -p "$(dirname "$home")"
    useradd --no-log-init -d "$home" -u "$uid" -g "$gid" -s /bin/sh "$name"
fi
mkdir -p "$home"
chown "$uid:$gid" "$home"
`

// User mirrors the invoking host user inside the container.
type User struct {
	extension.Base
	deps Deps
}

// NewUser creates the user extension.
func NewUser(deps Deps) *User {
	return &User{Base: extension.NewBase(UserName), deps: deps.withDefaults()}
}

// RegisterOptions declares --user and --user-override-name.
func (u *User) RegisterOptions(fs *pflag.FlagSet, defaults extension.Options) error {
	fs.Bool(UserName, defaults.Bool(UserName), "mimic the current user inside the container")
	fs.String(extension.FlagName(userOverrideKey), defaults.String(userOverrideKey),
		"override the current user's `NAME` inside the container")
	return nil
}

// RequestedFiles asks for the user setup script in the build context.
func (u *User) RequestedFiles(extension.Options) map[string]string {
	return map[string]string{UserScript: userScript}
}

// Snippet copies and runs the setup script, then switches to the new user.
func (u *User) Snippet(opts extension.Options) string {
	usr, err := u.deps.CurrentUser()
	if err != nil {
		u.deps.Logger.Warn("cannot determine current user, not creating it", "err", err)
		return ""
	}
	name := usr.Username
	if override := opts.String(userOverrideKey); override != "" {
		name = override
	}
	home := usr.HomeDir
	if home == "" {
		home = "/home/" + name
	}
	return fmt.Sprintf(`COPY %[1]s /tmp/%[1]s
RUN sh /tmp/%[1]s %[2]s %[3]s %[4]s %[5]s && rm /tmp/%[1]s
USER %[2]s
WORKDIR %[5]s
`, UserScript, quote(name), usr.Uid, usr.Gid, quote(home))
}

// ValidateEnvironment checks the current user can be looked up.
func (u *User) ValidateEnvironment(extension.Options) error {
	if _, err := u.deps.CurrentUser(); err != nil {
		return fmt.Errorf("look up current user: %w", err)
	}
	return nil
}

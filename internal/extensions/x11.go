// SPDX-License-Identifier: MPL-2.0

package extensions

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/invowk/dockhand/internal/extension"
)

// X11Name is the name of the X11 forwarding extension.
const X11Name = "x11"

const x11Socket = "/tmp/.X11-unix"

var errNoDisplay = errors.New("DISPLAY is not set")

// X11 shares the host X server with the container using a dedicated
// Xauthority file whose cookies accept any hostname.
type X11 struct {
	extension.Base
	deps      Deps
	xauthFile string
}

// NewX11 creates the x11 extension with a fresh Xauthority file name.
func NewX11(deps Deps) *X11 {
	deps = deps.withDefaults()
	return &X11{
		Base:      extension.NewBase(X11Name),
		deps:      deps,
		xauthFile: filepath.Join(deps.TempDir(), ".dockhand-"+uuid.NewString()+".xauth"),
	}
}

// XauthFile returns the path of the Xauthority file the precondition writes.
func (x *X11) XauthFile() string { return x.xauthFile }

// RegisterOptions declares --x11.
func (x *X11) RegisterOptions(fs *pflag.FlagSet, defaults extension.Options) error {
	fs.Bool(X11Name, defaults.Bool(X11Name), "enable xserver passthrough")
	return nil
}

// Precondition writes the Xauthority file from the host's cookies for DISPLAY.
func (x *X11) Precondition(ctx context.Context, _ extension.Options) error {
	display := x.deps.Getenv("DISPLAY")
	if display == "" {
		return errNoDisplay
	}
	if err := os.WriteFile(x.xauthFile, nil, 0o600); err != nil {
		return fmt.Errorf("create xauth file: %w", err)
	}

	list := x.deps.Exec(ctx, "xauth", "nlist", display)
	cookies, err := list.Output()
	if err != nil {
		return fmt.Errorf("xauth nlist %s: %w", display, err)
	}

	merge := x.deps.Exec(ctx, "xauth", "-f", x.xauthFile, "nmerge", "-")
	merge.Stdin = bytes.NewReader(wildcardFamily(cookies))
	if out, err := merge.CombinedOutput(); err != nil {
		return fmt.Errorf("xauth nmerge: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// RunArguments shares DISPLAY, the X socket and the cookie file.
func (x *X11) RunArguments(extension.Options) string {
	return fmt.Sprintf(" -e DISPLAY -e TERM -e QT_X11_NO_MITSHM=1"+
		" -e XAUTHORITY=%[1]s -v %[1]s:%[1]s -v %[2]s:%[2]s ", x.xauthFile, x11Socket)
}

// ValidateEnvironment checks there is a display to forward.
func (x *X11) ValidateEnvironment(extension.Options) error {
	if x.deps.Getenv("DISPLAY") == "" {
		return errNoDisplay
	}
	return nil
}

// wildcardFamily rewrites the family field of every nlist line to ffff
// (FamilyWild) so the cookie matches the container's hostname.
func wildcardFamily(nlist []byte) []byte {
	var out bytes.Buffer
	sc := bufio.NewScanner(bytes.NewReader(nlist))
	for sc.Scan() {
		line := sc.Text()
		if len(line) < 4 {
			continue
		}
		out.WriteString("ffff")
		out.WriteString(line[4:])
		out.WriteByte('\n')
	}
	return out.Bytes()
}

// SPDX-License-Identifier: MPL-2.0

package extensions

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/spf13/pflag"

	"github.com/invowk/dockhand/internal/extension"
)

// NetworkName is the name of the network selection extension.
const NetworkName = "network"

type (
	// Network attaches the container to a named engine network.
	Network struct {
		extension.Base
		lister  NetworkLister
		choices *networkChoices
	}

	// networkChoices is shared by every instance a registry creates, so the
	// names listed at flag registration are available when validating.
	networkChoices struct {
		mu    sync.Mutex
		names []string
	}
)

// NewNetwork creates the network extension backed by lister.
func NewNetwork(lister NetworkLister) *Network {
	return newNetwork(Deps{Engine: lister}, &networkChoices{})
}

func newNetwork(deps Deps, choices *networkChoices) *Network {
	return &Network{Base: extension.NewBase(NetworkName), lister: deps.Engine, choices: choices}
}

// RegisterOptions declares --network with the engine's networks as choices.
// An unreachable engine is reported as a missing dependency.
func (n *Network) RegisterOptions(fs *pflag.FlagSet, defaults extension.Options) error {
	if n.lister == nil {
		return &extension.DependencyMissingError{Dependency: "container engine"}
	}
	names, err := n.lister.Networks(context.Background())
	if err != nil {
		return &extension.DependencyMissingError{Dependency: "container engine", Err: err}
	}
	slices.Sort(names)
	n.choices.set(names)

	fs.String(NetworkName, defaults.String(NetworkName),
		fmt.Sprintf("what `NETWORK` configuration to use (one of: %s)", strings.Join(names, ", ")))
	return nil
}

// RunArguments passes --network.
func (n *Network) RunArguments(opts extension.Options) string {
	return fmt.Sprintf(" --network %s ", opts.String(NetworkName))
}

// ValidateEnvironment reports a network the engine did not list.
func (n *Network) ValidateEnvironment(opts extension.Options) error {
	names, listed := n.choices.get()
	if !listed {
		return nil
	}
	want := opts.String(NetworkName)
	if !slices.Contains(names, want) {
		return fmt.Errorf("network %q not found (available: %s)", want, strings.Join(names, ", "))
	}
	return nil
}

func (c *networkChoices) set(names []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names = slices.Clone(names)
}

func (c *networkChoices) get() ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.names, c.names != nil
}

// SPDX-License-Identifier: MPL-2.0

package extension

import (
	"errors"
	"slices"
	"strings"

	"github.com/invowk/dockhand/internal/dag"
)

// DesignatedLast is the extension that, together with everything that wants to
// follow it, is always ordered after every other extension.
const DesignatedLast = "user"

// Resolve orders the active extensions with DesignatedLast forced last.
func Resolve(active []Extension) ([]Extension, error) {
	return ResolveWithLast(active, DesignatedLast)
}

// ResolveWithLast orders the active extensions so that every extension follows
// its active desired predecessors. The extension named last, and every
// extension that transitively desires to follow it, form a separate partition
// that is sorted independently and appended after the rest. Extensions without
// a relative constraint keep name order.
func ResolveWithLast(active []Extension, last string) ([]Extension, error) {
	sorted := slices.Clone(active)
	slices.SortStableFunc(sorted, func(a, b Extension) int { return strings.Compare(a.Name(), b.Name()) })

	byName := make(map[string]Extension, len(sorted))
	for _, e := range sorted {
		byName[e.Name()] = e
	}

	// Restrict every predecessor set to active names.
	deps := make(map[string][]string, len(sorted))
	for _, e := range sorted {
		for _, p := range e.DesiredPredecessors() {
			if _, ok := byName[p]; ok && !slices.Contains(deps[e.Name()], p) {
				deps[e.Name()] = append(deps[e.Name()], p)
			}
		}
	}

	tail := lastPartition(sorted, deps, last)

	head := dag.New()
	trailer := dag.New()
	for _, e := range sorted {
		g := head
		if tail[e.Name()] {
			g = trailer
		}
		g.AddNode(e.Name())
	}
	for _, e := range sorted {
		name := e.Name()
		for _, p := range deps[name] {
			switch {
			case tail[name] && tail[p]:
				trailer.AddEdge(p, name)
			case !tail[name] && !tail[p]:
				head.AddEdge(p, name)
			}
			// A trailing extension following a leading one is already satisfied
			// by concatenation.
		}
	}

	ordered := make([]Extension, 0, len(sorted))
	for _, g := range []*dag.Graph{head, trailer} {
		names, err := g.TopologicalSort()
		if err != nil {
			var cycleErr *dag.CycleError
			if errors.As(err, &cycleErr) {
				return nil, &CyclicDependencyError{Cycle: cycleErr}
			}
			return nil, err
		}
		for _, n := range names {
			ordered = append(ordered, byName[n])
		}
	}
	return ordered, nil
}

// lastPartition returns the set made of last and every extension that
// transitively desires a member of the set.
func lastPartition(sorted []Extension, deps map[string][]string, last string) map[string]bool {
	tail := make(map[string]bool)
	for _, e := range sorted {
		if e.Name() == last {
			tail[last] = true
		}
	}
	for changed := true; changed; {
		changed = false
		for _, e := range sorted {
			name := e.Name()
			if tail[name] {
				continue
			}
			for _, p := range deps[name] {
				if tail[p] {
					tail[name] = true
					changed = true
					break
				}
			}
		}
	}
	return tail
}

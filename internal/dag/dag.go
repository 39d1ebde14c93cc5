// SPDX-License-Identifier: MPL-2.0

// Package dag provides directed graph ordering for advisory dependencies.
// It is used by the extension resolver to order active extensions so that
// every extension follows the predecessors it asked for.
package dag

import (
	"fmt"
	"slices"
	"strings"
)

type (
	// CycleError indicates that the graph contains a cycle, preventing topological ordering.
	CycleError struct {
		// Cycle contains exactly the pending nodes that lie on a cycle, sorted by name.
		// Nodes that are only blocked by a cycle are not listed.
		Cycle []string
	}

	// Graph is a directed graph for topological sorting.
	// Nodes are identified by string keys. Edges represent "must run before" relationships:
	// an edge from A to B means A must be emitted before B.
	Graph struct {
		// preds maps each node to the set of nodes that must precede it.
		preds map[string]map[string]struct{}
		// succs maps each node to the nodes that must follow it.
		succs map[string][]string
		// nodes tracks all nodes in insertion order for deterministic output.
		nodes []string
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		preds: make(map[string]map[string]struct{}),
		succs: make(map[string][]string),
	}
}

// AddNode adds a node to the graph. If the node already exists, this is a no-op.
func (g *Graph) AddNode(name string) {
	if _, ok := g.preds[name]; ok {
		return
	}
	g.preds[name] = make(map[string]struct{})
	g.nodes = append(g.nodes, name)
}

// AddEdge adds a directed edge from -> to, meaning "from" must run before "to".
// Both nodes are implicitly added if they don't exist. Duplicate edges are ignored.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	if _, dup := g.preds[to][from]; dup {
		return
	}
	g.preds[to][from] = struct{}{}
	g.succs[from] = append(g.succs[from], to)
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int { return len(g.nodes) }

// TopologicalSort returns a valid order using repeated passes over the pending nodes.
//
// Each pass scans the pending nodes in insertion order and emits every node
// whose predecessors were all emitted in earlier passes. Names emitted during a
// pass are removed from the remaining predecessor sets once the pass ends. A
// pass that emits nothing while nodes remain pending yields a CycleError.
// The returned order is deterministic for a given insertion order.
func (g *Graph) TopologicalSort() ([]string, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	remaining := make(map[string]map[string]struct{}, len(g.nodes))
	for _, node := range g.nodes {
		deps := make(map[string]struct{}, len(g.preds[node]))
		for p := range g.preds[node] {
			deps[p] = struct{}{}
		}
		remaining[node] = deps
	}

	pending := slices.Clone(g.nodes)
	result := make([]string, 0, len(g.nodes))
	for len(pending) > 0 {
		var nextPending, emitted []string
		for _, node := range pending {
			if len(remaining[node]) > 0 {
				nextPending = append(nextPending, node)
				continue
			}
			emitted = append(emitted, node)
		}
		if len(emitted) == 0 {
			return nil, &CycleError{Cycle: g.cyclicNodes(nextPending)}
		}
		for _, node := range nextPending {
			for _, done := range emitted {
				delete(remaining[node], done)
			}
		}
		result = append(result, emitted...)
		pending = nextPending
	}

	return result, nil
}

// cyclicNodes returns the pending nodes that can reach themselves through
// pending nodes only, sorted by name.
func (g *Graph) cyclicNodes(pending []string) []string {
	inPending := make(map[string]bool, len(pending))
	for _, n := range pending {
		inPending[n] = true
	}

	var cycle []string
	for _, start := range pending {
		if g.reaches(start, start, inPending) {
			cycle = append(cycle, start)
		}
	}
	slices.Sort(cycle)
	return cycle
}

// reaches reports whether target is reachable from the successors of from,
// walking only nodes in allowed.
func (g *Graph) reaches(from, target string, allowed map[string]bool) bool {
	seen := make(map[string]bool)
	stack := slices.Clone(g.succs[from])
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !allowed[n] || seen[n] {
			continue
		}
		if n == target {
			return true
		}
		seen[n] = true
		stack = append(stack, g.succs[n]...)
	}
	return false
}

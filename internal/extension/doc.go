// SPDX-License-Identifier: MPL-2.0

// Package extension defines the capability every dockhand extension implements
// and the machinery that turns a set of registered extensions into an ordered,
// activated list.
//
// Extensions are registered into an explicit Registry at process start (see
// extensions.RegisterBuiltins). The CLI asks the Registry to declare each
// extension's flags, converts the parsed flags into an Options map, activates
// the extensions whose predicate holds, and orders them with Resolve.
//
// Ordering is advisory: an extension names the extensions it would like to
// follow, and names that are not active are ignored. The designated last
// extension ("user") and everything that transitively wants to follow it are
// always placed after every other extension, because it switches the build
// user and later snippets would otherwise run unprivileged.
package extension

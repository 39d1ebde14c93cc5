// SPDX-License-Identifier: MPL-2.0

// Package extensions contains the built-in dockhand extensions.
//
// Each extension embeds extension.Base and overrides the fragments it
// contributes. RegisterBuiltins adds all of them to a Registry; host access
// (engine queries, file lookups, external commands) goes through Deps so tests
// can substitute it.
package extensions

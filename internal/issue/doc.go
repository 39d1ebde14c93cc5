// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints. Issue holds the longer Markdown guidance the CLI renders
// with glamour for failures a user can fix on the host (a stopped docker
// daemon, a cyclic extension set, an unreadable config file).
package issue

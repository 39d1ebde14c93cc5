// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers shared by dockhand's package tests: a
// scripted container engine and file helpers that fail the test on error.
package testutil

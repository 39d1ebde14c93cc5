// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the dockhand command line.
//
// The root command is built in two phases. Before cobra parses anything, the
// --config, --engine and --verbose flags are pre-scanned so the configuration
// can be loaded and the container engine created; the built-in extensions then
// declare their flags (the network extension asks the engine for its networks
// to do so). The RunE handler applies configured defaults, activates and
// orders the extensions, and drives one generator through build and run.
package cmd

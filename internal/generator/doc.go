// SPDX-License-Identifier: MPL-2.0

// Package generator turns a resolved extension list into a built image and a
// running container.
//
// A Generator synthesizes the Dockerfile once, builds it at most once (the
// BuildResult is cached), and runs the image in one of three modes: dry-run
// prints the command, non-interactive runs it in the foreground, and
// interactive attaches it to a PTY with the host terminal in raw mode and
// window size changes forwarded for the session.
package generator

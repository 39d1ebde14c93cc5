// SPDX-License-Identifier: MPL-2.0

// Package termbridge forwards host terminal resizes to a child's PTY for the
// duration of an interactive session.
package termbridge

import (
	"os"
	"os/signal"
	"sync"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

type (
	// Option configures a Bridge.
	Option func(*Bridge)

	// Bridge is a scoped SIGWINCH subscription. Acquire it when the PTY is
	// started and Release it (normally deferred) when the session ends.
	Bridge struct {
		ptmx *os.File
		host *os.File

		notify     func(c chan<- os.Signal, sig ...os.Signal)
		stop       func(c chan<- os.Signal)
		isTerminal func(fd int) bool
		resize     func(host, ptmx *os.File) error

		active  bool
		signals chan os.Signal
		done    chan struct{}
		wg      sync.WaitGroup
		release sync.Once
	}
)

// WithNotify replaces signal.Notify and signal.Stop.
func WithNotify(notify func(c chan<- os.Signal, sig ...os.Signal), stop func(c chan<- os.Signal)) Option {
	return func(b *Bridge) {
		b.notify = notify
		b.stop = stop
	}
}

// WithTerminalCheck replaces term.IsTerminal.
func WithTerminalCheck(isTerminal func(fd int) bool) Option {
	return func(b *Bridge) {
		b.isTerminal = isTerminal
	}
}

// WithResize replaces the function that copies the host size onto the PTY.
func WithResize(resize func(host, ptmx *os.File) error) Option {
	return func(b *Bridge) {
		b.resize = resize
	}
}

// Acquire starts forwarding host window size changes to ptmx. host is the
// terminal whose size is mirrored, normally os.Stdout. When host is not a
// terminal the returned Bridge is inactive and does nothing.
func Acquire(ptmx, host *os.File, opts ...Option) *Bridge {
	b := &Bridge{
		ptmx:       ptmx,
		host:       host,
		notify:     signal.Notify,
		stop:       signal.Stop,
		isTerminal: term.IsTerminal,
		resize:     pty.InheritSize,
	}
	for _, opt := range opts {
		opt(b)
	}

	if host == nil || !b.isTerminal(int(host.Fd())) {
		return b
	}

	b.active = true
	b.signals = make(chan os.Signal, 1)
	b.done = make(chan struct{})
	b.notify(b.signals, unix.SIGWINCH)

	// The PTY starts at the default size, so apply the real one right away.
	_ = b.resize(b.host, b.ptmx)

	b.wg.Add(1)
	go b.forward()
	return b
}

// Active reports whether the bridge is forwarding resizes.
func (b *Bridge) Active() bool { return b.active }

func (b *Bridge) forward() {
	defer b.wg.Done()
	for {
		select {
		case <-b.done:
			return
		case <-b.signals:
			// A failed resize leaves the previous size in place.
			_ = b.resize(b.host, b.ptmx)
		}
	}
}

// Release unsubscribes from SIGWINCH, restoring the previous disposition, and
// waits for the forwarding goroutine to exit. It is safe to call more than once.
func (b *Bridge) Release() {
	b.release.Do(func() {
		if !b.active {
			return
		}
		b.stop(b.signals)
		close(b.done)
		b.wg.Wait()
	})
}

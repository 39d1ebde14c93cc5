// SPDX-License-Identifier: MPL-2.0

package termbridge

import (
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

// fakeSignals records the channel a Bridge subscribes and lets the test deliver signals.
type fakeSignals struct {
	mu      sync.Mutex
	ch      chan<- os.Signal
	sigs    []os.Signal
	stopped int
}

func (f *fakeSignals) notify(c chan<- os.Signal, sig ...os.Signal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ch = c
	f.sigs = append(f.sigs, sig...)
}

func (f *fakeSignals) stop(c chan<- os.Signal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c == f.ch {
		f.stopped++
	}
}

func (f *fakeSignals) send() {
	f.mu.Lock()
	ch := f.ch
	f.mu.Unlock()
	ch <- unix.SIGWINCH
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestAcquire_Inactive(t *testing.T) {
	t.Parallel()

	sigs := &fakeSignals{}
	var resized atomic.Int32
	b := Acquire(os.Stdin, os.Stdout,
		WithNotify(sigs.notify, sigs.stop),
		WithTerminalCheck(func(int) bool { return false }),
		WithResize(func(_, _ *os.File) error { resized.Add(1); return nil }),
	)
	defer b.Release()

	if b.Active() {
		t.Error("Active() = true for a non-terminal host")
	}
	if sigs.ch != nil {
		t.Error("inactive bridge subscribed to signals")
	}
	if resized.Load() != 0 {
		t.Error("inactive bridge resized the PTY")
	}

	b.Release()
	if sigs.stopped != 0 {
		t.Error("inactive bridge unsubscribed")
	}
}

func TestAcquire_NilHost(t *testing.T) {
	t.Parallel()

	b := Acquire(nil, nil)
	defer b.Release()
	if b.Active() {
		t.Error("Active() = true without a host")
	}
}

func TestAcquire_ForwardsResizes(t *testing.T) {
	t.Parallel()

	sigs := &fakeSignals{}
	var resized atomic.Int32
	host, ptmx := os.Stdout, os.Stdin

	b := Acquire(ptmx, host,
		WithNotify(sigs.notify, sigs.stop),
		WithTerminalCheck(func(int) bool { return true }),
		WithResize(func(h, p *os.File) error {
			if h != host || p != ptmx {
				t.Errorf("resize(%v, %v) called with the wrong files", h, p)
			}
			resized.Add(1)
			return nil
		}),
	)

	if !b.Active() {
		t.Fatal("Active() = false for a terminal host")
	}
	if len(sigs.sigs) != 1 || sigs.sigs[0] != unix.SIGWINCH {
		t.Errorf("subscribed to %v, want [SIGWINCH]", sigs.sigs)
	}
	if got := resized.Load(); got != 1 {
		t.Errorf("resizes after Acquire = %d, want 1", got)
	}

	sigs.send()
	waitFor(t, func() bool { return resized.Load() == 2 })
	sigs.send()
	waitFor(t, func() bool { return resized.Load() == 3 })

	b.Release()
	b.Release()
	if sigs.stopped != 1 {
		t.Errorf("stop called %d times, want 1", sigs.stopped)
	}
}

func TestRelease_AfterResizeError(t *testing.T) {
	t.Parallel()

	sigs := &fakeSignals{}
	b := Acquire(os.Stdin, os.Stdout,
		WithNotify(sigs.notify, sigs.stop),
		WithTerminalCheck(func(int) bool { return true }),
		WithResize(func(_, _ *os.File) error { return os.ErrClosed }),
	)
	sigs.send()
	b.Release()
	if sigs.stopped != 1 {
		t.Errorf("stop called %d times, want 1", sigs.stopped)
	}
}

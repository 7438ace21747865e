package commandsync

import (
	"context"
	"fmt"
	"sync"
)

// ReadyGate is a one-shot readiness token. It implements Session. A nil
// *ReadyGate reports ready, like a nil Session.
type ReadyGate struct {
	once sync.Once
	ch   chan struct{}
}

var closedC = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

func NewReadyGate() *ReadyGate {
	return &ReadyGate{ch: make(chan struct{})}
}

// Signal marks the gate ready. Calls after the first are no-ops.
func (g *ReadyGate) Signal() {
	if g == nil {
		return
	}
	g.once.Do(func() { close(g.ch) })
}

func (g *ReadyGate) Ready() bool {
	if g == nil {
		return true
	}
	select {
	case <-g.ch:
		return true
	default:
		return false
	}
}

func (g *ReadyGate) ReadyC() <-chan struct{} {
	if g == nil {
		return closedC
	}
	return g.ch
}

// WaitReady returns immediately if s is already ready, otherwise blocks
// until it becomes ready or ctx is done. A nil Session counts as ready.
func WaitReady(ctx context.Context, s Session) error {
	if s == nil || s.Ready() {
		return nil
	}
	select {
	case <-s.ReadyC():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for session ready: %w", ctx.Err())
	}
}

package event

import (
	"context"
	"fmt"
	"iter"
	"runtime/debug"
	"time"
)

// Func is the body of a turn. It reports progress through yield and returns
// when the turn is complete.
type Func func(ctx context.Context, yield Yield) error

// PanicError carries a panic raised inside a turn to the driver.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("event: turn panicked: %v", e.Value)
}

// Stream runs a Func on its own goroutine in strict alternation with the
// driver: the turn only executes between a call to Next and the event that
// call returns. Streams are not safe for concurrent use by multiple drivers.
type Stream struct {
	ctx    context.Context
	cancel context.CancelFunc
	fn     Func

	events chan Event
	resume chan struct{}
	done   chan struct{}

	started  bool
	finished bool
	cur      Event
	err      error
}

// Start prepares a turn. Nothing runs until the first call to Next.
func Start(ctx context.Context, fn Func) *Stream {
	ctx, cancel := context.WithCancel(ctx)
	return &Stream{
		ctx:    ctx,
		cancel: cancel,
		fn:     fn,
		events: make(chan Event),
		resume: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Next runs the turn up to its next suspension point and reports whether an
// event was produced. It returns false once the turn has finished.
func (s *Stream) Next() bool {
	if s.finished {
		return false
	}
	if !s.started {
		s.started = true
		go s.run()
	} else {
		select {
		case s.resume <- struct{}{}:
		case <-s.done:
		}
	}
	select {
	case ev := <-s.events:
		s.cur = ev
		return true
	case <-s.done:
		s.finished = true
		return false
	}
}

// Event returns the event produced by the last successful Next.
func (s *Stream) Event() Event {
	return s.cur
}

// Err returns the turn's error once Next has returned false.
func (s *Stream) Err() error {
	if !s.finished {
		return nil
	}
	return s.err
}

// Close abandons the turn. The turn's context is canceled and Close waits
// for the goroutine to return; the turn never resumes past the suspension
// point it was parked at.
func (s *Stream) Close() error {
	s.cancel()
	if s.started && !s.finished {
		<-s.done
	}
	s.finished = true
	return nil
}

// All returns an iterator over the remaining events. Breaking out of the
// loop closes the stream.
func (s *Stream) All() iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for s.Next() {
			if !yield(s.Event()) {
				s.Close()
				return
			}
		}
	}
}

func (s *Stream) run() {
	defer close(s.done)
	defer func() {
		if r := recover(); r != nil {
			s.err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	s.err = s.fn(s.ctx, s.yield)
}

func (s *Stream) yield(ev Event) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	select {
	case s.events <- ev:
	case <-s.ctx.Done():
		return s.ctx.Err()
	}
	select {
	case <-s.resume:
		return s.ctx.Err()
	case <-s.ctx.Done():
		return s.ctx.Err()
	}
}

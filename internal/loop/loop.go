// Package loop runs queued tasks one at a time on a single goroutine.
// Every state mutation of a graph view goes through one Loop, so timer
// callbacks, fetch results and user input never race.
package loop

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// ErrStopped is returned by Do once the loop has been stopped.
var ErrStopped = errors.New("loop stopped")

// ErrorHandler handles a panic raised by a task. The loop keeps running.
type ErrorHandler func(err error)

// Loop is a single-goroutine task queue.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	done    chan struct{}
	running atomic.Bool
	stopped atomic.Bool

	onError ErrorHandler
	onIdle  func()
	log     *zap.Logger

	processed atomic.Uint64
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the debug logger.
func WithLogger(l *zap.Logger) Option {
	return func(lp *Loop) {
		if l != nil {
			lp.log = l
		}
	}
}

// WithErrorHandler sets the panic handler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(lp *Loop) { lp.onError = h }
}

// WithIdle sets a hook that runs on the loop after each drained batch,
// e.g. to re-render once for many queued inputs.
func WithIdle(fn func()) Option {
	return func(lp *Loop) { lp.onIdle = fn }
}

// New creates a stopped loop.
func New(opts ...Option) *Loop {
	l := &Loop{
		queue: make([]func(), 0, 64),
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start begins the loop. Calling it twice is a no-op.
func (l *Loop) Start() {
	if l.stopped.Load() {
		return
	}
	if l.running.CompareAndSwap(false, true) {
		l.log.Debug("loop starting")
		go l.run()
	}
}

// Stop ends the loop and waits for the running task to return. Queued
// tasks that have not started are dropped. It must not be called from a
// task on the same loop.
func (l *Loop) Stop() {
	if !l.stopped.CompareAndSwap(false, true) {
		return
	}
	l.signal()
	if l.running.Load() {
		<-l.done
	}
	l.mu.Lock()
	dropped := len(l.queue)
	l.queue = nil
	l.mu.Unlock()
	l.log.Debug("loop stopped", zap.Int("dropped", dropped))
}

// Stopped reports whether Stop was called.
func (l *Loop) Stopped() bool { return l.stopped.Load() }

// Processed returns the number of tasks run so far.
func (l *Loop) Processed() uint64 { return l.processed.Load() }

// Post queues fn without blocking. It reports false once stopped.
func (l *Loop) Post(fn func()) bool {
	if fn == nil || l.stopped.Load() {
		return false
	}
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	l.signal()
	return true
}

// Do queues fn and waits for it to finish. It must not be called from a
// task on the same loop.
func (l *Loop) Do(fn func()) error {
	ran := make(chan struct{})
	if !l.Post(func() {
		defer close(ran)
		fn()
	}) {
		return ErrStopped
	}
	select {
	case <-ran:
		return nil
	case <-l.done:
		// the task may have been the last one to run
		select {
		case <-ran:
			return nil
		default:
			return ErrStopped
		}
	}
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) run() {
	defer close(l.done)
	for range l.wake {
		if l.stopped.Load() {
			return
		}
		// Drain everything queued so far and run it as one batch
		l.mu.Lock()
		batch := l.queue
		l.queue = make([]func(), 0, cap(batch))
		l.mu.Unlock()
		if len(batch) == 0 {
			continue
		}

		for _, fn := range batch {
			if l.stopped.Load() {
				return
			}
			l.exec(fn)
			l.processed.Add(1)
		}
		if l.onIdle != nil {
			l.exec(l.onIdle)
		}
	}
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("loop task panic: %v\n%s", r, debug.Stack())
			l.log.Error("task panicked", zap.Any("panic", r))
			if l.onError != nil {
				l.onError(err)
			}
		}
	}()
	fn()
}

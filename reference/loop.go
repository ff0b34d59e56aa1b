package reference

import (
	"context"
	"errors"
	"sync"
)

// Loop runs deferred callbacks one at a time on the goroutine that called
// Run. Every success and error callback of the manager goes through a Loop,
// so callbacks never run inside the call that scheduled them and never run
// concurrently with each other.
type Loop struct {
	opts loopOptions

	mu      sync.Mutex // guards following fields
	queue   []func()
	closed  bool
	running bool

	// wake has a buffer of 1 and signals that the queue is not empty.
	wake chan struct{}
	done chan struct{}
}

func NewLoop(opt ...LoopOption) *Loop {
	opts := defaultLoopOptions
	for _, o := range opt {
		o.applyLoop(&opts)
	}

	return &Loop{
		opts: opts,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Post queues fn to be run by the loop. It never blocks. It returns false if
// the loop was closed, in which case fn is dropped.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Run processes queued functions until the context is cancelled or Close is
// called. Functions still queued when Close is called are run before Run
// returns; functions queued when the context is cancelled are dropped.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return errors.New("loop is already running")
	}
	l.running = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.closed = true
		l.queue = nil
		l.mu.Unlock()
	}()

	for {
		for {
			fn, ok := l.next()
			if !ok {
				break
			}
			l.run(ctx, fn)
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			l.drain(ctx)
			return nil
		case <-l.wake:
		}
	}
}

// Close stops the loop after it ran everything posted so far. Posting to a
// closed loop is a no-op.
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	close(l.done)
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

func (l *Loop) drain(ctx context.Context) {
	for {
		fn, ok := l.next()
		if !ok {
			return
		}
		l.run(ctx, fn)
	}
}

func (l *Loop) run(ctx context.Context, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.opts.logger.ErrorContext(ctx, "recovered panic in loop callback", "panic", r)
		}
	}()
	fn()
}

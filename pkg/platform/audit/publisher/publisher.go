// Package publisher emits audit events into a Store, synchronously by
// default or through a buffered channel when async mode is enabled.
package publisher

import (
	"context"
	"sync"

	audit "custodia/pkg/platform/audit"
)

// Publisher fans audit events into a Store. Zero-configured it writes
// synchronously; WithAsyncBuffer moves writes onto a background goroutine so
// request latency does not pay for the sink, and WithWorkerInbox hands the
// consuming side to an externally supervised worker instead.
type Publisher struct {
	store audit.Store

	inbox    chan audit.Event
	external bool
	done     chan struct{}
	closed   sync.Once
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer enables asynchronous emission with the given buffer size.
// Emit blocks when the buffer is full rather than dropping events.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan audit.Event, size)
		p.external = false
	}
}

// WithWorkerInbox routes events into inbox instead of an internal drain
// goroutine. The caller owns the consuming worker and its lifecycle; Close
// neither closes the channel nor waits for the worker, so events still
// buffered at shutdown are only persisted if the worker outlives the
// publisher.
func WithWorkerInbox(inbox chan audit.Event) Option {
	return func(p *Publisher) {
		p.inbox = inbox
		p.external = true
	}
}

// NewPublisher constructs a publisher writing into store.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, done: make(chan struct{})}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil && !p.external {
		go p.drain()
	}
	return p
}

// Emit records one audit event. In async mode the write happens later;
// Close flushes everything that was accepted.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}
	select {
	case p.inbox <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the background goroutine after draining accepted events.
// Safe to call more than once. With an external worker inbox there is
// nothing to stop here.
func (p *Publisher) Close() {
	p.closed.Do(func() {
		if p.inbox == nil || p.external {
			close(p.done)
			return
		}
		close(p.inbox)
		<-p.done
	})
}

func (p *Publisher) drain() {
	defer close(p.done)
	for event := range p.inbox {
		// Best effort: an audit sink failure must not wedge the drain loop.
		_ = p.store.Append(context.Background(), event)
	}
}

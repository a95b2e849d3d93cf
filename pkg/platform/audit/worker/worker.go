// Package worker moves audit events from a channel into a Store. It keeps
// background persistence testable without wiring a queue implementation.
package worker

import (
	"context"

	audit "custodia/pkg/platform/audit"
)

// Worker consumes audit events from an inbox channel and persists them.
type Worker struct {
	store audit.Store
	inbox <-chan audit.Event
}

func NewWorker(store audit.Store, inbox <-chan audit.Event) *Worker {
	return &Worker{store: store, inbox: inbox}
}

// Run blocks until ctx is cancelled or the store rejects an append.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				return err
			}
		}
	}
}

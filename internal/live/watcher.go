// Package live provides a small poll-based change watcher used to push
// snapshot updates to connected browsers.
package live

import (
	"context"
	"reflect"
	"time"
)

// FetchFunc produces the current snapshot of some watched state.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Watcher polls a fetch function and emits a snapshot whenever the result
// changes. The first successful fetch is always emitted.
type Watcher[T any] struct {
	snapshots chan T
}

// Watch starts polling fetch at the given interval until ctx is cancelled.
// Fetch errors are skipped; the previous snapshot stays current. The
// snapshot channel is closed when the watcher stops.
func Watch[T any](ctx context.Context, fetch FetchFunc[T], interval time.Duration) *Watcher[T] {
	w := &Watcher[T]{snapshots: make(chan T, 1)}
	go w.run(ctx, fetch, interval)
	return w
}

// Snapshots returns the channel of changed snapshots.
func (w *Watcher[T]) Snapshots() <-chan T {
	return w.snapshots
}

func (w *Watcher[T]) run(ctx context.Context, fetch FetchFunc[T], interval time.Duration) {
	defer close(w.snapshots)

	var last T
	seeded := false

	poll := func() {
		next, err := fetch(ctx)
		if err != nil {
			return
		}
		if seeded && reflect.DeepEqual(last, next) {
			return
		}
		last = next
		seeded = true
		select {
		case w.snapshots <- next:
		case <-ctx.Done():
		}
	}

	poll()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			poll()
		}
	}
}

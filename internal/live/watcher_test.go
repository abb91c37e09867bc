package live

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatchEmitsFirstSnapshotImmediately(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := Watch(ctx, func(context.Context) ([]string, error) {
		return []string{"a"}, nil
	}, time.Hour)

	select {
	case got := <-w.Snapshots():
		if len(got) != 1 || got[0] != "a" {
			t.Fatalf("first snapshot = %v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no initial snapshot")
	}
}

func TestWatchDedupesUnchangedSnapshots(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int64
	w := Watch(ctx, func(context.Context) (int, error) {
		n := calls.Add(1)
		if n < 4 {
			return 1, nil
		}
		return 2, nil
	}, 5*time.Millisecond)

	if got := <-w.Snapshots(); got != 1 {
		t.Fatalf("first snapshot = %d", got)
	}
	select {
	case got := <-w.Snapshots():
		if got != 2 {
			t.Fatalf("second snapshot = %d, want the changed value", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("changed snapshot never arrived")
	}
}

func TestWatchSkipsFetchErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int64
	w := Watch(ctx, func(context.Context) (string, error) {
		if calls.Add(1) == 1 {
			return "", errors.New("transient")
		}
		return "ok", nil
	}, 5*time.Millisecond)

	select {
	case got := <-w.Snapshots():
		if got != "ok" {
			t.Fatalf("snapshot = %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("watcher never recovered from fetch error")
	}
}

func TestWatchClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := Watch(ctx, func(context.Context) (int, error) { return 0, nil }, time.Hour)

	<-w.Snapshots()
	cancel()

	select {
	case _, ok := <-w.Snapshots():
		if ok {
			t.Fatalf("expected closed channel after cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("channel not closed after cancel")
	}
}

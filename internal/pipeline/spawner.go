package pipeline

import "context"

// Handle controls one spawned continuation task.
type Handle interface {
	// Cancel requests cancellation; the task observes it at its next
	// suspension point.
	Cancel()
	// Done is closed when the task has returned.
	Done() <-chan struct{}
}

// Spawner schedules continuation tasks. The production implementation runs
// each task on its own goroutine; tests substitute synchronous spawners.
type Spawner interface {
	Spawn(name string, fn func(ctx context.Context)) Handle
}

// GoSpawner runs each task on a fresh goroutine under a cancellable context.
type GoSpawner struct{}

type goHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (h *goHandle) Cancel()                { h.cancel() }
func (h *goHandle) Done() <-chan struct{} { return h.done }

// Spawn starts fn on its own goroutine. The name is unused here; it exists
// for spawner implementations that track or log their tasks.
func (GoSpawner) Spawn(_ string, fn func(ctx context.Context)) Handle {
	ctx, cancel := context.WithCancel(context.Background())
	h := &goHandle{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(h.done)
		defer cancel()
		fn(ctx)
	}()
	return h
}

package sim

import (
	"sync/atomic"
	"testing"

	"github.com/Jancidakis/nasa-pathfinding/internal/logger"
)

func TestWorkerPoolRunsAllTasks(t *testing.T) {
	wp := newWorkerPool(4, logger.Component("test"))
	var n int64
	for i := 0; i < 100; i++ {
		wp.submit(func() { atomic.AddInt64(&n, 1) })
	}
	wp.wait()
	if n != 100 {
		t.Errorf("ran %d tasks, want 100", n)
	}
	wp.wait() // second wait is a no-op
}

func TestWorkerPoolRecoversPanics(t *testing.T) {
	wp := newWorkerPool(0, logger.Component("test"))
	var n int64
	wp.submit(func() { panic("boom") })
	wp.submit(func() { atomic.AddInt64(&n, 1) })
	wp.wait()
	if n != 1 {
		t.Error("worker should survive a panicking task")
	}
}

// Package prefetch runs decode tasks on a single background goroutine,
// strictly in submission order, with epoch-based cancellation.
package prefetch

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Task is a unit of decode work. stale reports whether the task was
// cancelled after submission; implementations are expected to decode
// first, then consult stale before committing the result anywhere.
type Task func(stale func() bool)

// Worker executes tasks one at a time on a dedicated goroutine.
//
// Cancellation is an epoch counter: CancelAll bumps the epoch, which
// makes every task submitted before the bump observe stale() == true.
// An in-flight decode is never interrupted; only its result is
// discarded. CancelAll therefore never blocks.
type Worker struct {
	tasks chan queued
	depth atomic.Int32
	epoch atomic.Uint64

	closeOnce sync.Once
	done      chan struct{}
}

type queued struct {
	epoch uint64
	run   Task
}

const queueSize = 8

// New creates a worker and starts its goroutine.
func New() *Worker {
	w := &Worker{
		tasks: make(chan queued, queueSize),
		done:  make(chan struct{}),
	}
	go w.loop()
	return w
}

// Schedule submits a task. It returns false without enqueueing when a
// previous task is still outstanding; the caller retries on a later
// tick. Never blocks.
func (w *Worker) Schedule(run Task) bool {
	select {
	case <-w.done:
		return false
	default:
	}
	if !w.depth.CompareAndSwap(0, 1) {
		return false
	}
	q := queued{epoch: w.epoch.Load(), run: run}
	select {
	case w.tasks <- q:
		return true
	case <-w.done:
		w.depth.Store(0)
		return false
	}
}

// Depth returns the number of outstanding tasks (0 or 1).
func (w *Worker) Depth() int {
	return int(w.depth.Load())
}

// CancelAll marks every outstanding task stale. It does not wait for an
// in-flight decode to finish.
func (w *Worker) CancelAll() {
	w.epoch.Add(1)
	logrus.WithField("epoch", w.epoch.Load()).Debug("prefetch: cancelled outstanding tasks")
}

// Close cancels outstanding work and stops the goroutine. The worker
// must not be used afterwards.
func (w *Worker) Close() {
	w.closeOnce.Do(func() {
		w.CancelAll()
		close(w.done)
	})
}

func (w *Worker) loop() {
	for {
		select {
		case <-w.done:
			return
		case q := <-w.tasks:
			stale := func() bool { return w.epoch.Load() != q.epoch }
			q.run(stale)
			w.depth.Store(0)
		}
	}
}

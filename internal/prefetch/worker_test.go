package prefetch

import (
	"testing"
	"time"
)

func TestWorker_RunsTask(t *testing.T) {
	w := New()
	defer w.Close()

	ran := make(chan struct{})
	ok := w.Schedule(func(_ func() bool) { close(ran) })
	if !ok {
		t.Fatal("Schedule() = false, want true for idle worker")
	}

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}
}

func TestWorker_GatesOnOutstandingTask(t *testing.T) {
	w := New()
	defer w.Close()

	started := make(chan struct{})
	release := make(chan struct{})
	w.Schedule(func(_ func() bool) {
		close(started)
		<-release
	})
	<-started

	if w.Depth() != 1 {
		t.Errorf("Depth() = %d with task in flight, want 1", w.Depth())
	}
	if w.Schedule(func(_ func() bool) {}) {
		t.Error("Schedule() = true while a task is outstanding, want false")
	}

	close(release)
	waitForDepthZero(t, w)

	if !w.Schedule(func(_ func() bool) {}) {
		t.Error("Schedule() = false after task finished, want true")
	}
}

func TestWorker_CancelAllMarksInFlightStale(t *testing.T) {
	w := New()
	defer w.Close()

	started := make(chan struct{})
	release := make(chan struct{})
	staleCh := make(chan bool, 1)
	w.Schedule(func(stale func() bool) {
		close(started)
		<-release
		staleCh <- stale()
	})
	<-started

	// Cancel must not block even though the task is still running.
	done := make(chan struct{})
	go func() {
		w.CancelAll()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("CancelAll blocked on an in-flight task")
	}

	close(release)
	if stale := <-staleCh; !stale {
		t.Error("task completed after CancelAll should observe stale() = true")
	}
}

func TestWorker_TaskBeforeCancelIsFreshAfterCompletion(t *testing.T) {
	w := New()
	defer w.Close()

	staleCh := make(chan bool, 1)
	w.Schedule(func(stale func() bool) { staleCh <- stale() })

	if stale := <-staleCh; stale {
		t.Error("uncancelled task should observe stale() = false")
	}
}

func TestWorker_ScheduleAfterClose(t *testing.T) {
	w := New()
	w.Close()
	w.Close() // idempotent

	if w.Schedule(func(_ func() bool) {}) {
		t.Error("Schedule() = true on closed worker, want false")
	}
}

func waitForDepthZero(t *testing.T, w *Worker) {
	t.Helper()
	deadline := time.After(time.Second)
	for w.Depth() != 0 {
		select {
		case <-deadline:
			t.Fatal("worker depth never returned to 0")
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

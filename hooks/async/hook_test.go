package asynchook

import (
	"errors"
	"sync"
	"testing"
)

type recHooks struct {
	mu      sync.Mutex
	events  []string
	release chan struct{}
}

func (r *recHooks) add(ev string) {
	if r.release != nil {
		<-r.release
	}
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recHooks) CacheFilled(k string)             { r.add("filled:" + k) }
func (r *recHooks) CacheInvalidated(k string)        { r.add("invalidated:" + k) }
func (r *recHooks) CorruptValue(k string, err error) { r.add("corrupt:" + k + ":" + err.Error()) }

func TestEventsDeliveredBeforeClose(t *testing.T) {
	rec := &recHooks{}
	h := New(rec, 1, 16)

	h.CacheFilled("a")
	h.CacheInvalidated("b")
	h.CorruptValue("c", errors.New("bad"))
	h.Close()

	want := []string{"filled:a", "invalidated:b", "corrupt:c:bad"}
	if len(rec.events) != len(want) {
		t.Fatalf("events=%v want %v", rec.events, want)
	}
	for i := range want {
		if rec.events[i] != want[i] {
			t.Fatalf("event[%d]=%q want %q", i, rec.events[i], want[i])
		}
	}
}

func TestFullQueueDrops(t *testing.T) {
	rec := &recHooks{release: make(chan struct{})}
	h := New(rec, 1, 1)

	// first event parks the worker, second fills the queue, the rest drop
	for i := 0; i < 5; i++ {
		h.CacheFilled("k")
	}
	close(rec.release)
	h.Close()

	if h.Dropped() == 0 {
		t.Fatalf("expected dropped events")
	}
	if got := uint64(len(rec.events)) + h.Dropped(); got != 5 {
		t.Fatalf("delivered+dropped=%d want 5", got)
	}
}

func TestAfterCloseIsDropped(t *testing.T) {
	rec := &recHooks{}
	h := New(rec, 2, 4)
	h.Close()
	h.Close()

	h.CacheFilled("late")
	if h.Dropped() != 1 {
		t.Fatalf("dropped=%d want 1", h.Dropped())
	}
	if len(rec.events) != 0 {
		t.Fatalf("events=%v want none", rec.events)
	}
}

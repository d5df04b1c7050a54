// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    DecodedEvery: 100, // sample: ~every 100th record
//	})
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	dec := recordio.NewDecoder[Event](codec.JSON[Event]{}, recordio.WithHooks(hooks))
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/recordio"
)

// Hooks forwards events to inner on background workers. When the queue is
// full events are dropped, so the decoder never blocks on a slow hook.
type Hooks struct {
	inner recordio.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once

	mu     sync.RWMutex // held for reading while sending on q
	closed bool
}

var _ recordio.Hooks = (*Hooks)(nil)

func New(inner recordio.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers.
// Events fired after Close are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) MalformedLength(header string, err error) {
	h.try(func() { h.inner.MalformedLength(header, err) })
}
func (h *Hooks) DeserializeFailed(n int, err error) { h.try(func() { h.inner.DeserializeFailed(n, err) }) }
func (h *Hooks) RecordDecoded(n int)                { h.try(func() { h.inner.RecordDecoded(n) }) }

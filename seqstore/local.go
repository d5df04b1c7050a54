package seqstore

import (
	"context"
	"sync"
	"time"
)

type localEntry struct {
	Seq       uint64
	UpdatedAt time.Time
}

// Local keeps counters in-process.
// Optional cleanup loop to prune long-idle streams.
type Local struct {
	mu     sync.RWMutex
	seqs   map[string]localEntry
	ticker *time.Ticker
	stopCh chan struct{}
	wg     sync.WaitGroup
}

var _ SeqStore = (*Local)(nil)

func NewLocal(cleanupInterval, retention time.Duration) *Local {
	s := &Local{seqs: make(map[string]localEntry)}
	if cleanupInterval > 0 && retention > 0 {
		s.ticker = time.NewTicker(cleanupInterval)
		s.stopCh = make(chan struct{})
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for {
				select {
				case <-s.ticker.C:
					s.Cleanup(retention)
				case <-s.stopCh:
					return
				}
			}
		}()
	}
	return s
}

func (s *Local) Current(_ context.Context, stream string) (uint64, error) {
	s.mu.RLock()
	e := s.seqs[stream]
	s.mu.RUnlock()
	return e.Seq, nil
}

func (s *Local) Next(_ context.Context, stream string) (uint64, error) {
	now := time.Now()
	s.mu.Lock()
	e := s.seqs[stream]
	e.Seq++
	e.UpdatedAt = now
	s.seqs[stream] = e
	s.mu.Unlock()
	return e.Seq, nil
}

// Seed raises the counter of stream to seq. A lower seq is ignored, so Seed
// never makes Next hand out a number twice.
func (s *Local) Seed(stream string, seq uint64) {
	s.mu.Lock()
	if e := s.seqs[stream]; seq > e.Seq {
		s.seqs[stream] = localEntry{Seq: seq, UpdatedAt: time.Now()}
	}
	s.mu.Unlock()
}

func (s *Local) Cleanup(retention time.Duration) {
	if retention <= 0 {
		return
	}
	cutoff := time.Now().Add(-retention)

	s.mu.Lock()
	for k, e := range s.seqs {
		if e.UpdatedAt.Before(cutoff) {
			delete(s.seqs, k)
		}
	}
	s.mu.Unlock()
}

func (s *Local) Close(_ context.Context) error {
	if s.stopCh != nil {
		close(s.stopCh)
		s.ticker.Stop()
		s.wg.Wait()
		s.stopCh = nil
	}
	return nil
}

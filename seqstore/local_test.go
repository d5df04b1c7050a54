package seqstore

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestLocalNextIsMonotonicPerStream(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(0, 0)
	t.Cleanup(func() { _ = s.Close(ctx) })

	for want := uint64(1); want <= 3; want++ {
		got, err := s.Next(ctx, "a")
		if err != nil || got != want {
			t.Fatalf("Next(a) = %d, %v want %d", got, err, want)
		}
	}
	if got, _ := s.Next(ctx, "b"); got != 1 {
		t.Fatalf("Next(b) = %d want 1", got)
	}
	if got, _ := s.Current(ctx, "a"); got != 3 {
		t.Fatalf("Current(a) = %d want 3", got)
	}
	if got, _ := s.Current(ctx, "missing"); got != 0 {
		t.Fatalf("Current(missing) = %d want 0", got)
	}
}

func TestLocalSeedOnlyRaises(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(0, 0)
	t.Cleanup(func() { _ = s.Close(ctx) })

	s.Seed("a", 5)
	if got, _ := s.Next(ctx, "a"); got != 6 {
		t.Fatalf("Next after Seed(5) = %d want 6", got)
	}
	s.Seed("a", 2)
	if got, _ := s.Current(ctx, "a"); got != 6 {
		t.Fatalf("Seed lowered counter to %d", got)
	}
}

func TestLocalConcurrentNextUnique(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(0, 0)
	t.Cleanup(func() { _ = s.Close(ctx) })

	const workers, per = 8, 100
	var (
		mu   sync.Mutex
		seen = make(map[uint64]bool)
		wg   sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < per; j++ {
				n, _ := s.Next(ctx, "s")
				mu.Lock()
				seen[n] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if len(seen) != workers*per {
		t.Fatalf("expected %d unique numbers, got %d", workers*per, len(seen))
	}
}

func TestLocalCleanupPrunesIdle(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(0, 0)
	t.Cleanup(func() { _ = s.Close(ctx) })

	if _, err := s.Next(ctx, "old"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	if _, err := s.Next(ctx, "fresh"); err != nil {
		t.Fatal(err)
	}
	s.Cleanup(30 * time.Millisecond)

	if got, _ := s.Current(ctx, "old"); got != 0 {
		t.Fatalf("old stream should be pruned, got %d", got)
	}
	if got, _ := s.Current(ctx, "fresh"); got != 1 {
		t.Fatalf("fresh stream should remain, got %d", got)
	}
}

func TestLocalBackgroundCleanupStopsOnClose(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(10*time.Millisecond, time.Hour)
	if _, err := s.Next(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(30 * time.Millisecond)
	if got, _ := s.Current(ctx, "a"); got != 1 {
		t.Fatalf("entry within retention pruned")
	}
	if err := s.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatal(err)
	}
}

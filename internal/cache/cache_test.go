package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLRUCache_SetAndGet(t *testing.T) {
	c := NewLRUCache[string](10, time.Minute)

	c.Set("a", "alpha")

	if got, ok := c.Get("a"); !ok || got != "alpha" {
		t.Errorf("Get(a) = %q, %v, want alpha, true", got, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) reported a hit")
	}
}

func TestLRUCache_Expiry(t *testing.T) {
	c := NewLRUCache[int](10, 10*time.Millisecond)

	c.Set("a", 1)
	time.Sleep(25 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("expired entry still served")
	}
	if size := c.Size(); size != 0 {
		t.Errorf("Size() = %d after expired read, want 0", size)
	}
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)

	// Touch a so b becomes the eviction candidate.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("Get(a) missed")
	}

	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("least recently used entry was not evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("recently used entry was evicted")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("new entry missing")
	}
	if size := c.Size(); size != 2 {
		t.Errorf("Size() = %d, want 2", size)
	}
}

func TestLRUCache_UpdateExistingKey(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)

	c.Set("a", 1)
	c.Set("a", 2)

	if got, _ := c.Get("a"); got != 2 {
		t.Errorf("Get(a) = %d, want 2", got)
	}
	if size := c.Size(); size != 1 {
		t.Errorf("Size() = %d, want 1", size)
	}
}

func TestLRUCache_CleanExpired(t *testing.T) {
	c := NewLRUCache[int](10, 10*time.Millisecond)

	c.Set("a", 1)
	c.Set("b", 2)
	time.Sleep(25 * time.Millisecond)
	c.Set("fresh", 3)

	// CleanExpired cannot remove the fresh entry because its TTL has not
	// elapsed yet.
	if removed := c.CleanExpired(); removed != 2 {
		t.Errorf("CleanExpired() = %d, want 2", removed)
	}
	if size := c.Size(); size != 1 {
		t.Errorf("Size() = %d, want 1", size)
	}
}

func TestLoader_ComputesOnMiss(t *testing.T) {
	l := NewLoader(NewLRUCache[string](10, time.Minute))

	got, hit, err := l.GetOrCompute("k", func() (string, error) { return "value", nil })
	if err != nil {
		t.Fatalf("GetOrCompute() error = %v", err)
	}
	if hit {
		t.Error("first call reported a cache hit")
	}
	if got != "value" {
		t.Errorf("GetOrCompute() = %q, want value", got)
	}

	got, hit, err = l.GetOrCompute("k", func() (string, error) { return "other", nil })
	if err != nil {
		t.Fatalf("GetOrCompute() error = %v", err)
	}
	if !hit || got != "value" {
		t.Errorf("second call = %q, hit=%v, want cached value with hit", got, hit)
	}
}

func TestLoader_CoalescesConcurrentMisses(t *testing.T) {
	l := NewLoader(NewLRUCache[int](10, time.Minute))

	var computes atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			got, _, err := l.GetOrCompute("k", func() (int, error) {
				computes.Add(1)
				time.Sleep(10 * time.Millisecond)
				return 42, nil
			})
			if err != nil {
				t.Errorf("GetOrCompute() error = %v", err)
			}
			if got != 42 {
				t.Errorf("GetOrCompute() = %d, want 42", got)
			}
		}()
	}
	close(start)
	wg.Wait()

	if n := computes.Load(); n != 1 {
		t.Errorf("compute ran %d times for concurrent identical requests, want 1", n)
	}
}

func TestLoader_ErrorsAreNotCached(t *testing.T) {
	l := NewLoader(NewLRUCache[int](10, time.Minute))

	var computes int
	fail := errors.New("upstream down")

	if _, _, err := l.GetOrCompute("k", func() (int, error) { computes++; return 0, fail }); !errors.Is(err, fail) {
		t.Fatalf("GetOrCompute() error = %v, want %v", err, fail)
	}
	if _, _, err := l.GetOrCompute("k", func() (int, error) { computes++; return 0, fail }); !errors.Is(err, fail) {
		t.Fatalf("GetOrCompute() error = %v, want %v", err, fail)
	}

	if computes != 2 {
		t.Errorf("compute ran %d times, want 2 (errors must not stick)", computes)
	}
}

func TestManager_CleanupLoop(t *testing.T) {
	c := NewLRUCache[int](10, 5*time.Millisecond)
	c.Set("a", 1)

	m := NewManager()
	m.Register(c)
	m.StartCleanup(10 * time.Millisecond)
	defer m.Stop()

	deadline := time.After(500 * time.Millisecond)
	for c.Size() > 0 {
		select {
		case <-deadline:
			t.Fatal("cleanup loop never removed the expired entry")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

package lock

import (
	"sync"
	"testing"
)

func TestSameKeySerializes(t *testing.T) {
	k := NewKeyed()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock("order-1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Errorf("counter = %d, want 50", counter)
	}
}

func TestDifferentKeysIndependent(t *testing.T) {
	k := NewKeyed()

	unlockA := k.Lock("order-a")
	done := make(chan struct{})
	go func() {
		unlockB := k.Lock("order-b")
		unlockB()
		close(done)
	}()

	// order-b must not wait on order-a's holder.
	<-done
	unlockA()
}

func TestEntriesReleasedWhenIdle(t *testing.T) {
	k := NewKeyed()

	unlock := k.Lock("order-1")
	unlock()

	k.mu.Lock()
	defer k.mu.Unlock()
	if len(k.locks) != 0 {
		t.Errorf("idle entries retained: %d", len(k.locks))
	}
}

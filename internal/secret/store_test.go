package secret

import (
	"errors"
	"sync"
	"testing"
)

func TestVerify(t *testing.T) {
	s := NewStore("alpha")
	if !s.Verify("alpha") {
		t.Error("current secret rejected")
	}
	if s.Verify("beta") {
		t.Error("wrong secret accepted")
	}
}

func TestRotate(t *testing.T) {
	s := NewStore("alpha")

	if err := s.Rotate("beta"); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if s.Current() != "beta" || !s.Verify("beta") {
		t.Error("rotation did not take effect")
	}
	if s.Verify("alpha") {
		t.Error("old secret still accepted")
	}
	if s.Version() != 2 {
		t.Errorf("version = %d, want 2", s.Version())
	}

	if err := s.Rotate("beta"); !errors.Is(err, ErrSameSecret) {
		t.Errorf("same-value rotation: %v", err)
	}
	if err := s.Rotate(""); !errors.Is(err, ErrSameSecret) {
		t.Errorf("empty rotation: %v", err)
	}
	if s.Version() != 2 {
		t.Errorf("failed rotations bumped version to %d", s.Version())
	}
}

func TestConcurrentVerifyDuringRotation(t *testing.T) {
	s := NewStore("v0")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				// Either the old or the new secret is live, never neither.
				if !s.Verify("v0") && !s.Verify("v1") {
					t.Error("no live secret observed")
					return
				}
			}
		}()
	}
	_ = s.Rotate("v1")
	wg.Wait()
}

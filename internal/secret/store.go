package secret

import (
	"crypto/subtle"
	"errors"
	"sync"
)

var ErrSameSecret = errors.New("new secret equals the current one")

// Store holds the shared merchant secret. Rotation swaps the value
// atomically under the lock so concurrent Verify calls never observe a
// half-updated credential.
type Store struct {
	mu      sync.RWMutex
	value   string
	version uint64
}

func NewStore(initial string) *Store {
	return &Store{value: initial, version: 1}
}

// Verify compares a candidate credential in constant time.
func (s *Store) Verify(candidate string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(s.value)) == 1
}

// Current returns the active secret.
func (s *Store) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Version increases by one on every successful rotation.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Rotate replaces the secret. Rotating to the current value or to an empty
// string is rejected.
func (s *Store) Rotate(next string) error {
	if next == "" {
		return ErrSameSecret
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if next == s.value {
		return ErrSameSecret
	}
	s.value = next
	s.version++
	return nil
}

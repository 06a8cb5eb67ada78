// Package fileid identifies file contents so the same bytes are ingested once.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

const prefix = "sha256:"

// ContentID returns a stable identifier for content. Equal bytes always yield the
// same id regardless of file name or location.
func ContentID(content []byte) string {
	hash := sha256.Sum256(content)
	return prefix + hex.EncodeToString(hash[:])
}

// Set is a concurrency-safe set of content ids.
type Set struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{seen: make(map[string]struct{})}
}

// Claim adds id and reports whether it was absent. Two concurrent claims of the same
// id never both succeed.
func (s *Set) Claim(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[id]; ok {
		return false
	}
	s.seen[id] = struct{}{}
	return true
}

// Release forgets id so a later Claim succeeds again.
func (s *Set) Release(id string) {
	s.mu.Lock()
	delete(s.seen, id)
	s.mu.Unlock()
}

// Len returns the number of claimed ids.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

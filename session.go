package sage

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// sessionRefPattern matches the refs Track mints (S1, S2, ...).
var sessionRefPattern = regexp.MustCompile(`^S[1-9][0-9]*$`)

// IsSessionRef reports whether s has the shape of a session reference.
// Refs only resolve within the process that issued them.
func IsSessionRef(s string) bool {
	return sessionRefPattern.MatchString(s)
}

// Session tracks content surfaced during a single session so follow-up
// commands can use short references instead of full IDs.
type Session struct {
	mu      sync.Mutex
	items   map[string]string // session ref (S1, S2) -> content ID
	reverse map[string]string // content ID -> session ref
	counter int
}

// NewSession creates a new session tracker.
func NewSession() *Session {
	return &Session{
		items:   make(map[string]string),
		reverse: make(map[string]string),
	}
}

// Track adds a content item to the session and returns its session reference.
func (s *Session) Track(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Check if already tracked
	if ref, ok := s.reverse[id]; ok {
		return ref
	}

	s.counter++
	ref := fmt.Sprintf("S%d", s.counter)
	s.items[ref] = id
	s.reverse[id] = ref
	return ref
}

// Resolve converts a session reference to a content ID.
func (s *Session) Resolve(ref string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.items[ref]
	return id, ok
}

// ResolveByID gets the session reference for a content ID.
func (s *Session) ResolveByID(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref, ok := s.reverse[id]
	return ref, ok
}

// All returns all tracked session items.
func (s *Session) All() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make(map[string]string, len(s.items))
	for ref, id := range s.items {
		result[ref] = id
	}
	return result
}

// Count returns the number of items tracked this session.
func (s *Session) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Clear resets the session tracking.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[string]string)
	s.reverse = make(map[string]string)
	s.counter = 0
}

// FuzzyMatch attempts to match a reference string to a tracked content item.
// It accepts:
// - Session refs (S1, S2, etc.)
// - Content IDs directly
// - Description snippets (partial match against the item description)
func (s *Session) FuzzyMatch(ref string, describe func(id string) string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Try direct session ref
	if id, ok := s.items[ref]; ok {
		return id, true
	}

	// Try as direct content ID
	if _, ok := s.reverse[ref]; ok {
		return ref, true
	}

	// Try description snippet match
	refLower := strings.ToLower(ref)
	for _, id := range s.items {
		desc := describe(id)
		if desc != "" && strings.Contains(strings.ToLower(desc), refLower) {
			return id, true
		}
	}

	return "", false
}

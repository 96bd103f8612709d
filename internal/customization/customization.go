package customization

import (
	"sort"
	"sync"
)

// Customization is one user's page snippet. Code is stored raw; a paused
// customization is rendered inert (escaped) rather than executed.
type Customization struct {
	UserID    string
	OwnerName string
	Code      string
	Paused    bool
}

// Store is the process-local set of customizations. Deliberately not
// persisted: a restart clears every snippet.
type Store struct {
	mu     sync.RWMutex
	byUser map[string]Customization
}

func NewStore() *Store {
	return &Store{byUser: make(map[string]Customization)}
}

// Set creates or replaces the user's customization and reports whether it
// is their first one. Setting un-pauses.
func (s *Store) Set(userID, ownerName, code string) (isNew bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.byUser[userID]
	s.byUser[userID] = Customization{
		UserID:    userID,
		OwnerName: ownerName,
		Code:      code,
	}
	return !exists
}

// Pause marks the user's customization paused. Anyone may pause anyone's
// snippet; that is the community's emergency brake for a bad one.
func (s *Store) Pause(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byUser[userID]
	if !ok {
		return false
	}
	c.Paused = true
	s.byUser[userID] = c
	return true
}

func (s *Store) Get(userID string) (Customization, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byUser[userID]
	return c, ok
}

// All returns every customization ordered by owner name for stable
// rendering.
func (s *Store) All() []Customization {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Customization, 0, len(s.byUser))
	for _, c := range s.byUser {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OwnerName < out[j].OwnerName })
	return out
}

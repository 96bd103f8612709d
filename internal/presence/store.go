package presence

import "sync"

// DefaultAvatarPath is used for participants whose avatar the feed has not
// supplied yet.
const DefaultAvatarPath = "recurse-community-bot.png"

// Participant is the denormalized entity for one person, keyed by the
// feed's person name (the only stable identifier at this layer).
type Participant struct {
	Name       string
	AvatarPath string
	Room       string // "" means not in any tracked room
	InHub      bool
	Batch      string
}

// Store holds the in-memory presence state: two co-maintained indexes over
// participants plus the hub check-in list in arrival order.
//
// Invariant: a name appears in at most one room's occupant list, and that
// room equals the participant's Room field; every hub-list name has
// InHub set. Mutators are unexported; only the Reconciler (same package)
// writes, everything else reads through the exported accessors.
type Store struct {
	mu           sync.RWMutex
	roomOccupant map[string][]string
	participants map[string]Participant
	hubNames     []string
}

func NewStore() *Store {
	return &Store{
		roomOccupant: make(map[string][]string),
		participants: make(map[string]Participant),
	}
}

// Participant returns a copy of the entity for name.
func (s *Store) Participant(name string) (Participant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.participants[name]
	return p, ok
}

// Occupants returns the names currently in room, in arrival order.
func (s *Store) Occupants(room string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.roomOccupant[room]...)
}

// HubNames returns the hub-checked-in names in arrival order.
func (s *Store) HubNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.hubNames...)
}

// AvatarPath returns the participant's avatar path, falling back to the
// community default.
func (s *Store) AvatarPath(name string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.participants[name]; ok && p.AvatarPath != "" {
		return p.AvatarPath
	}
	return DefaultAvatarPath
}

// upsertMeta creates the participant on first sight and refreshes avatar
// path and batch label. "" means the source did not carry the field (the
// hub-visit sync sees no batch data, incremental updates may omit the
// avatar), so an empty value never wipes a known one. Room and hub state
// are untouched.
func (s *Store) upsertMeta(name, avatarPath, batch string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.participants[name]
	p.Name = name
	if avatarPath != "" {
		p.AvatarPath = avatarPath
	}
	if batch != "" {
		p.Batch = batch
	}
	s.participants[name] = p
}

// setHub flips the participant's hub flag and keeps the hub list in sync.
func (s *Store) setHub(name string, inHub bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.participants[name]
	p.Name = name
	p.InHub = inHub
	s.participants[name] = p
	if inHub {
		s.hubNames = append(s.hubNames, name)
	} else {
		s.hubNames = removeName(s.hubNames, name)
	}
}

// moveToRoom places the participant in room, removing them from their
// previous room first. room == "" means "in no tracked room".
func (s *Store) moveToRoom(name, room string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.participants[name]
	p.Name = name
	if p.Room != "" {
		s.roomOccupant[p.Room] = removeName(s.roomOccupant[p.Room], name)
	}
	if room != "" {
		s.roomOccupant[room] = append(s.roomOccupant[room], name)
	}
	p.Room = room
	s.participants[name] = p
}

// replaceHub swaps in an authoritative hub list (directory API sync).
// Every participant's hub flag is re-derived from the new list.
func (s *Store) replaceHub(names []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, p := range s.participants {
		p.InHub = false
		s.participants[name] = p
	}
	s.hubNames = s.hubNames[:0]
	for _, name := range names {
		p := s.participants[name]
		p.Name = name
		p.InHub = true
		s.participants[name] = p
		s.hubNames = append(s.hubNames, name)
	}
}

// reset drops everything ahead of a world snapshot repopulation.
func (s *Store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomOccupant = make(map[string][]string)
	s.participants = make(map[string]Participant)
	s.hubNames = nil
}

// removeName tolerates the name being absent: the store is a best-effort
// cache of the feed's ground truth, not a source of truth itself.
func removeName(list []string, name string) []string {
	out := list[:0]
	for _, n := range list {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}

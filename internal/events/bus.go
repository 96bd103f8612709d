package events

import "sync"

// RoomChanged announces that one room's membership (or note) changed.
// Verb is "entered", "departed" or a note/annotation phrase; Room is the
// affected room; for departures, the room that was left.
type RoomChanged struct {
	Participant string
	Verb        string
	Room        string
}

// HubChanged announces that the hub check-in list changed.
type HubChanged struct{}

// CustomizationChanged announces a customization add, update or pause.
type CustomizationChanged struct {
	UserID string
	Verb   string
	IsNew  bool
}

// CancelFunc removes a listener. Safe to call more than once.
type CancelFunc func()

// Bus is the in-process fan-out point between the reconciler and every
// open client connection. Dispatch is synchronous; listeners must not
// block (connection listeners only enqueue onto a buffered send queue).
type Bus struct {
	mu     sync.RWMutex
	nextID uint64

	room          map[uint64]func(RoomChanged)
	hub           map[uint64]func(HubChanged)
	customization map[uint64]func(CustomizationChanged)
}

func NewBus() *Bus {
	return &Bus{
		room:          make(map[uint64]func(RoomChanged)),
		hub:           make(map[uint64]func(HubChanged)),
		customization: make(map[uint64]func(CustomizationChanged)),
	}
}

func (b *Bus) SubscribeRoom(fn func(RoomChanged)) CancelFunc {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.room[id] = fn
	return func() {
		b.mu.Lock()
		delete(b.room, id)
		b.mu.Unlock()
	}
}

func (b *Bus) SubscribeHub(fn func(HubChanged)) CancelFunc {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.hub[id] = fn
	return func() {
		b.mu.Lock()
		delete(b.hub, id)
		b.mu.Unlock()
	}
}

func (b *Bus) SubscribeCustomization(fn func(CustomizationChanged)) CancelFunc {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.customization[id] = fn
	return func() {
		b.mu.Lock()
		delete(b.customization, id)
		b.mu.Unlock()
	}
}

func (b *Bus) PublishRoom(ev RoomChanged) {
	b.mu.RLock()
	fns := make([]func(RoomChanged), 0, len(b.room))
	for _, fn := range b.room {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()
	for _, fn := range fns {
		fn(ev)
	}
}

func (b *Bus) PublishHub(ev HubChanged) {
	b.mu.RLock()
	fns := make([]func(HubChanged), 0, len(b.hub))
	for _, fn := range b.hub {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()
	for _, fn := range fns {
		fn(ev)
	}
}

func (b *Bus) PublishCustomization(ev CustomizationChanged) {
	b.mu.RLock()
	fns := make([]func(CustomizationChanged), 0, len(b.customization))
	for _, fn := range b.customization {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// ListenerCount returns the total number of registered listeners across
// all three topics. Used to verify connection teardown.
func (b *Bus) ListenerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.room) + len(b.hub) + len(b.customization)
}

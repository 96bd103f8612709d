package presence

import (
	"sync"

	"go.uber.org/zap"

	"presenceboard/internal/events"
	"presenceboard/internal/rooms"
)

// Observation is the canonical, feed-shape-independent record of one
// participant's latest known presence facts. "" is the absent-value
// sentinel throughout: Room == "" means "not in a tracked room", and an
// empty AvatarPath or Batch means "the source did not carry this field",
// not "clear the stored value".
type Observation struct {
	Participant string
	Room        string
	AvatarPath  string
	InHub       bool
	Batch       string
}

// Reconciler is the sole mutator of the Store. For each observation it
// diffs previous against new state, applies the implied mutations and
// announces the transitions on the bus. A mutex serializes the whole
// diff-then-mutate sequence so each observation is applied atomically.
// Announcements go out after the mutex is released, so a slow listener
// never stalls the next observation.
type Reconciler struct {
	mu       sync.Mutex
	store    *Store
	registry *rooms.Registry
	bus      *events.Bus
}

func NewReconciler(store *Store, registry *rooms.Registry, bus *events.Bus) *Reconciler {
	return &Reconciler{store: store, registry: registry, bus: bus}
}

// Observe applies one canonical observation. Applying the same observation
// twice is a no-op the second time: no mutation, no announcement.
func (r *Reconciler) Observe(obs Observation) {
	hubChanged, roomEv := r.apply(obs)
	if hubChanged {
		r.bus.PublishHub(events.HubChanged{})
	}
	if roomEv != nil {
		r.bus.PublishRoom(*roomEv)
	}
}

// apply holds the mutex for the diff-then-mutate sequence and reports the
// announcements the caller owes once the lock is released.
func (r *Reconciler) apply(obs Observation) (hubChanged bool, roomEv *events.RoomChanged) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if obs.Room != "" {
		if _, ok := r.registry.Lookup(obs.Room); !ok {
			if !r.registry.Silenced(obs.Room) {
				zap.L().Warn("surprising room name",
					zap.String("room", obs.Room),
					zap.String("participant", obs.Participant))
			}
			return false, nil
		}
	}

	prev, _ := r.store.Participant(obs.Participant)
	r.store.upsertMeta(obs.Participant, obs.AvatarPath, obs.Batch)

	if _, changed := diffHub(prev.InHub, obs.InHub); changed {
		r.store.setHub(obs.Participant, obs.InHub)
		verb := "left"
		if obs.InHub {
			verb = VerbEntered
		}
		zap.L().Info("hub check-in change",
			zap.String("participant", obs.Participant),
			zap.String("verb", verb))
		hubChanged = true
	}

	tr, changed := diffRoom(prev.Room, obs.Room)
	if !changed {
		return hubChanged, nil
	}
	r.store.moveToRoom(obs.Participant, obs.Room)
	zap.L().Info("room change",
		zap.String("participant", obs.Participant),
		zap.String("verb", tr.Verb),
		zap.String("room", tr.Room))
	return hubChanged, &events.RoomChanged{
		Participant: obs.Participant,
		Verb:        tr.Verb,
		Room:        tr.Room,
	}
}

// Reset clears the whole store ahead of a world snapshot. No announcement
// is made: the snapshot burst that follows emits the usual transitions.
func (r *Reconciler) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store.reset()
}

// SyncHubVisits replaces the hub list with the directory API's
// authoritative answer and backfills avatar paths for participants the
// feed has not described yet. One hub announcement covers the whole swap.
func (r *Reconciler) SyncHubVisits(names []string, avatarPaths map[string]string) {
	r.mu.Lock()
	for name, path := range avatarPaths {
		r.store.upsertMeta(name, path, "")
	}
	r.store.replaceHub(names)
	r.mu.Unlock()

	r.bus.PublishHub(events.HubChanged{})
}

// AnnounceNote forwards a note edit into the same broadcast path as a
// presence transition, so clients re-render the room.
func (r *Reconciler) AnnounceNote(room string) {
	r.bus.PublishRoom(events.RoomChanged{
		Participant: "someone",
		Verb:        "updated the note for",
		Room:        room,
	})
}

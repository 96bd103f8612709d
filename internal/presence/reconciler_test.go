package presence

import (
	"testing"

	"github.com/stretchr/testify/require"

	"presenceboard/internal/events"
	"presenceboard/internal/rooms"
)

func testRegistry() *rooms.Registry {
	return rooms.NewRegistry([]rooms.Room{
		{Name: "Aegis", Location: "https://example.test/aegis"},
		{Name: "Arca", Location: "https://example.test/arca"},
	}, []string{"Quiet Corner"})
}

// recorder collects bus events for assertions.
type recorder struct {
	room []events.RoomChanged
	hub  int
}

func newRecorder(bus *events.Bus) *recorder {
	rec := &recorder{}
	bus.SubscribeRoom(func(ev events.RoomChanged) { rec.room = append(rec.room, ev) })
	bus.SubscribeHub(func(events.HubChanged) { rec.hub++ })
	return rec
}

func newTestReconciler() (*Reconciler, *Store, *recorder) {
	store := NewStore()
	bus := events.NewBus()
	rec := newRecorder(bus)
	return NewReconciler(store, testRegistry(), bus), store, rec
}

// requireConsistent checks the bidirectional room-membership invariant:
// each occupant-list name points back at that room, and each participant's
// room contains them, with no name in more than one room.
func requireConsistent(t *testing.T, store *Store, names ...string) {
	t.Helper()
	req := require.New(t)
	for _, name := range names {
		p, ok := store.Participant(name)
		if !ok {
			continue
		}
		memberOf := 0
		for _, room := range []string{"Aegis", "Arca"} {
			for _, n := range store.Occupants(room) {
				if n == name {
					memberOf++
					req.Equal(room, p.Room, "occupant list and participant room disagree for %s", name)
				}
			}
		}
		req.LessOrEqual(memberOf, 1, "%s is in more than one room", name)
		if p.Room != "" {
			req.Contains(store.Occupants(p.Room), name)
		}
	}
}

func TestObserve_DuplicateIsIdempotent(t *testing.T) {
	req := require.New(t)
	rc, store, rec := newTestReconciler()

	obs := Observation{Participant: "Ada", Room: "Aegis"}
	rc.Observe(obs)
	rc.Observe(obs)

	req.Equal([]string{"Ada"}, store.Occupants("Aegis"))
	req.Len(rec.room, 1)
	req.Equal(events.RoomChanged{Participant: "Ada", Verb: "entered", Room: "Aegis"}, rec.room[0])
	requireConsistent(t, store, "Ada")
}

func TestObserve_Departure(t *testing.T) {
	req := require.New(t)
	rc, store, rec := newTestReconciler()

	rc.Observe(Observation{Participant: "Ada", Room: "Aegis"})
	rc.Observe(Observation{Participant: "Ada", Room: ""})

	req.Empty(store.Occupants("Aegis"))
	p, _ := store.Participant("Ada")
	req.Empty(p.Room)
	req.Len(rec.room, 2)
	req.Equal(events.RoomChanged{Participant: "Ada", Verb: "departed", Room: "Aegis"}, rec.room[1])
}

func TestObserve_MoveBetweenRooms(t *testing.T) {
	req := require.New(t)
	rc, store, rec := newTestReconciler()

	rc.Observe(Observation{Participant: "Ada", Room: "Aegis"})
	rc.Observe(Observation{Participant: "Ada", Room: "Arca"})

	req.Empty(store.Occupants("Aegis"))
	req.Equal([]string{"Ada"}, store.Occupants("Arca"))
	req.Len(rec.room, 2)
	req.Equal("entered", rec.room[1].Verb)
	req.Equal("Arca", rec.room[1].Room)
	requireConsistent(t, store, "Ada")
}

func TestObserve_HubOnly(t *testing.T) {
	req := require.New(t)
	rc, store, rec := newTestReconciler()

	rc.Observe(Observation{Participant: "Ben", InHub: true})
	rc.Observe(Observation{Participant: "Ben", InHub: false})

	req.Equal(2, rec.hub)
	req.Empty(rec.room)
	req.Empty(store.HubNames())
	p, _ := store.Participant("Ben")
	req.False(p.InHub)
}

func TestObserve_HubAndRoomAreOrthogonal(t *testing.T) {
	req := require.New(t)
	rc, store, rec := newTestReconciler()

	rc.Observe(Observation{Participant: "Ada", Room: "Aegis", InHub: true})

	req.Equal([]string{"Ada"}, store.Occupants("Aegis"))
	req.Equal([]string{"Ada"}, store.HubNames())
	req.Equal(1, rec.hub)
	req.Len(rec.room, 1)
}

func TestObserve_UnknownRoomDiscarded(t *testing.T) {
	req := require.New(t)
	rc, store, rec := newTestReconciler()

	rc.Observe(Observation{Participant: "Ada", Room: "Broom Closet"})

	_, ok := store.Participant("Ada")
	req.False(ok)
	req.Empty(rec.room)
	req.Zero(rec.hub)
}

func TestObserve_SilencedRoomDiscarded(t *testing.T) {
	req := require.New(t)
	rc, store, rec := newTestReconciler()

	rc.Observe(Observation{Participant: "Ada", Room: "Quiet Corner"})

	_, ok := store.Participant("Ada")
	req.False(ok)
	req.Empty(rec.room)
}

func TestObserve_MetadataAlwaysRefreshed(t *testing.T) {
	req := require.New(t)
	rc, store, rec := newTestReconciler()

	rc.Observe(Observation{Participant: "Ada", Room: "Aegis", AvatarPath: "old.png", Batch: "S1"})
	rc.Observe(Observation{Participant: "Ada", Room: "Aegis", AvatarPath: "new.png", Batch: "S2"})

	p, _ := store.Participant("Ada")
	req.Equal("new.png", p.AvatarPath)
	req.Equal("S2", p.Batch)
	req.Len(rec.room, 1, "metadata refresh alone must not announce")
}

func TestReset_ClearsEverything(t *testing.T) {
	req := require.New(t)
	rc, store, _ := newTestReconciler()

	rc.Observe(Observation{Participant: "Ada", Room: "Aegis", InHub: true})
	rc.Observe(Observation{Participant: "Ben", Room: "Arca"})
	rc.Reset()

	req.Empty(store.Occupants("Aegis"))
	req.Empty(store.Occupants("Arca"))
	req.Empty(store.HubNames())
	_, ok := store.Participant("Ada")
	req.False(ok)
}

func TestReset_RepopulationAnnouncesNormally(t *testing.T) {
	req := require.New(t)
	rc, store, rec := newTestReconciler()

	rc.Observe(Observation{Participant: "Ada", Room: "Aegis"})
	rc.Reset()
	rc.Observe(Observation{Participant: "Ada", Room: "Aegis"})

	req.Equal([]string{"Ada"}, store.Occupants("Aegis"))
	req.Len(rec.room, 2, "re-entry after reset is a fresh transition")
}

func TestSyncHubVisits(t *testing.T) {
	req := require.New(t)
	rc, store, rec := newTestReconciler()

	rc.Observe(Observation{Participant: "Ada", InHub: true})
	rc.SyncHubVisits([]string{"Ben", "Cleo"}, map[string]string{"Cleo": "cleo.png"})

	req.Equal([]string{"Ben", "Cleo"}, store.HubNames())
	ada, _ := store.Participant("Ada")
	req.False(ada.InHub)
	req.Equal("cleo.png", store.AvatarPath("Cleo"))
	req.Equal(2, rec.hub)
}

func TestAnnounceNote(t *testing.T) {
	req := require.New(t)
	rc, _, rec := newTestReconciler()

	rc.AnnounceNote("Aegis")

	req.Len(rec.room, 1)
	req.Equal("Aegis", rec.room[0].Room)
	req.Equal("updated the note for", rec.room[0].Verb)
}

func TestObserve_ListenerMayObserve(t *testing.T) {
	req := require.New(t)
	store := NewStore()
	bus := events.NewBus()
	rc := NewReconciler(store, testRegistry(), bus)

	// Announcements happen outside the critical section, so a listener
	// reacting with another observation must not deadlock.
	var announced []events.RoomChanged
	bus.SubscribeRoom(func(ev events.RoomChanged) {
		announced = append(announced, ev)
		if ev.Participant == "Ada" {
			rc.Observe(Observation{Participant: "Ben", Room: "Arca"})
		}
	})

	rc.Observe(Observation{Participant: "Ada", Room: "Aegis"})

	req.Len(announced, 2)
	req.Contains(store.Occupants("Aegis"), "Ada")
	req.Contains(store.Occupants("Arca"), "Ben")
}

func TestStore_RemoveToleratesMissingName(t *testing.T) {
	req := require.New(t)
	store := NewStore()

	// Asking to clear a participant the store never saw must be a no-op
	// rather than a panic: the store self-heals on the next snapshot.
	store.setHub("Ghost", false)
	store.moveToRoom("Ghost", "")

	req.Empty(store.HubNames())
	p, ok := store.Participant("Ghost")
	req.True(ok)
	req.Empty(p.Room)
}

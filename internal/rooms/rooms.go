package rooms

// Room is one trackable meeting room. Attributes are immutable after load;
// names match the feed's room-name vocabulary exactly, case-sensitive.
type Room struct {
	Name     string `json:"room_name"`
	Location string `json:"location"`
}

// Registry is the fixed set of trackable rooms plus the silence list of
// reported-but-untracked room names. Built once at startup, read-only after.
type Registry struct {
	rooms    []Room
	byName   map[string]Room
	silenced map[string]struct{}
}

func NewRegistry(list []Room, silenced []string) *Registry {
	r := &Registry{
		rooms:    append([]Room(nil), list...),
		byName:   make(map[string]Room, len(list)),
		silenced: make(map[string]struct{}, len(silenced)),
	}
	for _, room := range list {
		r.byName[room.Name] = room
	}
	for _, name := range silenced {
		r.silenced[name] = struct{}{}
	}
	return r
}

// Lookup returns the room for a feed-reported name.
func (r *Registry) Lookup(name string) (Room, bool) {
	room, ok := r.byName[name]
	return room, ok
}

// Silenced reports whether a room name is purposely untracked, meaning an
// observation naming it is dropped without a warning.
func (r *Registry) Silenced(name string) bool {
	_, ok := r.silenced[name]
	return ok
}

// All returns rooms in their configured order.
func (r *Registry) All() []Room {
	return append([]Room(nil), r.rooms...)
}

// Default is the production room list.
func Default() *Registry {
	return NewRegistry([]Room{
		{Name: "Aegis", Location: "https://www.recurse.com/zoom/aegis"},
		{Name: "Arca", Location: "https://www.recurse.com/zoom/arca"},
		{Name: "Edos", Location: "https://www.recurse.com/zoom/edos"},
		{Name: "Genera", Location: "https://www.recurse.com/zoom/genera"},
		{Name: "Midori", Location: "https://www.recurse.com/zoom/midori"},
		{Name: "Verve", Location: "https://www.recurse.com/zoom/verve"},
		{Name: "Couches", Location: "https://www.recurse.com/zoom/couches"},
		{Name: "Kitchen", Location: "https://www.recurse.com/zoom/kitchen"},
		{Name: "Pairing Station 1", Location: "https://www.recurse.com/zoom/pairing_station_1"},
		{Name: "Pairing Station 2", Location: "https://www.recurse.com/zoom/pairing_station_2"},
		{Name: "Pairing Station 3", Location: "https://www.recurse.com/zoom/pairing_station_3"},
		{Name: "Pairing Station 4", Location: "https://www.recurse.com/zoom/pairing_station_4"},
		{Name: "Pairing Station 5", Location: "https://www.recurse.com/zoom/pairing_station_5"},
		{Name: "Pairing Station 6", Location: "https://recurse.rctogether.com/zoom_meetings/35980/join"},
		{Name: "Pairing Station 7", Location: "https://recurse.rctogether.com/zoom_meetings/35983/join"},
		{Name: "Pomodoro Room", Location: "https://www.recurse.com/zoom/pomodoro_room"},
		{Name: "Presentation Space", Location: "https://www.recurse.com/zoom/presentation_space"},
		{Name: "Faculty Area", Location: "https://www.recurse.com/zoom/faculty_area"},
		{Name: "Faculty Lounge", Location: "https://www.recurse.com/zoom/faculty_lounge"},
	}, []string{
		"Sonali's Studio",
		"Sydney, Australia",
		"Nick's Nook",
		"Laura’s Office",
		"Cat Viewing Portal",
		"Adventure Time With Finn",
	})
}

package render

import (
	"context"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"presenceboard/internal/customization"
	"presenceboard/internal/notes"
	"presenceboard/internal/presence"
	"presenceboard/internal/rooms"
)

// View models are the renderer's whole input: flat, markup-free facts.
// The broadcaster and HTTP handlers build them through Builder and never
// touch templates themselves.

type ParticipantView struct {
	Name       string
	AvatarPath string
}

type RoomView struct {
	Name          string
	Slug          string
	Location      string
	IsEmpty       bool
	Count         int
	CountPhrase   string
	Participants  []ParticipantView
	HasNote       bool
	NoteContent   string
	NoteDateTime  string
	NoteEditedAgo string
}

type HubView struct {
	IsEmpty      bool
	Participants []ParticipantView
	CheckedIn    bool
}

type CustomizationView struct {
	UserID    string
	OwnerName string
	Code      string
	Paused    bool
	IsMine    bool
	IsNew     bool
}

type PageView struct {
	Authenticated       bool
	Rooms               []RoomView
	Hub                 HubView
	MyCustomization     *CustomizationView
	OtherCustomizations []CustomizationView
	SkipCustomizations  bool
}

// Builder assembles view models from the live stores.
type Builder struct {
	store          *presence.Store
	registry       *rooms.Registry
	notes          *notes.Store
	customizations *customization.Store
}

func NewBuilder(store *presence.Store, registry *rooms.Registry, noteStore *notes.Store, customizations *customization.Store) *Builder {
	return &Builder{
		store:          store,
		registry:       registry,
		notes:          noteStore,
		customizations: customizations,
	}
}

// Room builds the full current view of one room. Pushed views are always
// full room snapshots, never diffs.
func (b *Builder) Room(ctx context.Context, room rooms.Room) RoomView {
	names := b.store.Occupants(room.Name)
	view := RoomView{
		Name:        room.Name,
		Slug:        Slug(room.Name),
		Location:    room.Location,
		IsEmpty:     len(names) == 0,
		Count:       len(names),
		CountPhrase: CountPhrase(len(names)),
		Participants: lo.Map(names, func(name string, _ int) ParticipantView {
			return ParticipantView{Name: name, AvatarPath: b.store.AvatarPath(name)}
		}),
	}

	note, ok, err := b.notes.Get(ctx, room.Name)
	if err != nil {
		zap.L().Warn("note lookup failed", zap.String("room", room.Name), zap.Error(err))
	}
	if ok {
		view.HasNote = true
		view.NoteContent = note.Content
		view.NoteDateTime = note.EditedAt.Format("2006-01-02T15:04:05Z07:00")
		view.NoteEditedAgo = MinutesAgoPhrase(note.EditedAt)
	}
	return view
}

// RoomByName resolves the registry entry first; unknown names yield a
// zero view and false.
func (b *Builder) RoomByName(ctx context.Context, name string) (RoomView, bool) {
	room, ok := b.registry.Lookup(name)
	if !ok {
		return RoomView{}, false
	}
	return b.Room(ctx, room), true
}

// Hub builds the hub panel for a particular viewer (CheckedIn is "am I
// checked in"; viewerName may be empty for anonymous connections).
func (b *Builder) Hub(viewerName string) HubView {
	names := b.store.HubNames()
	checkedIn := false
	if viewerName != "" {
		if p, ok := b.store.Participant(viewerName); ok {
			checkedIn = p.InHub
		}
	}
	return HubView{
		IsEmpty: len(names) == 0,
		Participants: lo.Map(names, func(name string, _ int) ParticipantView {
			return ParticipantView{Name: name, AvatarPath: b.store.AvatarPath(name)}
		}),
		CheckedIn: checkedIn,
	}
}

// Customization builds the view of one user's snippet for a viewer.
func (b *Builder) Customization(c customization.Customization, viewerID string, isNew bool) CustomizationView {
	return CustomizationView{
		UserID:    c.UserID,
		OwnerName: c.OwnerName,
		Code:      c.Code,
		Paused:    c.Paused,
		IsMine:    c.UserID == viewerID,
		IsNew:     isNew,
	}
}

// Page builds the whole dashboard, rooms sorted by occupancy (fuller rooms
// first) when sortRooms is set, otherwise in registry order.
func (b *Builder) Page(ctx context.Context, viewerID, viewerName string, authenticated, sortRooms, skipCustomizations bool) PageView {
	roomViews := lo.Map(b.registry.All(), func(room rooms.Room, _ int) RoomView {
		return b.Room(ctx, room)
	})
	if sortRooms {
		stableSortByCountDesc(roomViews)
	}

	page := PageView{
		Authenticated:      authenticated,
		Rooms:              roomViews,
		Hub:                b.Hub(viewerName),
		SkipCustomizations: skipCustomizations,
	}
	if skipCustomizations {
		return page
	}
	for _, c := range b.customizations.All() {
		view := b.Customization(c, viewerID, false)
		if view.IsMine {
			mine := view
			page.MyCustomization = &mine
			continue
		}
		page.OtherCustomizations = append(page.OtherCustomizations, view)
	}
	return page
}

func stableSortByCountDesc(views []RoomView) {
	// Insertion sort keeps the registry order among equal counts.
	for i := 1; i < len(views); i++ {
		for j := i; j > 0 && views[j].Count > views[j-1].Count; j-- {
			views[j], views[j-1] = views[j-1], views[j]
		}
	}
}

// Slug turns a room name into an HTML-id-safe token for swap targets.
func Slug(name string) string {
	lower := strings.ToLower(name)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, lower)
}

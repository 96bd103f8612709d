package render

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/require"

	"presenceboard/internal/customization"
	"presenceboard/internal/events"
	"presenceboard/internal/notes"
	"presenceboard/internal/presence"
	"presenceboard/internal/rooms"
)

func testBuilder(t *testing.T) (*Builder, *presence.Reconciler, redismock.ClientMock) {
	t.Helper()
	registry := rooms.NewRegistry([]rooms.Room{
		{Name: "Aegis", Location: "https://example.test/aegis"},
		{Name: "Pairing Station 1", Location: "https://example.test/ps1"},
	}, nil)
	store := presence.NewStore()
	rc := presence.NewReconciler(store, registry, events.NewBus())
	rdc, mock := redismock.NewClientMock()
	builder := NewBuilder(store, registry, notes.NewStore(rdc), customization.NewStore())
	return builder, rc, mock
}

func TestBuilder_Room(t *testing.T) {
	req := require.New(t)
	builder, rc, mock := testBuilder(t)

	rc.Observe(presence.Observation{Participant: "Ada", Room: "Aegis", AvatarPath: "ada.png"})
	rc.Observe(presence.Observation{Participant: "Ben", Room: "Aegis"})

	edited := time.Now().Add(-3 * time.Minute)
	mock.ExpectHGetAll("note:Aegis").SetVal(map[string]string{
		"content":   "come pair!",
		"edited_at": strconv.FormatInt(edited.Unix(), 10),
	})

	view, ok := builder.RoomByName(context.Background(), "Aegis")
	req.True(ok)
	req.Equal("Aegis", view.Name)
	req.Equal("aegis", view.Slug)
	req.False(view.IsEmpty)
	req.Equal(2, view.Count)
	req.Equal("2 people", view.CountPhrase)
	req.Equal([]ParticipantView{
		{Name: "Ada", AvatarPath: "ada.png"},
		{Name: "Ben", AvatarPath: presence.DefaultAvatarPath},
	}, view.Participants)
	req.True(view.HasNote)
	req.Equal("come pair!", view.NoteContent)
	req.Equal("a few minutes ago", view.NoteEditedAgo)
}

func TestBuilder_RoomUnknown(t *testing.T) {
	req := require.New(t)
	builder, _, _ := testBuilder(t)

	_, ok := builder.RoomByName(context.Background(), "Broom Closet")
	req.False(ok)
}

func TestBuilder_Hub(t *testing.T) {
	req := require.New(t)
	builder, rc, _ := testBuilder(t)

	rc.Observe(presence.Observation{Participant: "Ada", InHub: true})

	view := builder.Hub("Ada")
	req.False(view.IsEmpty)
	req.True(view.CheckedIn)
	req.Equal("Ada", view.Participants[0].Name)

	stranger := builder.Hub("Ben")
	req.False(stranger.CheckedIn)
}

func TestSlug(t *testing.T) {
	req := require.New(t)
	req.Equal("pairing-station-1", Slug("Pairing Station 1"))
	req.Equal("laura-s-office", Slug("Laura's Office"))
}

func TestCountPhrase(t *testing.T) {
	req := require.New(t)
	req.Equal("", CountPhrase(0))
	req.Equal("1 person", CountPhrase(1))
	req.Equal("7 people", CountPhrase(7))
}

func TestMinutesAgoPhrase(t *testing.T) {
	req := require.New(t)
	req.Equal("just now", MinutesAgoPhrase(time.Now().Add(-time.Minute)))
	req.Equal("recently", MinutesAgoPhrase(time.Now().Add(-25*time.Minute)))
	req.Equal("a while ago", MinutesAgoPhrase(time.Now().Add(-3*time.Hour)))
	req.Equal("in the future?", MinutesAgoPhrase(time.Now().Add(time.Hour)))
}

func TestHTML_RoomFragment(t *testing.T) {
	req := require.New(t)
	r, err := NewHTML()
	req.NoError(err)

	out, err := r.Room(RoomView{
		Name:        "Aegis",
		Slug:        "aegis",
		Location:    "https://example.test/aegis",
		Count:       1,
		CountPhrase: "1 person",
		Participants: []ParticipantView{
			{Name: "Ada", AvatarPath: "ada.png"},
		},
		HasNote:     true,
		NoteContent: "<script>alert(1)</script>",
	})
	req.NoError(err)
	req.Contains(out, `id="room-aegis"`)
	req.Contains(out, `title="Ada"`)
	req.Contains(out, "1 person")
	req.NotContains(out, "<script>alert(1)</script>", "note content must be escaped")
}

func TestHTML_HubFragment(t *testing.T) {
	req := require.New(t)
	r, err := NewHTML()
	req.NoError(err)

	out, err := r.Hub(HubView{IsEmpty: true})
	req.NoError(err)
	req.Contains(out, `id="in-the-hub"`)
	req.Contains(out, "No one has checked in yet today.")

	out, err = r.Hub(HubView{CheckedIn: true, Participants: []ParticipantView{{Name: "Ada", AvatarPath: "a.png"}}})
	req.NoError(err)
	req.Contains(out, "You are checked in.")
}

func TestHTML_CustomizationPauseEscapes(t *testing.T) {
	req := require.New(t)
	r, err := NewHTML()
	req.NoError(err)

	active, err := r.Customization(CustomizationView{UserID: "u1", OwnerName: "Ada", Code: "<style>body{}</style>"})
	req.NoError(err)
	req.Contains(active, "<style>body{}</style>", "active code runs as written")

	paused, err := r.Customization(CustomizationView{UserID: "u1", OwnerName: "Ada", Code: "<style>body{}</style>", Paused: true})
	req.NoError(err)
	req.NotContains(paused, "<style>body{}</style>", "paused code must be inert")
}

func TestHTML_Page(t *testing.T) {
	req := require.New(t)
	r, err := NewHTML()
	req.NoError(err)

	out, err := r.Page(PageView{Authenticated: false})
	req.NoError(err)
	req.Contains(out, "/getAuthorizationUrl")

	out, err = r.Page(PageView{Authenticated: true, Rooms: []RoomView{{Name: "Aegis", Slug: "aegis"}}})
	req.NoError(err)
	req.Contains(out, `ws-connect="/ws"`)
	req.Contains(out, `id="room-aegis"`)
}

package notes

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/require"
)

func TestSet_WritesNoteWithExpiry(t *testing.T) {
	req := require.New(t)
	rdc, mock := redismock.NewClientMock()
	store := NewStore(rdc)

	mock.Regexp().ExpectHSet("note:Aegis",
		"content", "pairing on parsers", "edited_at", `^\d+$`).SetVal(2)
	mock.ExpectExpire("note:Aegis", TTL).SetVal(true)

	req.NoError(store.Set(context.Background(), "Aegis", "pairing on parsers"))
	req.NoError(mock.ExpectationsWereMet())
}

func TestSet_BlankContentClearsNote(t *testing.T) {
	req := require.New(t)
	rdc, mock := redismock.NewClientMock()
	store := NewStore(rdc)

	mock.ExpectDel("note:Aegis").SetVal(1)

	req.NoError(store.Set(context.Background(), "Aegis", "   \n\t"))
	req.NoError(mock.ExpectationsWereMet())
}

func TestGet_ReturnsNote(t *testing.T) {
	req := require.New(t)
	rdc, mock := redismock.NewClientMock()
	store := NewStore(rdc)

	edited := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectHGetAll("note:Aegis").SetVal(map[string]string{
		"content":   "pairing on parsers",
		"edited_at": strconv.FormatInt(edited.Unix(), 10),
	})

	note, ok, err := store.Get(context.Background(), "Aegis")
	req.NoError(err)
	req.True(ok)
	req.Equal("pairing on parsers", note.Content)
	req.Equal(edited, note.EditedAt)
}

func TestGet_MissingNote(t *testing.T) {
	req := require.New(t)
	rdc, mock := redismock.NewClientMock()
	store := NewStore(rdc)

	mock.ExpectHGetAll("note:Verve").SetVal(map[string]string{})

	_, ok, err := store.Get(context.Background(), "Verve")
	req.NoError(err)
	req.False(ok)
}

package customization

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSet_FirstTimeIsNew(t *testing.T) {
	req := require.New(t)
	store := NewStore()

	req.True(store.Set("u1", "Ada", "body { background: lavender }"))
	req.False(store.Set("u1", "Ada", "body { background: mint }"))

	c, ok := store.Get("u1")
	req.True(ok)
	req.Equal("body { background: mint }", c.Code)
}

func TestPause(t *testing.T) {
	req := require.New(t)
	store := NewStore()

	req.False(store.Pause("missing"))

	store.Set("u1", "Ada", "code")
	req.True(store.Pause("u1"))
	c, _ := store.Get("u1")
	req.True(c.Paused)

	// A fresh Set un-pauses.
	store.Set("u1", "Ada", "code2")
	c, _ = store.Get("u1")
	req.False(c.Paused)
}

func TestAll_OrderedByOwner(t *testing.T) {
	req := require.New(t)
	store := NewStore()

	store.Set("u2", "Zoe", "z")
	store.Set("u1", "Ada", "a")

	all := store.All()
	req.Len(all, 2)
	req.Equal("Ada", all[0].OwnerName)
	req.Equal("Zoe", all[1].OwnerName)
}

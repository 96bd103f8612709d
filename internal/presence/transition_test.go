package presence

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiffRoom(t *testing.T) {
	cases := []struct {
		name       string
		prev, next string
		wantVerb   string
		wantRoom   string
		wantChange bool
	}{
		{name: "enter from nowhere", prev: "", next: "Aegis", wantVerb: VerbEntered, wantRoom: "Aegis", wantChange: true},
		{name: "move between rooms", prev: "Aegis", next: "Arca", wantVerb: VerbEntered, wantRoom: "Arca", wantChange: true},
		{name: "depart names the previous room", prev: "Aegis", next: "", wantVerb: VerbDeparted, wantRoom: "Aegis", wantChange: true},
		{name: "duplicate observation", prev: "Aegis", next: "Aegis", wantChange: false},
		{name: "still nowhere", prev: "", next: "", wantChange: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := require.New(t)
			tr, changed := diffRoom(tc.prev, tc.next)
			req.Equal(tc.wantChange, changed)
			if changed {
				req.Equal(tc.wantVerb, tr.Verb)
				req.Equal(tc.wantRoom, tr.Room)
			}
		})
	}
}

func TestDiffHub(t *testing.T) {
	req := require.New(t)

	checkedIn, changed := diffHub(false, true)
	req.True(changed)
	req.True(checkedIn)

	checkedIn, changed = diffHub(true, false)
	req.True(changed)
	req.False(checkedIn)

	_, changed = diffHub(true, true)
	req.False(changed)

	_, changed = diffHub(false, false)
	req.False(changed)
}

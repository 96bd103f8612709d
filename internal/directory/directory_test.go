package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMe(t *testing.T) {
	req := require.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal("/api/v1/profiles/me", r.URL.Path)
		req.Equal("Bearer tok", r.Header.Get("Authorization"))
		w.Write([]byte(`{"id":42,"name":"Ada","image_path":"ada.png"}`))
	}))
	defer srv.Close()

	p, err := NewClient(srv.URL).Me(context.Background(), "tok")
	req.NoError(err)
	req.Equal(int64(42), p.ID)
	req.Equal("Ada", p.Name)
}

func TestHubVisits(t *testing.T) {
	req := require.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal("/api/v1/hub_visits", r.URL.Path)
		req.Equal("2026-03-01", r.URL.Query().Get("date"))
		w.Write([]byte(`[{"person":{"id":1,"name":"Ada"}},{"person":{"id":2,"name":"Ben"}}]`))
	}))
	defer srv.Close()

	visits, err := NewClient(srv.URL).HubVisits(context.Background(), "tok", "2026-03-01")
	req.NoError(err)
	req.Len(visits, 2)
	req.Equal("Ben", visits[1].Person.Name)
}

func TestCheckIn(t *testing.T) {
	req := require.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal(http.MethodPatch, r.Method)
		req.Equal("/api/v1/hub_visits/42/2026-03-01", r.URL.Path)
		req.NoError(r.ParseForm())
		req.Equal("back for the afternoon", r.PostForm.Get("notes"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).CheckIn(context.Background(), "tok", 42, "2026-03-01", "back for the afternoon")
	req.NoError(err)
}

func TestErrorStatus(t *testing.T) {
	req := require.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Me(context.Background(), "bad")
	req.Error(err)
}

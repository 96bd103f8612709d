package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the community directory's REST API with a per-request
// OAuth access token. It covers only what the dashboard needs: who am I,
// avatar backfill, today's hub visits and hub check-in.
type Client struct {
	baseURL string
	http    *http.Client
}

type Profile struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ImagePath string `json:"image_path"`
}

type HubVisit struct {
	Person Profile `json:"person"`
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) get(ctx context.Context, token, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("directory GET %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Me returns the profile of the token's owner.
func (c *Client) Me(ctx context.Context, token string) (Profile, error) {
	var p Profile
	err := c.get(ctx, token, "/api/v1/profiles/me", &p)
	return p, err
}

// ProfileByID fetches one profile, used to backfill avatar paths for
// people first seen through the hub-visits API.
func (c *Client) ProfileByID(ctx context.Context, token string, id int64) (Profile, error) {
	var p Profile
	err := c.get(ctx, token, fmt.Sprintf("/api/v1/profiles/%d", id), &p)
	return p, err
}

// HubVisits lists everyone checked into the physical space on date
// (yyyy-mm-dd).
func (c *Client) HubVisits(ctx context.Context, token, date string) ([]HubVisit, error) {
	var visits []HubVisit
	path := "/api/v1/hub_visits?per_page=200&date=" + url.QueryEscape(date)
	err := c.get(ctx, token, path, &visits)
	return visits, err
}

// CheckIn records a hub visit for the user today, with an optional note.
func (c *Client) CheckIn(ctx context.Context, token string, userID int64, date, note string) error {
	body := strings.NewReader(url.Values{"notes": {note}}.Encode())
	path := fmt.Sprintf("%s/api/v1/hub_visits/%d/%s", c.baseURL, userID, date)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("directory check-in: status %d", resp.StatusCode)
	}
	return nil
}

// Today is the date string the hub-visits API expects.
func Today() string {
	return time.Now().UTC().Format("2006-01-02")
}

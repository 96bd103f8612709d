package render

import (
	"fmt"
	"html/template"
	"strings"
)

// Renderer turns view models into HTML fragments. The broadcaster pushes
// the returned strings verbatim; it does not know or care about markup.
type Renderer interface {
	Room(RoomView) (string, error)
	Hub(HubView) (string, error)
	Customization(CustomizationView) (string, error)
}

// HTML is the html/template implementation of Renderer, plus the page and
// form fragments the HTTP handlers serve. Fragments carry hx-swap-oob ids
// so the htmx websocket extension swaps them in place.
type HTML struct {
	t *template.Template
}

func NewHTML() (*HTML, error) {
	t := template.New("fragments").Funcs(template.FuncMap{
		// A paused customization is shown escaped instead of executed;
		// an active one is the owner's code, injected as-is on purpose.
		"rawWhenActive": func(c CustomizationView) template.HTML {
			if c.Paused {
				return template.HTML(template.HTMLEscapeString(c.Code))
			}
			return template.HTML(c.Code)
		},
	})
	var err error
	t, err = t.Parse(fragmentTemplates)
	if err != nil {
		return nil, fmt.Errorf("parse fragment templates: %w", err)
	}
	return &HTML{t: t}, nil
}

func (h *HTML) exec(name string, data any) (string, error) {
	var sb strings.Builder
	if err := h.t.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return sb.String(), nil
}

func (h *HTML) Room(v RoomView) (string, error) { return h.exec("room", v) }

func (h *HTML) Hub(v HubView) (string, error) { return h.exec("hub", v) }

func (h *HTML) Customization(v CustomizationView) (string, error) {
	return h.exec("customization", v)
}

func (h *HTML) EditNoteForm(roomName, noteContent string) (string, error) {
	return h.exec("editNoteForm", map[string]string{
		"RoomName":    roomName,
		"NoteContent": noteContent,
	})
}

func (h *HTML) EditCustomizationForm(code string) (string, error) {
	return h.exec("editCustomizationForm", map[string]string{"Code": code})
}

func (h *HTML) CheckIntoHubForm() (string, error) {
	return h.exec("checkIntoHubForm", nil)
}

func (h *HTML) PauseConfirmation(userID string) (string, error) {
	return h.exec("pauseConfirmation", map[string]string{"UserID": userID})
}

func (h *HTML) Page(v PageView) (string, error) { return h.exec("page", v) }

const fragmentTemplates = `
{{define "participants"}}<div class="participants">{{range .}}<img class="participants__participant" src="{{.AvatarPath}}" title="{{.Name}}">{{end}}</div>{{end}}

{{define "room"}}<div id="room-{{.Slug}}" hx-swap-oob="outerHTML" class="display-contents">
  <div class="room{{if not .IsEmpty}} room--non-empty{{end}}">
    <dt>
      <span class="room__title">{{.Name}}</span>
      <a href="{{.Location}}" target="_blank" rel="noopener noreferrer">Join</a>
      <span class="room__count">{{.CountPhrase}}</span>
    </dt>
    <dd class="room__details">
      {{template "participants" .Participants}}
      <div class="display-contents">
        {{if .HasNote}}<div class="room__note">{{.NoteContent}}</div>
        <time datetime="{{.NoteDateTime}}">{{.NoteEditedAgo}}</time>{{end}}
        <button hx-get="/note.html?roomName={{.Name}}" hx-swap="outerHTML" hx-target="closest div">{{if .HasNote}}Edit note{{else}}Add note{{end}}</button>
      </div>
    </dd>
  </div>
</div>{{end}}

{{define "hub"}}<div id="in-the-hub" hx-swap-oob="outerHTML" class="hub">
  <h2>Who is in the Hub</h2>
  {{if .IsEmpty}}<p>No one has checked in yet today.</p>{{else}}{{template "participants" .Participants}}{{end}}
  {{if .CheckedIn}}<p>You are checked in.</p>{{else}}<button hx-get="/checkIntoHub.html" hx-swap="outerHTML">Check in</button>{{end}}
</div>{{end}}

{{define "customization"}}<div id="customization-{{.UserID}}" hx-swap-oob="outerHTML" class="customization">
  <details>
    <summary>{{.OwnerName}}'s customization{{if .Paused}} (paused){{end}}</summary>
    {{if .IsMine}}<button hx-get="/editCustomization.html" hx-swap="outerHTML">Edit</button>{{end}}
    <button hx-post="/pauseCustomizationConfirmation.html?rcUserId={{.UserID}}" hx-swap="outerHTML">Pause</button>
  </details>
  {{rawWhenActive .}}
</div>{{end}}

{{define "editNoteForm"}}<form method="POST" action="/note" hx-post="/note" hx-swap="none">
  <input type="hidden" name="room" value="{{.RoomName}}">
  <label>Note
    <textarea name="content" class="room__edit-note">{{.NoteContent}}</textarea>
  </label>
  <button type="submit">Update</button>
</form>{{end}}

{{define "editCustomizationForm"}}<form method="POST" action="/customization" hx-post="/customization" hx-swap="none">
  <label>Customization code
    <textarea name="code">{{.Code}}</textarea>
  </label>
  <button type="submit">Save</button>
</form>{{end}}

{{define "checkIntoHubForm"}}<form method="POST" action="/checkIntoHub" hx-post="/checkIntoHub" hx-swap="none">
  <label>Note (optional)
    <input type="text" name="note">
  </label>
  <button type="submit">Check into the Hub</button>
</form>{{end}}

{{define "pauseConfirmation"}}<button hx-post="/pauseCustomization?rcUserId={{.UserID}}" hx-swap="none">Really pause?</button>{{end}}

{{define "page"}}<!DOCTYPE html>
<html lang="en">
  <head>
    <title>Presence Board</title>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <link rel="stylesheet" type="text/css" href="site.css" />
  </head>
  <body>
    <h1>Presence Board</h1>
    {{if .Authenticated}}
    <div hx-ext="ws" ws-connect="/ws">
      {{template "hub" .Hub}}
      <dl class="room-list">
        {{range .Rooms}}{{template "room" .}}{{end}}
      </dl>
      {{if not .SkipCustomizations}}
      {{with .MyCustomization}}{{template "customization" .}}{{end}}
      {{range .OtherCustomizations}}{{template "customization" .}}{{end}}
      {{end}}
    </div>
    <p>You're logged in! - <a href="/logout">logout</a></p>
    {{else}}
    <p><a href="/getAuthorizationUrl">Login</a></p>
    {{end}}
    <script src="https://unpkg.com/htmx.org@1.9.10"></script>
    <script src="https://unpkg.com/htmx.org/dist/ext/ws.js"></script>
  </body>
</html>{{end}}
`

package boardhandler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"presenceboard/internal/auth"
	"presenceboard/internal/customization"
	"presenceboard/internal/directory"
	"presenceboard/internal/events"
	"presenceboard/internal/hubvisits"
	"presenceboard/internal/notes"
	"presenceboard/internal/presence"
	"presenceboard/internal/render"
	"presenceboard/internal/rooms"
)

// Handler serves the dashboard page, the note/customization/hub-check-in
// writes and the OAuth login legs. Presence writes never happen here; a
// note edit is forwarded through the reconciler's announcement path like
// any other room change.
type Handler struct {
	registry  *rooms.Registry
	builder   *render.Builder
	renderer  *render.HTML
	notes     *notes.Store
	customs   *customization.Store
	bus       *events.Bus
	rc        *presence.Reconciler
	refresher *hubvisits.Refresher
	sessions  *auth.SessionStore
	oauth     *auth.OAuth
	dir       *directory.Client
	mw        *auth.Middleware
}

func New(
	registry *rooms.Registry,
	builder *render.Builder,
	renderer *render.HTML,
	noteStore *notes.Store,
	customs *customization.Store,
	bus *events.Bus,
	rc *presence.Reconciler,
	refresher *hubvisits.Refresher,
	sessions *auth.SessionStore,
	oauth *auth.OAuth,
	dir *directory.Client,
	mw *auth.Middleware,
) *Handler {
	return &Handler{
		registry:  registry,
		builder:   builder,
		renderer:  renderer,
		notes:     noteStore,
		customs:   customs,
		bus:       bus,
		rc:        rc,
		refresher: refresher,
		sessions:  sessions,
		oauth:     oauth,
		dir:       dir,
		mw:        mw,
	}
}

func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/", h.page)
	r.GET("/getAuthorizationUrl", h.login)
	r.GET("/oauthRedirect", h.oauthRedirect)
	r.GET("/logout", h.logout)

	authed := h.mw.RequireAuth()
	r.POST("/note", authed, h.setNote)
	r.GET("/note.html", authed, h.editNoteForm)
	r.GET("/checkIntoHub.html", authed, h.checkIntoHubForm)
	r.POST("/checkIntoHub", authed, h.checkIntoHub)
	r.POST("/customization", authed, h.setCustomization)
	r.GET("/editCustomization.html", authed, h.editCustomizationForm)
	r.POST("/pauseCustomizationConfirmation.html", authed, h.pauseConfirmation)
	r.POST("/pauseCustomization", authed, h.pauseCustomization)
}

func (h *Handler) page(c *gin.Context) {
	var q PageQuery
	_ = c.ShouldBindQuery(&q)

	ident := auth.IdentityFrom(c)
	if ident.Authenticated && ident.AccessToken != "" {
		h.refresher.MaybeSync(c.Request.Context(), ident.AccessToken)
	}

	view := h.builder.Page(c.Request.Context(),
		ident.UserID, ident.PersonName, ident.Authenticated,
		q.Sort != "none", q.Basic != nil)
	html, err := h.renderer.Page(view)
	if err != nil {
		zap.L().Error("page render failed", zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// @Summary		Set a room note
// @Description	Attaches a free-text note to a room. A blank note clears it.
// @Tags			Rooms
// @Param			body	formData	NoteForm	true	"Note payload"
// @Success		200
// @Failure		400	{object}	ErrorResponse
// @Router			/note [post]
func (h *Handler) setNote(c *gin.Context) {
	var form NoteForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if _, ok := h.registry.Lookup(form.Room); !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unknown room"})
		return
	}
	if err := h.notes.Set(c.Request.Context(), form.Room, form.Content); err != nil {
		zap.L().Error("note write failed", zap.String("room", form.Room), zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}
	h.rc.AnnounceNote(form.Room)
	c.Status(http.StatusOK)
}

func (h *Handler) editNoteForm(c *gin.Context) {
	roomName := c.Query("roomName")
	if _, ok := h.registry.Lookup(roomName); !ok {
		c.Status(http.StatusBadRequest)
		return
	}
	content := ""
	if note, ok, _ := h.notes.Get(c.Request.Context(), roomName); ok {
		content = note.Content
	}
	h.fragment(c, func() (string, error) { return h.renderer.EditNoteForm(roomName, content) })
}

func (h *Handler) checkIntoHubForm(c *gin.Context) {
	h.fragment(c, h.renderer.CheckIntoHubForm)
}

// @Summary		Check into the hub
// @Description	Records a hub visit for today via the directory API.
// @Tags			Hub
// @Param			body	formData	CheckIntoHubForm	false	"Optional note"
// @Success		200
// @Router			/checkIntoHub [post]
func (h *Handler) checkIntoHub(c *gin.Context) {
	var form CheckIntoHubForm
	_ = c.ShouldBind(&form)

	ident := auth.IdentityFrom(c)
	userID, err := strconv.ParseInt(ident.UserID, 10, 64)
	if err != nil {
		c.Status(http.StatusForbidden)
		return
	}
	if err := h.dir.CheckIn(c.Request.Context(), ident.AccessToken, userID, directory.Today(), form.Note); err != nil {
		zap.L().Warn("hub check-in failed", zap.Error(err))
		c.Status(http.StatusBadGateway)
		return
	}
	c.Status(http.StatusOK)
}

// @Summary		Save a page customization
// @Description	Creates or replaces the caller's customization snippet.
// @Tags			Customizations
// @Param			body	formData	CustomizationForm	true	"Snippet code"
// @Success		200
// @Router			/customization [post]
func (h *Handler) setCustomization(c *gin.Context) {
	var form CustomizationForm
	_ = c.ShouldBind(&form)

	ident := auth.IdentityFrom(c)
	isNew := h.customs.Set(ident.UserID, ident.PersonName, form.Code)
	verb := "updated their customization"
	if isNew {
		verb = "added a new customization"
	}
	zap.L().Info("customization change",
		zap.String("user", ident.UserID), zap.String("verb", verb))
	h.bus.PublishCustomization(events.CustomizationChanged{
		UserID: ident.UserID,
		Verb:   verb,
		IsNew:  isNew,
	})
	c.Status(http.StatusOK)
}

func (h *Handler) editCustomizationForm(c *gin.Context) {
	code := ""
	if custom, ok := h.customs.Get(auth.IdentityFrom(c).UserID); ok {
		code = custom.Code
	}
	h.fragment(c, func() (string, error) { return h.renderer.EditCustomizationForm(code) })
}

func (h *Handler) pauseConfirmation(c *gin.Context) {
	var q PauseQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	h.fragment(c, func() (string, error) { return h.renderer.PauseConfirmation(q.UserID) })
}

// @Summary		Pause a customization
// @Description	Marks any user's customization paused so it renders inert.
// @Tags			Customizations
// @Param			rcUserId	query	string	true	"Owner's user id"
// @Success		200
// @Router			/pauseCustomization [post]
func (h *Handler) pauseCustomization(c *gin.Context) {
	var q PauseQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	if !h.customs.Pause(q.UserID) {
		c.Status(http.StatusOK)
		return
	}
	h.bus.PublishCustomization(events.CustomizationChanged{
		UserID: q.UserID,
		Verb:   "customization was paused",
	})
	c.Status(http.StatusOK)
}

func (h *Handler) login(c *gin.Context) {
	state := uuid.NewString()
	c.SetCookie(auth.StateCookie, state, 600, "/", "", false, true)
	c.Redirect(http.StatusFound, h.oauth.AuthCodeURL(state))
}

func (h *Handler) oauthRedirect(c *gin.Context) {
	state := c.Query("state")
	cookieState, err := c.Cookie(auth.StateCookie)
	if err != nil || state == "" || state != cookieState {
		zap.L().Warn("oauth state mismatch")
		c.Redirect(http.StatusFound, "/")
		return
	}

	tok, err := h.oauth.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		zap.L().Warn("oauth code exchange failed", zap.Error(err))
		c.Redirect(http.StatusFound, "/")
		return
	}
	sess, err := h.sessions.Create(c.Request.Context(), tok.RefreshToken)
	if err != nil {
		zap.L().Error("session create failed", zap.Error(err))
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.SetCookie(auth.SessionCookie, sess.ID, int(time.Until(sess.ExpiresAt).Seconds()), "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) logout(c *gin.Context) {
	if ident := auth.IdentityFrom(c); ident.SessionID != "" {
		_ = h.sessions.Delete(c.Request.Context(), ident.SessionID)
	}
	c.SetCookie(auth.SessionCookie, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) fragment(c *gin.Context, renderFn func() (string, error)) {
	html, err := renderFn()
	if err != nil {
		zap.L().Error("fragment render failed", zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

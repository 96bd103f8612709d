package auth

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"presenceboard/internal/directory"
)

const (
	// SessionCookie is the browser session cookie name.
	SessionCookie = "presenceboard-session"
	// StateCookie carries the OAuth state between redirect legs.
	StateCookie = "presenceboard-oauth-state"

	identityKey = "presenceboard.identity"
)

// Identity is the per-request authentication fact the rest of the app
// consumes. UserID and PersonName come from the directory profile and may
// be empty even when Authenticated (token-based service access).
type Identity struct {
	Authenticated bool
	SessionID     string
	UserID        string
	PersonName    string
	AccessToken   string
}

// Middleware resolves the request's Identity from the session cookie by
// verifying the stored refresh token against the OAuth provider, the same
// way the original service treats "can I refresh" as "am I logged in".
type Middleware struct {
	sessions    *SessionStore
	oauth       *OAuth
	dir         *directory.Client
	secretToken string
	secureHost  string
}

func NewMiddleware(sessions *SessionStore, oauth *OAuth, dir *directory.Client, secretToken, secureHost string) *Middleware {
	return &Middleware{
		sessions:    sessions,
		oauth:       oauth,
		dir:         dir,
		secretToken: secretToken,
		secureHost:  secureHost,
	}
}

// SetIdentity attaches an Identity to the request context. Exposed so
// tests can stand in for Establish.
func SetIdentity(c *gin.Context, ident Identity) {
	c.Set(identityKey, ident)
}

// IdentityFrom returns the Identity established for this request.
func IdentityFrom(c *gin.Context) Identity {
	if v, ok := c.Get(identityKey); ok {
		if ident, ok := v.(Identity); ok {
			return ident
		}
	}
	return Identity{}
}

// Establish resolves and stores the Identity. It never aborts: anonymous
// requests proceed with a zero Identity.
func (m *Middleware) Establish() gin.HandlerFunc {
	return func(c *gin.Context) {
		SetIdentity(c, m.resolve(c))
		c.Next()
	}
}

// RequireAuth aborts unauthenticated requests.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IdentityFrom(c).Authenticated {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}

// CheckOrigin rejects cross-origin mutations. GETs pass through.
func (m *Middleware) CheckOrigin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet {
			c.Next()
			return
		}
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}
		parsed, err := url.Parse(origin)
		if err != nil || (parsed.Host != c.Request.Host && parsed.Host != m.secureHost) {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}

func (m *Middleware) resolve(c *gin.Context) Identity {
	// Service access token (primarily for the lobby display).
	if token := c.Query("token"); token != "" && m.secretToken != "" && token == m.secretToken {
		return Identity{Authenticated: true}
	}

	sessionID, err := c.Cookie(SessionCookie)
	if err != nil || sessionID == "" {
		return Identity{}
	}

	ctx := c.Request.Context()
	sess, err := m.sessions.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			zap.L().Warn("session lookup failed", zap.Error(err))
		}
		clearCookie(c, SessionCookie)
		return Identity{}
	}

	tok, err := m.oauth.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrInvalidGrant) {
			zap.L().Info("session rejected: invalid grant", zap.String("session", sess.ID))
		} else {
			zap.L().Warn("token refresh failed, invalidating session", zap.Error(err))
		}
		_ = m.sessions.Delete(ctx, sess.ID)
		clearCookie(c, SessionCookie)
		return Identity{SessionID: sess.ID}
	}
	if tok.RefreshToken != "" && tok.RefreshToken != sess.RefreshToken {
		if err := m.sessions.UpdateRefreshToken(ctx, sess.ID, tok.RefreshToken); err != nil {
			zap.L().Warn("refresh token persist failed", zap.Error(err))
		}
	}

	ident := Identity{
		Authenticated: true,
		SessionID:     sess.ID,
		AccessToken:   tok.AccessToken,
	}
	profile, err := m.dir.Me(ctx, tok.AccessToken)
	if err != nil {
		zap.L().Warn("profile fetch failed", zap.Error(err))
		return ident
	}
	ident.UserID = strconv.FormatInt(profile.ID, 10)
	ident.PersonName = profile.Name
	return ident
}

func clearCookie(c *gin.Context, name string) {
	c.SetCookie(name, "", -1, "/", "", false, true)
}

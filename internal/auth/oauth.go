package auth

import (
	"context"
	"errors"

	"golang.org/x/oauth2"
)

// ErrInvalidGrant marks a refresh token the provider no longer accepts;
// the user simply has to log in again, nothing is wrong with us.
var ErrInvalidGrant = errors.New("refresh token rejected")

// OAuth wraps the provider handshake: authorization URL, code exchange
// and refresh-token verification (the latter doubles as the per-request
// "is this session still authenticated" check).
type OAuth struct {
	cfg *oauth2.Config
}

func NewOAuth(clientID, clientSecret, authURL, tokenURL, redirectURL string) *OAuth {
	return &OAuth{cfg: &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   authURL,
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: redirectURL,
		Scopes:      []string{"user:email"},
	}}
}

func (o *OAuth) AuthCodeURL(state string) string {
	return o.cfg.AuthCodeURL(state)
}

func (o *OAuth) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return o.cfg.Exchange(ctx, code)
}

// Refresh trades the stored refresh token for a fresh access token. The
// provider rotates refresh tokens, so callers must persist the returned
// token's RefreshToken.
func (o *OAuth) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	tok, err := o.cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.ErrorCode == "invalid_grant" {
			return nil, ErrInvalidGrant
		}
		return nil, err
	}
	return tok, nil
}

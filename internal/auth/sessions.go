package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Sessions live two weeks, matching the cookie's own max age.
const sessionTTL = 14 * 24 * time.Hour

var ErrNoSession = errors.New("session not found")

type Session struct {
	ID           string
	UserID       string
	RefreshToken string
	ExpiresAt    time.Time
}

// SessionStore persists sessions in Postgres so logins survive restarts.
// Users exist only to anchor sessions; the directory API owns identity.
type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

// Create stores a fresh user+session pair carrying the OAuth refresh token.
func (s *SessionStore) Create(ctx context.Context, refreshToken string) (Session, error) {
	sess := Session{
		ID:           uuid.NewString(),
		UserID:       uuid.NewString(),
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().UTC().Add(sessionTTL),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Session{}, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO auth_user (id) VALUES ($1)`, sess.UserID); err != nil {
		return Session{}, err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO user_session (id, user_id, refresh_token, expires_at)
		      VALUES ($1, $2, $3, $4)`,
		sess.ID, sess.UserID, sess.RefreshToken, sess.ExpiresAt); err != nil {
		return Session{}, err
	}
	return sess, tx.Commit()
}

// Get returns the live session for id; expired sessions are removed and
// reported as missing.
func (s *SessionStore) Get(ctx context.Context, id string) (Session, error) {
	const q = `SELECT id, user_id, refresh_token, expires_at
	             FROM user_session WHERE id = $1`
	var sess Session
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&sess.ID, &sess.UserID, &sess.RefreshToken, &sess.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, err
	}
	if time.Now().After(sess.ExpiresAt) {
		_ = s.Delete(ctx, id)
		return Session{}, ErrNoSession
	}
	return sess, nil
}

// UpdateRefreshToken persists the rotated token after each refresh.
func (s *SessionStore) UpdateRefreshToken(ctx context.Context, id, refreshToken string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE user_session SET refresh_token = $1 WHERE id = $2`,
		refreshToken, id)
	return err
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM user_session WHERE id = $1`, id)
	return err
}

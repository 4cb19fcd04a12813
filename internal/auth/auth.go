// Package auth issues API tokens and cookie sessions.
//
// Tokens are random 32-byte hex strings shown once at creation. Only their
// SHA-256 is stored.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	sessionName  = "checkmate"
	keyUserID    = "user_id"
	keySessionID = "sid"
)

var ErrNoSession = errors.New("no session")

// NewToken returns a fresh API token.
func NewToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashToken returns the hex SHA-256 of a token.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// Sessions wraps a signed cookie store.
type Sessions struct {
	store *sessions.CookieStore
}

// NewSessions builds a cookie store signed with secret. Sessions last 30 days.
func NewSessions(secret string) *Sessions {
	store := sessions.NewCookieStore([]byte(secret))
	store.MaxAge(86400 * 30) // 30 days
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode
	return &Sessions{store: store}
}

// Issue starts a session for userID and writes the cookie. It returns the
// session id for logging.
func (s *Sessions) Issue(w http.ResponseWriter, r *http.Request, userID int64) (string, error) {
	sess, _ := s.store.Get(r, sessionName)
	sid := uuid.NewString()
	sess.Values[keyUserID] = userID
	sess.Values[keySessionID] = sid
	if err := sess.Save(r, w); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return sid, nil
}

// UserID returns the user bound to the request's session cookie.
func (s *Sessions) UserID(r *http.Request) (int64, error) {
	sess, err := s.store.Get(r, sessionName)
	if err != nil || sess.IsNew {
		return 0, ErrNoSession
	}
	id, ok := sess.Values[keyUserID].(int64)
	if !ok || id <= 0 {
		return 0, ErrNoSession
	}
	return id, nil
}

// Clear expires the session cookie.
func (s *Sessions) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := s.store.Get(r, sessionName)
	sess.Values = map[any]any{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

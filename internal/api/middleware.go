package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/checkmate/internal/auth"
	"github.com/dgallion1/checkmate/internal/store"
)

type ctxKey struct{}

// Users resolves callers by token hash or id.
type Users interface {
	UserByTokenHash(ctx context.Context, tokenHash string) (store.User, error)
	GetUser(ctx context.Context, id int64) (store.User, error)
}

// AuthMiddleware accepts a bearer API token or a session cookie and puts the
// caller into the request context. A bearer token, when present, wins.
func AuthMiddleware(users Users, sess *auth.Sessions, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				u   store.User
				err error
			)
			switch token := auth.BearerToken(r); {
			case token != "":
				u, err = users.UserByTokenHash(r.Context(), auth.HashToken(token))
				if err != nil {
					if !errors.Is(err, store.ErrNotFound) {
						log.Error("token lookup failed", "error", err)
					}
					jsonError(w, "invalid api token", http.StatusUnauthorized)
					return
				}
			case sess != nil:
				id, serr := sess.UserID(r)
				if serr != nil {
					jsonError(w, "missing authorization", http.StatusUnauthorized)
					return
				}
				u, err = users.GetUser(r.Context(), id)
				if err != nil {
					jsonError(w, "session user no longer exists", http.StatusUnauthorized)
					return
				}
			default:
				jsonError(w, "missing authorization", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, u)))
		})
	}
}

// currentUser returns the authenticated caller.
func currentUser(r *http.Request) (store.User, bool) {
	u, ok := r.Context().Value(ctxKey{}).(store.User)
	return u, ok
}

// actor returns the caller's id for created_by/updated_by columns.
func actor(r *http.Request) *int64 {
	u, ok := currentUser(r)
	if !ok {
		return nil
	}
	return &u.ID
}

// RequestLogger logs incoming requests.
func RequestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: 200}
			next.ServeHTTP(sw, r)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

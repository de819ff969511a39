package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const (
	sessionCookie = "datadeck_session"
	sessionHeader = "X-Session-ID"
)

type sessionKey struct{}

// sessionMiddleware resolves the caller's session id from the X-Session-ID
// header or the session cookie, issuing a new cookie when neither is set.
func sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(sessionHeader))
		if id == "" {
			if c, err := r.Cookie(sessionCookie); err == nil {
				id = c.Value
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, id)))
	})
}

func sessionID(r *http.Request) string {
	id, _ := r.Context().Value(sessionKey{}).(string)
	return id
}

package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/tareas-web/appserver/internal/session"
	"github.com/tareas-web/appserver/internal/web"
)

type contextKey string

const contextIdentityKey contextKey = "identity"

// Identity is the authenticated caller of a protected request,
// resolved once by the session boundary and passed down explicitly.
type Identity struct {
	AccountID int
	Username  string
	Token     string
}

// RequireAuth resolves the session cookie to an identity and injects
// it into the request context. Requests without an authenticated
// session are redirected to the login page instead of executing.
func RequireAuth(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(session.CookieName)
			if err != nil {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			sess, ok := sessions.Lookup(cookie.Value)
			if !ok || !sess.Authenticated() {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			identity := Identity{
				AccountID: sess.AccountID,
				Username:  sess.Username,
				Token:     sess.Token,
			}
			ctx := context.WithValue(r.Context(), contextIdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func identityFromContext(ctx context.Context) (Identity, error) {
	identity, ok := ctx.Value(contextIdentityKey).(Identity)
	if !ok || identity.AccountID < 1 {
		return Identity{}, errors.New("missing identity")
	}
	return identity, nil
}

// ensureSession returns the caller's session, starting an anonymous
// one when none exists yet. Anonymous sessions carry flashes across
// the pre-login pages.
func ensureSession(w http.ResponseWriter, r *http.Request, sessions *session.Manager) session.Session {
	if cookie, err := r.Cookie(session.CookieName); err == nil {
		if sess, ok := sessions.Lookup(cookie.Value); ok {
			return sess
		}
	}
	sess := sessions.Start()
	setSessionCookie(w, sess.Token)
	return sess
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// renderPage buffers the template execution so a render failure turns
// into a clean 500 instead of a half-written page.
func renderPage(w http.ResponseWriter, views *web.Views, name string, data any) {
	var buf bytes.Buffer
	if err := views.Render(&buf, name, data); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

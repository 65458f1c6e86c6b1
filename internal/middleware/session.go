package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/houseboard/internal/model"
	"github.com/dukerupert/houseboard/internal/session"
	"github.com/dukerupert/houseboard/internal/store"
)

const (
	SessionCookieName = "houseboard_session"
	touchInterval     = time.Minute
)

// EnsureSession attaches the caller's session to the request, creating one
// (and its cookie) on the first visit. Unknown or expired cookies are
// replaced rather than rejected. Touching a session also renews the cookie's
// MaxAge so an active session does not expire in the browser first.
func EnsureSession(sessions *store.SessionStore, houses *store.SessionHouses, ttl time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := lookupSession(r, sessions, logger)
			if sess == nil {
				created, err := sessions.Create()
				if err != nil {
					logger.Error("create session", "error", err)
					http.Error(w, "session unavailable", http.StatusInternalServerError)
					return
				}
				sess = created
				setSessionCookie(w, r, sess.Token, ttl)
			} else if time.Since(sess.LastSeenAt) > touchInterval {
				if err := sessions.Touch(sess.ID); err != nil {
					logger.Warn("touch session", "session_id", sess.ID, "error", err)
				} else if cookie, err := r.Cookie(SessionCookieName); err == nil {
					setSessionCookie(w, r, cookie.Value, ttl)
				}
			}

			sc := session.Context{
				SessionID: sess.ID,
				Key:       sess.TokenHash,
				Houses:    houses.Get(sess.TokenHash),
			}
			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), sc)))
		})
	}
}

func lookupSession(r *http.Request, sessions *store.SessionStore, logger *slog.Logger) *model.Session {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	sess, err := sessions.GetByToken(cookie.Value)
	if err != nil {
		logger.Warn("lookup session", "error", err)
		return nil
	}
	return sess
}

func setSessionCookie(w http.ResponseWriter, r *http.Request, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dukerupert/houseboard/internal/database"
	"github.com/dukerupert/houseboard/internal/session"
	"github.com/dukerupert/houseboard/internal/store"
)

func setupSessionMiddlewareDB(t *testing.T) *store.SessionStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return store.NewSessionStore(db)
}

func captureSession(got *session.Context) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sc, ok := session.FromContext(r.Context())
		if !ok {
			panic("no session in context")
		}
		*got = sc
		w.WriteHeader(http.StatusOK)
	})
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	return nil
}

func TestEnsureSessionCreatesOnFirstVisit(t *testing.T) {
	ss := setupSessionMiddlewareDB(t)
	houses := store.NewSessionHouses()

	var got session.Context
	handler := EnsureSession(ss, houses, 24*time.Hour, slog.Default())(captureSession(&got))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	cookie := sessionCookie(rec)
	if cookie == nil {
		t.Fatal("expected session cookie")
	}
	if !cookie.HttpOnly {
		t.Error("cookie must be HttpOnly")
	}
	if got.SessionID == 0 || got.Key == "" || got.Houses == nil {
		t.Errorf("incomplete session context: %+v", got)
	}
	if got.Key == cookie.Value {
		t.Error("session key must not be the cookie token")
	}
}

func TestEnsureSessionReusesCookie(t *testing.T) {
	ss := setupSessionMiddlewareDB(t)
	houses := store.NewSessionHouses()

	var first, second session.Context
	rec := httptest.NewRecorder()
	EnsureSession(ss, houses, time.Hour, slog.Default())(captureSession(&first)).
		ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	cookie := sessionCookie(rec)

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookie)
	rec2 := httptest.NewRecorder()
	EnsureSession(ss, houses, time.Hour, slog.Default())(captureSession(&second)).ServeHTTP(rec2, req)

	if sessionCookie(rec2) != nil {
		t.Error("existing session should not get a new cookie")
	}
	if second.SessionID != first.SessionID {
		t.Errorf("session id = %d, want %d", second.SessionID, first.SessionID)
	}
	if second.Houses != first.Houses {
		t.Error("expected the same house store for the same session")
	}
}

func TestEnsureSessionReplacesUnknownCookie(t *testing.T) {
	ss := setupSessionMiddlewareDB(t)
	houses := store.NewSessionHouses()

	var got session.Context
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "stale-token"})
	rec := httptest.NewRecorder()
	EnsureSession(ss, houses, time.Hour, slog.Default())(captureSession(&got)).ServeHTTP(rec, req)

	cookie := sessionCookie(rec)
	if cookie == nil || cookie.Value == "stale-token" {
		t.Fatalf("expected a fresh cookie, got %+v", cookie)
	}
	if got.SessionID == 0 {
		t.Error("expected a session")
	}
}

func TestEnsureSessionRenewsCookieOnTouch(t *testing.T) {
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	ss := store.NewSessionStore(db)
	houses := store.NewSessionHouses()

	var first, second session.Context
	rec := httptest.NewRecorder()
	EnsureSession(ss, houses, time.Hour, slog.Default())(captureSession(&first)).
		ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	cookie := sessionCookie(rec)
	if cookie == nil {
		t.Fatal("expected session cookie")
	}

	old := time.Now().Add(-10 * time.Minute).UTC()
	if _, err := db.Exec(`UPDATE sessions SET last_seen_at = ? WHERE id = ?`, old, first.SessionID); err != nil {
		t.Fatalf("backdate session: %v", err)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookie)
	rec2 := httptest.NewRecorder()
	EnsureSession(ss, houses, time.Hour, slog.Default())(captureSession(&second)).ServeHTTP(rec2, req)

	renewed := sessionCookie(rec2)
	if renewed == nil {
		t.Fatal("expected the cookie to be renewed when the session is touched")
	}
	if renewed.Value != cookie.Value {
		t.Error("renewed cookie must carry the same token")
	}
	if renewed.MaxAge != int(time.Hour.Seconds()) {
		t.Errorf("MaxAge = %d, want %d", renewed.MaxAge, int(time.Hour.Seconds()))
	}
	if second.SessionID != first.SessionID {
		t.Errorf("session id = %d, want %d", second.SessionID, first.SessionID)
	}
}

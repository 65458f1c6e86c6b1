package session

import (
	"context"

	"github.com/dukerupert/houseboard/internal/store"
)

type contextKey struct{}

// Context is what the session middleware attaches to each request.
type Context struct {
	SessionID int64
	// Key identifies the session's in-memory state and websocket topic.
	// It is the token hash, never the cookie value.
	Key    string
	Houses *store.HouseStore
}

func WithSession(ctx context.Context, sc Context) context.Context {
	return context.WithValue(ctx, contextKey{}, sc)
}

func FromContext(ctx context.Context) (Context, bool) {
	sc, ok := ctx.Value(contextKey{}).(Context)
	return sc, ok
}

// Houses returns the session's house store, or nil outside a session.
func Houses(ctx context.Context) *store.HouseStore {
	sc, ok := FromContext(ctx)
	if !ok {
		return nil
	}
	return sc.Houses
}

func Key(ctx context.Context) string {
	sc, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return sc.Key
}

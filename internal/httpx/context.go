package httpx

import (
	"context"
	"net/http"

	"libraryapi/internal/access"
)

type contextKey string

const (
	actorKey     contextKey = "actor"
	requestIDKey contextKey = "requestID"
	stateKey     contextKey = "requestState"
)

// requestState is shared by outer middleware (access log) and inner
// middleware (authentication) for the lifetime of one request.
type requestState struct {
	userID string
}

func withState(ctx context.Context) context.Context {
	if _, ok := ctx.Value(stateKey).(*requestState); ok {
		return ctx
	}
	return context.WithValue(ctx, stateKey, &requestState{})
}

func stateFrom(ctx context.Context) *requestState {
	s, _ := ctx.Value(stateKey).(*requestState)
	return s
}

// ActorFrom returns the authenticated caller, or nil for anonymous requests.
func ActorFrom(r *http.Request) *access.Actor {
	return ActorFromContext(r.Context())
}

func ActorFromContext(ctx context.Context) *access.Actor {
	a, _ := ctx.Value(actorKey).(*access.Actor)
	return a
}

// ContextWithActor stores the caller on ctx.
func ContextWithActor(ctx context.Context, a *access.Actor) context.Context {
	if s := stateFrom(ctx); s != nil && a != nil {
		s.userID = a.UserID
	}
	return context.WithValue(ctx, actorKey, a)
}

// RequestIDFrom retrieves the request ID from the request context.
func RequestIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// ContextWithRequestID returns a new context with the request ID.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

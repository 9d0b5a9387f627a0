// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets the values; handlers read them and pass them on explicitly.
// Services never read the caller from the context: the ledger takes the
// caller principal as a parameter so it can be exercised without HTTP.
//
//	ctx = requestcontext.WithPrincipal(ctx, principal)
//	caller := requestcontext.Principal(ctx)
//	now := requestcontext.Now(ctx)
package requestcontext

import (
	"context"
	"time"

	id "auditlink/pkg/domain"
)

type (
	principalKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for tests that need context.WithValue directly.
var (
	ContextKeyPrincipal   = principalKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// Principal retrieves the authenticated caller. Returns the zero value if unset.
func Principal(ctx context.Context) id.Principal {
	if p, ok := ctx.Value(ContextKeyPrincipal).(id.Principal); ok {
		return p
	}
	return ""
}

// WithPrincipal injects the authenticated caller into the context.
func WithPrincipal(ctx context.Context, p id.Principal) context.Context {
	return context.WithValue(ctx, ContextKeyPrincipal, p)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() outside HTTP (relay worker, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime pins the request time. Tests use it for deterministic timestamps.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}

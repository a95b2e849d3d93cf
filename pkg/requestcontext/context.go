// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets these values once per request; services only read them.
// Keeping the package free of net/http lets domain code depend on it without
// pulling in transport concerns.
//
// Usage in services (read values):
//
//	authority := requestcontext.Authority(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithAuthority(ctx, authorityID)
//	ctx = requestcontext.WithTime(ctx, time.Now())
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	id "custodia/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	authorityKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for tests that need raw context.WithValue.
var (
	ContextKeyAuthority   = authorityKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// Authority retrieves the authenticated authority identity from the context.
// Returns the zero value when not set.
func Authority(ctx context.Context) id.AuthorityID {
	if a, ok := ctx.Value(ContextKeyAuthority).(id.AuthorityID); ok {
		return a
	}
	return ""
}

// WithAuthority injects an authority identity into the context.
func WithAuthority(ctx context.Context, authority id.AuthorityID) context.Context {
	return context.WithValue(ctx, ContextKeyAuthority, authority)
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

// Now retrieves the request-scoped commit time from context.
//
// This is the injected environment clock: every mutation within one request
// observes the same instant, and tests can pin it with WithTime to verify
// monotonicity and exact leg matching.
// Falls back to time.Now() for non-HTTP contexts (workers, CLI).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific commit time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}

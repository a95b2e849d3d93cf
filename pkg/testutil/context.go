package testutil

import (
	"context"
	"net/http"
	"time"

	id "custodia/pkg/domain"
	"custodia/pkg/requestcontext"
)

// WithAuthority adds an authority identity to the request context.
// This simulates what the auth middleware does for authenticated requests.
func WithAuthority(req *http.Request, authority string) *http.Request {
	ctx := requestcontext.WithAuthority(req.Context(), id.AuthorityID(authority))
	return req.WithContext(ctx)
}

// WithTime pins the request-scoped commit clock, like the requesttime
// middleware does, but to a fixed instant.
func WithTime(req *http.Request, t time.Time) *http.Request {
	ctx := requestcontext.WithTime(req.Context(), t)
	return req.WithContext(ctx)
}

// Ctx builds a service-level context with an authority and a fixed clock.
func Ctx(authority string, now time.Time) context.Context {
	ctx := requestcontext.WithAuthority(context.Background(), id.AuthorityID(authority))
	return requestcontext.WithTime(ctx, now)
}

// Package requesttime stamps each request with a single commit time.
//
// This is the environment clock of the custody model: every mutation within
// one request observes the same instant, so timestamps across a record's log
// are non-decreasing as long as the store serializes writers.
package requesttime

import (
	"net/http"
	"time"

	"custodia/pkg/requestcontext"
)

// Middleware injects the current time into the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

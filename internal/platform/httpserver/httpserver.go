package httpserver

import (
	"net/http"
	"time"
)

// New builds the HTTP server the custody API is served from. Write timeout
// leaves room for mutations that wait on broker-acknowledged audit produces;
// everything else is kept tight.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

package custody

import (
	"log/slog"

	"custodia/internal/custody/handler"
	"custodia/internal/custody/service"
	"custodia/internal/registry"
)

// Service exposes custody record orchestration.
type Service = service.Service

// Handler wires HTTP endpoints to the custody service.
type Handler = handler.Handler

// NewService constructs the custody service with required dependencies.
func NewService(records service.RecordStore, reg registry.Registry, opts ...service.Option) *Service {
	return service.New(records, reg, opts...)
}

// NewHandler constructs an HTTP handler for custody routes.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}

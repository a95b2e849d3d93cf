package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not rule violations:
// - ErrNotFound: record does not exist in store
// - ErrConflict: a record with the same key already exists
// - ErrUnavailable: backing store temporarily unreachable
//
// For custody rule violations use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)

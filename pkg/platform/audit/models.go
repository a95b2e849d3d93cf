// Package audit captures custody actions as transport-agnostic events so
// stores and sinks (memory, Kafka) can fan out without coupling the domain
// to any one backend.
package audit

import (
	"context"
	"time"
)

// Action names the custody operation that produced an event.
type Action string

const (
	ActionRecordCreated      Action = "record_created"
	ActionHandoverLogged     Action = "handover_logged"
	ActionConditionsRecorded Action = "transit_conditions_recorded"
)

// Event is emitted from the custody service after each committed mutation.
// Keep it flat and string-typed at the edges; this crosses process
// boundaries as JSON.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	ItemID    string    `json:"item_id"`
	// Actor is the authority that submitted the mutation.
	Actor string `json:"actor"`
	// FromID/ToID identify the leg for handover and condition events.
	FromID string `json:"from_id,omitempty"`
	ToID   string `json:"to_id,omitempty"`
	// RequestID correlates the event with the HTTP request that caused it.
	RequestID string `json:"request_id,omitempty"`
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

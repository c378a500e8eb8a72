package auditlog

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is an append-only audit record. Unpublished events double as the
// outbox rows the worker relays to the message bus.
type Event struct {
	ID          uuid.UUID       `json:"id"`
	Action      string          `json:"action"`
	Details     json.RawMessage `json:"details,omitempty"`
	ActorID     *uuid.UUID      `json:"actor_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	PublishedAt *time.Time      `json:"published_at,omitempty"`
}

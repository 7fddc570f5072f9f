package publication

import (
	"time"

	"scholar-backend/domain/identifier"
)

// LogEntry is an append-only audit record for a state-changing operation on
// a resource or ticket. Written fire-and-forget after the primary write.
type LogEntry struct {
	Identifier         identifier.SortableIdentifier `json:"identifier"`
	ResourceIdentifier identifier.SortableIdentifier `json:"resourceIdentifier"`
	Actor              string                        `json:"actor"`
	Topic              string                        `json:"topic"`
	Timestamp          time.Time                     `json:"timestamp"`
	Version            int                           `json:"version"`
}

// NewLogEntry creates an audit record for the given topic
func NewLogEntry(resourceID identifier.SortableIdentifier, actor, topic string) *LogEntry {
	return &LogEntry{
		Identifier:         identifier.New(),
		ResourceIdentifier: resourceID,
		Actor:              actor,
		Topic:              topic,
		Timestamp:          time.Now().UTC(),
		Version:            1,
	}
}

package model

import "time"

const (
	EventSessionIngested  = "session.ingested"
	EventSessionReclaimed = "session.reclaimed"
)

// Event is published to the message broker after ingestion and
// reclamation so external consumers can audit session activity.
type Event struct {
	Type       string    `json:"type"`
	SessionID  string    `json:"session_id"`
	Files      int       `json:"files,omitempty"`
	Passages   int       `json:"passages,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

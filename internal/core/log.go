package core

import "time"

// Log action tags. Handlers use ENDPOINT_* tags directly; the two fallback
// tags are derived by the sink when a record carries no explicit action.
const (
	ActionHTTPRequest = "HTTP_REQUEST"
	ActionLog         = "LOG"
)

// LogRecord is one persisted activity-log document. Append-only: created once,
// never mutated or deleted.
type LogRecord struct {
	ID      string         `json:"id"`
	Action  string         `json:"action"`
	At      time.Time      `json:"at"`
	UserID  *int64         `json:"userid,omitempty"`
	Payload map[string]any `json:"payload"`
}

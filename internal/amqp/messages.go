package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Refresh reasons carried in SnapshotRefreshMessage.Reason.
const (
	ReasonStale    = "stale"    // snapshot age exceeded the refresh policy
	ReasonFallback = "fallback" // live fetch failed and a stored snapshot was served
)

// SnapshotRefreshMessage asks the worker to re-fetch one user's day
// classifications for one year. The worker pulls fresh data from the
// timesheet service and replaces the stored snapshot.
type SnapshotRefreshMessage struct {
	JobID     string    `json:"job_id"`
	Username  string    `json:"username"`
	Year      int       `json:"year"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSnapshotRefreshMessage creates a refresh message with a fresh job ID.
func NewSnapshotRefreshMessage(username string, year int, reason string) *SnapshotRefreshMessage {
	return &SnapshotRefreshMessage{
		JobID:     uuid.NewString(),
		Username:  username,
		Year:      year,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SnapshotRefreshMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SnapshotRefreshMessageFromJSON creates a message from JSON bytes
func SnapshotRefreshMessageFromJSON(data []byte) (*SnapshotRefreshMessage, error) {
	var msg SnapshotRefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

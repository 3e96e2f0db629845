package types

import (
	"time"

	"github.com/google/uuid"
)

const NotificationTypeTask = "task"

// Notification is the payload pushed to an assignee's room. It is never
// persisted; delivery is best-effort to whoever is connected.
type Notification struct {
	Message   string    `json:"message"`
	TaskID    uuid.UUID `json:"taskId"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
)

// ValidPriority reports whether p is one of the enumerated priority
// values. Unknown values are rejected, never coerced.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type Task struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string     `gorm:"not null;column:title" json:"title"`
	Description string     `gorm:"column:description" json:"description"`
	DueDate     *time.Time `gorm:"column:due_date" json:"dueDate"`
	Priority    string     `gorm:"not null;column:priority" json:"priority"`
	Status      string     `gorm:"not null;column:status" json:"status"`

	// AssigneeID is the creator and never changes after creation.
	// AssignedToID is the current delegate and may be null.
	AssigneeID   uuid.UUID  `gorm:"type:uuid;not null;column:assignee_id" json:"assignee"`
	AssignedToID *uuid.UUID `gorm:"type:uuid;column:assigned_to_id" json:"assignedTo"`

	Assignee       *User `gorm:"foreignKey:AssigneeID;references:ID" json:"-"`
	AssignedToUser *User `gorm:"foreignKey:AssignedToID;references:ID" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Task) TableName() string {
	return "task"
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nkashyap/taskhub-backend/internal/realtime"
	"github.com/nkashyap/taskhub-backend/internal/types"
)

// TaskNotifier pushes assignment notifications to a user's room.
// Delivery is fire-and-forget: a missing recipient or full buffer never
// affects the mutation that triggered the push.
type TaskNotifier interface {
	TaskAssigned(userID uuid.UUID, task *types.Task)
}

type taskNotifier struct {
	emit Emitter
}

func NewTaskNotifier(emit Emitter) TaskNotifier {
	return &taskNotifier{emit: emit}
}

func (n *taskNotifier) TaskAssigned(userID uuid.UUID, task *types.Task) {
	if n == nil || n.emit == nil || userID == uuid.Nil || task == nil {
		return
	}
	n.emit.Emit(context.Background(), realtime.Message{
		Room:  userID.String(),
		Event: realtime.EventNotification,
		Data: types.Notification{
			Message:   fmt.Sprintf("You have been assigned to complete task: %s", task.Title),
			TaskID:    task.ID,
			Type:      types.NotificationTypeTask,
			CreatedAt: time.Now(),
		},
	})
}

package services

import (
	"context"

	"github.com/nkashyap/taskhub-backend/internal/realtime"
)

// Emitter decouples services from the hub so tests can record pushes.
type Emitter interface {
	Emit(ctx context.Context, msg realtime.Message)
}

type HubEmitter struct{ Hub *realtime.Hub }

func (e *HubEmitter) Emit(ctx context.Context, msg realtime.Message) {
	e.Hub.Broadcast(msg)
}

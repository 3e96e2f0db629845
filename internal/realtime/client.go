package realtime

import (
	"sync"

	"github.com/google/uuid"
)

type Client struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Rooms    map[string]bool
	Outbound chan Message
	done     chan struct{}

	closeOnce sync.Once
}

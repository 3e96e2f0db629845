package realtime

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nkashyap/taskhub-backend/internal/logger"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func recvMessage(t *testing.T, ch <-chan Message, timeout time.Duration) Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for realtime message")
	}
	return Message{}
}

func assertNoMessage(t *testing.T, ch <-chan Message) {
	t.Helper()
	select {
	case msg := <-ch:
		t.Fatalf("unexpected message for room %q", msg.Room)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubBroadcastTargetsSingleRoom(t *testing.T) {
	hub := NewHub(mustTestLogger(t))

	userA := uuid.New()
	userB := uuid.New()

	clientA := hub.NewClient(userA)
	hub.Join(clientA, userA.String())
	clientB := hub.NewClient(userB)
	hub.Join(clientB, userB.String())

	hub.Broadcast(Message{Room: userA.String(), Event: EventNotification, Data: map[string]any{"seq": 1}})

	got := recvMessage(t, clientA.Outbound, time.Second)
	if got.Event != EventNotification {
		t.Fatalf("event: want=%s got=%s", EventNotification, got.Event)
	}
	assertNoMessage(t, clientB.Outbound)
}

func TestHubBroadcastPreservesOrdering(t *testing.T) {
	hub := NewHub(mustTestLogger(t))
	room := uuid.New().String()

	client := hub.NewClient(uuid.New())
	hub.Join(client, room)

	hub.Broadcast(Message{Room: room, Event: EventNotification, Data: map[string]any{"seq": 1}})
	hub.Broadcast(Message{Room: room, Event: EventNotification, Data: map[string]any{"seq": 2}})

	first := recvMessage(t, client.Outbound, time.Second)
	second := recvMessage(t, client.Outbound, time.Second)
	if first.Data.(map[string]any)["seq"] != 1 || second.Data.(map[string]any)["seq"] != 2 {
		t.Fatalf("messages out of order: first=%v second=%v", first.Data, second.Data)
	}
}

func TestHubEmptyRoomDropsSilently(t *testing.T) {
	hub := NewHub(mustTestLogger(t))
	// No subscribers anywhere; must not panic or block.
	hub.Broadcast(Message{Room: uuid.New().String(), Event: EventNotification})
}

func TestHubFullBufferDropsForThatClientOnly(t *testing.T) {
	hub := NewHub(mustTestLogger(t))
	room := uuid.New().String()

	client := hub.NewClient(uuid.New())
	hub.Join(client, room)

	for i := 0; i < cap(client.Outbound)+5; i++ {
		hub.Broadcast(Message{Room: room, Event: EventNotification, Data: map[string]any{"seq": i}})
	}

	// The buffered messages survive; the overflow is gone.
	for i := 0; i < cap(client.Outbound); i++ {
		recvMessage(t, client.Outbound, time.Second)
	}
	assertNoMessage(t, client.Outbound)
}

func TestHubCloseClientRemovesMembership(t *testing.T) {
	hub := NewHub(mustTestLogger(t))
	room := uuid.New().String()

	client := hub.NewClient(uuid.New())
	hub.Join(client, room)
	hub.CloseClient(client)

	select {
	case _, ok := <-client.Outbound:
		if ok {
			t.Fatalf("outbound should be closed after disconnect")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for outbound close")
	}

	hub.mu.RLock()
	_, stillSubscribed := hub.subscriptions[room]
	hub.mu.RUnlock()
	if stillSubscribed {
		t.Fatalf("room %q should be gone once its last client disconnects", room)
	}

	// Double close must be safe; the SSE handler defers CloseClient and
	// the stream loop can race it.
	hub.CloseClient(client)
}

func TestHubLeaveStopsDelivery(t *testing.T) {
	hub := NewHub(mustTestLogger(t))
	room := uuid.New().String()

	client := hub.NewClient(uuid.New())
	hub.Join(client, room)
	hub.Leave(client, room)

	hub.Broadcast(Message{Room: room, Event: EventNotification})
	assertNoMessage(t, client.Outbound)
}

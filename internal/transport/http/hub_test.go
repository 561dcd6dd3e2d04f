package http

import (
	"testing"

	"arena-contest-service/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func TestUnregisterLeavesSendChannelOpen(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	contestID := uuid.New()
	client := newClient(hub, nil, contestID, RoleParticipant, "")

	hub.Register(client)
	hub.Unregister(client)

	// A handler goroutine may still be replying to this client after the
	// hub dropped it; that write must not panic on a closed channel.
	select {
	case client.send <- []byte(`{}`):
	default:
		t.Fatal("send buffer unexpectedly full")
	}

	select {
	case <-client.done:
	default:
		t.Fatal("done not signalled on unregister")
	}

	if n := hub.ContestClients(contestID); n != 0 {
		t.Fatalf("expected 0 clients after unregister, got %d", n)
	}

	// Re-unregistering the same client must be a no-op, not a second close.
	hub.Unregister(client)
}

func TestBroadcastSkipsUnregisteredClient(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	contestID := uuid.New()
	client := newClient(hub, nil, contestID, RoleParticipant, "")

	hub.Register(client)
	hub.Unregister(client)
	hub.Broadcast(domain.ToAll(contestID, domain.EventPhaseChanged, nil))

	select {
	case raw := <-client.send:
		t.Fatalf("unregistered client received %s", raw)
	default:
	}
}

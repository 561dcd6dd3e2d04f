package http

import (
	"encoding/json"
	"sync"

	"arena-contest-service/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Role tags a websocket connection. It decides which rooms the connection
// belongs to and which control messages it may send.
type Role string

const (
	RoleHost        Role = "host"
	RoleParticipant Role = "participant"
	RoleReferee     Role = "referee"
	RoleDisplay     Role = "display"
)

// Hub fans contest events out to the connections of a contest. Every
// connection is in the contest-wide room; host, referee and team rooms are
// derived from the connection's role and current team, so a participant who
// switches teams changes rooms without any re-registration.
type Hub struct {
	log zerolog.Logger

	mu      sync.RWMutex
	clients map[uuid.UUID]map[*Client]struct{}
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log:     log,
		clients: make(map[uuid.UUID]map[*Client]struct{}),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.contestID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.contestID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.contestID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.done)
	if len(set) == 0 {
		delete(h.clients, c.contestID)
	}
}

// Broadcast implements app.Broadcaster. A client whose send buffer is full
// is dropped rather than allowed to stall the contest.
func (h *Hub) Broadcast(event domain.Event) {
	raw, err := json.Marshal(event)
	if err != nil {
		h.log.Error().Err(err).Str("event", event.Type).Msg("marshal event")
		return
	}

	h.mu.RLock()
	var slow []*Client
	for c := range h.clients[event.ContestID] {
		if !c.wants(event) {
			continue
		}
		select {
		case c.send <- raw:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.log.Warn().Str("contest_id", event.ContestID.String()).Msg("dropping slow client")
		h.Unregister(c)
		_ = c.conn.Close()
	}
}

// ContestClients reports how many connections a contest currently has.
func (h *Hub) ContestClients(contestID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[contestID])
}

package http

import (
	"sync"
	"time"

	"arena-contest-service/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
	sendBufferSize = 64
)

// Client is one websocket connection bound to a contest. The writer
// goroutine owns the connection for writes; everything else goes through
// the send channel. The send channel is never closed: handlers may still be
// replying concurrently when the hub drops the client, so shutdown is
// signalled through done instead.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	contestID uuid.UUID
	role      Role
	userID    string

	mu            sync.RWMutex
	participantID uuid.UUID
	teamID        uuid.UUID
}

func newClient(hub *Hub, conn *websocket.Conn, contestID uuid.UUID, role Role, userID string) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
		done:      make(chan struct{}),
		contestID: contestID,
		role:      role,
		userID:    userID,
	}
}

func (c *Client) setParticipant(id uuid.UUID, teamID *uuid.UUID) {
	c.mu.Lock()
	c.participantID = id
	if teamID != nil {
		c.teamID = *teamID
	} else {
		c.teamID = uuid.Nil
	}
	c.mu.Unlock()
}

func (c *Client) setTeam(teamID uuid.UUID) {
	c.mu.Lock()
	c.teamID = teamID
	c.mu.Unlock()
}

func (c *Client) participant() uuid.UUID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.participantID
}

// wants reports whether this connection's rooms include the event's scope.
func (c *Client) wants(event domain.Event) bool {
	switch event.Scope {
	case domain.ScopeAll:
		return true
	case domain.ScopeHost:
		return c.role == RoleHost
	case domain.ScopeReferees:
		return c.role == RoleReferee
	case domain.ScopeTeam:
		c.mu.RLock()
		defer c.mu.RUnlock()
		return c.teamID != uuid.Nil && c.teamID == event.TeamID
	default:
		return false
	}
}

// writePump drains the send channel onto the wire and keeps the connection
// alive with pings. One writer per connection; gorilla forbids concurrent
// writes.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case raw := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

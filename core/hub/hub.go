package hub

import (
	"sync"

	"character-manager/core/protocol"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Connection is a single subscriber attached to the hub. It belongs to at most
// one room per character id and receives events through Events.
type Connection struct {
	id    string
	queue chan protocol.Envelope

	// Guarded by the owning hub's lock.
	rooms  map[uint]struct{}
	closed bool
}

// ID returns the connection's unique identifier.
func (c *Connection) ID() string {
	return c.id
}

// Events returns the connection's inbound event stream. The channel is closed
// when the connection is closed.
func (c *Connection) Events() <-chan protocol.Envelope {
	return c.queue
}

// Hub maintains room membership and delivers change events to room members.
type Hub struct {
	logger    *zap.Logger
	queueSize int

	mu    sync.RWMutex
	rooms map[uint]map[*Connection]struct{}
}

// New creates an empty hub.
func New(cfg Config, logger *zap.Logger) *Hub {
	size := cfg.QueueSize
	if size <= 0 {
		size = 32
	}
	return &Hub{
		logger:    logger,
		queueSize: size,
		rooms:     make(map[uint]map[*Connection]struct{}),
	}
}

// Register creates a new connection attached to this hub.
func (h *Hub) Register() *Connection {
	return &Connection{
		id:    uuid.NewString(),
		queue: make(chan protocol.Envelope, h.queueSize),
		rooms: make(map[uint]struct{}),
	}
}

// Join adds the connection to the room for characterID. Joining a room the
// connection already belongs to is a no-op; rooms are created lazily.
func (h *Hub) Join(c *Connection, characterID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.closed {
		return
	}
	room, ok := h.rooms[characterID]
	if !ok {
		room = make(map[*Connection]struct{})
		h.rooms[characterID] = room
	}
	room[c] = struct{}{}
	c.rooms[characterID] = struct{}{}
}

// Leave removes the connection from the room for characterID. It is a no-op
// when the connection is not a member.
func (h *Hub) Leave(c *Connection, characterID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(c, characterID)
}

func (h *Hub) leaveLocked(c *Connection, characterID uint) {
	room, ok := h.rooms[characterID]
	if !ok {
		return
	}
	delete(room, c)
	delete(c.rooms, characterID)
	if len(room) == 0 {
		delete(h.rooms, characterID)
	}
}

// Publish delivers the event to every connection currently in the room for
// characterID, including the originator if it is a member. A member whose
// queue is full is skipped; one unreachable recipient never fails the
// broadcast.
func (h *Hub) Publish(characterID uint, ev protocol.Envelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[characterID] {
		select {
		case c.queue <- ev:
		default:
			h.logger.Warn("Dropping event for slow connection",
				zap.String("connection", c.id),
				zap.Uint("character_id", characterID),
				zap.String("event", string(ev.Event)))
		}
	}
}

// Send delivers an event to a single connection, outside any room. It reports
// whether the event was queued.
func (h *Hub) Send(c *Connection, ev protocol.Envelope) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if c.closed {
		return false
	}
	select {
	case c.queue <- ev:
		return true
	default:
		h.logger.Warn("Dropping event for slow connection",
			zap.String("connection", c.id),
			zap.String("event", string(ev.Event)))
		return false
	}
}

// Close removes the connection from every room and closes its event stream.
// It is safe to call more than once. Delivery to the connection stops before
// Close returns.
func (h *Hub) Close(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	for characterID := range c.rooms {
		h.leaveLocked(c, characterID)
	}
	// Senders hold the lock too, so nothing can race this close.
	close(c.queue)
}

// RoomSize returns the current number of members in a character's room.
func (h *Hub) RoomSize(characterID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[characterID])
}

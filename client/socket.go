package client

import (
	"context"
	"encoding/json"
	"sync"

	"character-manager/core/protocol"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Socket is a websocket session on the notification channel.
type Socket struct {
	conn   *websocket.Conn
	logger *zap.Logger

	writeMu sync.Mutex
	once    sync.Once
	events  chan protocol.Message
}

// Dial opens a websocket session against url (e.g. ws://localhost:8080/ws)
// and starts decoding inbound events.
func Dial(ctx context.Context, url string, logger *zap.Logger) (*Socket, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	s := &Socket{
		conn:   conn,
		logger: logger,
		events: make(chan protocol.Message, 32),
	}
	go s.readLoop()
	return s, nil
}

// Events returns the stream of decoded server events. It is closed when the
// connection ends.
func (s *Socket) Events() <-chan protocol.Message {
	return s.events
}

// Join subscribes the session to a character's room.
func (s *Socket) Join(characterID uint) error {
	return s.send(protocol.Command{Action: protocol.ActionJoinCharacter, CharacterID: characterID})
}

// Leave unsubscribes the session from a character's room.
func (s *Socket) Leave(characterID uint) error {
	return s.send(protocol.Command{Action: protocol.ActionLeaveCharacter, CharacterID: characterID})
}

// StatusUpdate asks the hub to broadcast a coarse invalidation to the room.
func (s *Socket) StatusUpdate(characterID uint) error {
	return s.send(protocol.Command{Action: protocol.ActionStatusUpdate, CharacterID: characterID})
}

// Close shuts the session down. Safe to call more than once.
func (s *Socket) Close() error {
	var err error
	s.once.Do(func() {
		s.writeMu.Lock()
		_ = s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.writeMu.Unlock()
		err = s.conn.Close()
	})
	return err
}

func (s *Socket) send(cmd protocol.Command) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(cmd)
}

func (s *Socket) readLoop() {
	defer close(s.events)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("Socket read failed", zap.Error(err))
			}
			return
		}

		var env protocol.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.logger.Warn("Dropping malformed frame", zap.Error(err))
			continue
		}
		msg, err := env.Decode()
		if err != nil {
			s.logger.Warn("Dropping undecodable event", zap.Error(err))
			continue
		}
		s.events <- msg
	}
}

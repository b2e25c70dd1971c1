package live

import (
	"encoding/json"
	"fmt"
	"time"

	"character-manager/core/hub"
	"character-manager/core/protocol"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const writeTimeout = 10 * time.Second

// Feature implements the loader.Feature interface.
type Feature struct {
	hub    *hub.Hub
	logger *zap.Logger
}

// NewFeature creates the live notification feature.
func NewFeature(h *hub.Hub, logger *zap.Logger) *Feature {
	return &Feature{hub: h, logger: logger}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "live"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the websocket endpoint.
func (f *Feature) Load(app fiber.Router) error {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(f.serve))
	return nil
}

// serve runs one websocket session until the client disconnects.
func (f *Feature) serve(ws *websocket.Conn) {
	conn := f.hub.Register()
	l := f.logger.With(zap.String("connection", conn.ID()))
	l.Info("Client connected")

	// Writer: drains the hub queue until the connection is closed.
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for ev := range conn.Events() {
			_ = ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := ws.WriteJSON(ev); err != nil {
				l.Debug("Write failed", zap.Error(err))
				// Unblock the reader so the session tears down.
				_ = ws.Close()
				// Keep draining; the hub closes the queue on Close.
				for range conn.Events() {
				}
				return
			}
		}
	}()

	f.hub.Send(conn, protocol.NewNotice(protocol.EventConnected, "You are connected to the server"))

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			l.Info("Client disconnected")
			break
		}

		var cmd protocol.Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			// Malformed frames are reported to this connection only.
			f.hub.Send(conn, protocol.NewNotice(protocol.EventError, "malformed command"))
			continue
		}

		switch cmd.Action {
		case protocol.ActionJoinCharacter:
			f.hub.Join(conn, cmd.CharacterID)
			f.hub.Send(conn, protocol.NewNotice(protocol.EventJoined,
				fmt.Sprintf("Joined character %d room", cmd.CharacterID)))
		case protocol.ActionLeaveCharacter:
			f.hub.Leave(conn, cmd.CharacterID)
			f.hub.Send(conn, protocol.NewNotice(protocol.EventLeft,
				fmt.Sprintf("Left character %d room", cmd.CharacterID)))
		case protocol.ActionStatusUpdate:
			f.hub.Publish(cmd.CharacterID, protocol.NewStatus(cmd.CharacterID))
		default:
			f.hub.Send(conn, protocol.NewNotice(protocol.EventError,
				fmt.Sprintf("unknown action %q", cmd.Action)))
		}
	}

	// Best-effort farewell, then detach from every room.
	f.hub.Send(conn, protocol.NewNotice(protocol.EventDisconnected, "You have been disconnected from the server"))
	f.hub.Close(conn)
	<-writerDone
}

package live

import (
	"fmt"
	"net"
	"net/http/httptest"
	"testing"
	"time"

	"character-manager/core/hub"
	"character-manager/core/protocol"

	"github.com/gofiber/fiber/v2"
	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// startServer runs the feature on a real listener so tests can dial it.
func startServer(t *testing.T) (*hub.Hub, string) {
	t.Helper()

	h := hub.New(hub.Config{QueueSize: 32}, zap.NewNop())
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	require.NoError(t, NewFeature(h, zap.NewNop()).Load(app))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	return h, fmt.Sprintf("ws://%s/ws", ln.Addr().String())
}

type session struct {
	t    *testing.T
	conn *gws.Conn
}

func dial(t *testing.T, url string) *session {
	t.Helper()
	var conn *gws.Conn
	var err error
	// The listener goroutine may not be accepting yet on the first attempt.
	for i := 0; i < 20; i++ {
		conn, _, err = gws.DefaultDialer.Dial(url, nil)
		if err == nil {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &session{t: t, conn: conn}
}

func (s *session) sendCommand(action protocol.Action, characterID uint) {
	s.t.Helper()
	require.NoError(s.t, s.conn.WriteJSON(protocol.Command{Action: action, CharacterID: characterID}))
}

func (s *session) next() protocol.Envelope {
	s.t.Helper()
	require.NoError(s.t, s.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env protocol.Envelope
	require.NoError(s.t, s.conn.ReadJSON(&env))
	return env
}

// join dials, joins a room and consumes the handshake notices.
func join(t *testing.T, url string, characterID uint) *session {
	t.Helper()
	s := dial(t, url)
	require.Equal(t, protocol.EventConnected, s.next().Event)
	s.sendCommand(protocol.ActionJoinCharacter, characterID)
	require.Equal(t, protocol.EventJoined, s.next().Event)
	return s
}

func TestConnectSendsWelcome(t *testing.T) {
	_, url := startServer(t)
	s := dial(t, url)

	env := s.next()
	assert.Equal(t, protocol.EventConnected, env.Event)

	msg, err := env.Decode()
	require.NoError(t, err)
	assert.Contains(t, msg.(protocol.Notice).Message, "connected")
}

func TestJoinedRoomReceivesPublishedEvents(t *testing.T) {
	h, url := startServer(t)
	s := join(t, url, 1)

	h.Publish(1, protocol.NewAbilityChange(protocol.EventAbilityCreated, 1, protocol.Ability{ID: 5, Name: "STR", Score: 15}))

	env := s.next()
	require.Equal(t, protocol.EventAbilityCreated, env.Event)

	msg, err := env.Decode()
	require.NoError(t, err)
	created := msg.(protocol.AbilityCreated)
	assert.Equal(t, uint(1), created.CharacterID)
	assert.Equal(t, "STR", created.Ability.Name)
}

func TestEventsStayInsideTheRoom(t *testing.T) {
	h, url := startServer(t)
	member := join(t, url, 1)
	outsider := join(t, url, 2)

	h.Publish(1, protocol.NewStatus(1))
	// A marker on the outsider's room proves nothing arrived in between.
	h.Publish(2, protocol.NewStatus(2))

	env := member.next()
	assert.Equal(t, protocol.EventBroadcastStatus, env.Event)

	env = outsider.next()
	require.Equal(t, protocol.EventBroadcastStatus, env.Event)
	msg, err := env.Decode()
	require.NoError(t, err)
	assert.Equal(t, uint(2), msg.(protocol.StatusChanged).CharacterID)
}

func TestStatusUpdateEchoesToSenderAndPeers(t *testing.T) {
	_, url := startServer(t)
	sender := join(t, url, 7)
	peer := join(t, url, 7)

	sender.sendCommand(protocol.ActionStatusUpdate, 7)

	// Both room members get exactly one broadcast, the sender included.
	for _, s := range []*session{sender, peer} {
		env := s.next()
		require.Equal(t, protocol.EventBroadcastStatus, env.Event)
		msg, err := env.Decode()
		require.NoError(t, err)
		assert.Equal(t, uint(7), msg.(protocol.StatusChanged).CharacterID)
	}

	// A marker confirms no duplicate broadcast is queued ahead of it.
	sender.sendCommand(protocol.ActionLeaveCharacter, 7)
	assert.Equal(t, protocol.EventLeft, sender.next().Event)
}

func TestLeaveStopsDelivery(t *testing.T) {
	h, url := startServer(t)
	s := join(t, url, 1)

	s.sendCommand(protocol.ActionLeaveCharacter, 1)
	require.Equal(t, protocol.EventLeft, s.next().Event)

	// Wait until the server has processed the leave before publishing.
	require.Eventually(t, func() bool { return h.RoomSize(1) == 0 },
		time.Second, 10*time.Millisecond)

	h.Publish(1, protocol.NewStatus(1))

	s.sendCommand(protocol.ActionJoinCharacter, 1)
	env := s.next()
	assert.Equal(t, protocol.EventJoined, env.Event, "the missed broadcast must not be queued")
}

func TestMalformedCommandReportsErrorToSenderOnly(t *testing.T) {
	_, url := startServer(t)
	s := dial(t, url)
	require.Equal(t, protocol.EventConnected, s.next().Event)
	other := dial(t, url)
	require.Equal(t, protocol.EventConnected, other.next().Event)

	require.NoError(t, s.conn.WriteMessage(gws.TextMessage, []byte("not json")))

	env := s.next()
	assert.Equal(t, protocol.EventError, env.Event)

	// The session survives the bad frame.
	s.sendCommand(protocol.ActionJoinCharacter, 3)
	assert.Equal(t, protocol.EventJoined, s.next().Event)

	// The other session saw none of it.
	other.sendCommand(protocol.ActionJoinCharacter, 3)
	assert.Equal(t, protocol.EventJoined, other.next().Event)
}

func TestUnknownActionReportsError(t *testing.T) {
	_, url := startServer(t)
	s := dial(t, url)
	require.Equal(t, protocol.EventConnected, s.next().Event)

	s.sendCommand(protocol.Action("dance"), 1)

	env := s.next()
	require.Equal(t, protocol.EventError, env.Event)
	msg, err := env.Decode()
	require.NoError(t, err)
	assert.Contains(t, msg.(protocol.Notice).Message, "unknown action")
}

func TestDisconnectLeavesRooms(t *testing.T) {
	h, url := startServer(t)
	s := join(t, url, 1)
	require.Equal(t, 1, h.RoomSize(1))

	require.NoError(t, s.conn.Close())

	assert.Eventually(t, func() bool { return h.RoomSize(1) == 0 },
		2*time.Second, 10*time.Millisecond)
}

func TestPlainHTTPRequiresUpgrade(t *testing.T) {
	app := fiber.New()
	require.NoError(t, NewFeature(hub.New(hub.Config{}, zap.NewNop()), zap.NewNop()).Load(app))

	req := httptest.NewRequest("GET", "/ws", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

// Package bridge owns the message channel to a single embedded game
// build. Exactly one Transport exists per connected game; it validates
// every inbound frame through the protocol schema and forwards only
// well-formed events. The game is a separate, only partially trusted
// process — the origin check and shape validation here are a security
// boundary, not an optimization.
package bridge

import (
	"net/http"
	"sync"
	"time"

	"shelley-server/internal/protocol"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the game.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the game.
	pongWait = 60 * time.Second
	// Send pings with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum inbound frame size. Events are small; anything bigger is
	// not a legitimate protocol message.
	maxMessageSize = 4096

	// Outbound command buffer. When it overflows the command is dropped,
	// never queued unboundedly.
	sendBuffer = 64
)

// Upgrader returns a websocket upgrader that only accepts handshakes
// from allowedOrigin. "*" disables the check and must never be used in
// production. Requests without an Origin header are rejected.
func Upgrader(allowedOrigin string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "*" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}
}

// Transport wraps one websocket connection to one game build. It holds
// no game state; validated events are handed to the callback in arrival
// order and everything else is dropped.
type Transport struct {
	onEvent func(protocol.Event)
	logger  zerolog.Logger

	mu   sync.RWMutex
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// New creates a detached transport. Commands sent before Attach are
// silently dropped; callers wait for a game_ready event before issuing
// gameplay commands.
func New(onEvent func(protocol.Event), logger zerolog.Logger) *Transport {
	return &Transport{
		onEvent: onEvent,
		logger:  logger.With().Str("component", "BridgeTransport").Logger(),
		done:    make(chan struct{}),
	}
}

// Attach binds the transport to an upgraded connection and starts the
// read/write pumps. Attach may be called at most once.
func (t *Transport) Attach(conn *websocket.Conn) {
	t.mu.Lock()
	t.conn = conn
	t.send = make(chan []byte, sendBuffer)
	t.mu.Unlock()

	go t.writePump()
	go t.readPump()
}

// Done is closed once the connection is gone.
func (t *Transport) Done() <-chan struct{} { return t.done }

// SendCommand serializes and posts a command to the game. A detached
// transport (or a full outbound buffer) drops the command without error.
func (t *Transport) SendCommand(cmd protocol.Command) {
	t.mu.RLock()
	send := t.send
	t.mu.RUnlock()

	if send == nil {
		t.logger.Debug().Str("command", cmd.CommandType()).Msg("Dropping command, game not attached")
		return
	}

	raw, err := protocol.MarshalCommand(cmd)
	if err != nil {
		t.logger.Error().Err(err).Str("command", cmd.CommandType()).Msg("Failed to marshal command")
		return
	}

	select {
	case send <- raw:
	case <-t.done:
	default:
		t.logger.Warn().Str("command", cmd.CommandType()).Msg("Outbound buffer full, dropping command")
	}
}

func (t *Transport) readPump() {
	defer func() {
		close(t.done)
		_ = t.conn.Close()
		t.logger.Info().Msg("readPump finished")
	}()
	t.conn.SetReadLimit(maxMessageSize)
	_ = t.conn.SetReadDeadline(time.Now().Add(pongWait))
	t.conn.SetPongHandler(func(string) error {
		_ = t.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := t.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				t.logger.Warn().Err(err).Msg("WebSocket read error")
			} else {
				t.logger.Info().Msg("WebSocket connection closed")
			}
			return
		}

		event, err := protocol.ParseEvent(message)
		if err != nil {
			// Protocol violation: drop silently, never answer the game.
			t.logger.Debug().Err(err).Bytes("frame", message).Msg("Dropping invalid frame")
			continue
		}
		if t.onEvent != nil {
			t.onEvent(event)
		}
	}
}

func (t *Transport) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		t.logger.Info().Msg("writePump finished")
	}()
	for {
		select {
		case message := <-t.send:
			_ = t.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := t.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				t.logger.Error().Err(err).Msg("Failed to write command")
				return
			}
		case <-ticker.C:
			_ = t.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := t.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				t.logger.Warn().Err(err).Msg("Failed to send ping")
				return
			}
		case <-t.done:
			_ = t.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = t.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

package api

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Benjythebee/stock-sim-server/internal/game"
)

const (
	// writeWait bounds a single frame write.
	writeWait = 10 * time.Second

	// pongWait is how long a silent peer is tolerated. Pings go out at a
	// fraction of it so a healthy peer always answers in time.
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// maxFrameBytes caps inbound frames. Game messages are tiny.
	maxFrameBytes = 4096

	// sendBuffer is the per-client outbound queue. A client that falls
	// this far behind starts losing frames.
	sendBuffer = 256
)

// wsConn adapts one gorilla connection to the room's Conn interface.
// Outbound messages flow through a buffered channel drained by the write
// pump, so the room goroutine never blocks on a slow socket.
type wsConn struct {
	ws   *websocket.Conn
	send chan []byte

	once sync.Once
	done chan struct{}
}

func newWSConn(ws *websocket.Conn) *wsConn {
	return &wsConn{
		ws:   ws,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

// Send queues one message for the socket. It never blocks: a full queue
// or a closed connection drops the message and reports false.
func (c *wsConn) Send(msg any) bool {
	raw, err := json.Marshal(msg)
	if err != nil {
		return false
	}

	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- raw:
		return true
	default:
		return false
	}
}

// Close releases the connection. Safe to call more than once, from the
// room or from the transport.
func (c *wsConn) Close() {
	c.once.Do(func() { close(c.done) })
}

// writePump drains the send queue onto the socket and keeps the peer
// alive with pings. It exits when Close is called or a write fails.
func (c *wsConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case raw := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// readPump feeds inbound frames to the room until the peer goes away.
// Frames over the per-client rate limit are dropped without a reply.
func (c *wsConn) readPump(room *game.Room, clientID string, limiter *RateLimiter) {
	defer c.ws.Close()

	c.ws.SetReadLimit(maxFrameBytes)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		if !limiter.Allow(clientID) {
			continue
		}
		room.Deliver(clientID, raw)
	}
}

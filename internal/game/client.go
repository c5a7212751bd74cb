package game

import (
	"time"

	"github.com/Benjythebee/stock-sim-server/internal/market"
)

// Conn is the transport side of one client session. Send must not
// block: implementations enqueue onto a buffered channel and report
// false when the message could not be queued.
type Conn interface {
	Send(msg any) bool
	Close()
}

// Client is one seat in a room. Spectators carry no participant and
// never trade.
type Client struct {
	ID        string
	Username  string
	Spectator bool

	conn      Conn
	connected bool
	admin     bool

	part *market.Participant // nil for spectators

	grace *time.Timer // pending removal while disconnected
}

// send queues one message for the client's transport; a no-op while
// the client is disconnected.
func (c *Client) send(msg any) bool {
	if !c.connected || c.conn == nil {
		return false
	}
	return c.conn.Send(msg)
}

func (c *Client) info() ClientInfo {
	return ClientInfo{
		ID:        c.ID,
		Username:  c.Username,
		IsAdmin:   c.admin,
		Spectator: c.Spectator,
		Connected: c.connected,
	}
}

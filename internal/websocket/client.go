package websocket

import (
	"context"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
)

// Client is one connected board. A client opened for a person only hears
// about that person's own preference changes; everything else that moves
// the scoreboard is delivered to every client.
type Client struct {
	hub    *Hub
	conn   *ws.Conn
	person string
	send   chan []byte
}

func NewClient(hub *Hub, conn *ws.Conn, person string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		person: person,
		send:   make(chan []byte, sendBufferSize),
	}
}

func (c *Client) wants(msg Message) bool {
	if msg.Entity != EntityPreference || c.person == "" || msg.Person == "" {
		return true
	}
	return msg.Person == c.person
}

// Run blocks until the connection closes.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writeLoop(ctx)
	c.readLoop(ctx)
}

// Boards never send anything meaningful; reading only detects the close.
func (c *Client) readLoop(ctx context.Context) {
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			return
		}
	}
}

func (c *Client) writeLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
				return
			}
		}
	}
}

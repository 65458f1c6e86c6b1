package websocket

import (
	"context"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
	// Browsers never send anything meaningful; cap what a client may push.
	readLimit = 512
)

// Client is one browser tab listening for its session's board changes.
type Client struct {
	hub        *Hub
	conn       *ws.Conn
	sessionKey string
	send       chan []byte
}

func NewClient(hub *Hub, conn *ws.Conn, sessionKey string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		sessionKey: sessionKey,
		send:       make(chan []byte, sendBufferSize),
	}
}

// Run subscribes the tab and blocks until the connection ends or the hub
// drops the client.
func (c *Client) Run(ctx context.Context) {
	c.conn.SetReadLimit(readLimit)

	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		c.writeLoop(ctx)
		cancel()
	}()
	c.readLoop(ctx)
}

func (c *Client) readLoop(ctx context.Context) {
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			return
		}
	}
}

// writeLoop forwards hub messages and pings. A closed send channel means the
// session is gone, so the tab is told to reconnect for a fresh one.
func (c *Client) writeLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.Close(ws.StatusNormalClosure, "session ended")
				return
			}
			if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

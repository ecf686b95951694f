package server

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	sendBuffer = 256
)

var ErrConnectionClosed = errors.New("connection closed")

// Connection represents a WebSocket connection to a browser table
type Connection struct {
	conn    *websocket.Conn
	send    chan *Message
	logger  *log.Logger
	handler func(*Connection, *Message)
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewConnection wraps conn. handler is called for every decoded message on
// the read goroutine.
func NewConnection(ctx context.Context, conn *websocket.Conn, logger *log.Logger, handler func(*Connection, *Message)) *Connection {
	ctx, cancel := context.WithCancel(ctx)

	return &Connection{
		conn:    conn,
		send:    make(chan *Message, sendBuffer),
		logger:  logger.WithPrefix("conn"),
		handler: handler,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Run pumps messages until the peer goes away or the connection is closed
func (c *Connection) Run() error {
	g, ctx := errgroup.WithContext(c.ctx)
	g.Go(func() error {
		defer c.cancel()
		return c.readPump()
	})
	g.Go(func() error {
		defer func() { _ = c.conn.Close() }()
		return c.writePump(ctx)
	})
	return g.Wait()
}

// Close stops both pumps
func (c *Connection) Close() {
	c.cancel()
}

// SendMessage queues a message for the client. A client that cannot keep
// up is disconnected.
func (c *Connection) SendMessage(msg *Message) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		c.Close()
		return ErrConnectionClosed
	}
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() error {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
				return err
			}
			return nil
		}

		c.logger.Debug("Received message", "type", msg.Type)
		c.handler(c, &msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump(ctx context.Context) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return err
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}

		case <-ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return nil
		}
	}
}

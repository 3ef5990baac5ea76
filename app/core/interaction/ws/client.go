package ws

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client is one connected chat peer. WriteJSON must be safe for
// concurrent use; gorilla connections only allow a single writer.
type Client interface {
	ID() string
	WriteJSON(v interface{}) error
	Close() error
}

type wsClient struct {
	id     string
	conn   *websocket.Conn
	connMu sync.Mutex
}

// NewClient wraps a websocket connection with a generated identity and a
// write mutex.
func NewClient(conn *websocket.Conn) Conn {
	return &wsClient{
		id:   uuid.NewString(),
		conn: conn,
	}
}

func (c *wsClient) ID() string {
	return c.id
}

func (c *wsClient) WriteJSON(v interface{}) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *wsClient) Close() error {
	return c.conn.Close()
}

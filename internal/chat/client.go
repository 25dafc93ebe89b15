package chat

import (
	"encoding/json"

	"github.com/gofiber/contrib/websocket"

	"github.com/pelusa-v/tidbid/internal/view"
)

// Client is one websocket attached to a page.
type Client struct {
	Id        string
	SessionID string
	Surface   view.Surface
	Conn      ConnLike
	Send      chan []byte
	Manager   *Manager

	// Dispatch runs an inbound command; a returned event goes back to
	// this client only.
	Dispatch func(Command) (Event, bool)
}

type ConnLike interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(int, []byte) error
	Close() error
}

// ReadPump decodes commands until the connection fails.
func (c *Client) ReadPump() {
	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			continue
		}
		if c.Dispatch == nil {
			continue
		}
		if ev, ok := c.Dispatch(cmd); ok {
			b, err := json.Marshal(&ev)
			if err != nil {
				continue
			}
			c.Manager.Direct(c.Id, b)
		}
	}
}

func (c *Client) WritePump() {
	for data := range c.Send {
		_ = c.Conn.WriteMessage(websocket.TextMessage, data)
	}
	_ = c.Conn.Close()
}

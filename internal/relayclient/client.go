package relayclient

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/servihub/marketplace/internal/relay"
)

// Client is the Go counterpart of the browser's socket hooks: it dials the
// relay, authenticates, joins and leaves rooms, re-sends persisted records,
// and surfaces pushed events on channels. It holds no state of its own beyond
// the connection; feeds do the merging.
type Client struct {
	conn *websocket.Conn

	// gorilla allows one concurrent writer
	writeMu sync.Mutex

	Messages chan relay.MessageEvent
	Reviews  chan map[string]any

	closeOnce sync.Once
	done      chan struct{}
}

// Dial connects to the relay endpoint (ws://host/ws) and authenticates as
// userID. An empty userID skips authentication, which the review view uses.
func Dial(ctx context.Context, url, userID string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		conn:     conn,
		Messages: make(chan relay.MessageEvent, 64),
		Reviews:  make(chan map[string]any, 64),
		done:     make(chan struct{}),
	}
	if userID != "" {
		if err := c.emit(relay.EventAuthenticate, userID); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

// Done is closed when the connection is gone; callers fall back to polling.
func (c *Client) Done() <-chan struct{} { return c.done }

func (c *Client) emit(event string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteJSON(relay.Frame{Event: event, Data: raw})
}

func (c *Client) JoinChat(userID, targetUserID string) error {
	return c.emit(relay.EventJoinChat, map[string]string{"userId": userID, "targetUserId": targetUserID})
}

func (c *Client) LeaveChat(userID, targetUserID string) error {
	return c.emit(relay.EventLeaveChat, map[string]string{"userId": userID, "targetUserId": targetUserID})
}

// SendMessage re-broadcasts a message that was already persisted through
// POST /chat; id and created_at come from that response.
func (c *Client) SendMessage(m relay.MessageEvent) error {
	return c.emit(relay.EventSendMessage, map[string]string{
		"senderId":   m.SenderID,
		"receiverId": m.ReceiverID,
		"message":    m.Message,
		"messageId":  m.ID,
		"created_at": m.CreatedAt,
	})
}

func (c *Client) JoinService(serviceID string) error {
	return c.emit(relay.EventJoinService, map[string]string{"serviceId": serviceID})
}

func (c *Client) LeaveService(serviceID string) error {
	return c.emit(relay.EventLeaveService, map[string]string{"serviceId": serviceID})
}

// SendReview forwards an already-persisted review payload verbatim.
func (c *Client) SendReview(payload map[string]any) error {
	return c.emit(relay.EventSendReview, payload)
}

func (c *Client) readLoop() {
	defer c.Close()
	for {
		var frame relay.Frame
		if err := c.conn.ReadJSON(&frame); err != nil {
			return
		}
		switch frame.Event {
		case relay.EventNewMessage:
			var m relay.MessageEvent
			if err := json.Unmarshal(frame.Data, &m); err != nil {
				log.Printf("relayclient: bad new_message frame: %v", err)
				continue
			}
			select {
			case c.Messages <- m:
			default:
				// a full buffer means nobody is draining; the poll
				// fallback will pick the message up
			}
		case relay.EventNewReview:
			var payload map[string]any
			if err := json.Unmarshal(frame.Data, &payload); err != nil {
				log.Printf("relayclient: bad new_review frame: %v", err)
				continue
			}
			select {
			case c.Reviews <- payload:
			default:
			}
		}
	}
}

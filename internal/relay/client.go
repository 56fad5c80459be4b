package relay

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxFrameSize   = 16 * 1024
	sendBufferSize = 64
)

type outFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Client is one websocket session. The read pump parses frames and applies
// them to the registry; the write pump drains the send buffer.
type Client struct {
	id       string
	registry *Registry
	conn     *websocket.Conn
	send     chan outFrame

	// set once by the authenticate event, read only by this client's
	// read pump; used for logging.
	userID string
}

func NewClient(registry *Registry, conn *websocket.Conn) *Client {
	return &Client{
		id:       uuid.NewString(),
		registry: registry,
		conn:     conn,
		send:     make(chan outFrame, sendBufferSize),
	}
}

// Deliver implements Member. It never blocks: a full send buffer means the
// peer stopped reading and the registry will evict us.
func (c *Client) Deliver(event string, data any) bool {
	select {
	case c.send <- outFrame{Event: event, Data: data}:
		return true
	default:
		return false
	}
}

// Run starts the pumps and blocks until the connection is gone. All cleanup
// (room membership, user index) happens through registry.Drop on the way out.
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.registry.Drop(c)
		close(c.send)
		_ = c.conn.Close()
		if c.userID != "" {
			log.Printf("relay: user %s disconnected (conn %s)", c.userID, c.id)
		} else {
			log.Printf("relay: conn %s disconnected", c.id)
		}
	}()

	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var frame Frame
		if err := c.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Printf("relay: read error on conn %s: %v", c.id, err)
			}
			return
		}
		c.handleFrame(frame)
	}
}

// handleFrame applies one client event. Malformed frames are logged and
// dropped; nothing here closes the connection or reports back to the sender.
func (c *Client) handleFrame(frame Frame) {
	switch frame.Event {
	case EventAuthenticate:
		var userID string
		if err := json.Unmarshal(frame.Data, &userID); err != nil || userID == "" {
			log.Printf("relay: bad authenticate frame on conn %s", c.id)
			return
		}
		c.userID = userID
		c.registry.Authenticate(c, userID)
		log.Printf("relay: user %s authenticated on conn %s", userID, c.id)

	case EventJoinChat, EventLeaveChat:
		var p chatRoomPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil || p.UserID == "" || p.TargetUserID == "" {
			log.Printf("relay: bad %s frame on conn %s", frame.Event, c.id)
			return
		}
		key := PairRoomKey(p.UserID, p.TargetUserID)
		if frame.Event == EventJoinChat {
			c.registry.Join(c, key)
			log.Printf("relay: user %s joined room %s", p.UserID, key)
		} else {
			c.registry.Leave(c, key)
			log.Printf("relay: user %s left room %s", p.UserID, key)
		}

	case EventSendMessage:
		var p sendMessagePayload
		if err := json.Unmarshal(frame.Data, &p); err != nil || p.SenderID == "" || p.ReceiverID == "" {
			log.Printf("relay: bad send_message frame on conn %s", c.id)
			return
		}
		key := PairRoomKey(p.SenderID, p.ReceiverID)
		c.registry.Broadcast(key, EventNewMessage, MessageEvent{
			ID:         p.MessageID,
			Message:    p.Message,
			SenderID:   p.SenderID,
			ReceiverID: p.ReceiverID,
			CreatedAt:  p.CreatedAt,
		})

	case EventJoinService, EventLeaveService:
		var p serviceRoomPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil || p.ServiceID == "" {
			log.Printf("relay: bad %s frame on conn %s", frame.Event, c.id)
			return
		}
		key := ServiceRoomKey(p.ServiceID)
		if frame.Event == EventJoinService {
			c.registry.Join(c, key)
		} else {
			c.registry.Leave(c, key)
		}

	case EventSendReview:
		// the payload is forwarded verbatim; only serviceId is inspected
		var payload map[string]any
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			log.Printf("relay: bad send_review frame on conn %s", c.id)
			return
		}
		serviceID, _ := payload["serviceId"].(string)
		if serviceID == "" {
			log.Printf("relay: send_review without serviceId on conn %s, dropped", c.id)
			return
		}
		c.registry.Broadcast(ServiceRoomKey(serviceID), EventNewReview, payload)

	default:
		log.Printf("relay: unknown event %q on conn %s", frame.Event, c.id)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

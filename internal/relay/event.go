package relay

import "encoding/json"

// One JSON object per websocket text frame, both directions:
// {"event": "<name>", "data": <payload>}.

// Client -> relay events.
const (
	EventAuthenticate = "authenticate"
	EventJoinChat     = "join_chat"
	EventLeaveChat    = "leave_chat"
	EventSendMessage  = "send_message"
	EventJoinService  = "join_service"
	EventLeaveService = "leave_service"
	EventSendReview   = "send_review"
)

// Relay -> client events.
const (
	EventNewMessage = "new_message"
	EventNewReview  = "new_review"
)

type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type chatRoomPayload struct {
	UserID       string `json:"userId"`
	TargetUserID string `json:"targetUserId"`
}

type serviceRoomPayload struct {
	ServiceID string `json:"serviceId"`
}

type sendMessagePayload struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Message    string `json:"message"`
	MessageID  string `json:"messageId"`
	CreatedAt  string `json:"created_at"`
}

// MessageEvent is the normalized new_message payload broadcast to the room.
type MessageEvent struct {
	ID         string `json:"id"`
	Message    string `json:"message"`
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	CreatedAt  string `json:"created_at"`
}

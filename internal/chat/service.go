package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/servihub/marketplace/internal/directory"
	"github.com/servihub/marketplace/internal/ids"
	"github.com/servihub/marketplace/internal/models"
	"github.com/servihub/marketplace/internal/notify"
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrMissingPeer  = errors.New("receiver id is required")
	ErrSelfMessage  = errors.New("cannot message yourself")
)

func NewMessageID() string {
	return ids.NewULID()
}

type Service struct {
	repo     *Repo
	names    *directory.Resolver
	notifier *notify.Service
}

func NewService(repo *Repo, names *directory.Resolver, notifier *notify.Service) *Service {
	return &Service{repo: repo, names: names, notifier: notifier}
}

// Send persists the message and enqueues a notification for the receiver.
// The returned row carries the id/created_at the client re-sends over the relay.
func (s *Service) Send(ctx context.Context, senderID, receiverID, message string) (*models.ChatMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if receiverID == "" {
		return nil, ErrMissingPeer
	}
	if receiverID == senderID {
		return nil, ErrSelfMessage
	}

	m := &models.ChatMessage{
		ID:         NewMessageID(),
		Message:    message,
		SenderID:   senderID,
		ReceiverID: receiverID,
	}
	if err := s.repo.Insert(ctx, m); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		senderName := "a user"
		if s.names != nil {
			senderName = s.names.ResolveName(ctx, senderID)
		}
		s.notifier.Enqueue(ctx, receiverID, "New message from "+senderName)
	}

	return m, nil
}

func (s *Service) History(ctx context.Context, userID, peerID string) ([]models.ChatMessage, error) {
	if peerID == "" {
		return nil, ErrMissingPeer
	}
	return s.repo.History(ctx, userID, peerID)
}

// MessageWithNames is a ChatMessage enriched for the conversation index view.
type MessageWithNames struct {
	ID           string `json:"id"`
	Message      string `json:"message"`
	SenderID     string `json:"senderId"`
	ReceiverID   string `json:"receiverId"`
	SenderName   string `json:"senderName"`
	ReceiverName string `json:"receiverName"`
}

func (s *Service) ListWithNames(ctx context.Context, userID string) ([]MessageWithNames, error) {
	msgs, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(msgs)*2)
	for _, m := range msgs {
		ids = append(ids, m.SenderID, m.ReceiverID)
	}
	names, err := s.names.ResolveNames(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]MessageWithNames, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, MessageWithNames{
			ID:           m.ID,
			Message:      m.Message,
			SenderID:     m.SenderID,
			ReceiverID:   m.ReceiverID,
			SenderName:   names[m.SenderID],
			ReceiverName: names[m.ReceiverID],
		})
	}
	return out, nil
}

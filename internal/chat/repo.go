package chat

import (
	"context"

	"github.com/servihub/marketplace/internal/models"
	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Insert(ctx context.Context, m *models.ChatMessage) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// History returns both directions of the dialog between a and b in ASC
// created_at order (oldest -> newest), the order the conversation view renders.
func (r *Repo) History(ctx context.Context, a, b string) ([]models.ChatMessage, error) {
	var msgs []models.ChatMessage
	err := r.db.WithContext(ctx).
		Where("senderId IN ? AND receiverId IN ?", []string{a, b}, []string{a, b}).
		Order("created_at ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// ListForUser returns every message the user sent or received, newest first.
func (r *Repo) ListForUser(ctx context.Context, userID string) ([]models.ChatMessage, error) {
	var msgs []models.ChatMessage
	err := r.db.WithContext(ctx).
		Where("senderId = ? OR receiverId = ?", userID, userID).
		Order("id DESC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

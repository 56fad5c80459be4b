package notify

import (
	"context"
	"log"

	"github.com/servihub/marketplace/internal/ids"
	"github.com/servihub/marketplace/internal/models"
	"github.com/servihub/marketplace/internal/store/rabbitmq"
	"gorm.io/gorm"
)

// Publisher is what the write paths need from the queue; satisfied by
// *rabbitmq.Publisher.
type Publisher interface {
	PublishNotification(ctx context.Context, job rabbitmq.NotificationJob) error
}

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Insert(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *Repo) ListForUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []models.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// MarkRead flips a single notification owned by userID. Returns
// gorm.ErrRecordNotFound when the row doesn't exist or belongs to someone else.
func (r *Repo) MarkRead(ctx context.Context, userID string, id uint64) error {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Service enqueues notifications for the worker. Enqueue failures are logged
// and swallowed: a missed notification is acceptable, a failed chat send is not.
type Service struct {
	pub Publisher
}

func NewService(pub Publisher) *Service {
	return &Service{pub: pub}
}

func (s *Service) Enqueue(ctx context.Context, userID, message string) {
	if s.pub == nil {
		return
	}
	job := rabbitmq.NotificationJob{
		JobID:   ids.NewULID(),
		UserID:  userID,
		Message: message,
	}
	if err := s.pub.PublishNotification(ctx, job); err != nil {
		log.Printf("notify: publish for user %s failed: %v", userID, err)
	}
}

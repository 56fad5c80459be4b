package catalog

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

func (r *Repo) Create(ctx context.Context, s *models.Service) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.Service, error) {
	var svc models.Service
	if err := r.db.WithContext(ctx).First(&svc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *Repo) GetOwner(ctx context.Context, userID string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Select("id", "name", "email").First(&u, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) ListAll(ctx context.Context) ([]models.Service, error) {
	var out []models.Service
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *Repo) ListByUser(ctx context.Context, userID string) ([]models.Service, error) {
	var out []models.Service
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error
	return out, err
}

// UpdateOwned applies the field map only when the row belongs to userID.
func (r *Repo) UpdateOwned(ctx context.Context, id, userID string, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.Service{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repo) DeleteOwned(ctx context.Context, id, userID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Service{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type ratingRow struct {
	ServiceID string
	Avg       float64
	Cnt       int64
}

// AverageRatings returns avg rating and review count per service id.
func (r *Repo) AverageRatings(ctx context.Context, serviceIDs []string) (map[string]RatingSummary, error) {
	out := make(map[string]RatingSummary, len(serviceIDs))
	if len(serviceIDs) == 0 {
		return out, nil
	}
	var rows []ratingRow
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("service_id AS service_id, AVG(rating) AS avg, COUNT(*) AS cnt").
		Where("service_id IN ?", serviceIDs).
		Group("service_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ServiceID] = RatingSummary{Average: row.Avg, Count: row.Cnt}
	}
	return out, nil
}

type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

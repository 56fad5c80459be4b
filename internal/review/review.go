package review

import (
	"context"
	"errors"
	"strings"

	"github.com/servihub/marketplace/internal/directory"
	"github.com/servihub/marketplace/internal/ids"
	"github.com/servihub/marketplace/internal/models"
	"github.com/servihub/marketplace/internal/notify"
	"gorm.io/gorm"
)

var (
	ErrInvalidRating  = errors.New("rating must be between 1 and 5")
	ErrEmptyContent   = errors.New("content is required")
	ErrMissingService = errors.New("service id is required")
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Insert(ctx context.Context, rv *models.Review) error {
	return r.db.WithContext(ctx).Create(rv).Error
}

func (r *Repo) ListByService(ctx context.Context, serviceID string) ([]models.Review, error) {
	var out []models.Review
	err := r.db.WithContext(ctx).
		Where("service_id = ?", serviceID).
		Order("id DESC").
		Find(&out).Error
	return out, err
}

func (r *Repo) serviceOwnerAndTitle(ctx context.Context, serviceID string) (*models.Service, error) {
	var svc models.Service
	if err := r.db.WithContext(ctx).Select("id", "title", "user_id").First(&svc, "id = ?", serviceID).Error; err != nil {
		return nil, err
	}
	return &svc, nil
}

type mineRow struct {
	ID           string
	Content      string
	Rating       int
	ServiceID    string
	ServiceTitle string
}

// ListByAuthor joins the service title for the profile view.
func (r *Repo) ListByAuthor(ctx context.Context, userID string) ([]mineRow, error) {
	var rows []mineRow
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("Review.id AS id, Review.content AS content, Review.rating AS rating, Review.service_id AS service_id, Service.title AS service_title").
		Joins("LEFT JOIN Service ON Service.id = Review.service_id").
		Where("Review.user_id = ?", userID).
		Order("Review.id DESC").
		Scan(&rows).Error
	return rows, err
}

type Service struct {
	repo     *Repo
	names    *directory.Resolver
	notifier *notify.Service
}

func NewService(repo *Repo, names *directory.Resolver, notifier *notify.Service) *Service {
	return &Service{repo: repo, names: names, notifier: notifier}
}

type Input struct {
	Content   string  `json:"content"`
	Rating    int     `json:"rating"`
	ServiceID string  `json:"serviceId"`
	PhotoURL  *string `json:"photoUrl"`
}

// Create persists the review and notifies the service owner. The returned row
// is the payload the client re-sends over the relay's send_review event.
func (s *Service) Create(ctx context.Context, userID string, in Input) (*models.Review, error) {
	in.Content = strings.TrimSpace(in.Content)
	if in.ServiceID == "" {
		return nil, ErrMissingService
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, ErrInvalidRating
	}
	if in.Content == "" {
		return nil, ErrEmptyContent
	}

	svc, err := s.repo.serviceOwnerAndTitle(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}

	rv := &models.Review{
		ID:        ids.NewULID(),
		Content:   in.Content,
		Rating:    in.Rating,
		ServiceID: in.ServiceID,
		UserID:    userID,
		PhotoURL:  in.PhotoURL,
	}
	if err := s.repo.Insert(ctx, rv); err != nil {
		return nil, err
	}

	if s.notifier != nil && svc.UserID != userID {
		s.notifier.Enqueue(ctx, svc.UserID, "New review on "+svc.Title)
	}
	return rv, nil
}

// View is a review with the author name attached, matching the relay's
// review payload shape.
type View struct {
	ID         string  `json:"id"`
	Content    string  `json:"content"`
	Rating     int     `json:"rating"`
	ServiceID  string  `json:"serviceId"`
	UserID     string  `json:"userId"`
	PhotoURL   *string `json:"photoUrl"`
	AuthorName string  `json:"author_name,omitempty"`
}

func (s *Service) ListForService(ctx context.Context, serviceID string) ([]View, error) {
	if serviceID == "" {
		return nil, ErrMissingService
	}
	reviews, err := s.repo.ListByService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	authors := make([]string, 0, len(reviews))
	for _, rv := range reviews {
		authors = append(authors, rv.UserID)
	}
	names, err := s.names.ResolveNames(ctx, authors)
	if err != nil {
		return nil, err
	}

	out := make([]View, 0, len(reviews))
	for _, rv := range reviews {
		out = append(out, View{
			ID:         rv.ID,
			Content:    rv.Content,
			Rating:     rv.Rating,
			ServiceID:  rv.ServiceID,
			UserID:     rv.UserID,
			PhotoURL:   rv.PhotoURL,
			AuthorName: names[rv.UserID],
		})
	}
	return out, nil
}

// MineView pairs a review with the reviewed service for the profile page.
type MineView struct {
	ID      string       `json:"id"`
	Content string       `json:"content"`
	Rating  int          `json:"rating"`
	Service *MineService `json:"service"`
}

type MineService struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func (s *Service) ListMine(ctx context.Context, userID string) ([]MineView, error) {
	rows, err := s.repo.ListByAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]MineView, 0, len(rows))
	for _, r := range rows {
		v := MineView{ID: r.ID, Content: r.Content, Rating: r.Rating}
		if r.ServiceID != "" {
			v.Service = &MineService{ID: r.ServiceID, Title: r.ServiceTitle}
		}
		out = append(out, v)
	}
	return out, nil
}

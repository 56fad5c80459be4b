package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/servihub/marketplace/internal/directory"
	"github.com/servihub/marketplace/internal/models"
)

var ErrInvalidListing = errors.New("title, description, price and category are required")

type Service struct {
	repo  *Repo
	names *directory.Resolver
}

func NewService(repo *Repo, names *directory.Resolver) *Service {
	return &Service{repo: repo, names: names}
}

type ListingInput struct {
	Title        string
	Description  string
	Price        float64
	Category     string
	Availability bool
}

func (in ListingInput) validate() error {
	if strings.TrimSpace(in.Title) == "" ||
		strings.TrimSpace(in.Description) == "" ||
		strings.TrimSpace(in.Category) == "" ||
		in.Price <= 0 {
		return ErrInvalidListing
	}
	return nil
}

func (s *Service) Create(ctx context.Context, userID string, in ListingInput) (*models.Service, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	svc := &models.Service{
		ID:           uuid.NewString(),
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		Price:        in.Price,
		Category:     strings.TrimSpace(in.Category),
		Availability: in.Availability,
		UserID:       userID,
	}
	if err := s.repo.Create(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *Service) Update(ctx context.Context, id, userID string, in ListingInput) (*models.Service, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	fields := map[string]any{
		"title":        strings.TrimSpace(in.Title),
		"description":  strings.TrimSpace(in.Description),
		"price":        in.Price,
		"category":     strings.TrimSpace(in.Category),
		"availability": in.Availability,
	}
	if err := s.repo.UpdateOwned(ctx, id, userID, fields); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	return s.repo.DeleteOwned(ctx, id, userID)
}

// Listing is the browse-view row: the service plus the owner's display name
// and the aggregated rating.
type Listing struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Price         float64        `json:"price"`
	Availability  bool           `json:"availability"`
	Category      string         `json:"category"`
	UserName      string         `json:"userName"`
	AverageRating *RatingSummary `json:"averageRating"`
}

func (s *Service) listingsFor(ctx context.Context, services []models.Service) ([]Listing, error) {
	ids := make([]string, 0, len(services))
	owners := make([]string, 0, len(services))
	for _, svc := range services {
		ids = append(ids, svc.ID)
		owners = append(owners, svc.UserID)
	}

	ratings, err := s.repo.AverageRatings(ctx, ids)
	if err != nil {
		return nil, err
	}
	names, err := s.names.ResolveNames(ctx, owners)
	if err != nil {
		return nil, err
	}

	out := make([]Listing, 0, len(services))
	for _, svc := range services {
		l := Listing{
			ID:           svc.ID,
			Title:        svc.Title,
			Description:  svc.Description,
			Price:        svc.Price,
			Availability: svc.Availability,
			Category:     svc.Category,
			UserName:     names[svc.UserID],
		}
		if r, ok := ratings[svc.ID]; ok {
			r := r
			l.AverageRating = &r
		}
		out = append(out, l)
	}
	return out, nil
}

func (s *Service) Browse(ctx context.Context) ([]Listing, error) {
	services, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.listingsFor(ctx, services)
}

func (s *Service) Mine(ctx context.Context, userID string) ([]Listing, error) {
	services, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.listingsFor(ctx, services)
}

// Detail is the single-service view with the owner's contact card.
type Detail struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Price        float64    `json:"price"`
	Category     string     `json:"category"`
	Availability bool       `json:"availability"`
	User         DetailUser `json:"user"`
}

type DetailUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (s *Service) Get(ctx context.Context, id string) (*Detail, error) {
	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d := &Detail{
		ID:           svc.ID,
		Title:        svc.Title,
		Description:  svc.Description,
		Price:        svc.Price,
		Category:     svc.Category,
		Availability: svc.Availability,
		User:         DetailUser{ID: svc.UserID, Name: "Unknown"},
	}
	if u, err := s.repo.GetOwner(ctx, svc.UserID); err == nil {
		name := u.Name
		if name == "" {
			name = u.Email
		}
		d.User = DetailUser{ID: u.ID, Name: name, Email: u.Email}
	}
	return d, nil
}

package catalog

import (
	"context"
	"errors"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/servihub/marketplace/internal/directory"
	"github.com/servihub/marketplace/internal/models"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Service{}, &models.Review{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id, name string) {
	t.Helper()
	u := models.User{ID: id, Name: name, Email: id + "@example.com", PasswordHash: "x"}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	return NewService(NewRepo(db), directory.NewResolver(db, nil)), db
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []ListingInput{
		{Title: "", Description: "d", Price: 10, Category: "c"},
		{Title: "t", Description: "", Price: 10, Category: "c"},
		{Title: "t", Description: "d", Price: 0, Category: "c"},
		{Title: "t", Description: "d", Price: 10, Category: "  "},
	}
	for i, in := range cases {
		if _, err := svc.Create(ctx, "owner", in); !errors.Is(err, ErrInvalidListing) {
			t.Errorf("case %d: expected ErrInvalidListing, got %v", i, err)
		}
	}
}

func TestBrowse_WithNamesAndRatings(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	seedUser(t, db, "owner-1", "Maria")

	created, err := svc.Create(ctx, "owner-1", ListingInput{
		Title: "Garden care", Description: "weekly", Price: 50, Category: "garden", Availability: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	unrated, err := svc.Create(ctx, "owner-1", ListingInput{
		Title: "Painting", Description: "walls", Price: 80, Category: "home", Availability: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for i, rating := range []int{4, 5} {
		rv := models.Review{
			ID: string(rune('a'+i)) + "-review", Content: "ok", Rating: rating,
			ServiceID: created.ID, UserID: "owner-1",
		}
		if err := db.Create(&rv).Error; err != nil {
			t.Fatalf("seed review: %v", err)
		}
	}

	listings, err := svc.Browse(ctx)
	if err != nil {
		t.Fatalf("browse: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(listings))
	}

	byID := map[string]Listing{}
	for _, l := range listings {
		byID[l.ID] = l
	}
	rated := byID[created.ID]
	if rated.UserName != "Maria" {
		t.Fatalf("expected owner name resolved, got %q", rated.UserName)
	}
	if rated.AverageRating == nil || rated.AverageRating.Average != 4.5 || rated.AverageRating.Count != 2 {
		t.Fatalf("unexpected rating summary %+v", rated.AverageRating)
	}
	if byID[unrated.ID].AverageRating != nil {
		t.Fatalf("service without reviews must have nil rating")
	}
}

func TestUpdateAndDelete_OwnershipEnforced(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	seedUser(t, db, "owner-1", "Maria")

	created, err := svc.Create(ctx, "owner-1", ListingInput{
		Title: "Garden care", Description: "weekly", Price: 50, Category: "garden", Availability: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	in := ListingInput{Title: "Garden care+", Description: "weekly", Price: 60, Category: "garden", Availability: false}
	if _, err := svc.Update(ctx, created.ID, "someone-else", in); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not-found for foreign update, got %v", err)
	}

	updated, err := svc.Update(ctx, created.ID, "owner-1", in)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Garden care+" || updated.Price != 60 || updated.Availability {
		t.Fatalf("update not applied: %+v", updated)
	}

	if err := svc.Delete(ctx, created.ID, "someone-else"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not-found for foreign delete, got %v", err)
	}
	if err := svc.Delete(ctx, created.ID, "owner-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not-found after delete, got %v", err)
	}
}

func TestGet_IncludesOwnerCard(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	seedUser(t, db, "owner-1", "Maria")

	created, err := svc.Create(ctx, "owner-1", ListingInput{
		Title: "Garden care", Description: "weekly", Price: 50, Category: "garden", Availability: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	d, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if d.User.ID != "owner-1" || d.User.Name != "Maria" || d.User.Email != "owner-1@example.com" {
		t.Fatalf("unexpected owner card %+v", d.User)
	}

	mine, err := svc.Mine(ctx, "owner-1")
	if err != nil {
		t.Fatalf("mine: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != created.ID {
		t.Fatalf("unexpected mine listings %+v", mine)
	}
}

package directory

import (
	"context"
	"log"

	"github.com/servihub/marketplace/internal/models"
	"github.com/servihub/marketplace/internal/store/redisstore"
	"gorm.io/gorm"
)

const unknownName = "Unknown"

// Resolver maps user ids to display names, front-loaded by the redis cache.
// Ids that resolve to nothing come back as "Unknown" rather than an error so
// listings never fail because of a deleted account.
type Resolver struct {
	db    *gorm.DB
	cache *redisstore.Store
}

func NewResolver(db *gorm.DB, cache *redisstore.Store) *Resolver {
	return &Resolver{db: db, cache: cache}
}

func (r *Resolver) ResolveNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	// dedupe while preserving lookup set
	uniq := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}

	missing := uniq
	if r.cache != nil {
		cached, miss, err := r.cache.GetNames(ctx, uniq)
		if err != nil {
			// cache down means slower, not broken
			log.Printf("directory: name cache lookup failed: %v", err)
			missing = uniq
		} else {
			for id, name := range cached {
				names[id] = name
			}
			missing = miss
		}
	}

	if len(missing) > 0 {
		var users []models.User
		if err := r.db.WithContext(ctx).
			Select("id", "name", "email").
			Where("id IN ?", missing).
			Find(&users).Error; err != nil {
			return nil, err
		}
		for _, u := range users {
			name := u.Name
			if name == "" {
				name = u.Email
			}
			if name == "" {
				name = unknownName
			}
			names[u.ID] = name
			if r.cache != nil {
				if err := r.cache.SetName(ctx, u.ID, name); err != nil {
					log.Printf("directory: name cache set failed: %v", err)
				}
			}
		}
	}

	for _, id := range uniq {
		if _, ok := names[id]; !ok {
			names[id] = unknownName
		}
	}
	return names, nil
}

// ResolveName is the single-id convenience used by the chat notification path.
func (r *Resolver) ResolveName(ctx context.Context, id string) string {
	names, err := r.ResolveNames(ctx, []string{id})
	if err != nil {
		return unknownName
	}
	return names[id]
}

// Invalidate drops a cached name after a profile update.
func (r *Resolver) Invalidate(ctx context.Context, id string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.DeleteName(ctx, id); err != nil {
		log.Printf("directory: name cache delete failed: %v", err)
	}
}

package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/servihub/marketplace/internal/catalog"
	"github.com/servihub/marketplace/internal/chat"
	"github.com/servihub/marketplace/internal/config"
	"github.com/servihub/marketplace/internal/directory"
	"github.com/servihub/marketplace/internal/forum"
	"github.com/servihub/marketplace/internal/httpapi/middleware"
	"github.com/servihub/marketplace/internal/notify"
	"github.com/servihub/marketplace/internal/review"
	"github.com/servihub/marketplace/internal/store/redisstore"
	"gorm.io/gorm"
)

type Handler struct {
	DB    *gorm.DB
	Cfg   config.Config
	Redis *redisstore.Store
	Names *directory.Resolver

	ChatSvc    *chat.Service
	CatalogSvc *catalog.Service
	ReviewSvc  *review.Service
	ForumSvc   *forum.Service
	Notifs     *notify.Repo
}

// NewHandler wires the domain services. pub may be nil when RabbitMQ is
// unavailable; notifications are then skipped rather than blocking writes.
func NewHandler(db *gorm.DB, cfg config.Config, rds *redisstore.Store, pub notify.Publisher) *Handler {
	names := directory.NewResolver(db, rds)
	notifier := notify.NewService(pub)

	return &Handler{
		DB:    db,
		Cfg:   cfg,
		Redis: rds,
		Names: names,

		ChatSvc:    chat.NewService(chat.NewRepo(db), names, notifier),
		CatalogSvc: catalog.NewService(catalog.NewRepo(db), names),
		ReviewSvc:  review.NewService(review.NewRepo(db), names, notifier),
		ForumSvc:   forum.NewService(forum.NewRepo(db), names),
		Notifs:     notify.NewRepo(db),
	}
}

func userIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

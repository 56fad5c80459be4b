package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/servihub/marketplace/internal/common"
	"github.com/servihub/marketplace/internal/config"
	"github.com/servihub/marketplace/internal/httpapi/handlers"
	"github.com/servihub/marketplace/internal/httpapi/middleware"
	"github.com/servihub/marketplace/internal/notify"
	"github.com/servihub/marketplace/internal/relay"
	"github.com/servihub/marketplace/internal/store/redisstore"
	"gorm.io/gorm"
)

func NewRouter(db *gorm.DB, cfg config.Config, rds *redisstore.Store, pub notify.Publisher, registry *relay.Registry) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.Use(middleware.RequestID())

	h := handlers.NewHandler(db, cfg, rds, pub)

	r.GET("/ping", h.Ping)

	// auth
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)

	// public catalog and forum reads
	r.GET("/services", h.ListServices)
	r.GET("/services/:id", h.GetService)
	r.GET("/services/:id/reviews", h.ListServiceReviews)
	r.GET("/users/resolve-names", h.ResolveNames)
	r.GET("/forum/topics", h.ListTopics)
	r.GET("/forum/topics/:id", h.GetTopic)

	// websocket relay; clients identify themselves via the authenticate event
	r.GET("/ws", relay.Handler(registry))

	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthRequired(cfg.JWTSecret))
	authGroup.GET("/me", h.Me)
	authGroup.POST("/profile/password", h.UpdatePassword)
	authGroup.POST("/profile/avatar", h.UpdateAvatar)
	authGroup.GET("/profile/reviews", h.MyReviews)

	// listings (JWT required for writes)
	authGroup.POST("/services", h.CreateService)
	authGroup.PUT("/services/:id", h.UpdateService)
	authGroup.DELETE("/services/:id", h.DeleteService)
	authGroup.GET("/my/services", h.MyServices)

	authGroup.POST("/reviews", h.CreateReview)

	// chat
	authGroup.POST("/chat", h.SendChat)
	authGroup.GET("/chat/history", h.ChatHistory)
	authGroup.GET("/messages", h.ListMessages)

	// notifications
	authGroup.GET("/notifications", h.ListNotifications)
	authGroup.POST("/notifications/:id/read", h.MarkNotificationRead)

	// forum writes
	authGroup.POST("/forum/topics", h.CreateTopic)
	authGroup.POST("/forum/topics/:id/posts", h.AddPost)

	return r
}

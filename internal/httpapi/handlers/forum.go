package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/servihub/marketplace/internal/common"
	"github.com/servihub/marketplace/internal/forum"
	"gorm.io/gorm"
)

type topicReq struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type postReq struct {
	Content string `json:"content"`
}

func topicID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10040, "invalid topic id")
		return 0, false
	}
	return id, true
}

func (h *Handler) ListTopics(c *gin.Context) {
	topics, err := h.ForumSvc.ListTopics(c.Request.Context())
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50009, "failed to list topics")
		return
	}
	common.OK(c, topics)
}

func (h *Handler) CreateTopic(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	var req topicReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	topic, err := h.ForumSvc.CreateTopic(c.Request.Context(), uid, req.Title, req.Content)
	if err != nil {
		if errors.Is(err, forum.ErrInvalidTopic) {
			common.Fail(c, http.StatusBadRequest, 10041, "title and content are required")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50010, "failed to create topic")
		return
	}
	common.Created(c, gin.H{"topic": topic})
}

func (h *Handler) GetTopic(c *gin.Context) {
	id, ok := topicID(c)
	if !ok {
		return
	}

	view, err := h.ForumSvc.GetTopicWithPosts(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40403, "topic not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50009, "failed to load topic")
		return
	}
	common.OK(c, view)
}

func (h *Handler) AddPost(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	id, ok := topicID(c)
	if !ok {
		return
	}
	var req postReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	post, err := h.ForumSvc.AddPost(c.Request.Context(), id, uid, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, forum.ErrEmptyPost):
			common.Fail(c, http.StatusBadRequest, 10042, "content is required")
		case errors.Is(err, gorm.ErrRecordNotFound):
			common.Fail(c, http.StatusNotFound, 40403, "topic not found")
		default:
			common.Fail(c, http.StatusInternalServerError, 50010, "failed to add post")
		}
		return
	}
	common.Created(c, gin.H{"post": post})
}

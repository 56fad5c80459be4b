package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/servihub/marketplace/internal/common"
	"gorm.io/gorm"
)

func (h *Handler) ListNotifications(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	notifs, err := h.Notifs.ListForUser(c.Request.Context(), uid, limit)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50011, "failed to list notifications")
		return
	}
	common.OK(c, notifs)
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10050, "invalid notification id")
		return
	}

	if err := h.Notifs.MarkRead(c.Request.Context(), uid, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40404, "notification not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50012, "failed to update notification")
		return
	}
	common.OK(c, gin.H{"read": true})
}

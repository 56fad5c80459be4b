package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/servihub/marketplace/internal/chat"
	"github.com/servihub/marketplace/internal/common"
)

type sendChatReq struct {
	ReceiverID string `json:"receiverId"`
	Message    string `json:"message"`
}

func (h *Handler) SendChat(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	var req sendChatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	msg, err := h.ChatSvc.Send(c.Request.Context(), uid, req.ReceiverID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrEmptyMessage):
			common.Fail(c, http.StatusBadRequest, 10020, "message is empty")
		case errors.Is(err, chat.ErrMissingPeer):
			common.Fail(c, http.StatusBadRequest, 10021, "receiverId is required")
		case errors.Is(err, chat.ErrSelfMessage):
			common.Fail(c, http.StatusBadRequest, 10022, "cannot message yourself")
		default:
			common.Fail(c, http.StatusInternalServerError, 50005, "failed to send message")
		}
		return
	}
	common.Created(c, gin.H{"message": msg})
}

func (h *Handler) ChatHistory(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	peer := c.Query("peerId")
	if peer == "" {
		common.Fail(c, http.StatusBadRequest, 10021, "peerId is required")
		return
	}

	msgs, err := h.ChatSvc.History(c.Request.Context(), uid, peer)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50006, "failed to load history")
		return
	}
	common.OK(c, msgs)
}

func (h *Handler) ListMessages(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	msgs, err := h.ChatSvc.ListWithNames(c.Request.Context(), uid)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50006, "failed to load messages")
		return
	}
	common.OK(c, msgs)
}

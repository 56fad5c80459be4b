package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/servihub/marketplace/internal/common"
	"github.com/servihub/marketplace/internal/review"
	"gorm.io/gorm"
)

func (h *Handler) CreateReview(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	var in review.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	rev, err := h.ReviewSvc.Create(c.Request.Context(), uid, in)
	if err != nil {
		switch {
		case errors.Is(err, review.ErrMissingService):
			common.Fail(c, http.StatusBadRequest, 10030, "serviceId is required")
		case errors.Is(err, review.ErrInvalidRating):
			common.Fail(c, http.StatusBadRequest, 10031, "rating must be between 1 and 5")
		case errors.Is(err, review.ErrEmptyContent):
			common.Fail(c, http.StatusBadRequest, 10032, "content is required")
		case errors.Is(err, gorm.ErrRecordNotFound):
			common.Fail(c, http.StatusNotFound, 40402, "service not found")
		default:
			common.Fail(c, http.StatusInternalServerError, 50007, "failed to create review")
		}
		return
	}
	common.Created(c, gin.H{"review": rev})
}

func (h *Handler) ListServiceReviews(c *gin.Context) {
	views, err := h.ReviewSvc.ListForService(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50008, "failed to list reviews")
		return
	}
	common.OK(c, views)
}

func (h *Handler) MyReviews(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	views, err := h.ReviewSvc.ListMine(c.Request.Context(), uid)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50008, "failed to list reviews")
		return
	}
	common.OK(c, views)
}

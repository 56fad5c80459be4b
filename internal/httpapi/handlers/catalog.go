package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/servihub/marketplace/internal/catalog"
	"github.com/servihub/marketplace/internal/common"
	"gorm.io/gorm"
)

type listingReq struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Price        any    `json:"price"`
	Category     string `json:"category"`
	Availability any    `json:"availability"`
}

// parsePrice accepts a JSON number or a numeric string, which the original
// web client sends interchangeably.
func parsePrice(v any) (float64, bool) {
	switch p := v.(type) {
	case float64:
		return p, true
	case string:
		f, err := strconv.ParseFloat(p, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// parseAvailability accepts a bool or the "available"/"unavailable" strings.
func parseAvailability(v any) (bool, bool) {
	switch a := v.(type) {
	case bool:
		return a, true
	case string:
		switch a {
		case "available", "true":
			return true, true
		case "unavailable", "false":
			return false, true
		}
	}
	return false, false
}

func (h *Handler) listingInput(c *gin.Context) (catalog.ListingInput, bool) {
	var req listingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return catalog.ListingInput{}, false
	}
	price, ok := parsePrice(req.Price)
	if !ok {
		common.Fail(c, http.StatusBadRequest, 10010, "price must be a number")
		return catalog.ListingInput{}, false
	}
	availability, ok := parseAvailability(req.Availability)
	if !ok {
		common.Fail(c, http.StatusBadRequest, 10011, "availability must be a boolean or available/unavailable")
		return catalog.ListingInput{}, false
	}
	return catalog.ListingInput{
		Title:        req.Title,
		Description:  req.Description,
		Price:        price,
		Category:     req.Category,
		Availability: availability,
	}, true
}

func (h *Handler) CreateService(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	in, ok := h.listingInput(c)
	if !ok {
		return
	}

	svc, err := h.CatalogSvc.Create(c.Request.Context(), uid, in)
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidListing) {
			common.Fail(c, http.StatusBadRequest, 10012, err.Error())
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to create service")
		return
	}
	common.Created(c, gin.H{"service": svc})
}

func (h *Handler) ListServices(c *gin.Context) {
	listings, err := h.CatalogSvc.Browse(c.Request.Context())
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to list services")
		return
	}
	common.OK(c, listings)
}

func (h *Handler) GetService(c *gin.Context) {
	id := c.Param("id")
	detail, err := h.CatalogSvc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40402, "service not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to load service")
		return
	}
	common.OK(c, detail)
}

func (h *Handler) UpdateService(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	in, ok := h.listingInput(c)
	if !ok {
		return
	}

	svc, err := h.CatalogSvc.Update(c.Request.Context(), c.Param("id"), uid, in)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrInvalidListing):
			common.Fail(c, http.StatusBadRequest, 10012, err.Error())
		case errors.Is(err, gorm.ErrRecordNotFound):
			common.Fail(c, http.StatusNotFound, 40402, "service not found")
		default:
			common.Fail(c, http.StatusInternalServerError, 50003, "failed to update service")
		}
		return
	}
	common.OK(c, gin.H{"service": svc})
}

func (h *Handler) DeleteService(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	if err := h.CatalogSvc.Delete(c.Request.Context(), c.Param("id"), uid); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40402, "service not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50004, "failed to delete service")
		return
	}
	common.OK(c, gin.H{"deleted": true})
}

func (h *Handler) MyServices(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	listings, err := h.CatalogSvc.Mine(c.Request.Context(), uid)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to list services")
		return
	}
	common.OK(c, listings)
}

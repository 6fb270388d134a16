package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sanatan-blog/acharyas-gurus-api/internal/models"
	"github.com/sanatan-blog/acharyas-gurus-api/internal/service"
	"github.com/sanatan-blog/acharyas-gurus-api/pkg/response"
)

// ContentHandler serves the public reading surface.
type ContentHandler struct {
	service *service.ContentService
}

// NewContentHandler creates a new handler.
func NewContentHandler(svc *service.ContentService) *ContentHandler {
	return &ContentHandler{service: svc}
}

// List godoc
// @Summary Browse published content
// @Description List published content with search, category and featured filters
// @Tags Content
// @Produce json
// @Param search query string false "Search term"
// @Param category query string false "Category filter"
// @Param featured query bool false "Featured only"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /content [get]
func (h *ContentHandler) List(c *gin.Context) {
	filter := contentFilterFromQuery(c)

	list, err := h.service.ListPublished(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, list.Items, list.Pagination)
}

// Get godoc
// @Summary Read a published item
// @Description Fetch one published content item and count the view
// @Tags Content
// @Produce json
// @Param id path string true "Content ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /content/{id} [get]
func (h *ContentHandler) Get(c *gin.Context) {
	content, err := h.service.GetPublished(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, content, nil)
}

// Like godoc
// @Summary Like a published item
// @Tags Content
// @Produce json
// @Param id path string true "Content ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /content/{id}/like [post]
func (h *ContentHandler) Like(c *gin.Context) {
	likes, err := h.service.Like(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"likes": likes}, nil)
}

func contentFilterFromQuery(c *gin.Context) models.ContentFilter {
	filter := models.ContentFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Page:   intQuery(c, "page", 1),
		Limit:  intQuery(c, "limit", 10),
	}
	if raw := c.Query("category"); raw != "" {
		category := models.ContentCategory(raw)
		filter.Category = &category
	}
	if raw := c.Query("featured"); raw != "" {
		if featured, err := strconv.ParseBool(raw); err == nil {
			filter.Featured = &featured
		}
	}
	if raw := c.Query("teacherId"); raw != "" {
		filter.TeacherID = raw
	}
	return filter
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}

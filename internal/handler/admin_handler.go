package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sanatan-blog/acharyas-gurus-api/internal/models"
	"github.com/sanatan-blog/acharyas-gurus-api/internal/service"
	appErrors "github.com/sanatan-blog/acharyas-gurus-api/pkg/errors"
	"github.com/sanatan-blog/acharyas-gurus-api/pkg/response"
)

// AdminHandler serves the admin dashboard and moderation endpoints.
type AdminHandler struct {
	admin      *service.AdminService
	moderation *service.ModerationService
}

// NewAdminHandler creates a new handler.
func NewAdminHandler(admin *service.AdminService, moderation *service.ModerationService) *AdminHandler {
	return &AdminHandler{admin: admin, moderation: moderation}
}

// Stats godoc
// @Summary Platform statistics
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/stats [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.admin.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, stats, nil)
}

// ListTeachers godoc
// @Summary List teacher accounts
// @Tags Admin
// @Produce json
// @Param search query string false "Search term"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/teachers [get]
func (h *AdminHandler) ListTeachers(c *gin.Context) {
	filter := models.TeacherFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Page:   intQuery(c, "page", 1),
		Limit:  intQuery(c, "limit", 10),
	}

	list, err := h.admin.ListTeachers(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, list.Items, list.Pagination)
}

// ListContent godoc
// @Summary List content across statuses
// @Tags Admin
// @Produce json
// @Param search query string false "Search term"
// @Param status query string false "Status filter"
// @Param category query string false "Category filter"
// @Param featured query bool false "Featured only"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/content [get]
func (h *AdminHandler) ListContent(c *gin.Context) {
	filter := contentFilterFromQuery(c)
	if raw := c.Query("status"); raw != "" {
		status := models.ContentStatus(raw)
		filter.Status = &status
	}

	list, err := h.admin.ListContent(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, list.Items, list.Pagination)
}

// ManageContent godoc
// @Summary Moderate a content item
// @Description Apply hide, unhide, feature, unfeature or delete
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Content ID"
// @Param payload body models.ModerateContentRequest true "Moderation payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/content/{id} [patch]
func (h *AdminHandler) ManageContent(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.ModerateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid moderation payload"))
		return
	}

	content, err := h.moderation.ManageContent(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if content == nil {
		response.Message(c, http.StatusOK, "content deleted")
		return
	}

	response.JSON(c, http.StatusOK, content, nil)
}

// ManageTeacher godoc
// @Summary Moderate a teacher account
// @Description Delete a teacher account
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Teacher ID"
// @Param payload body models.ManageTeacherRequest true "Action payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/teachers/{id} [patch]
func (h *AdminHandler) ManageTeacher(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.ManageTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid manage teacher payload"))
		return
	}

	if err := h.moderation.ManageTeacher(c.Request.Context(), claims.UserID, c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "teacher deleted")
}

// ExportTeachers godoc
// @Summary Export the teacher roster
// @Description Download the teacher roster as CSV or PDF
// @Tags Admin
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /admin/teachers/export [get]
func (h *AdminHandler) ExportTeachers(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")

	payload, contentType, err := h.admin.ExportTeachers(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("teachers-%s.%s", time.Now().UTC().Format("20060102"), strings.ToLower(format))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}

package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sanatan-blog/acharyas-gurus-api/internal/models"
	"github.com/sanatan-blog/acharyas-gurus-api/internal/service"
	appErrors "github.com/sanatan-blog/acharyas-gurus-api/pkg/errors"
	"github.com/sanatan-blog/acharyas-gurus-api/pkg/response"
)

// TeacherHandler serves the public teacher directory and the
// authenticated authoring endpoints.
type TeacherHandler struct {
	teachers *service.TeacherService
	content  *service.ContentService
}

// NewTeacherHandler creates a new handler.
func NewTeacherHandler(teachers *service.TeacherService, content *service.ContentService) *TeacherHandler {
	return &TeacherHandler{teachers: teachers, content: content}
}

// Directory godoc
// @Summary Browse teachers
// @Description List teacher profiles with optional search
// @Tags Teachers
// @Produce json
// @Param search query string false "Search term"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /teachers [get]
func (h *TeacherHandler) Directory(c *gin.Context) {
	filter := models.TeacherFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Page:   intQuery(c, "page", 1),
		Limit:  intQuery(c, "limit", 10),
	}

	list, err := h.teachers.Directory(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, list.Items, list.Pagination)
}

// Profile godoc
// @Summary View a teacher profile
// @Description Fetch one teacher with their published content
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teachers/{id} [get]
func (h *TeacherHandler) Profile(c *gin.Context) {
	profile, err := h.teachers.Profile(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, profile, nil)
}

// MyContent godoc
// @Summary List own content
// @Description List every item authored by the logged-in teacher
// @Tags Authoring
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /teacher/content [get]
func (h *TeacherHandler) MyContent(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	items, err := h.content.ListOwn(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, items, nil)
}

// CreateContent godoc
// @Summary Submit new content
// @Tags Authoring
// @Accept json
// @Produce json
// @Param payload body models.CreateContentRequest true "Content payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /teacher/content [post]
func (h *TeacherHandler) CreateContent(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CreateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid content payload"))
		return
	}

	content, err := h.content.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, content)
}

// MyStats godoc
// @Summary Authoring counters
// @Description Aggregate counters for the logged-in teacher's content
// @Tags Authoring
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /teacher/stats [get]
func (h *TeacherHandler) MyStats(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	stats, err := h.teachers.Stats(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, stats, nil)
}

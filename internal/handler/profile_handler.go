package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sanatan-blog/acharyas-gurus-api/internal/models"
	"github.com/sanatan-blog/acharyas-gurus-api/internal/service"
	appErrors "github.com/sanatan-blog/acharyas-gurus-api/pkg/errors"
	"github.com/sanatan-blog/acharyas-gurus-api/pkg/media"
	"github.com/sanatan-blog/acharyas-gurus-api/pkg/response"
)

// ProfileHandler serves the logged-in account's profile endpoints.
type ProfileHandler struct {
	service       *service.ProfileService
	maxUploadSize int64
}

// NewProfileHandler creates a new handler.
func NewProfileHandler(svc *service.ProfileService, maxUploadSize int64) *ProfileHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = 5 << 20
	}
	return &ProfileHandler{service: svc, maxUploadSize: maxUploadSize}
}

// Get godoc
// @Summary Get own profile
// @Tags Profile
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /profile [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	user, err := h.service.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, user, nil)
}

// Update godoc
// @Summary Update own profile
// @Tags Profile
// @Accept json
// @Produce json
// @Param payload body models.ProfileUpdateRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /profile [put]
func (h *ProfileHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}

	user, err := h.service.Update(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, user, nil)
}

// UploadImage godoc
// @Summary Upload a profile picture
// @Description Accepts a multipart image with an optional crop rectangle
// @Tags Profile
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Image file"
// @Param x formData int false "Crop origin X"
// @Param y formData int false "Crop origin Y"
// @Param width formData int false "Crop width"
// @Param height formData int false "Crop height"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /profile/image [post]
func (h *ProfileHandler) UploadImage(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "image file is required"))
		return
	}
	if fileHeader.Size > h.maxUploadSize {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "image exceeds the maximum upload size"))
		return
	}
	if ct := fileHeader.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "only image uploads are accepted"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer file.Close()

	url, err := h.service.UploadImage(c.Request.Context(), claims.UserID, file, cropFromForm(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"profileImage": url}, nil)
}

func cropFromForm(c *gin.Context) *media.CropRect {
	width, werr := strconv.Atoi(c.PostForm("width"))
	height, herr := strconv.Atoi(c.PostForm("height"))
	if werr != nil || herr != nil || width <= 0 || height <= 0 {
		return nil
	}
	x, _ := strconv.Atoi(c.PostForm("x"))
	y, _ := strconv.Atoi(c.PostForm("y"))
	return &media.CropRect{X: x, Y: y, Width: width, Height: height}
}

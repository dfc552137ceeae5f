package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/certificate"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/services"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/utils"
)

// UserHandler serves the caller's own profile
type UserHandler struct {
	BaseHandler
	profiles services.ProfileService
}

func NewUserHandler(profiles services.ProfileService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		profiles:    profiles,
	}
}

// GetProfile returns the caller's profile, course progress and certificate count
// @Summary My profile
// @Tags profile
// @Produce json
// @Success 200 {object} models.ProfileSummary
// @Router /me [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	summary, err := h.profiles.GetSummary(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if user, err := GetUserFromContext(c); err == nil && summary.User != nil {
		summary.User.Role = user.Role
	}

	c.JSON(http.StatusOK, summary)
}

// UploadPhoto stores the profile photo used on certificates
// @Summary Upload profile photo
// @Tags profile
// @Accept multipart/form-data
// @Produce json
// @Param photo formData file true "JPEG, PNG or WebP image"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /me/photo [post]
func (h *UserHandler) UploadPhoto(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	data, ok := readUpload(c, "photo", certificate.MaxPhotoBytes)
	if !ok {
		return
	}

	if err := h.profiles.UploadPhoto(c.Request.Context(), userID, data); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Photo uploaded",
	})
}

// GetPhoto returns the stored profile photo as PNG
// @Summary Get profile photo
// @Tags profile
// @Produce image/png
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Router /me/photo [get]
func (h *UserHandler) GetPhoto(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	data, err := h.profiles.GetPhoto(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, "image/png", data)
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/services"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/utils"
)

type ErrorResponse = models.ErrorResponse
type SuccessResponse = models.SuccessResponse

// BaseHandler carries what every handler shares: logging, path parsing and
// the mapping from service errors to HTTP responses.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	if logger == nil {
		logger = utils.Discard()
	}
	return BaseHandler{logger: logger}
}

func (h BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.FromContext(c, h.logger).Debug(msg, args...)
}

func (h BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	args = append(args, "error", err, "path", c.FullPath())
	utils.FromContext(c, h.logger).Error(msg, args...)
}

// ===== REQUEST HELPERS =====

// getUserID returns the authenticated user, writing 401 when there is none
func (h BaseHandler) getUserID(c *gin.Context) (string, bool) {
	id, err := GetUserIDFromContext(c)
	if err != nil || id == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return "", false
	}
	return id, true
}

func (h BaseHandler) parseIDParam(c *gin.Context, param string) uint {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		details := "must be a positive integer"
		if err != nil {
			details = err.Error()
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: details,
		})
		return 0
	}
	return uint(id)
}

func (h BaseHandler) parseIntQuery(c *gin.Context, param string, defaultValue int) int {
	value, err := strconv.Atoi(c.Query(param))
	if err != nil {
		return defaultValue
	}
	return value
}

func (h BaseHandler) bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return false
	}
	return true
}

// ===== ERROR HANDLING =====

func (h BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var cooldown *services.CooldownError
	if errors.As(err, &cooldown) {
		details := gin.H{
			"can_retry":    false,
			"wait_seconds": cooldown.WaitSeconds,
			"wait_minutes": cooldown.WaitMinutes,
			"wait_hours":   cooldown.WaitHours,
		}
		if !cooldown.RetryAt.IsZero() {
			details["retry_at"] = cooldown.RetryAt.Format(time.RFC3339)
		}
		c.Header("Retry-After", strconv.Itoa(cooldown.WaitSeconds))
		c.JSON(http.StatusTooManyRequests, ErrorResponse{
			Message: cooldown.Error(),
			Details: details,
		})
		return
	}

	var gating *services.GatingError
	if errors.As(err, &gating) {
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: gating.Error(),
			Details: gin.H{
				"completed_modules": gating.CompletedModules,
				"total_modules":     gating.TotalModules,
			},
		})
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: businessRuleError.Message,
			Details: gin.H{
				"rule":    businessRuleError.Rule,
				"context": businessRuleError.Context,
			},
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: gin.H{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrCourseNotFound),
		errors.Is(err, services.ErrCourseInactive),
		errors.Is(err, services.ErrModuleNotFound),
		errors.Is(err, services.ErrTestSetNotFound),
		errors.Is(err, services.ErrAssessmentNotFound),
		errors.Is(err, services.ErrNoActiveAssessment),
		errors.Is(err, services.ErrCertificateNotFound),
		errors.Is(err, services.ErrCertificateNoFile),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrPhotoNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrModuleLocked):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Module is locked",
		})
	case errors.Is(err, services.ErrNoPassingResult):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrInvalidPhoto),
		errors.Is(err, services.ErrInvalidDocument),
		errors.Is(err, services.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: err.Error(),
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}

package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/repositories"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/services"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/utils"
)

// StudentHandler serves the course catalogue and module progress
type StudentHandler struct {
	BaseHandler
	courses  services.CourseService
	progress services.ProgressService
}

func NewStudentHandler(courses services.CourseService, progress services.ProgressService, logger utils.Logger) *StudentHandler {
	return &StudentHandler{
		BaseHandler: NewBaseHandler(logger),
		courses:     courses,
		progress:    progress,
	}
}

// ===== COURSES =====

// ListCourses returns the active courses
// @Summary List courses
// @Tags courses
// @Produce json
// @Param q query string false "Name filter"
// @Param page query int false "Page (default 1)"
// @Param size query int false "Page size (default 20, max 100)"
// @Success 200 {object} SuccessResponse{data=[]models.Course}
// @Router /courses [get]
func (h *StudentHandler) ListCourses(c *gin.Context) {
	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 20)
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	courses, total, err := h.courses.List(c.Request.Context(), repositories.CourseFilters{
		ActiveOnly: true,
		Query:      strings.TrimSpace(c.Query("q")),
		Limit:      size,
		Offset:     (page - 1) * size,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  courses,
		"total": total,
		"page":  page,
		"size":  size,
	})
}

// GetCourseOverview starts the course for the caller on first visit
// @Summary Course overview with module states
// @Tags courses
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} models.CourseOverview
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id} [get]
func (h *StudentHandler) GetCourseOverview(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Getting course overview", "course_id", courseID)

	overview, err := h.progress.GetCourseOverview(c.Request.Context(), courseID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

// ListMyCourses returns every course the caller has started
// @Summary My courses
// @Tags students
// @Produce json
// @Success 200 {array} models.MyCourseSummary
// @Router /me/courses [get]
func (h *StudentHandler) ListMyCourses(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	courses, err := h.progress.ListMyCourses(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if courses == nil {
		courses = []models.MyCourseSummary{}
	}

	c.JSON(http.StatusOK, courses)
}

// ===== MODULE INTERACTIONS =====

// TrackPresentation marks the module presentation as viewed
// @Summary Mark presentation viewed
// @Tags modules
// @Produce json
// @Param id path uint true "Module ID"
// @Success 200 {object} models.ModuleActionResponse
// @Failure 403 {object} ErrorResponse "Module is locked"
// @Router /modules/{id}/track-presentation [post]
func (h *StudentHandler) TrackPresentation(c *gin.Context) {
	h.moduleAction(c, "presentation", h.progress.TrackPresentation)
}

// TrackVideo marks the module video as watched
// @Summary Mark video watched
// @Tags modules
// @Produce json
// @Param id path uint true "Module ID"
// @Success 200 {object} models.ModuleActionResponse
// @Failure 403 {object} ErrorResponse "Module is locked"
// @Router /modules/{id}/track-video [post]
func (h *StudentHandler) TrackVideo(c *gin.Context) {
	h.moduleAction(c, "video", h.progress.TrackVideo)
}

// CompleteModule marks the module as completed, unlocking the next one
// @Summary Complete module
// @Tags modules
// @Produce json
// @Param id path uint true "Module ID"
// @Success 200 {object} models.ModuleActionResponse
// @Failure 403 {object} ErrorResponse "Module is locked"
// @Router /modules/{id}/complete [post]
func (h *StudentHandler) CompleteModule(c *gin.Context) {
	h.moduleAction(c, "complete", h.progress.CompleteModule)
}

type moduleActionFunc func(ctx context.Context, moduleID uint, userID string) (*models.ModuleActionResponse, error)

func (h *StudentHandler) moduleAction(c *gin.Context, action string, fn moduleActionFunc) {
	moduleID := h.parseIDParam(c, "id")
	if moduleID == 0 {
		return
	}
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Module action", "action", action, "module_id", moduleID)

	resp, err := fn(c.Request.Context(), moduleID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

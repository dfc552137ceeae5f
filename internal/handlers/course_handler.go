package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/repositories"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/services"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/utils"
)

// CourseHandler administers courses and their modules
type CourseHandler struct {
	BaseHandler
	courses services.CourseService
}

func NewCourseHandler(courses services.CourseService, logger utils.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler: NewBaseHandler(logger),
		courses:     courses,
	}
}

// ===== COURSES =====

// CreateCourse creates a course together with modules 1..module_count
// @Summary Create course
// @Tags admin
// @Accept json
// @Produce json
// @Param body body models.CourseCreateRequest true "Course"
// @Success 201 {object} models.Course
// @Failure 400 {object} ErrorResponse
// @Router /admin/courses [post]
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req models.CourseCreateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	course, err := h.courses.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Course created", "course_id", course.ID, "module_count", course.ModuleCount)
	c.JSON(http.StatusCreated, course)
}

// UpdateCourse applies a partial update; a changed module count reconciles modules
// @Summary Update course
// @Tags admin
// @Accept json
// @Produce json
// @Param id path uint true "Course ID"
// @Param body body models.CourseUpdateRequest true "Fields to change"
// @Success 200 {object} models.Course
// @Router /admin/courses/{id} [put]
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req models.CourseUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	course, err := h.courses.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// GetCourse returns a course regardless of its active flag
// @Summary Get course
// @Tags admin
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} models.Course
// @Router /admin/courses/{id} [get]
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	course, err := h.courses.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// ListCourses lists every course, inactive ones included
// @Summary List all courses
// @Tags admin
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]models.Course}
// @Router /admin/courses [get]
func (h *CourseHandler) ListCourses(c *gin.Context) {
	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 50)
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 200 {
		size = 50
	}

	courses, total, err := h.courses.List(c.Request.Context(), repositories.CourseFilters{
		Query:  strings.TrimSpace(c.Query("q")),
		Limit:  size,
		Offset: (page - 1) * size,
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

// ReconcileModules makes the course's modules exactly 1..module_count
// @Summary Reconcile modules
// @Tags admin
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} models.ReconcileResult
// @Router /admin/courses/{id}/reconcile-modules [post]
func (h *CourseHandler) ReconcileModules(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	result, err := h.courses.ReconcileModules(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Modules reconciled", "course_id", id, "created", result.Created, "deleted", result.Deleted)
	c.JSON(http.StatusOK, result)
}

// ===== MODULES =====

// ListModules lists a course's modules by number
// @Summary List modules
// @Tags admin
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {array} models.Module
// @Router /admin/courses/{id}/modules [get]
func (h *CourseHandler) ListModules(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	modules, err := h.courses.ListModules(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if modules == nil {
		modules = []*models.Module{}
	}

	c.JSON(http.StatusOK, modules)
}

// UpdateModule edits a module's name, description and media links
// @Summary Update module
// @Tags admin
// @Accept json
// @Produce json
// @Param id path uint true "Module ID"
// @Param body body models.ModuleUpdateRequest true "Fields to change"
// @Success 200 {object} models.Module
// @Router /admin/modules/{id} [put]
func (h *CourseHandler) UpdateModule(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req models.ModuleUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	module, err := h.courses.UpdateModule(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, module)
}

package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/services"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DashboardHandler serves admin analytics and result exports
type DashboardHandler struct {
	BaseHandler
	service services.DashboardService
	exports services.ExportService
}

func NewDashboardHandler(service services.DashboardService, exports services.ExportService, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		exports:     exports,
	}
}

// ===== DASHBOARD ENDPOINTS =====

// GetDashboardStats returns overall dashboard statistics
// @Summary Get dashboard statistics
// @Description Totals plus course test and assessment pass rates
// @Tags dashboard
// @Produce json
// @Success 200 {object} services.DashboardStatsResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /admin/dashboard/stats [get]
func (h *DashboardHandler) GetDashboardStats(c *gin.Context) {
	h.LogRequest(c, "Getting dashboard stats")

	stats, err := h.service.GetDashboardStats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetActivityTrends returns daily submissions over the period
// @Summary Get activity trends
// @Tags dashboard
// @Produce json
// @Param period query string false "week or month (default: week)"
// @Success 200 {array} services.ActivityTrendResponse
// @Failure 400 {object} ErrorResponse "Bad request - invalid period"
// @Router /admin/dashboard/activity-trends [get]
func (h *DashboardHandler) GetActivityTrends(c *gin.Context) {
	period := c.DefaultQuery("period", "week")
	if period != "week" && period != "month" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid period parameter",
			Details: "Period must be 'week' or 'month'",
		})
		return
	}

	trends, err := h.service.GetActivityTrends(c.Request.Context(), period)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, trends)
}

// GetCoursePerformance ranks courses by course test submissions
// @Summary Get course performance
// @Tags dashboard
// @Produce json
// @Param limit query int false "Number of courses (default: 10, max: 50)"
// @Success 200 {array} services.CoursePerformanceResponse
// @Router /admin/dashboard/course-performance [get]
func (h *DashboardHandler) GetCoursePerformance(c *gin.Context) {
	limit := h.parseIntQuery(c, "limit", 10)

	performance, err := h.service.GetCoursePerformance(c.Request.Context(), limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, performance)
}

// ===== EXPORTS =====

// ExportCourseResults downloads a course's test results as XLSX
// @Summary Export course results
// @Tags admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Course ID"
// @Success 200 {file} file
// @Router /admin/courses/{id}/results/export [get]
func (h *DashboardHandler) ExportCourseResults(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	data, err := h.exports.ExportCourseResults(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	sendWorkbook(c, fmt.Sprintf("course_%d_results", id), data)
}

// ExportAssessmentResults downloads every assessment result as XLSX
// @Summary Export assessment results
// @Tags admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Router /admin/assessment-test/results/export [get]
func (h *DashboardHandler) ExportAssessmentResults(c *gin.Context) {
	data, err := h.exports.ExportAssessmentResults(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	sendWorkbook(c, "assessment_results", data)
}

func sendWorkbook(c *gin.Context, name string, data []byte) {
	filename := fmt.Sprintf("%s_%s.xlsx", name, time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

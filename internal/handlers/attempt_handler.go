package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/services"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/utils"
)

// AttemptHandler serves course test attempts
type AttemptHandler struct {
	BaseHandler
	tests services.CourseTestService
}

func NewAttemptHandler(tests services.CourseTestService, logger utils.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler: NewBaseHandler(logger),
		tests:       tests,
	}
}

// CheckEligibility reports whether the caller may start the course test
// @Summary Course test eligibility
// @Tags course-test
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} models.CourseTestEligibility
// @Router /courses/{id}/test/eligibility [get]
func (h *AttemptHandler) CheckEligibility(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	eligibility, err := h.tests.CheckEligibility(c.Request.Context(), courseID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, eligibility)
}

// StartAttempt serves the shuffled question set
// @Summary Start course test
// @Tags course-test
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} models.CourseTestSession
// @Failure 409 {object} ErrorResponse "Modules incomplete or no questions"
// @Failure 429 {object} ErrorResponse "Retry cooldown"
// @Router /courses/{id}/test/start [post]
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Starting course test", "course_id", courseID)

	session, err := h.tests.Start(c.Request.Context(), courseID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// SubmitAttempt scores the answers and records the result
// @Summary Submit course test
// @Tags course-test
// @Accept json
// @Produce json
// @Param id path uint true "Course ID"
// @Param body body models.CourseTestSubmitRequest true "Answers keyed by question id"
// @Success 200 {object} models.CourseTestSubmitResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Modules incomplete"
// @Failure 429 {object} ErrorResponse "Retry cooldown"
// @Router /courses/{id}/test/submit [post]
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	var req models.CourseTestSubmitRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.tests.Submit(c.Request.Context(), courseID, userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Course test submitted", "course_id", courseID, "passed", resp.Passed, "percentage", resp.Percentage)
	c.JSON(http.StatusOK, resp)
}

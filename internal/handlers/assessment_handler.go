package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/services"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/utils"
)

// AssessmentHandler serves the global talent sorting test
type AssessmentHandler struct {
	BaseHandler
	assessments services.AssessmentTestService
}

func NewAssessmentHandler(assessments services.AssessmentTestService, logger utils.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		BaseHandler: NewBaseHandler(logger),
		assessments: assessments,
	}
}

// ===== STUDENT ENDPOINTS =====

// GetOverview returns the active test, eligibility and the caller's status
// @Summary Assessment test overview
// @Tags assessment-test
// @Produce json
// @Success 200 {object} models.AssessmentOverview
// @Router /assessment-test [get]
func (h *AssessmentHandler) GetOverview(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	overview, err := h.assessments.GetOverview(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

// StartAssessment serves every question of the active test in order
// @Summary Start assessment test
// @Tags assessment-test
// @Produce json
// @Success 200 {object} models.AssessmentTestSession
// @Failure 404 {object} ErrorResponse "No active test"
// @Failure 429 {object} ErrorResponse "Retry cooldown"
// @Router /assessment-test/start [post]
func (h *AssessmentHandler) StartAssessment(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	session, err := h.assessments.Start(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// SubmitAssessment scores the attempt and promotes the caller on a pass
// @Summary Submit assessment test
// @Tags assessment-test
// @Accept json
// @Produce json
// @Param body body models.AssessmentTestSubmitRequest true "Answers and time taken"
// @Success 200 {object} models.AssessmentTestSubmitResponse
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse "Retry cooldown"
// @Router /assessment-test/submit [post]
func (h *AssessmentHandler) SubmitAssessment(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	var req models.AssessmentTestSubmitRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.assessments.Submit(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Assessment test submitted", "passed", resp.Passed, "new_status", resp.NewStatus)
	c.JSON(http.StatusOK, resp)
}

// ListMyResults returns the caller's attempt history
// @Summary My assessment results
// @Tags assessment-test
// @Produce json
// @Success 200 {array} models.AssessmentTestResult
// @Router /assessment-test/results [get]
func (h *AssessmentHandler) ListMyResults(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	results, err := h.assessments.ListMyResults(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if results == nil {
		results = []*models.AssessmentTestResult{}
	}

	c.JSON(http.StatusOK, results)
}

// ===== ADMIN ENDPOINTS =====

// CreateTest creates a test configuration; an active one replaces the current
// @Summary Create assessment test
// @Tags admin
// @Accept json
// @Produce json
// @Param body body models.AssessmentTestUpsertRequest true "Test configuration"
// @Success 201 {object} models.AssessmentTest
// @Router /admin/assessment-tests [post]
func (h *AssessmentHandler) CreateTest(c *gin.Context) {
	var req models.AssessmentTestUpsertRequest
	if !h.bindJSON(c, &req) {
		return
	}

	test, err := h.assessments.CreateTest(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, test)
}

// UpdateTest applies a partial update to a test configuration
// @Summary Update assessment test
// @Tags admin
// @Accept json
// @Produce json
// @Param id path uint true "Assessment test ID"
// @Param body body models.AssessmentTestUpsertRequest true "Fields to change"
// @Success 200 {object} models.AssessmentTest
// @Router /admin/assessment-tests/{id} [put]
func (h *AssessmentHandler) UpdateTest(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req models.AssessmentTestUpsertRequest
	if !h.bindJSON(c, &req) {
		return
	}

	test, err := h.assessments.UpdateTest(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

// GetActiveTest returns the active configuration
// @Summary Active assessment test
// @Tags admin
// @Produce json
// @Success 200 {object} models.AssessmentTest
// @Failure 404 {object} ErrorResponse
// @Router /admin/assessment-tests/active [get]
func (h *AssessmentHandler) GetActiveTest(c *gin.Context) {
	test, err := h.assessments.GetActiveTest(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/services"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/utils"
)

// maxImportBytes bounds an uploaded question document
const maxImportBytes = 10 << 20

// QuestionBankHandler administers test sets and their questions
type QuestionBankHandler struct {
	BaseHandler
	testSets services.TestSetService
}

func NewQuestionBankHandler(testSets services.TestSetService, logger utils.Logger) *QuestionBankHandler {
	return &QuestionBankHandler{
		BaseHandler: NewBaseHandler(logger),
		testSets:    testSets,
	}
}

// CreateTestSet creates an empty test set
// @Summary Create test set
// @Tags admin
// @Accept json
// @Produce json
// @Param body body models.TestSetCreateRequest true "Test set"
// @Success 201 {object} models.TestSet
// @Router /admin/test-sets [post]
func (h *QuestionBankHandler) CreateTestSet(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	var req models.TestSetCreateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	set, err := h.testSets.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, set)
}

// ListTestSets lists every test set
// @Summary List test sets
// @Tags admin
// @Produce json
// @Success 200 {array} models.TestSet
// @Router /admin/test-sets [get]
func (h *QuestionBankHandler) ListTestSets(c *gin.Context) {
	sets, err := h.testSets.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if sets == nil {
		sets = []*models.TestSet{}
	}

	c.JSON(http.StatusOK, sets)
}

// GetTestSet returns a test set with its questions and correct answers
// @Summary Get test set
// @Tags admin
// @Produce json
// @Param id path uint true "Test set ID"
// @Success 200 {object} models.TestSet
// @Failure 404 {object} ErrorResponse
// @Router /admin/test-sets/{id} [get]
func (h *QuestionBankHandler) GetTestSet(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	set, err := h.testSets.GetWithQuestions(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, set)
}

// AddQuestion adds one question with exactly four answers
// @Summary Add question
// @Tags admin
// @Accept json
// @Produce json
// @Param id path uint true "Test set ID"
// @Param body body models.QuestionCreateRequest true "Question"
// @Success 201 {object} models.Question
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Duplicate question number"
// @Router /admin/test-sets/{id}/questions [post]
func (h *QuestionBankHandler) AddQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req models.QuestionCreateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	question, err := h.testSets.AddQuestion(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// ImportDocx replaces the set's questions with those in an uploaded .docx
// @Summary Import questions from DOCX
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Param id path uint true "Test set ID"
// @Param file formData file true "Word document"
// @Success 200 {object} models.ImportResult
// @Failure 400 {object} ErrorResponse
// @Router /admin/test-sets/{id}/import [post]
func (h *QuestionBankHandler) ImportDocx(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	data, ok := readUpload(c, "file", maxImportBytes)
	if !ok {
		return
	}

	result, err := h.testSets.ImportDocx(c.Request.Context(), id, data)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Questions imported", "test_set_id", id, "imported", result.Imported)
	c.JSON(http.StatusOK, result)
}

// readUpload reads one multipart file, writing 400 when it is absent or too large
func readUpload(c *gin.Context, field string, limit int64) ([]byte, bool) {
	header, err := c.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing file field " + field,
			Details: err.Error(),
		})
		return nil, false
	}
	if header.Size > limit {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "File too large",
			Details: gin.H{"max_bytes": limit},
		})
		return nil, false
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Cannot read uploaded file",
			Details: err.Error(),
		})
		return nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil || int64(len(data)) > limit {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Cannot read uploaded file",
		})
		return nil, false
	}
	return data, true
}

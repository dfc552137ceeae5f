package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ===== COMMON =====

type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== COURSE ADMIN =====

type CourseCreateRequest struct {
	Name             string  `json:"name" validate:"required,min=1,max=200"`
	ShortDescription *string `json:"short_description" validate:"omitempty,max=2000"`
	ModuleCount      *int    `json:"module_count" validate:"omitempty,module_count"`
	TestSetID        *uint   `json:"test_set_id"`
	TimePerQuestion  *int    `json:"time_per_question" validate:"omitempty,min=1,max=30"`
	PassingScore     *int    `json:"passing_score" validate:"omitempty,percent"`
	IsActive         *bool   `json:"is_active"`
}

type CourseUpdateRequest struct {
	Name             *string `json:"name" validate:"omitempty,min=1,max=200"`
	ShortDescription *string `json:"short_description" validate:"omitempty,max=2000"`
	ModuleCount      *int    `json:"module_count" validate:"omitempty,module_count"`
	TestSetID        *uint   `json:"test_set_id"`
	TimePerQuestion  *int    `json:"time_per_question" validate:"omitempty,min=1,max=30"`
	PassingScore     *int    `json:"passing_score" validate:"omitempty,percent"`
	IsActive         *bool   `json:"is_active"`
}

type ModuleUpdateRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description     *string `json:"description" validate:"omitempty,max=5000"`
	PresentationURL *string `json:"presentation_url" validate:"omitempty,url"`
	VideoURL        *string `json:"video_url" validate:"omitempty,url"`
}

// ReconcileResult reports the module numbers touched by a reconciliation.
type ReconcileResult struct {
	CourseID uint  `json:"course_id"`
	Created  []int `json:"created"`
	Deleted  []int `json:"deleted"`
}

// ===== QUESTION BANK =====

type TestSetCreateRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type AnswerCreateRequest struct {
	Letter    string `json:"letter" validate:"omitempty,answer_letter"`
	Text      string `json:"text" validate:"required,min=1"`
	IsCorrect bool   `json:"is_correct"`
}

type QuestionCreateRequest struct {
	Number  int                   `json:"number" validate:"required,min=1"`
	Text    string                `json:"text" validate:"required,min=1"`
	Answers []AnswerCreateRequest `json:"answers" validate:"required,len=4,dive"`
}

type ImportResult struct {
	TestSetID uint `json:"test_set_id"`
	Imported  int  `json:"imported"`
}

// ===== ASSESSMENT ADMIN =====

type AssessmentTestUpsertRequest struct {
	Title           *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description     *string `json:"description" validate:"omitempty,max=5000"`
	TestSetID       *uint   `json:"test_set_id"`
	TimeLimit       *int    `json:"time_limit" validate:"omitempty,min=1,max=600"`
	PassPercentage  *int    `json:"pass_percentage" validate:"omitempty,percent"`
	RetryDelayHours *int    `json:"retry_delay_hours" validate:"omitempty,min=0,max=720"`
	IsActive        *bool   `json:"is_active"`
}

// ===== SUBMISSIONS =====

// AnswerMap maps question id to chosen answer id. Ids may arrive as JSON
// numbers or numeric strings; null values mean the question was skipped.
type AnswerMap map[uint]uint

func (m *AnswerMap) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("answers must be an object: %w", err)
	}

	out := make(AnswerMap, len(raw))
	for key, value := range raw {
		qid, err := strconv.ParseUint(strings.TrimSpace(key), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid question id %q", key)
		}
		if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			continue
		}
		aid, err := parseID(value)
		if err != nil {
			return fmt.Errorf("invalid answer id for question %d: %w", qid, err)
		}
		out[uint(qid)] = aid
	}
	*m = out
	return nil
}

func parseID(value json.RawMessage) (uint, error) {
	var n json.Number
	if err := json.Unmarshal(value, &n); err == nil {
		id, err := strconv.ParseUint(n.String(), 10, 64)
		return uint(id), err
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	return uint(id), err
}

type CourseTestSubmitRequest struct {
	Answers AnswerMap `json:"answers" validate:"required"`
}

type AssessmentTestSubmitRequest struct {
	Answers   AnswerMap `json:"answers" validate:"required"`
	TimeTaken int       `json:"time_taken" validate:"min=0"`
}

type CourseTestSubmitResponse struct {
	Success        bool  `json:"success"`
	ResultID       uint  `json:"result_id"`
	Passed         bool  `json:"passed"`
	Percentage     int   `json:"percentage"`
	CorrectAnswers int   `json:"correct_answers"`
	TotalQuestions int   `json:"total_questions"`
	PassingScore   int   `json:"passing_score"`
	CertificateID  *uint `json:"certificate_id,omitempty"`
}

type AssessmentTestSubmitResponse struct {
	Success        bool       `json:"success"`
	ResultID       uint       `json:"result_id"`
	Passed         bool       `json:"passed"`
	Percentage     float64    `json:"percentage"`
	CorrectAnswers int        `json:"correct_answers"`
	TotalQuestions int        `json:"total_questions"`
	NewStatus      UserStatus `json:"new_status"`
	NextAttempt    time.Time  `json:"next_attempt"`
}

// ===== TEST SESSIONS =====

// ServedAnswer never carries the correctness flag.
type ServedAnswer struct {
	ID     uint   `json:"id"`
	Letter string `json:"letter"`
	Text   string `json:"text"`
}

type ServedQuestion struct {
	ID      uint           `json:"id"`
	Number  int            `json:"number"`
	Text    string         `json:"text"`
	Answers []ServedAnswer `json:"answers"`
}

func NewServedQuestion(q *Question) ServedQuestion {
	served := ServedQuestion{ID: q.ID, Number: q.Number, Text: q.Text}
	for _, a := range q.Answers {
		served.Answers = append(served.Answers, ServedAnswer{ID: a.ID, Letter: a.Letter, Text: a.Text})
	}
	return served
}

type CourseTestSession struct {
	CourseID         uint             `json:"course_id"`
	CourseName       string           `json:"course_name"`
	Questions        []ServedQuestion `json:"questions"`
	TotalQuestions   int              `json:"total_questions"`
	TimeLimitMinutes int              `json:"time_limit_minutes"`
	PassingScore     int              `json:"passing_score"`
	StartedAt        time.Time        `json:"started_at"`
}

type AssessmentTestSession struct {
	TestID           uint             `json:"test_id"`
	Title            string           `json:"title"`
	Questions        []ServedQuestion `json:"questions"`
	TotalQuestions   int              `json:"total_questions"`
	TimeLimitSeconds int              `json:"time_limit_seconds"`
	PassPercentage   int              `json:"pass_percentage"`
}

// ===== ELIGIBILITY =====

type RetryStatus struct {
	CanRetry    bool       `json:"can_retry"`
	WaitSeconds int        `json:"wait_seconds"`
	WaitMinutes int        `json:"wait_minutes"`
	RetryAt     *time.Time `json:"retry_at,omitempty"`
}

type CourseTestEligibility struct {
	CanStart         bool        `json:"can_start"`
	Reason           string      `json:"reason,omitempty"`
	CompletedModules int         `json:"completed_modules"`
	TotalModules     int         `json:"total_modules"`
	QuestionCount    int         `json:"question_count"`
	Retry            RetryStatus `json:"retry"`
}

type AssessmentEligibility struct {
	CanAttempt  bool       `json:"can_attempt"`
	WaitSeconds int        `json:"wait_seconds"`
	WaitHours   int        `json:"wait_hours"`
	WaitMinutes int        `json:"wait_minutes"`
	NextAttempt *time.Time `json:"next_attempt,omitempty"`
}

// ===== PROGRESS VIEWS =====

type ModuleView struct {
	Module             Module      `json:"module"`
	State              ModuleState `json:"state"`
	IsUnlocked         bool        `json:"is_unlocked"`
	ViewedPresentation bool        `json:"viewed_presentation"`
	WatchedVideo       bool        `json:"watched_video"`
	IsCompleted        bool        `json:"is_completed"`
	CompletedAt        *time.Time  `json:"completed_at,omitempty"`
}

type CourseOverview struct {
	Course              Course              `json:"course"`
	Progress            *UserCourseProgress `json:"progress"`
	Modules             []ModuleView        `json:"modules"`
	CompletedModules    int                 `json:"completed_modules"`
	TotalModules        int                 `json:"total_modules"`
	ProgressPercentage  int                 `json:"progress_percentage"`
	AllModulesCompleted bool                `json:"all_modules_completed"`
	TestPassed          bool                `json:"test_passed"`
	LastResult          *UserTestResult     `json:"last_result,omitempty"`
	Retry               RetryStatus         `json:"retry"`
	Certificate         *Certificate        `json:"certificate,omitempty"`
}

type ModuleActionResponse struct {
	Status             string `json:"status"`
	ModuleID           uint   `json:"module_id"`
	ViewedPresentation bool   `json:"viewed_presentation"`
	WatchedVideo       bool   `json:"watched_video"`
	IsCompleted        bool   `json:"is_completed"`
}

type MyCourseSummary struct {
	Course             Course     `json:"course"`
	StartedAt          time.Time  `json:"started_at"`
	IsCompleted        bool       `json:"is_completed"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	TestPassed         bool       `json:"test_passed"`
	TestScore          *int       `json:"test_score,omitempty"`
	CompletedModules   int        `json:"completed_modules"`
	TotalModules       int        `json:"total_modules"`
	ProgressPercentage int        `json:"progress_percentage"`
}

type AssessmentOverview struct {
	Test             *AssessmentTest       `json:"test"`
	QuestionCount    int                   `json:"question_count"`
	Eligibility      AssessmentEligibility `json:"eligibility"`
	LastResult       *AssessmentTestResult `json:"last_result,omitempty"`
	Status           UserStatus            `json:"status"`
	AssessmentStatus UserStatus            `json:"assessment_status"`
}

type ProfileSummary struct {
	User             *User             `json:"user"`
	Courses          []MyCourseSummary `json:"courses"`
	CertificateCount int               `json:"certificate_count"`
}

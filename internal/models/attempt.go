package models

import (
	"time"

	"gorm.io/datatypes"
)

// UserTestResult is one course-test submission. Rows are never updated.
type UserTestResult struct {
	ID             uint   `json:"id" gorm:"primaryKey"`
	UserID         string `json:"user_id" gorm:"not null;size:255;index:idx_user_course_result"`
	CourseID       uint   `json:"course_id" gorm:"not null;index:idx_user_course_result"`
	Score          int    `json:"score"` // percentage points
	TotalQuestions int    `json:"total_questions"`
	CorrectAnswers int    `json:"correct_answers"`
	Percentage     int    `json:"percentage"`
	Passed         bool   `json:"passed" gorm:"index"`

	// Snapshot of the submitted question->answer mapping
	Answers datatypes.JSON `json:"answers,omitempty" gorm:"type:jsonb"`

	CompletedAt time.Time `json:"completed_at" gorm:"not null;index:idx_user_course_result"`

	// Relations
	User   *User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Course *Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

func (UserTestResult) TableName() string {
	return "user_test_results"
}

// AssessmentTestResult is one Saralash submission. Rows are never updated.
type AssessmentTestResult struct {
	ID               uint    `json:"id" gorm:"primaryKey"`
	UserID           string  `json:"user_id" gorm:"not null;size:255;index"`
	AssessmentTestID uint    `json:"assessment_test_id" gorm:"not null;index"`
	Score            int     `json:"score"` // correct answers
	TotalQuestions   int     `json:"total_questions"`
	CorrectAnswers   int     `json:"correct_answers"`
	Percentage       float64 `json:"percentage"`
	Passed           bool    `json:"passed"`
	TimeTaken        int     `json:"time_taken"` // seconds, client reported

	Answers datatypes.JSON `json:"answers,omitempty" gorm:"type:jsonb"`

	CompletedAt time.Time `json:"completed_at" gorm:"not null;index"`

	// Relations
	User           *User           `json:"user,omitempty" gorm:"foreignKey:UserID"`
	AssessmentTest *AssessmentTest `json:"assessment_test,omitempty" gorm:"foreignKey:AssessmentTestID"`
}

func (AssessmentTestResult) TableName() string {
	return "assessment_test_results"
}

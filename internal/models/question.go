package models

import "time"

// AnswersPerQuestion is the fixed number of candidate answers on every question.
const AnswersPerQuestion = 4

var AnswerLetters = []string{"A", "B", "C", "D"}

type Question struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	TestSetID uint   `json:"test_set_id" gorm:"not null;uniqueIndex:idx_test_set_question_number"`
	Number    int    `json:"number" gorm:"not null;uniqueIndex:idx_test_set_question_number"`
	Text      string `json:"text" gorm:"type:text;not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Answers []Answer `json:"answers" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
}

func (Question) TableName() string {
	return "questions"
}

// CorrectAnswerID returns the id of the answer flagged correct, or 0.
func (q *Question) CorrectAnswerID() uint {
	for _, a := range q.Answers {
		if a.IsCorrect {
			return a.ID
		}
	}
	return 0
}

type Answer struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Letter     string `json:"letter" gorm:"size:1"`
	Text       string `json:"text" gorm:"type:text;not null"`
	IsCorrect  bool   `json:"is_correct" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"created_at"`
}

func (Answer) TableName() string {
	return "answers"
}

// IsAnswerLetter reports whether s is one of A..D.
func IsAnswerLetter(s string) bool {
	for _, l := range AnswerLetters {
		if l == s {
			return true
		}
	}
	return false
}

package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EventSource  = "yosh-tadqiqotchi"
	EventVersion = "1.0"
)

// Event types
const (
	CourseTestSubmitted     = "course_test.submitted"
	CertificateIssued       = "certificate.issued"
	AssessmentTestSubmitted = "assessment_test.submitted"
	UserPromoted            = "user.promoted"
)

// Event is the envelope published on the bus
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	UserID    string      `json:"user_id,omitempty"`
	Data      interface{} `json:"data"`
}

func NewEvent(eventType, userID string, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		UserID:    userID,
		Data:      data,
	}
}

func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// EventPublisher publishes domain events after the state change is committed
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// ===== PAYLOADS =====

type CourseTestSubmittedData struct {
	ResultID       uint `json:"result_id"`
	CourseID       uint `json:"course_id"`
	Percentage     int  `json:"percentage"`
	CorrectAnswers int  `json:"correct_answers"`
	TotalQuestions int  `json:"total_questions"`
	Passed         bool `json:"passed"`
}

type CertificateIssuedData struct {
	CertificateID uint   `json:"certificate_id"`
	CourseID      uint   `json:"course_id"`
	SerialNumber  string `json:"serial_number"`
}

type AssessmentTestSubmittedData struct {
	ResultID         uint      `json:"result_id"`
	AssessmentTestID uint      `json:"assessment_test_id"`
	Percentage       float64   `json:"percentage"`
	Passed           bool      `json:"passed"`
	NextAttempt      time.Time `json:"next_attempt"`
}

type UserPromotedData struct {
	From string `json:"from"`
	To   string `json:"to"`
}

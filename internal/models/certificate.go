package models

import (
	"fmt"
	"time"
)

type Certificate struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	UserID       string `json:"user_id" gorm:"not null;size:255;uniqueIndex:idx_user_course_certificate"`
	CourseID     uint   `json:"course_id" gorm:"not null;uniqueIndex:idx_user_course_certificate"`
	TestResultID uint   `json:"test_result_id" gorm:"not null;uniqueIndex"`
	SerialNumber string `json:"serial_number" gorm:"not null;size:64;uniqueIndex"`

	// Object key of the rendered PDF in the artifact store; empty when no file exists
	FileKey string `json:"-" gorm:"size:500"`

	IssuedAt time.Time `json:"issued_at" gorm:"not null"`

	// Relations
	Course     *Course         `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	TestResult *UserTestResult `json:"test_result,omitempty" gorm:"foreignKey:TestResultID"`
}

func (Certificate) TableName() string {
	return "certificates"
}

func (c *Certificate) HasFile() bool {
	return c.FileKey != ""
}

// CertificateFileKey is the storage key for a rendered certificate. The serial
// number keeps racing issues for the same user and course on separate objects.
func CertificateFileKey(userID string, courseID uint, issuedAt time.Time, serial string) string {
	return fmt.Sprintf("certificates/certificate_%s_%d_%s_%s.pdf", userID, courseID, issuedAt.Format("20060102"), serial)
}

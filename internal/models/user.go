package models

import (
	"strings"
	"time"
)

type UserRole string
type Role = UserRole

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

// UserStatus is the closed tier set shared by status and assessment_status.
type UserStatus string

const (
	StatusRegular  UserStatus = "regular"
	StatusTalented UserStatus = "talented"
)

func (s UserStatus) IsValid() bool {
	return s == StatusRegular || s == StatusTalented
}

// Promote returns the elevated tier. There is no transition back to regular.
func (s UserStatus) Promote() UserStatus {
	return StatusTalented
}

type User struct {
	ID        string   `json:"id" gorm:"primaryKey;size:255"`
	FullName  string   `json:"full_name" gorm:"not null;size:150"`
	FirstName string   `json:"first_name" gorm:"size:100"`
	LastName  string   `json:"last_name" gorm:"size:100"`
	Email     string   `json:"email" gorm:"size:255;index"`
	Role      UserRole `json:"role" gorm:"-"`

	// Profile info
	AvatarURL *string `json:"avatar_url" gorm:"size:500"`
	PhotoKey  *string `json:"-" gorm:"size:255"`

	// Tier
	Status UserStatus `json:"status" gorm:"size:20;not null;default:regular"`

	// Assessment (Saralash) test
	AssessmentStatus      UserStatus `json:"assessment_status" gorm:"size:20;not null;default:regular"`
	AssessmentScore       *float64   `json:"assessment_score"`
	AssessmentTakenAt     *time.Time `json:"assessment_taken_at"`
	AssessmentNextAttempt *time.Time `json:"assessment_next_attempt"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// DisplayName falls back to the name parts or the email when no full name is known.
func (u *User) DisplayName() string {
	if name := strings.TrimSpace(u.FullName); name != "" {
		return name
	}
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return u.Email
}

func (u *User) HasPhoto() bool {
	return u.PhotoKey != nil && *u.PhotoKey != ""
}

func (u *User) IsStaff() bool {
	return u.Role == RoleTeacher || u.Role == RoleAdmin
}

package models

import "time"

type UserCourseProgress struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	UserID      string     `json:"user_id" gorm:"not null;size:255;uniqueIndex:idx_user_course_progress"`
	CourseID    uint       `json:"course_id" gorm:"not null;uniqueIndex:idx_user_course_progress"`
	StartedAt   time.Time  `json:"started_at" gorm:"not null"`
	CompletedAt *time.Time `json:"completed_at"`
	IsCompleted bool       `json:"is_completed" gorm:"not null;default:false"`
	TestScore   *int       `json:"test_score"`
	TestPassed  bool       `json:"test_passed" gorm:"not null;default:false"`

	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Course *Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

func (UserCourseProgress) TableName() string {
	return "user_course_progress"
}

type UserModuleProgress struct {
	ID                 uint       `json:"id" gorm:"primaryKey"`
	UserID             string     `json:"user_id" gorm:"not null;size:255;uniqueIndex:idx_user_module_progress"`
	ModuleID           uint       `json:"module_id" gorm:"not null;uniqueIndex:idx_user_module_progress"`
	ViewedPresentation bool       `json:"viewed_presentation" gorm:"not null;default:false"`
	WatchedVideo       bool       `json:"watched_video" gorm:"not null;default:false"`
	IsCompleted        bool       `json:"is_completed" gorm:"not null;default:false"`
	CompletedAt        *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (UserModuleProgress) TableName() string {
	return "user_module_progress"
}

// ModuleState is computed on every read and never stored.
type ModuleState string

const (
	ModuleLocked     ModuleState = "locked"
	ModuleUnlocked   ModuleState = "unlocked"
	ModuleInProgress ModuleState = "in_progress"
	ModuleCompleted  ModuleState = "completed"
)

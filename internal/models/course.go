package models

import (
	"fmt"
	"time"
)

const (
	DefaultModuleCount     = 1
	DefaultTimePerQuestion = 2
	DefaultPassingScore    = 70
)

type Course struct {
	ID               uint    `json:"id" gorm:"primaryKey"`
	Name             string  `json:"name" gorm:"not null;size:200"`
	ShortDescription *string `json:"short_description" gorm:"type:text"`
	ModuleCount      int     `json:"module_count" gorm:"not null;default:1"`
	TestSetID        *uint   `json:"test_set_id" gorm:"index"`
	TimePerQuestion  int     `json:"time_per_question" gorm:"not null;default:2"` // minutes
	PassingScore     int     `json:"passing_score" gorm:"not null;default:70"`    // percent
	IsActive         bool    `json:"is_active" gorm:"not null;default:true;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	TestSet *TestSet `json:"test_set,omitempty" gorm:"foreignKey:TestSetID"`
	Modules []Module `json:"modules,omitempty" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
}

func (Course) TableName() string {
	return "courses"
}

type Module struct {
	ID              uint    `json:"id" gorm:"primaryKey"`
	CourseID        uint    `json:"course_id" gorm:"not null;uniqueIndex:idx_course_module_number"`
	Number          int     `json:"number" gorm:"not null;uniqueIndex:idx_course_module_number"`
	Name            string  `json:"name" gorm:"not null;size:200"`
	Description     string  `json:"description" gorm:"type:text"`
	PresentationURL *string `json:"presentation_url" gorm:"size:500"`
	VideoURL        *string `json:"video_url" gorm:"size:500"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Module) TableName() string {
	return "modules"
}

// NewDefaultModule builds the placeholder row created by module reconciliation.
func NewDefaultModule(course *Course, number int) Module {
	return Module{
		CourseID:    course.ID,
		Number:      number,
		Name:        fmt.Sprintf("Modul %d", number),
		Description: fmt.Sprintf("%s - %d-modul", course.Name, number),
	}
}

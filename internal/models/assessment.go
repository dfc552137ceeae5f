package models

import "time"

const (
	DefaultAssessmentTitle = "Iqtidorli talabamisiz?"
	DefaultTimeLimit       = 60 // minutes
	DefaultPassPercentage  = 60
	DefaultRetryDelayHours = 1
)

// AssessmentTest is the global Saralash test. The newest active row is the current one.
type AssessmentTest struct {
	ID              uint    `json:"id" gorm:"primaryKey"`
	Title           string  `json:"title" gorm:"not null;size:200"`
	Description     *string `json:"description" gorm:"type:text"`
	TestSetID       *uint   `json:"test_set_id" gorm:"index"`
	TimeLimit       int     `json:"time_limit" gorm:"not null;default:60"`      // minutes
	PassPercentage  int     `json:"pass_percentage" gorm:"not null;default:60"` // percent
	RetryDelayHours int     `json:"retry_delay_hours" gorm:"not null;default:1"`
	IsActive        bool    `json:"is_active" gorm:"not null;default:true;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	TestSet *TestSet `json:"test_set,omitempty" gorm:"foreignKey:TestSetID"`
}

func (AssessmentTest) TableName() string {
	return "assessment_tests"
}

func (t *AssessmentTest) RetryDelay() time.Duration {
	return time.Duration(t.RetryDelayHours) * time.Hour
}

package repositories

import (
	"context"
	"time"
)

// DashboardRepository aggregates counts and rates for the admin dashboard
type DashboardRepository interface {
	GetOverview(ctx context.Context) (*DashboardOverviewData, error)

	// Metrics over all course-test results
	GetCourseResultMetrics(ctx context.Context) (*ResultMetricsData, error)
	// Metrics over all assessment-test results
	GetAssessmentResultMetrics(ctx context.Context) (*ResultMetricsData, error)

	// GetActivityTrends returns one row per day in [since, now), oldest first
	GetActivityTrends(ctx context.Context, since time.Time) ([]ActivityTrendData, error)
	GetCoursePerformance(ctx context.Context, limit int) ([]CoursePerformanceData, error)
}

// ===== DASHBOARD DATA =====

type DashboardOverviewData struct {
	TotalCourses           int64 `json:"total_courses"`
	ActiveCourses          int64 `json:"active_courses"`
	TotalTestSets          int64 `json:"total_test_sets"`
	TotalQuestions         int64 `json:"total_questions"`
	CourseResults          int64 `json:"course_results"`
	CertificatesIssued     int64 `json:"certificates_issued"`
	AssessmentResults      int64 `json:"assessment_results"`
	TalentedUsers          int64 `json:"talented_users"`
	StudentsWithProgress   int64 `json:"students_with_progress"`
	CompletedCourseRecords int64 `json:"completed_course_records"`
}

type ResultMetricsData struct {
	Total             int64   `json:"total"`
	Passed            int64   `json:"passed"`
	AveragePercentage float64 `json:"average_percentage"`
}

type ActivityTrendData struct {
	Date              time.Time `json:"date"`
	Submissions       int64     `json:"submissions"`
	Users             int64     `json:"users"`
	AveragePercentage float64   `json:"average_percentage"`
}

type CoursePerformanceData struct {
	CourseID          uint    `json:"course_id"`
	CourseName        string  `json:"course_name"`
	Submissions       int64   `json:"submissions"`
	Passed            int64   `json:"passed"`
	AveragePercentage float64 `json:"average_percentage"`
}

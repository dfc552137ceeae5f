package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/repositories"
)

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) repositories.DashboardRepository {
	return &dashboardRepository{db: db}
}

// ===== OVERVIEW =====

func (r *dashboardRepository) GetOverview(ctx context.Context) (*repositories.DashboardOverviewData, error) {
	db := r.db.WithContext(ctx)
	out := &repositories.DashboardOverviewData{}

	counts := []struct {
		name  string
		query *gorm.DB
		dest  *int64
	}{
		{"courses", db.Model(&models.Course{}), &out.TotalCourses},
		{"active courses", db.Model(&models.Course{}).Where("is_active = ?", true), &out.ActiveCourses},
		{"test sets", db.Model(&models.TestSet{}), &out.TotalTestSets},
		{"questions", db.Model(&models.Question{}), &out.TotalQuestions},
		{"course results", db.Model(&models.UserTestResult{}), &out.CourseResults},
		{"certificates", db.Model(&models.Certificate{}), &out.CertificatesIssued},
		{"assessment results", db.Model(&models.AssessmentTestResult{}), &out.AssessmentResults},
		{"talented users", db.Model(&models.User{}).Where("status = ?", models.StatusTalented), &out.TalentedUsers},
		{"students with progress", db.Model(&models.UserCourseProgress{}).Distinct("user_id"), &out.StudentsWithProgress},
		{"completed courses", db.Model(&models.UserCourseProgress{}).Where("is_completed = ?", true), &out.CompletedCourseRecords},
	}

	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.name, err)
		}
	}
	return out, nil
}

// ===== METRICS =====

func (r *dashboardRepository) GetCourseResultMetrics(ctx context.Context) (*repositories.ResultMetricsData, error) {
	return r.resultMetrics(ctx, &models.UserTestResult{})
}

func (r *dashboardRepository) GetAssessmentResultMetrics(ctx context.Context) (*repositories.ResultMetricsData, error) {
	return r.resultMetrics(ctx, &models.AssessmentTestResult{})
}

func (r *dashboardRepository) resultMetrics(ctx context.Context, model interface{}) (*repositories.ResultMetricsData, error) {
	var out repositories.ResultMetricsData
	if err := r.db.WithContext(ctx).
		Model(model).
		Select("COUNT(*) AS total, " +
			"COUNT(*) FILTER (WHERE passed) AS passed, " +
			"COALESCE(AVG(percentage), 0) AS average_percentage").
		Scan(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to get result metrics: %w", err)
	}
	return &out, nil
}

// ===== ACTIVITY TRENDS =====

func (r *dashboardRepository) GetActivityTrends(ctx context.Context, since time.Time) ([]repositories.ActivityTrendData, error) {
	var rows []repositories.ActivityTrendData
	if err := r.db.WithContext(ctx).
		Model(&models.UserTestResult{}).
		Select("date_trunc('day', completed_at) AS date, "+
			"COUNT(*) AS submissions, "+
			"COUNT(DISTINCT user_id) AS users, "+
			"COALESCE(AVG(percentage), 0) AS average_percentage").
		Where("completed_at >= ?", since).
		Group("date_trunc('day', completed_at)").
		Order("date ASC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get activity trends: %w", err)
	}
	return fillDays(rows, since, time.Now().UTC()), nil
}

// fillDays inserts zero rows for days without submissions
func fillDays(rows []repositories.ActivityTrendData, since, until time.Time) []repositories.ActivityTrendData {
	byDay := make(map[string]repositories.ActivityTrendData, len(rows))
	for _, row := range rows {
		byDay[row.Date.UTC().Format("2006-01-02")] = row
	}

	start := time.Date(since.Year(), since.Month(), since.Day(), 0, 0, 0, 0, time.UTC)
	var out []repositories.ActivityTrendData
	for day := start; !day.After(until); day = day.AddDate(0, 0, 1) {
		row, ok := byDay[day.Format("2006-01-02")]
		if !ok {
			row = repositories.ActivityTrendData{}
		}
		row.Date = day
		out = append(out, row)
	}
	return out
}

// ===== COURSE PERFORMANCE =====

func (r *dashboardRepository) GetCoursePerformance(ctx context.Context, limit int) ([]repositories.CoursePerformanceData, error) {
	var rows []repositories.CoursePerformanceData
	if err := r.db.WithContext(ctx).
		Table("user_test_results").
		Select("courses.id AS course_id, courses.name AS course_name, "+
			"COUNT(user_test_results.id) AS submissions, "+
			"COUNT(user_test_results.id) FILTER (WHERE user_test_results.passed) AS passed, "+
			"COALESCE(AVG(user_test_results.percentage), 0) AS average_percentage").
		Joins("JOIN courses ON user_test_results.course_id = courses.id").
		Group("courses.id, courses.name").
		Order("submissions DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get course performance: %w", err)
	}
	return rows, nil
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/repositories"
)

// ===== RESPONSE DTOs =====

type DashboardStatsResponse struct {
	Overview   repositories.DashboardOverviewData `json:"overview"`
	CourseTest DashboardMetrics                   `json:"course_test"`
	Assessment DashboardMetrics                   `json:"assessment"`
}

type DashboardMetrics struct {
	Submissions       int64   `json:"submissions"`
	PassRate          float64 `json:"pass_rate"`
	AveragePercentage float64 `json:"average_percentage"`
}

type ActivityTrendResponse struct {
	Date              string  `json:"date"`
	Submissions       int64   `json:"submissions"`
	Users             int64   `json:"users"`
	AveragePercentage float64 `json:"average_percentage"`
}

type CoursePerformanceResponse struct {
	CourseID          uint    `json:"course_id"`
	CourseName        string  `json:"course_name"`
	Submissions       int64   `json:"submissions"`
	PassRate          float64 `json:"pass_rate"`
	AveragePercentage float64 `json:"average_percentage"`
}

// ===== SERVICE INTERFACE =====

type DashboardService interface {
	GetDashboardStats(ctx context.Context) (*DashboardStatsResponse, error)
	// GetActivityTrends covers the last 7 days for "week" and 30 days for "month"
	GetActivityTrends(ctx context.Context, period string) ([]ActivityTrendResponse, error)
	GetCoursePerformance(ctx context.Context, limit int) ([]CoursePerformanceResponse, error)
}

// ===== SERVICE IMPLEMENTATION =====

type dashboardService struct {
	deps   *Dependencies
	repo   repositories.Repository
	logger *slog.Logger
}

func NewDashboardService(deps *Dependencies) DashboardService {
	deps = deps.withDefaults()
	return &dashboardService{deps: deps, repo: deps.Repo, logger: deps.Logger}
}

func (s *dashboardService) GetDashboardStats(ctx context.Context) (*DashboardStatsResponse, error) {
	s.logger.Info("Getting dashboard stats")

	overview, err := s.repo.Dashboard().GetOverview(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get overview: %w", err)
	}
	course, err := s.repo.Dashboard().GetCourseResultMetrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get course test metrics: %w", err)
	}
	assessment, err := s.repo.Dashboard().GetAssessmentResultMetrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment metrics: %w", err)
	}

	return &DashboardStatsResponse{
		Overview:   *overview,
		CourseTest: toMetrics(course),
		Assessment: toMetrics(assessment),
	}, nil
}

func (s *dashboardService) GetActivityTrends(ctx context.Context, period string) ([]ActivityTrendResponse, error) {
	var days int
	switch period {
	case "", "week":
		days = 7
	case "month":
		days = 30
	default:
		return nil, NewBusinessRuleError("dashboard_period", "period must be 'week' or 'month'",
			map[string]interface{}{"period": period})
	}

	since := s.deps.now().AddDate(0, 0, -(days - 1))
	trends, err := s.repo.Dashboard().GetActivityTrends(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get activity trends: %w", err)
	}

	out := make([]ActivityTrendResponse, len(trends))
	for i, t := range trends {
		out[i] = ActivityTrendResponse{
			Date:              t.Date.Format(time.DateOnly),
			Submissions:       t.Submissions,
			Users:             t.Users,
			AveragePercentage: roundFloat(t.AveragePercentage, 1),
		}
	}
	return out, nil
}

func (s *dashboardService) GetCoursePerformance(ctx context.Context, limit int) ([]CoursePerformanceResponse, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	rows, err := s.repo.Dashboard().GetCoursePerformance(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get course performance: %w", err)
	}

	out := make([]CoursePerformanceResponse, len(rows))
	for i, r := range rows {
		out[i] = CoursePerformanceResponse{
			CourseID:          r.CourseID,
			CourseName:        r.CourseName,
			Submissions:       r.Submissions,
			PassRate:          rate(r.Passed, r.Submissions),
			AveragePercentage: roundFloat(r.AveragePercentage, 1),
		}
	}
	return out, nil
}

// ===== HELPER FUNCTIONS =====

func toMetrics(m *repositories.ResultMetricsData) DashboardMetrics {
	return DashboardMetrics{
		Submissions:       m.Total,
		PassRate:          rate(m.Passed, m.Total),
		AveragePercentage: roundFloat(m.AveragePercentage, 1),
	}
}

func rate(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return roundFloat(float64(part)/float64(total)*100, 1)
}

func roundFloat(val float64, precision int) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

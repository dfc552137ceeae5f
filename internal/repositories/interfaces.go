package repositories

import (
	"context"
	"time"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type CourseFilters struct {
	ActiveOnly bool   `json:"active_only"`
	Query      string `json:"query"`
	Limit      int    `json:"limit"`
	Offset     int    `json:"offset"`
}

type ResultFilters struct {
	UserID   *string    `json:"user_id"`
	CourseID *uint      `json:"course_id"`
	TestID   *uint      `json:"test_id"`
	Passed   *bool      `json:"passed"`
	DateFrom *time.Time `json:"date_from"`
	DateTo   *time.Time `json:"date_to"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

// ===== COURSE DOMAIN =====

type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id uint) (*models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	List(ctx context.Context, filters CourseFilters) ([]*models.Course, int64, error)
}

type ModuleRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Module, error)
	Update(ctx context.Context, module *models.Module) error

	// ListByCourse returns modules in ascending number order
	ListByCourse(ctx context.Context, courseID uint) ([]*models.Module, error)
	ListNumbers(ctx context.Context, courseID uint) ([]int, error)
	CreateBatch(ctx context.Context, modules []models.Module) error
	DeleteByNumbers(ctx context.Context, courseID uint, numbers []int) error
}

// ===== ASSESSMENT TEST =====

type AssessmentTestRepository interface {
	Create(ctx context.Context, test *models.AssessmentTest) error
	Update(ctx context.Context, test *models.AssessmentTest) error
	GetByID(ctx context.Context, id uint) (*models.AssessmentTest, error)

	// GetActive returns the newest active test
	GetActive(ctx context.Context) (*models.AssessmentTest, error)
	DeactivateOthers(ctx context.Context, keepID uint) error
}

// ===== PER-USER STATE =====

type ProgressRepository interface {
	// GetOrCreateCourseProgress inserts the (user, course) row when absent and
	// returns the stored row. Concurrent first access yields a single row.
	GetOrCreateCourseProgress(ctx context.Context, userID string, courseID uint, startedAt time.Time) (*models.UserCourseProgress, error)
	GetCourseProgress(ctx context.Context, userID string, courseID uint) (*models.UserCourseProgress, error)
	UpdateCourseProgress(ctx context.Context, progress *models.UserCourseProgress) error
	ListCourseProgressByUser(ctx context.Context, userID string) ([]*models.UserCourseProgress, error)

	GetOrCreateModuleProgress(ctx context.Context, userID string, moduleID uint) (*models.UserModuleProgress, error)
	UpdateModuleProgress(ctx context.Context, progress *models.UserModuleProgress) error

	// ListModuleProgress returns the user's rows for every module of the course
	ListModuleProgress(ctx context.Context, userID string, courseID uint) ([]*models.UserModuleProgress, error)
}

type ResultRepository interface {
	CreateCourseResult(ctx context.Context, result *models.UserTestResult) error
	GetCourseResult(ctx context.Context, id uint) (*models.UserTestResult, error)
	LatestCourseResult(ctx context.Context, userID string, courseID uint) (*models.UserTestResult, error)
	LatestPassedCourseResult(ctx context.Context, userID string, courseID uint) (*models.UserTestResult, error)
	ListCourseResults(ctx context.Context, filters ResultFilters) ([]*models.UserTestResult, int64, error)

	CreateAssessmentResult(ctx context.Context, result *models.AssessmentTestResult) error
	LatestAssessmentResult(ctx context.Context, userID string, testID uint) (*models.AssessmentTestResult, error)
	ListAssessmentResults(ctx context.Context, filters ResultFilters) ([]*models.AssessmentTestResult, int64, error)
}

type CertificateRepository interface {
	// Create returns an error satisfying IsUniqueViolation when the
	// (user, course) pair already holds a certificate.
	Create(ctx context.Context, cert *models.Certificate) error
	GetByID(ctx context.Context, id uint) (*models.Certificate, error)
	GetByUserAndCourse(ctx context.Context, userID string, courseID uint) (*models.Certificate, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Certificate, error)
}

package services

import (
	"context"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/repositories"
)

// ===== SERVICE INTERFACES =====

type CourseService interface {
	Create(ctx context.Context, req *models.CourseCreateRequest) (*models.Course, error)
	Update(ctx context.Context, id uint, req *models.CourseUpdateRequest) (*models.Course, error)
	GetByID(ctx context.Context, id uint) (*models.Course, error)
	List(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error)

	// ReconcileModules makes the course's module numbers exactly {1..module_count}
	ReconcileModules(ctx context.Context, courseID uint) (*models.ReconcileResult, error)
	ListModules(ctx context.Context, courseID uint) ([]*models.Module, error)
	UpdateModule(ctx context.Context, moduleID uint, req *models.ModuleUpdateRequest) (*models.Module, error)
}

type ProgressService interface {
	GetCourseOverview(ctx context.Context, courseID uint, userID string) (*models.CourseOverview, error)
	TrackPresentation(ctx context.Context, moduleID uint, userID string) (*models.ModuleActionResponse, error)
	TrackVideo(ctx context.Context, moduleID uint, userID string) (*models.ModuleActionResponse, error)
	CompleteModule(ctx context.Context, moduleID uint, userID string) (*models.ModuleActionResponse, error)
	ListMyCourses(ctx context.Context, userID string) ([]models.MyCourseSummary, error)
}

type CourseTestService interface {
	CheckEligibility(ctx context.Context, courseID uint, userID string) (*models.CourseTestEligibility, error)
	Start(ctx context.Context, courseID uint, userID string) (*models.CourseTestSession, error)
	Submit(ctx context.Context, courseID uint, userID string, req *models.CourseTestSubmitRequest) (*models.CourseTestSubmitResponse, error)
}

type CertificateService interface {
	// IssueForResult creates the certificate for a passing result unless the
	// (user, course) pair already has one, in which case that one is returned
	IssueForResult(ctx context.Context, result *models.UserTestResult) (*models.Certificate, error)
	// Reissue retries issuance from the latest passing result
	Reissue(ctx context.Context, courseID uint, userID string) (*models.Certificate, error)
	ListMine(ctx context.Context, userID string) ([]*models.Certificate, error)
	Download(ctx context.Context, certificateID uint, userID string) (*CertificateFile, error)
}

type AssessmentTestService interface {
	GetOverview(ctx context.Context, userID string) (*models.AssessmentOverview, error)
	Start(ctx context.Context, userID string) (*models.AssessmentTestSession, error)
	Submit(ctx context.Context, userID string, req *models.AssessmentTestSubmitRequest) (*models.AssessmentTestSubmitResponse, error)
	ListMyResults(ctx context.Context, userID string) ([]*models.AssessmentTestResult, error)

	// Admin
	CreateTest(ctx context.Context, req *models.AssessmentTestUpsertRequest) (*models.AssessmentTest, error)
	UpdateTest(ctx context.Context, id uint, req *models.AssessmentTestUpsertRequest) (*models.AssessmentTest, error)
	GetActiveTest(ctx context.Context) (*models.AssessmentTest, error)
}

type TestSetService interface {
	Create(ctx context.Context, req *models.TestSetCreateRequest, creatorID string) (*models.TestSet, error)
	List(ctx context.Context) ([]*models.TestSet, error)
	// GetWithQuestions includes correctness flags; staff only
	GetWithQuestions(ctx context.Context, id uint) (*models.TestSet, error)
	AddQuestion(ctx context.Context, testSetID uint, req *models.QuestionCreateRequest) (*models.Question, error)
	// ImportDocx replaces the set's questions with the ones parsed from data
	ImportDocx(ctx context.Context, testSetID uint, data []byte) (*models.ImportResult, error)
}

type ExportService interface {
	ExportCourseResults(ctx context.Context, courseID uint) ([]byte, error)
	ExportAssessmentResults(ctx context.Context) ([]byte, error)
}

type ProfileService interface {
	GetSummary(ctx context.Context, userID string) (*models.ProfileSummary, error)
	UploadPhoto(ctx context.Context, userID string, data []byte) error
	GetPhoto(ctx context.Context, userID string) ([]byte, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Course() CourseService
	Progress() ProgressService
	CourseTest() CourseTestService
	Certificate() CertificateService
	AssessmentTest() AssessmentTestService
	TestSet() TestSetService
	Export() ExportService
	Profile() ProfileService
	Dashboard() DashboardService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

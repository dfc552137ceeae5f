package postgres

import (
	"context"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/repositories"
	"gorm.io/gorm"
)

// resultPostgreSQL stores both append-only result logs
type resultPostgreSQL struct {
	db *gorm.DB
}

func NewResultPostgreSQL(db *gorm.DB) repositories.ResultRepository {
	return &resultPostgreSQL{db: db}
}

// ===== COURSE TEST RESULTS =====

func (r *resultPostgreSQL) CreateCourseResult(ctx context.Context, result *models.UserTestResult) error {
	if err := r.db.WithContext(ctx).Create(result).Error; err != nil {
		return handleDBError(err, "create course test result")
	}
	return nil
}

func (r *resultPostgreSQL) GetCourseResult(ctx context.Context, id uint) (*models.UserTestResult, error) {
	var result models.UserTestResult
	if err := r.db.WithContext(ctx).First(&result, id).Error; err != nil {
		return nil, handleDBError(err, "get course test result")
	}
	return &result, nil
}

func (r *resultPostgreSQL) LatestCourseResult(ctx context.Context, userID string, courseID uint) (*models.UserTestResult, error) {
	return r.latestCourseResult(ctx, r.db.Where("user_id = ? AND course_id = ?", userID, courseID))
}

func (r *resultPostgreSQL) LatestPassedCourseResult(ctx context.Context, userID string, courseID uint) (*models.UserTestResult, error) {
	return r.latestCourseResult(ctx, r.db.Where("user_id = ? AND course_id = ? AND passed = ?", userID, courseID, true))
}

func (r *resultPostgreSQL) latestCourseResult(ctx context.Context, scope *gorm.DB) (*models.UserTestResult, error) {
	var result models.UserTestResult
	if err := scope.WithContext(ctx).
		Order("completed_at DESC, id DESC").
		First(&result).Error; err != nil {
		return nil, handleDBError(err, "get latest course test result")
	}
	return &result, nil
}

func (r *resultPostgreSQL) ListCourseResults(ctx context.Context, filters repositories.ResultFilters) ([]*models.UserTestResult, int64, error) {
	var results []*models.UserTestResult
	var total int64

	query := applyResultFilters(r.db.WithContext(ctx).Model(&models.UserTestResult{}), filters, "course_id")
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count course test results")
	}

	query = applyPagination(query.Preload("User").Preload("Course").Order("completed_at DESC"), filters.Limit, filters.Offset)
	if err := query.Find(&results).Error; err != nil {
		return nil, 0, handleDBError(err, "list course test results")
	}
	return results, total, nil
}

// ===== ASSESSMENT TEST RESULTS =====

func (r *resultPostgreSQL) CreateAssessmentResult(ctx context.Context, result *models.AssessmentTestResult) error {
	if err := r.db.WithContext(ctx).Create(result).Error; err != nil {
		return handleDBError(err, "create assessment test result")
	}
	return nil
}

func (r *resultPostgreSQL) LatestAssessmentResult(ctx context.Context, userID string, testID uint) (*models.AssessmentTestResult, error) {
	var result models.AssessmentTestResult
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND assessment_test_id = ?", userID, testID).
		Order("completed_at DESC, id DESC").
		First(&result).Error; err != nil {
		return nil, handleDBError(err, "get latest assessment test result")
	}
	return &result, nil
}

func (r *resultPostgreSQL) ListAssessmentResults(ctx context.Context, filters repositories.ResultFilters) ([]*models.AssessmentTestResult, int64, error) {
	var results []*models.AssessmentTestResult
	var total int64

	query := applyResultFilters(r.db.WithContext(ctx).Model(&models.AssessmentTestResult{}), filters, "assessment_test_id")
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count assessment test results")
	}

	query = applyPagination(query.Preload("User").Preload("AssessmentTest").Order("completed_at DESC"), filters.Limit, filters.Offset)
	if err := query.Find(&results).Error; err != nil {
		return nil, 0, handleDBError(err, "list assessment test results")
	}
	return results, total, nil
}

package postgres

import (
	"context"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/repositories"
	"gorm.io/gorm"
)

type assessmentTestPostgreSQL struct {
	db *gorm.DB
}

func NewAssessmentTestPostgreSQL(db *gorm.DB) repositories.AssessmentTestRepository {
	return &assessmentTestPostgreSQL{db: db}
}

func (r *assessmentTestPostgreSQL) Create(ctx context.Context, test *models.AssessmentTest) error {
	if err := r.db.WithContext(ctx).Create(test).Error; err != nil {
		return handleDBError(err, "create assessment test")
	}
	return nil
}

func (r *assessmentTestPostgreSQL) Update(ctx context.Context, test *models.AssessmentTest) error {
	if err := r.db.WithContext(ctx).Save(test).Error; err != nil {
		return handleDBError(err, "update assessment test")
	}
	return nil
}

func (r *assessmentTestPostgreSQL) GetByID(ctx context.Context, id uint) (*models.AssessmentTest, error) {
	var test models.AssessmentTest
	if err := r.db.WithContext(ctx).First(&test, id).Error; err != nil {
		return nil, handleDBError(err, "get assessment test by id")
	}
	return &test, nil
}

func (r *assessmentTestPostgreSQL) GetActive(ctx context.Context) (*models.AssessmentTest, error) {
	var test models.AssessmentTest
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC, id DESC").
		First(&test).Error; err != nil {
		return nil, handleDBError(err, "get active assessment test")
	}
	return &test, nil
}

func (r *assessmentTestPostgreSQL) DeactivateOthers(ctx context.Context, keepID uint) error {
	if err := r.db.WithContext(ctx).
		Model(&models.AssessmentTest{}).
		Where("id <> ? AND is_active = ?", keepID, true).
		Update("is_active", false).Error; err != nil {
		return handleDBError(err, "deactivate assessment tests")
	}
	return nil
}

package postgres

import (
	"context"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/repositories"
	"gorm.io/gorm"
)

type certificatePostgreSQL struct {
	db *gorm.DB
}

func NewCertificatePostgreSQL(db *gorm.DB) repositories.CertificateRepository {
	return &certificatePostgreSQL{db: db}
}

func (r *certificatePostgreSQL) Create(ctx context.Context, cert *models.Certificate) error {
	if err := r.db.WithContext(ctx).Create(cert).Error; err != nil {
		return handleDBError(err, "create certificate")
	}
	return nil
}

func (r *certificatePostgreSQL) GetByID(ctx context.Context, id uint) (*models.Certificate, error) {
	var cert models.Certificate
	if err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("TestResult").
		First(&cert, id).Error; err != nil {
		return nil, handleDBError(err, "get certificate by id")
	}
	return &cert, nil
}

func (r *certificatePostgreSQL) GetByUserAndCourse(ctx context.Context, userID string, courseID uint) (*models.Certificate, error) {
	var cert models.Certificate
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&cert).Error; err != nil {
		return nil, handleDBError(err, "get certificate by user and course")
	}
	return &cert, nil
}

func (r *certificatePostgreSQL) ListByUser(ctx context.Context, userID string) ([]*models.Certificate, error) {
	var certs []*models.Certificate
	if err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("TestResult").
		Where("user_id = ?", userID).
		Order("issued_at DESC").
		Find(&certs).Error; err != nil {
		return nil, handleDBError(err, "list certificates")
	}
	return certs, nil
}

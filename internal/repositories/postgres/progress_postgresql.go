package postgres

import (
	"context"
	"time"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type progressPostgreSQL struct {
	db *gorm.DB
}

func NewProgressPostgreSQL(db *gorm.DB) repositories.ProgressRepository {
	return &progressPostgreSQL{db: db}
}

// ===== COURSE PROGRESS =====

// GetOrCreateCourseProgress relies on the (user_id, course_id) unique index:
// the insert is a no-op when the row exists, so racing first visits converge
// on one row without aborting the surrounding transaction.
func (r *progressPostgreSQL) GetOrCreateCourseProgress(ctx context.Context, userID string, courseID uint, startedAt time.Time) (*models.UserCourseProgress, error) {
	db := r.db.WithContext(ctx)

	row := models.UserCourseProgress{UserID: userID, CourseID: courseID, StartedAt: startedAt}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return nil, handleDBError(err, "insert course progress")
	}
	return r.GetCourseProgress(ctx, userID, courseID)
}

func (r *progressPostgreSQL) GetCourseProgress(ctx context.Context, userID string, courseID uint) (*models.UserCourseProgress, error) {
	var progress models.UserCourseProgress
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&progress).Error; err != nil {
		return nil, handleDBError(err, "get course progress")
	}
	return &progress, nil
}

// UpdateCourseProgress never clears a flag or completion time another writer
// committed; progress is reloaded with the merged row.
func (r *progressPostgreSQL) UpdateCourseProgress(ctx context.Context, progress *models.UserCourseProgress) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.UserCourseProgress{}).
		Where("id = ?", progress.ID).
		Updates(courseProgressAssignments(progress)).Error; err != nil {
		return handleDBError(err, "update course progress")
	}
	if err := db.First(progress, progress.ID).Error; err != nil {
		return handleDBError(err, "reload course progress")
	}
	return nil
}

func courseProgressAssignments(p *models.UserCourseProgress) map[string]interface{} {
	return map[string]interface{}{
		"test_score":   p.TestScore,
		"test_passed":  gorm.Expr("test_passed OR ?", p.TestPassed),
		"is_completed": gorm.Expr("is_completed OR ?", p.IsCompleted),
		"completed_at": gorm.Expr("COALESCE(completed_at, ?)", p.CompletedAt),
	}
}

func (r *progressPostgreSQL) ListCourseProgressByUser(ctx context.Context, userID string) ([]*models.UserCourseProgress, error) {
	var rows []*models.UserCourseProgress
	if err := r.db.WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Find(&rows).Error; err != nil {
		return nil, handleDBError(err, "list course progress")
	}
	return rows, nil
}

// ===== MODULE PROGRESS =====

func (r *progressPostgreSQL) GetOrCreateModuleProgress(ctx context.Context, userID string, moduleID uint) (*models.UserModuleProgress, error) {
	db := r.db.WithContext(ctx)

	row := models.UserModuleProgress{UserID: userID, ModuleID: moduleID}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return nil, handleDBError(err, "insert module progress")
	}

	var progress models.UserModuleProgress
	if err := db.Where("user_id = ? AND module_id = ?", userID, moduleID).First(&progress).Error; err != nil {
		return nil, handleDBError(err, "get module progress")
	}
	return &progress, nil
}

// UpdateModuleProgress only ever sets flags; concurrent actions on the same
// module merge instead of overwriting each other.
func (r *progressPostgreSQL) UpdateModuleProgress(ctx context.Context, progress *models.UserModuleProgress) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.UserModuleProgress{}).
		Where("id = ?", progress.ID).
		Updates(moduleProgressAssignments(progress)).Error; err != nil {
		return handleDBError(err, "update module progress")
	}
	if err := db.First(progress, progress.ID).Error; err != nil {
		return handleDBError(err, "reload module progress")
	}
	return nil
}

func moduleProgressAssignments(p *models.UserModuleProgress) map[string]interface{} {
	return map[string]interface{}{
		"viewed_presentation": gorm.Expr("viewed_presentation OR ?", p.ViewedPresentation),
		"watched_video":       gorm.Expr("watched_video OR ?", p.WatchedVideo),
		"is_completed":        gorm.Expr("is_completed OR ?", p.IsCompleted),
		"completed_at":        gorm.Expr("COALESCE(completed_at, ?)", p.CompletedAt),
	}
}

func (r *progressPostgreSQL) ListModuleProgress(ctx context.Context, userID string, courseID uint) ([]*models.UserModuleProgress, error) {
	var rows []*models.UserModuleProgress
	if err := r.db.WithContext(ctx).
		Joins("JOIN modules ON modules.id = user_module_progress.module_id").
		Where("user_module_progress.user_id = ? AND modules.course_id = ?", userID, courseID).
		Find(&rows).Error; err != nil {
		return nil, handleDBError(err, "list module progress")
	}
	return rows, nil
}

package postgres

import (
	"context"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &userPostgreSQL{db: db}
}

func (r *userPostgreSQL) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, handleDBError(err, "get user by id")
	}
	return &user, nil
}

func (r *userPostgreSQL) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	var users []*models.User
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, handleDBError(err, "get users by ids")
	}
	return users, nil
}

func (r *userPostgreSQL) EnsureProfile(ctx context.Context, identity *models.User) (*models.User, error) {
	row := models.User{
		ID:               identity.ID,
		FullName:         identity.DisplayName(),
		FirstName:        identity.FirstName,
		LastName:         identity.LastName,
		Email:            identity.Email,
		AvatarURL:        identity.AvatarURL,
		Status:           models.StatusRegular,
		AssessmentStatus: models.StatusRegular,
	}

	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"full_name", "first_name", "last_name", "email", "avatar_url", "updated_at"}),
	}).Create(&row).Error; err != nil {
		return nil, handleDBError(err, "upsert user profile")
	}

	user, err := r.GetByID(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	user.Role = identity.Role
	return user, nil
}

// UpdateAssessment records the latest attempt. Status columns can only be
// raised: a stale snapshot from a concurrent failed attempt never demotes.
func (r *userPostgreSQL) UpdateAssessment(ctx context.Context, user *models.User) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(assessmentAssignments(user)).Error; err != nil {
		return handleDBError(err, "update user assessment")
	}

	role := user.Role
	if err := db.Where("id = ?", user.ID).First(user).Error; err != nil {
		return handleDBError(err, "reload user")
	}
	user.Role = role
	return nil
}

func assessmentAssignments(user *models.User) map[string]interface{} {
	return map[string]interface{}{
		"status":                  promoteOnly("status", user.Status),
		"assessment_status":       promoteOnly("assessment_status", user.AssessmentStatus),
		"assessment_score":        user.AssessmentScore,
		"assessment_taken_at":     user.AssessmentTakenAt,
		"assessment_next_attempt": user.AssessmentNextAttempt,
	}
}

func promoteOnly(column string, status models.UserStatus) clause.Expr {
	return gorm.Expr("CASE WHEN "+column+" = ? THEN "+column+" ELSE ? END", models.StatusTalented, status)
}

func (r *userPostgreSQL) SetPhotoKey(ctx context.Context, id string, key string) error {
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("photo_key", key).Error; err != nil {
		return handleDBError(err, "set user photo")
	}
	return nil
}

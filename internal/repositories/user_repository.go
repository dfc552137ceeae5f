package repositories

import (
	"context"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
)

// UserRepository owns the local testing profile of a user
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)

	// EnsureProfile inserts the profile when missing and refreshes name and
	// email from the identity. Testing fields are never touched.
	EnsureProfile(ctx context.Context, identity *models.User) (*models.User, error)

	// UpdateAssessment writes score, taken_at, next_attempt and both status fields
	UpdateAssessment(ctx context.Context, user *models.User) error
	SetPhotoKey(ctx context.Context, id string, key string) error
}

// IdentityRepository is the read-only user directory (assessment service is not owner of user data)
type IdentityRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	HasRole(ctx context.Context, id string, role models.UserRole) (bool, error)
}

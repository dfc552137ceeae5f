package repositories

import (
	"context"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
)

// TestSetRepository is the question bank. Question reads are served from cache
// when available and invalidated on every write to the set.
type TestSetRepository interface {
	Create(ctx context.Context, set *models.TestSet) error
	GetByID(ctx context.Context, id uint) (*models.TestSet, error)
	List(ctx context.Context) ([]*models.TestSet, error)

	// GetQuestions returns the set's questions in ascending number order with answers loaded
	GetQuestions(ctx context.Context, testSetID uint) ([]*models.Question, error)
	CountQuestions(ctx context.Context, testSetID uint) (int64, error)
	AddQuestion(ctx context.Context, question *models.Question) error

	// ReplaceQuestions deletes every question of the set and inserts the given ones
	ReplaceQuestions(ctx context.Context, testSetID uint, questions []models.Question) error
}

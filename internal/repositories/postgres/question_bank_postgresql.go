package postgres

import (
	"context"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/cache"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/repositories"
	"gorm.io/gorm"
)

type testSetPostgreSQL struct {
	db    *gorm.DB
	cache *cacheScope
}

func NewTestSetPostgreSQL(db *gorm.DB, cm *cache.CacheManager) repositories.TestSetRepository {
	return &testSetPostgreSQL{db: db, cache: newCacheScope(cm)}
}

// ===== BASIC CRUD OPERATIONS =====

func (r *testSetPostgreSQL) Create(ctx context.Context, set *models.TestSet) error {
	if err := r.db.WithContext(ctx).Create(set).Error; err != nil {
		return handleDBError(err, "create test set")
	}
	return nil
}

func (r *testSetPostgreSQL) GetByID(ctx context.Context, id uint) (*models.TestSet, error) {
	var set models.TestSet
	if err := r.db.WithContext(ctx).First(&set, id).Error; err != nil {
		return nil, handleDBError(err, "get test set by id")
	}

	count, err := r.CountQuestions(ctx, id)
	if err != nil {
		return nil, err
	}
	set.QuestionCount = int(count)
	return &set, nil
}

func (r *testSetPostgreSQL) List(ctx context.Context) ([]*models.TestSet, error) {
	var sets []*models.TestSet
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&sets).Error; err != nil {
		return nil, handleDBError(err, "list test sets")
	}

	type countRow struct {
		TestSetID uint
		Total     int
	}
	var counts []countRow
	if err := r.db.WithContext(ctx).
		Model(&models.Question{}).
		Select("test_set_id, COUNT(*) AS total").
		Group("test_set_id").
		Scan(&counts).Error; err != nil {
		return nil, handleDBError(err, "count questions per test set")
	}

	byID := make(map[uint]int, len(counts))
	for _, c := range counts {
		byID[c.TestSetID] = c.Total
	}
	for _, s := range sets {
		s.QuestionCount = byID[s.ID]
	}
	return sets, nil
}

// ===== QUESTIONS =====

func (r *testSetPostgreSQL) GetQuestions(ctx context.Context, testSetID uint) ([]*models.Question, error) {
	var questions []*models.Question
	if !r.cache.readThrough() {
		rows, err := r.loadQuestions(ctx, testSetID)
		if err != nil {
			return nil, handleDBError(err, "get test set questions")
		}
		return rows, nil
	}

	err := r.cache.cm.TestSet.CacheOrExecute(ctx, cache.TestSetQuestionsKey(testSetID), &questions, cache.TestSetCacheConfig.TTL, func() (interface{}, error) {
		return r.loadQuestions(ctx, testSetID)
	})
	if err != nil {
		return nil, handleDBError(err, "get test set questions")
	}
	return questions, nil
}

func (r *testSetPostgreSQL) loadQuestions(ctx context.Context, testSetID uint) ([]*models.Question, error) {
	var rows []*models.Question
	err := r.db.WithContext(ctx).
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("letter ASC, id ASC")
		}).
		Where("test_set_id = ?", testSetID).
		Order("number ASC").
		Find(&rows).Error
	return rows, err
}

func (r *testSetPostgreSQL) CountQuestions(ctx context.Context, testSetID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("test_set_id = ?", testSetID).
		Count(&count).Error; err != nil {
		return 0, handleDBError(err, "count questions")
	}
	return count, nil
}

func (r *testSetPostgreSQL) AddQuestion(ctx context.Context, question *models.Question) error {
	if err := r.db.WithContext(ctx).Create(question).Error; err != nil {
		return handleDBError(err, "add question")
	}
	r.invalidateQuestions(ctx, question.TestSetID)
	return nil
}

func (r *testSetPostgreSQL) ReplaceQuestions(ctx context.Context, testSetID uint, questions []models.Question) error {
	db := r.db.WithContext(ctx)

	sub := r.db.Model(&models.Question{}).Select("id").Where("test_set_id = ?", testSetID)
	if err := db.Where("question_id IN (?)", sub).Delete(&models.Answer{}).Error; err != nil {
		return handleDBError(err, "delete answers")
	}
	if err := db.Where("test_set_id = ?", testSetID).Delete(&models.Question{}).Error; err != nil {
		return handleDBError(err, "delete questions")
	}

	if len(questions) > 0 {
		for i := range questions {
			questions[i].TestSetID = testSetID
		}
		if err := db.Create(&questions).Error; err != nil {
			return handleDBError(err, "insert questions")
		}
	}

	r.invalidateQuestions(ctx, testSetID)
	return nil
}

func (r *testSetPostgreSQL) invalidateQuestions(ctx context.Context, testSetID uint) {
	r.cache.invalidate(ctx, func(ctx context.Context, cm *cache.CacheManager) {
		cache.InvalidateTestSetCache(ctx, cm, testSetID)
	})
}

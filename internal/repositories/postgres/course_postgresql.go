package postgres

import (
	"context"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/cache"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/repositories"
	"gorm.io/gorm"
)

type coursePostgreSQL struct {
	db    *gorm.DB
	cache *cacheScope
}

func NewCoursePostgreSQL(db *gorm.DB, cm *cache.CacheManager) repositories.CourseRepository {
	return &coursePostgreSQL{db: db, cache: newCacheScope(cm)}
}

// ===== BASIC CRUD OPERATIONS =====

func (r *coursePostgreSQL) Create(ctx context.Context, course *models.Course) error {
	if err := r.db.WithContext(ctx).Create(course).Error; err != nil {
		return handleDBError(err, "create course")
	}
	return nil
}

func (r *coursePostgreSQL) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	if !r.cache.readThrough() {
		if err := r.db.WithContext(ctx).First(&course, id).Error; err != nil {
			return nil, handleDBError(err, "get course by id")
		}
		return &course, nil
	}

	err := r.cache.cm.Course.CacheOrExecute(ctx, cache.CourseKey(id), &course, cache.CourseCacheConfig.TTL, func() (interface{}, error) {
		var row models.Course
		if err := r.db.WithContext(ctx).First(&row, id).Error; err != nil {
			return nil, err
		}
		return &row, nil
	})
	if err != nil {
		return nil, handleDBError(err, "get course by id")
	}
	return &course, nil
}

func (r *coursePostgreSQL) Update(ctx context.Context, course *models.Course) error {
	if err := r.db.WithContext(ctx).Save(course).Error; err != nil {
		return handleDBError(err, "update course")
	}
	id := course.ID
	r.cache.invalidate(ctx, func(ctx context.Context, cm *cache.CacheManager) {
		cache.InvalidateCourseCache(ctx, cm, id)
	})
	return nil
}

// ===== QUERY OPERATIONS =====

func (r *coursePostgreSQL) List(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	var courses []*models.Course
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Course{})
	if filters.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filters.Query != "" {
		query = query.Where("name ILIKE ?", "%"+filters.Query+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count courses")
	}

	query = applyPagination(query.Order("created_at DESC"), filters.Limit, filters.Offset)
	if err := query.Find(&courses).Error; err != nil {
		return nil, 0, handleDBError(err, "list courses")
	}
	return courses, total, nil
}

// ===== MODULES =====

type modulePostgreSQL struct {
	db *gorm.DB
}

func NewModulePostgreSQL(db *gorm.DB) repositories.ModuleRepository {
	return &modulePostgreSQL{db: db}
}

func (r *modulePostgreSQL) GetByID(ctx context.Context, id uint) (*models.Module, error) {
	var module models.Module
	if err := r.db.WithContext(ctx).First(&module, id).Error; err != nil {
		return nil, handleDBError(err, "get module by id")
	}
	return &module, nil
}

func (r *modulePostgreSQL) Update(ctx context.Context, module *models.Module) error {
	if err := r.db.WithContext(ctx).Save(module).Error; err != nil {
		return handleDBError(err, "update module")
	}
	return nil
}

func (r *modulePostgreSQL) ListByCourse(ctx context.Context, courseID uint) ([]*models.Module, error) {
	var modules []*models.Module
	if err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("number ASC").
		Find(&modules).Error; err != nil {
		return nil, handleDBError(err, "list modules by course")
	}
	return modules, nil
}

func (r *modulePostgreSQL) ListNumbers(ctx context.Context, courseID uint) ([]int, error) {
	var numbers []int
	if err := r.db.WithContext(ctx).
		Model(&models.Module{}).
		Where("course_id = ?", courseID).
		Order("number ASC").
		Pluck("number", &numbers).Error; err != nil {
		return nil, handleDBError(err, "list module numbers")
	}
	return numbers, nil
}

func (r *modulePostgreSQL) CreateBatch(ctx context.Context, modules []models.Module) error {
	if len(modules) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&modules).Error; err != nil {
		return handleDBError(err, "create modules")
	}
	return nil
}

func (r *modulePostgreSQL) DeleteByNumbers(ctx context.Context, courseID uint, numbers []int) error {
	if len(numbers) == 0 {
		return nil
	}

	// progress rows of removed modules go with them
	sub := r.db.Model(&models.Module{}).Select("id").Where("course_id = ? AND number IN ?", courseID, numbers)
	if err := r.db.WithContext(ctx).
		Where("module_id IN (?)", sub).
		Delete(&models.UserModuleProgress{}).Error; err != nil {
		return handleDBError(err, "delete module progress")
	}

	if err := r.db.WithContext(ctx).
		Where("course_id = ? AND number IN ?", courseID, numbers).
		Delete(&models.Module{}).Error; err != nil {
		return handleDBError(err, "delete modules")
	}
	return nil
}

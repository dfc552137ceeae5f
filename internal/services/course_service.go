package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/repositories"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/validator"
)

type courseService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewCourseService(deps *Dependencies) CourseService {
	deps = deps.withDefaults()
	return &courseService{
		repo:      deps.Repo,
		logger:    deps.Logger,
		validator: deps.Validator,
	}
}

// ===== COURSE CRUD =====

func (s *courseService) Create(ctx context.Context, req *models.CourseCreateRequest) (*models.Course, error) {
	s.logger.Info("Creating course", "name", req.Name)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := s.checkTestSet(ctx, req.TestSetID); err != nil {
		return nil, err
	}

	course := &models.Course{
		Name:             strings.TrimSpace(req.Name),
		ShortDescription: req.ShortDescription,
		ModuleCount:      intOr(req.ModuleCount, models.DefaultModuleCount),
		TestSetID:        nonZero(req.TestSetID),
		TimePerQuestion:  intOr(req.TimePerQuestion, models.DefaultTimePerQuestion),
		PassingScore:     intOr(req.PassingScore, models.DefaultPassingScore),
		IsActive:         req.IsActive == nil || *req.IsActive,
	}

	var result *models.ReconcileResult
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Course().Create(ctx, course); err != nil {
			return fmt.Errorf("failed to create course: %w", err)
		}
		var err error
		result, err = reconcileModules(ctx, tx, course)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Course created", "course_id", course.ID, "modules_created", len(result.Created))
	return course, nil
}

func (s *courseService) Update(ctx context.Context, id uint, req *models.CourseUpdateRequest) (*models.Course, error) {
	s.logger.Info("Updating course", "course_id", id)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := s.checkTestSet(ctx, req.TestSetID); err != nil {
		return nil, err
	}

	var course *models.Course
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		var err error
		course, err = tx.Course().GetByID(ctx, id)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrCourseNotFound
			}
			return fmt.Errorf("failed to get course: %w", err)
		}

		countChanged := applyCourseUpdate(course, req)
		if err := tx.Course().Update(ctx, course); err != nil {
			return fmt.Errorf("failed to update course: %w", err)
		}
		if countChanged {
			_, err = reconcileModules(ctx, tx, course)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Course updated", "course_id", course.ID)
	return course, nil
}

func (s *courseService) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

func (s *courseService) List(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	courses, total, err := s.repo.Course().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, total, nil
}

// ===== MODULES =====

func (s *courseService) ReconcileModules(ctx context.Context, courseID uint) (*models.ReconcileResult, error) {
	var result *models.ReconcileResult
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		course, err := tx.Course().GetByID(ctx, courseID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrCourseNotFound
			}
			return fmt.Errorf("failed to get course: %w", err)
		}
		result, err = reconcileModules(ctx, tx, course)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Modules reconciled", "course_id", courseID, "created", result.Created, "deleted", result.Deleted)
	return result, nil
}

func (s *courseService) ListModules(ctx context.Context, courseID uint) ([]*models.Module, error) {
	if _, err := s.GetByID(ctx, courseID); err != nil {
		return nil, err
	}
	modules, err := s.repo.Module().ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	return modules, nil
}

func (s *courseService) UpdateModule(ctx context.Context, moduleID uint, req *models.ModuleUpdateRequest) (*models.Module, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	module, err := s.repo.Module().GetByID(ctx, moduleID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrModuleNotFound
		}
		return nil, fmt.Errorf("failed to get module: %w", err)
	}

	if req.Name != nil {
		module.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		module.Description = *req.Description
	}
	if req.PresentationURL != nil {
		module.PresentationURL = emptyToNil(req.PresentationURL)
	}
	if req.VideoURL != nil {
		module.VideoURL = emptyToNil(req.VideoURL)
	}

	if err := s.repo.Module().Update(ctx, module); err != nil {
		return nil, fmt.Errorf("failed to update module: %w", err)
	}

	s.logger.Info("Module updated", "module_id", module.ID, "course_id", module.CourseID)
	return module, nil
}

// ===== HELPERS =====

// reconcileModules brings the course's module numbers to {1..module_count}
// using the repository it is given, normally a transaction
func reconcileModules(ctx context.Context, repo repositories.Repository, course *models.Course) (*models.ReconcileResult, error) {
	existing, err := repo.Module().ListNumbers(ctx, course.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list module numbers: %w", err)
	}

	create, remove := ReconcilePlan(existing, course.ModuleCount)
	if len(remove) > 0 {
		if err := repo.Module().DeleteByNumbers(ctx, course.ID, remove); err != nil {
			return nil, fmt.Errorf("failed to delete surplus modules: %w", err)
		}
	}
	if len(create) > 0 {
		modules := make([]models.Module, 0, len(create))
		for _, n := range create {
			modules = append(modules, models.NewDefaultModule(course, n))
		}
		if err := repo.Module().CreateBatch(ctx, modules); err != nil {
			return nil, fmt.Errorf("failed to create modules: %w", err)
		}
	}

	return &models.ReconcileResult{
		CourseID: course.ID,
		Created:  nonNilInts(create),
		Deleted:  nonNilInts(remove),
	}, nil
}

func (s *courseService) checkTestSet(ctx context.Context, id *uint) error {
	if id == nil || *id == 0 {
		return nil
	}
	if _, err := s.repo.TestSet().GetByID(ctx, *id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrTestSetNotFound
		}
		return fmt.Errorf("failed to get test set: %w", err)
	}
	return nil
}

// applyCourseUpdate copies the set fields and reports whether module_count changed
func applyCourseUpdate(course *models.Course, req *models.CourseUpdateRequest) bool {
	countChanged := false
	if req.Name != nil {
		course.Name = strings.TrimSpace(*req.Name)
	}
	if req.ShortDescription != nil {
		course.ShortDescription = req.ShortDescription
	}
	if req.ModuleCount != nil && *req.ModuleCount != course.ModuleCount {
		course.ModuleCount = *req.ModuleCount
		countChanged = true
	}
	if req.TestSetID != nil {
		course.TestSetID = nonZero(req.TestSetID)
		course.TestSet = nil
	}
	if req.TimePerQuestion != nil {
		course.TimePerQuestion = *req.TimePerQuestion
	}
	if req.PassingScore != nil {
		course.PassingScore = *req.PassingScore
	}
	if req.IsActive != nil {
		course.IsActive = *req.IsActive
	}
	return countChanged
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

// nonZero treats an explicit 0 id as "unset"
func nonZero(id *uint) *uint {
	if id == nil || *id == 0 {
		return nil
	}
	v := *id
	return &v
}

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func nonNilInts(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}

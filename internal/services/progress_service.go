package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/repositories"
)

type progressService struct {
	deps   *Dependencies
	repo   repositories.Repository
	logger *slog.Logger
}

func NewProgressService(deps *Dependencies) ProgressService {
	deps = deps.withDefaults()
	return &progressService{
		deps:   deps,
		repo:   deps.Repo,
		logger: deps.Logger,
	}
}

type moduleAction int

const (
	actionPresentation moduleAction = iota
	actionVideo
	actionComplete
)

// ===== COURSE OVERVIEW =====

func (s *progressService) GetCourseOverview(ctx context.Context, courseID uint, userID string) (*models.CourseOverview, error) {
	course, err := loadActiveCourse(ctx, s.repo, courseID)
	if err != nil {
		return nil, err
	}

	progress, err := s.repo.Progress().GetOrCreateCourseProgress(ctx, userID, courseID, s.deps.now())
	if err != nil {
		return nil, fmt.Errorf("failed to get course progress: %w", err)
	}

	views, err := loadModuleViews(ctx, s.repo, courseID, userID)
	if err != nil {
		return nil, err
	}
	completed := CountCompleted(views)

	latest, err := s.repo.Result().LatestCourseResult(ctx, userID, courseID)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to get latest result: %w", err)
	}

	cert, err := s.repo.Certificate().GetByUserAndCourse(ctx, userID, courseID)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to get certificate: %w", err)
	}

	return &models.CourseOverview{
		Course:              *course,
		Progress:            progress,
		Modules:             views,
		CompletedModules:    completed,
		TotalModules:        len(views),
		ProgressPercentage:  ProgressPercentage(completed, len(views)),
		AllModulesCompleted: AllModulesCompleted(completed, len(views)),
		TestPassed:          progress.TestPassed,
		LastResult:          latest,
		Retry:               CourseRetryStatus(latest, s.deps.now()),
		Certificate:         cert,
	}, nil
}

func (s *progressService) ListMyCourses(ctx context.Context, userID string) ([]models.MyCourseSummary, error) {
	rows, err := s.repo.Progress().ListCourseProgressByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list course progress: %w", err)
	}

	out := make([]models.MyCourseSummary, 0, len(rows))
	for _, p := range rows {
		if p.Course == nil {
			continue
		}
		views, err := loadModuleViews(ctx, s.repo, p.CourseID, userID)
		if err != nil {
			return nil, err
		}
		completed := CountCompleted(views)
		out = append(out, models.MyCourseSummary{
			Course:             *p.Course,
			StartedAt:          p.StartedAt,
			IsCompleted:        p.IsCompleted,
			CompletedAt:        p.CompletedAt,
			TestPassed:         p.TestPassed,
			TestScore:          p.TestScore,
			CompletedModules:   completed,
			TotalModules:       len(views),
			ProgressPercentage: ProgressPercentage(completed, len(views)),
		})
	}
	return out, nil
}

// ===== MODULE INTERACTIONS =====

func (s *progressService) TrackPresentation(ctx context.Context, moduleID uint, userID string) (*models.ModuleActionResponse, error) {
	return s.apply(ctx, moduleID, userID, actionPresentation)
}

func (s *progressService) TrackVideo(ctx context.Context, moduleID uint, userID string) (*models.ModuleActionResponse, error) {
	return s.apply(ctx, moduleID, userID, actionVideo)
}

func (s *progressService) CompleteModule(ctx context.Context, moduleID uint, userID string) (*models.ModuleActionResponse, error) {
	return s.apply(ctx, moduleID, userID, actionComplete)
}

func (s *progressService) apply(ctx context.Context, moduleID uint, userID string, action moduleAction) (*models.ModuleActionResponse, error) {
	module, err := s.repo.Module().GetByID(ctx, moduleID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrModuleNotFound
		}
		return nil, fmt.Errorf("failed to get module: %w", err)
	}
	if _, err := loadActiveCourse(ctx, s.repo, module.CourseID); err != nil {
		return nil, err
	}

	views, err := loadModuleViews(ctx, s.repo, module.CourseID, userID)
	if err != nil {
		return nil, err
	}
	if _, open := moduleUnlocked(views, module.ID); !open {
		return nil, ErrModuleLocked
	}

	// Opening any module also starts the course for the user
	if _, err := s.repo.Progress().GetOrCreateCourseProgress(ctx, userID, module.CourseID, s.deps.now()); err != nil {
		return nil, fmt.Errorf("failed to get course progress: %w", err)
	}

	progress, err := s.repo.Progress().GetOrCreateModuleProgress(ctx, userID, module.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get module progress: %w", err)
	}

	switch action {
	case actionPresentation:
		progress.ViewedPresentation = true
	case actionVideo:
		progress.WatchedVideo = true
	case actionComplete:
		if !progress.IsCompleted {
			now := s.deps.now()
			progress.IsCompleted = true
			progress.CompletedAt = &now
		}
	}

	if err := s.repo.Progress().UpdateModuleProgress(ctx, progress); err != nil {
		return nil, fmt.Errorf("failed to update module progress: %w", err)
	}

	if action == actionComplete {
		s.logger.Info("Module completed", "module_id", module.ID, "course_id", module.CourseID, "user_id", userID)
	}

	return &models.ModuleActionResponse{
		Status:             "success",
		ModuleID:           module.ID,
		ViewedPresentation: progress.ViewedPresentation,
		WatchedVideo:       progress.WatchedVideo,
		IsCompleted:        progress.IsCompleted,
	}, nil
}

// ===== SHARED LOADERS =====

func loadActiveCourse(ctx context.Context, repo repositories.Repository, courseID uint) (*models.Course, error) {
	course, err := repo.Course().GetByID(ctx, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if !course.IsActive {
		return nil, ErrCourseInactive
	}
	return course, nil
}

func loadModuleViews(ctx context.Context, repo repositories.Repository, courseID uint, userID string) ([]models.ModuleView, error) {
	modules, err := repo.Module().ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	progress, err := repo.Progress().ListModuleProgress(ctx, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list module progress: %w", err)
	}
	return ComputeModuleViews(modules, progress), nil
}

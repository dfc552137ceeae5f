package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/events"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/repositories"
)

// SessionGrace extends the recorded question set past the test's time limit
const SessionGrace = 5 * time.Minute

type courseTestService struct {
	deps         *Dependencies
	repo         repositories.Repository
	logger       *slog.Logger
	certificates CertificateService
}

func NewCourseTestService(deps *Dependencies, certificates CertificateService) CourseTestService {
	deps = deps.withDefaults()
	return &courseTestService{
		deps:         deps,
		repo:         deps.Repo,
		logger:       deps.Logger,
		certificates: certificates,
	}
}

// courseTestState is everything the gate needs, loaded once per request
type courseTestState struct {
	course    *models.Course
	completed int
	total     int
	latest    *models.UserTestResult
	retry     models.RetryStatus
	bank      []*models.Question
}

// gate returns the first blocking condition in the order modules, cooldown,
// test set, questions
func (st *courseTestState) gate() error {
	if st.completed < st.total {
		return &GatingError{Reason: ErrModulesIncomplete, CompletedModules: st.completed, TotalModules: st.total}
	}
	if err := CourseCooldownError(st.retry); err != nil {
		return err
	}
	if st.course.TestSetID == nil {
		return &GatingError{Reason: ErrNoTestSet, CompletedModules: st.completed, TotalModules: st.total}
	}
	if len(st.bank) == 0 {
		return &GatingError{Reason: ErrNoQuestions, CompletedModules: st.completed, TotalModules: st.total}
	}
	return nil
}

func (s *courseTestService) load(ctx context.Context, courseID uint, userID string) (*courseTestState, error) {
	course, err := loadActiveCourse(ctx, s.repo, courseID)
	if err != nil {
		return nil, err
	}

	views, err := loadModuleViews(ctx, s.repo, courseID, userID)
	if err != nil {
		return nil, err
	}

	latest, err := s.repo.Result().LatestCourseResult(ctx, userID, courseID)
	if err != nil {
		if !repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("failed to get latest result: %w", err)
		}
		latest = nil
	}

	st := &courseTestState{
		course:    course,
		completed: CountCompleted(views),
		total:     len(views),
		latest:    latest,
		retry:     CourseRetryStatus(latest, s.deps.now()),
	}

	if course.TestSetID != nil {
		st.bank, err = s.repo.TestSet().GetQuestions(ctx, *course.TestSetID)
		if err != nil {
			return nil, fmt.Errorf("failed to get questions: %w", err)
		}
	}
	return st, nil
}

// ===== ELIGIBILITY =====

func (s *courseTestService) CheckEligibility(ctx context.Context, courseID uint, userID string) (*models.CourseTestEligibility, error) {
	st, err := s.load(ctx, courseID, userID)
	if err != nil {
		return nil, err
	}

	out := &models.CourseTestEligibility{
		CanStart:         true,
		CompletedModules: st.completed,
		TotalModules:     st.total,
		QuestionCount:    min(len(st.bank), MaxCourseTestQuestions),
		Retry:            st.retry,
	}
	if gateErr := st.gate(); gateErr != nil {
		out.CanStart = false
		out.Reason = gateErr.Error()
	}
	return out, nil
}

// ===== START =====

func (s *courseTestService) Start(ctx context.Context, courseID uint, userID string) (*models.CourseTestSession, error) {
	st, err := s.load(ctx, courseID, userID)
	if err != nil {
		return nil, err
	}
	if err := st.gate(); err != nil {
		s.logger.Info("Course test start blocked", "course_id", courseID, "user_id", userID, "reason", err.Error())
		return nil, err
	}

	selected := SelectCourseQuestions(st.bank, s.deps.Shuffler)
	startedAt := s.deps.now()
	timeLimit := st.course.TimePerQuestion * len(selected)

	if s.deps.Sessions != nil {
		ttl := time.Duration(timeLimit)*time.Minute + SessionGrace
		if err := s.deps.Sessions.Save(ctx, userID, courseID, questionIDs(selected), startedAt, ttl); err != nil {
			// Scoring falls back to the whole bank
			s.logger.Warn("Failed to record served questions", "course_id", courseID, "user_id", userID, "error", err)
		}
	}

	s.logger.Info("Course test started", "course_id", courseID, "user_id", userID, "questions", len(selected))

	return &models.CourseTestSession{
		CourseID:         st.course.ID,
		CourseName:       st.course.Name,
		Questions:        serveQuestions(selected),
		TotalQuestions:   len(selected),
		TimeLimitMinutes: timeLimit,
		PassingScore:     st.course.PassingScore,
		StartedAt:        startedAt,
	}, nil
}

// ===== SUBMIT =====

func (s *courseTestService) Submit(ctx context.Context, courseID uint, userID string, req *models.CourseTestSubmitRequest) (*models.CourseTestSubmitResponse, error) {
	if err := s.deps.Validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	st, err := s.load(ctx, courseID, userID)
	if err != nil {
		return nil, err
	}
	if err := st.gate(); err != nil {
		s.logger.Info("Course test submission blocked", "course_id", courseID, "user_id", userID, "reason", err.Error())
		return nil, err
	}

	scored := s.scoredQuestions(ctx, st.bank, courseID, userID)
	score := ScoreAnswers(scored, req.Answers)
	percentage := score.CoursePercentage()
	passed := score.CoursePassed(st.course.PassingScore)
	now := s.deps.now()

	snapshot, err := json.Marshal(req.Answers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}

	result := &models.UserTestResult{
		UserID:         userID,
		CourseID:       courseID,
		Score:          percentage,
		TotalQuestions: score.Total,
		CorrectAnswers: score.Correct,
		Percentage:     percentage,
		Passed:         passed,
		Answers:        datatypes.JSON(snapshot),
		CompletedAt:    now,
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Result().CreateCourseResult(ctx, result); err != nil {
			return fmt.Errorf("failed to save test result: %w", err)
		}

		progress, err := tx.Progress().GetOrCreateCourseProgress(ctx, userID, courseID, now)
		if err != nil {
			return fmt.Errorf("failed to get course progress: %w", err)
		}
		progress.TestScore = &percentage
		if passed {
			progress.TestPassed = true
			if !progress.IsCompleted {
				progress.IsCompleted = true
				progress.CompletedAt = &now
			}
		}
		if err := tx.Progress().UpdateCourseProgress(ctx, progress); err != nil {
			return fmt.Errorf("failed to update course progress: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.deps.Sessions != nil {
		s.deps.Sessions.Clear(ctx, userID, courseID)
	}

	s.logger.Info("Course test submitted",
		"course_id", courseID,
		"user_id", userID,
		"result_id", result.ID,
		"correct", score.Correct,
		"total", score.Total,
		"percentage", percentage,
		"passed", passed)

	s.deps.publish(ctx, events.NewEvent(events.CourseTestSubmitted, userID, events.CourseTestSubmittedData{
		ResultID:       result.ID,
		CourseID:       courseID,
		Percentage:     percentage,
		CorrectAnswers: score.Correct,
		TotalQuestions: score.Total,
		Passed:         passed,
	}))

	resp := &models.CourseTestSubmitResponse{
		Success:        true,
		ResultID:       result.ID,
		Passed:         passed,
		Percentage:     percentage,
		CorrectAnswers: score.Correct,
		TotalQuestions: score.Total,
		PassingScore:   st.course.PassingScore,
	}

	if passed && s.certificates != nil {
		cert, err := s.certificates.IssueForResult(ctx, result)
		if err != nil {
			s.logger.Error("Certificate issuance failed", "course_id", courseID, "user_id", userID, "result_id", result.ID, "error", err)
		} else {
			resp.CertificateID = &cert.ID
		}
	}

	return resp, nil
}

// scoredQuestions is the set served by Start when it is still recorded,
// otherwise the whole bank
func (s *courseTestService) scoredQuestions(ctx context.Context, bank []*models.Question, courseID uint, userID string) []*models.Question {
	if s.deps.Sessions == nil {
		return bank
	}
	ids, ok, err := s.deps.Sessions.Load(ctx, userID, courseID)
	if err != nil {
		s.logger.Warn("Failed to load served questions", "course_id", courseID, "user_id", userID, "error", err)
		return bank
	}
	if !ok {
		return bank
	}
	if served := filterQuestions(bank, ids); len(served) > 0 {
		return served
	}
	return bank
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/datatypes"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/events"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/repositories"
)

type assessmentTestService struct {
	deps   *Dependencies
	repo   repositories.Repository
	logger *slog.Logger
}

func NewAssessmentTestService(deps *Dependencies) AssessmentTestService {
	deps = deps.withDefaults()
	return &assessmentTestService{
		deps:   deps,
		repo:   deps.Repo,
		logger: deps.Logger,
	}
}

// ===== STUDENT FLOW =====

func (s *assessmentTestService) GetOverview(ctx context.Context, userID string) (*models.AssessmentOverview, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	overview := &models.AssessmentOverview{
		Eligibility:      AssessmentEligibilityAt(user.AssessmentNextAttempt, s.deps.now()),
		Status:           user.Status,
		AssessmentStatus: user.AssessmentStatus,
	}

	test, err := s.GetActiveTest(ctx)
	if err != nil {
		if errors.Is(err, ErrNoActiveAssessment) {
			return overview, nil
		}
		return nil, err
	}
	overview.Test = test

	if test.TestSetID != nil {
		count, err := s.repo.TestSet().CountQuestions(ctx, *test.TestSetID)
		if err != nil {
			return nil, fmt.Errorf("failed to count questions: %w", err)
		}
		overview.QuestionCount = int(count)
	}

	last, err := s.repo.Result().LatestAssessmentResult(ctx, userID, test.ID)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to get latest assessment result: %w", err)
	}
	overview.LastResult = last

	return overview, nil
}

func (s *assessmentTestService) Start(ctx context.Context, userID string) (*models.AssessmentTestSession, error) {
	test, questions, err := s.activeWithQuestions(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := assessmentCooldownError(AssessmentEligibilityAt(user.AssessmentNextAttempt, s.deps.now())); err != nil {
		return nil, err
	}

	s.logger.Info("Assessment test started", "test_id", test.ID, "user_id", userID, "questions", len(questions))

	return &models.AssessmentTestSession{
		TestID:           test.ID,
		Title:            test.Title,
		Questions:        serveQuestions(questions),
		TotalQuestions:   len(questions),
		TimeLimitSeconds: test.TimeLimit * 60,
		PassPercentage:   test.PassPercentage,
	}, nil
}

func (s *assessmentTestService) Submit(ctx context.Context, userID string, req *models.AssessmentTestSubmitRequest) (*models.AssessmentTestSubmitResponse, error) {
	if err := s.deps.Validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.deps.now()
	if err := assessmentCooldownError(AssessmentEligibilityAt(user.AssessmentNextAttempt, now)); err != nil {
		s.logger.Info("Assessment submission blocked", "user_id", userID, "reason", err.Error())
		return nil, err
	}

	test, questions, err := s.activeWithQuestions(ctx)
	if err != nil {
		return nil, err
	}

	score := ScoreAnswers(questions, req.Answers)
	percentage := score.AssessmentPercentage()
	passed := score.AssessmentPassed(test.PassPercentage)
	nextAttempt := now.Add(test.RetryDelay())

	snapshot, err := json.Marshal(req.Answers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}

	result := &models.AssessmentTestResult{
		UserID:           userID,
		AssessmentTestID: test.ID,
		Score:            score.Correct,
		TotalQuestions:   score.Total,
		CorrectAnswers:   score.Correct,
		Percentage:       percentage,
		Passed:           passed,
		TimeTaken:        req.TimeTaken,
		Answers:          datatypes.JSON(snapshot),
		CompletedAt:      now,
	}

	previousStatus := user.Status
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Result().CreateAssessmentResult(ctx, result); err != nil {
			return fmt.Errorf("failed to save assessment result: %w", err)
		}

		user.AssessmentScore = &percentage
		user.AssessmentTakenAt = &now
		user.AssessmentNextAttempt = &nextAttempt
		if passed {
			user.AssessmentStatus = user.AssessmentStatus.Promote()
			user.Status = user.Status.Promote()
		}
		if err := tx.User().UpdateAssessment(ctx, user); err != nil {
			return fmt.Errorf("failed to update user assessment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Assessment test submitted",
		"test_id", test.ID,
		"user_id", userID,
		"result_id", result.ID,
		"correct", score.Correct,
		"total", score.Total,
		"percentage", percentage,
		"passed", passed)

	s.deps.publish(ctx, events.NewEvent(events.AssessmentTestSubmitted, userID, events.AssessmentTestSubmittedData{
		ResultID:         result.ID,
		AssessmentTestID: test.ID,
		Percentage:       percentage,
		Passed:           passed,
		NextAttempt:      nextAttempt,
	}))
	if passed && user.Status != previousStatus {
		s.logger.Info("User promoted", "user_id", userID, "from", previousStatus, "to", user.Status)
		s.deps.publish(ctx, events.NewEvent(events.UserPromoted, userID, events.UserPromotedData{
			From: string(previousStatus),
			To:   string(user.Status),
		}))
	}

	return &models.AssessmentTestSubmitResponse{
		Success:        true,
		ResultID:       result.ID,
		Passed:         passed,
		Percentage:     RoundPercentage(percentage),
		CorrectAnswers: score.Correct,
		TotalQuestions: score.Total,
		NewStatus:      user.AssessmentStatus,
		NextAttempt:    nextAttempt,
	}, nil
}

func (s *assessmentTestService) ListMyResults(ctx context.Context, userID string) ([]*models.AssessmentTestResult, error) {
	results, _, err := s.repo.Result().ListAssessmentResults(ctx, repositories.ResultFilters{UserID: &userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list assessment results: %w", err)
	}
	return results, nil
}

// ===== ADMIN =====

func (s *assessmentTestService) CreateTest(ctx context.Context, req *models.AssessmentTestUpsertRequest) (*models.AssessmentTest, error) {
	if err := s.deps.Validator.ValidateAssessmentUpsert(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := s.checkTestSet(ctx, req.TestSetID); err != nil {
		return nil, err
	}

	test := &models.AssessmentTest{
		Title:           models.DefaultAssessmentTitle,
		TimeLimit:       models.DefaultTimeLimit,
		PassPercentage:  models.DefaultPassPercentage,
		RetryDelayHours: models.DefaultRetryDelayHours,
		IsActive:        true,
	}
	applyAssessmentUpsert(test, req)

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.AssessmentTest().Create(ctx, test); err != nil {
			return fmt.Errorf("failed to create assessment test: %w", err)
		}
		if test.IsActive {
			return tx.AssessmentTest().DeactivateOthers(ctx, test.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Assessment test created", "test_id", test.ID, "active", test.IsActive)
	return test, nil
}

func (s *assessmentTestService) UpdateTest(ctx context.Context, id uint, req *models.AssessmentTestUpsertRequest) (*models.AssessmentTest, error) {
	if err := s.deps.Validator.ValidateAssessmentUpsert(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := s.checkTestSet(ctx, req.TestSetID); err != nil {
		return nil, err
	}

	var test *models.AssessmentTest
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		var err error
		test, err = tx.AssessmentTest().GetByID(ctx, id)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrAssessmentNotFound
			}
			return fmt.Errorf("failed to get assessment test: %w", err)
		}

		applyAssessmentUpsert(test, req)
		if err := tx.AssessmentTest().Update(ctx, test); err != nil {
			return fmt.Errorf("failed to update assessment test: %w", err)
		}
		if test.IsActive {
			return tx.AssessmentTest().DeactivateOthers(ctx, test.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Assessment test updated", "test_id", test.ID, "active", test.IsActive)
	return test, nil
}

func (s *assessmentTestService) GetActiveTest(ctx context.Context) (*models.AssessmentTest, error) {
	test, err := s.repo.AssessmentTest().GetActive(ctx)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNoActiveAssessment
		}
		return nil, fmt.Errorf("failed to get active assessment test: %w", err)
	}
	return test, nil
}

// ===== HELPERS =====

func (s *assessmentTestService) activeWithQuestions(ctx context.Context) (*models.AssessmentTest, []*models.Question, error) {
	test, err := s.GetActiveTest(ctx)
	if err != nil {
		return nil, nil, err
	}
	if test.TestSetID == nil {
		return nil, nil, ErrNoTestSet
	}
	questions, err := s.repo.TestSet().GetQuestions(ctx, *test.TestSetID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, nil, ErrNoQuestions
	}
	return test, questions, nil
}

func (s *assessmentTestService) loadUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *assessmentTestService) checkTestSet(ctx context.Context, id *uint) error {
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

func applyAssessmentUpsert(test *models.AssessmentTest, req *models.AssessmentTestUpsertRequest) {
	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		test.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		test.Description = req.Description
	}
	if req.TestSetID != nil {
		test.TestSetID = nonZero(req.TestSetID)
		test.TestSet = nil
	}
	if req.TimeLimit != nil {
		test.TimeLimit = *req.TimeLimit
	}
	if req.PassPercentage != nil {
		test.PassPercentage = *req.PassPercentage
	}
	if req.RetryDelayHours != nil {
		test.RetryDelayHours = *req.RetryDelayHours
	}
	if req.IsActive != nil {
		test.IsActive = *req.IsActive
	}
}

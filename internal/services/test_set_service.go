package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/importer"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/repositories"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/validator"
)

type testSetService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewTestSetService(deps *Dependencies) TestSetService {
	deps = deps.withDefaults()
	return &testSetService{
		repo:      deps.Repo,
		logger:    deps.Logger,
		validator: deps.Validator,
	}
}

func (s *testSetService) Create(ctx context.Context, req *models.TestSetCreateRequest, creatorID string) (*models.TestSet, error) {
	s.logger.Info("Creating test set", "creator_id", creatorID, "name", req.Name)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	set := &models.TestSet{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		CreatedBy:   creatorID,
	}
	if err := s.repo.TestSet().Create(ctx, set); err != nil {
		return nil, fmt.Errorf("failed to create test set: %w", err)
	}

	s.logger.Info("Test set created", "test_set_id", set.ID)
	return set, nil
}

func (s *testSetService) List(ctx context.Context) ([]*models.TestSet, error) {
	sets, err := s.repo.TestSet().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list test sets: %w", err)
	}
	return sets, nil
}

func (s *testSetService) GetWithQuestions(ctx context.Context, id uint) (*models.TestSet, error) {
	set, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	questions, err := s.repo.TestSet().GetQuestions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	set.Questions = make([]models.Question, 0, len(questions))
	for _, q := range questions {
		set.Questions = append(set.Questions, *q)
	}
	set.QuestionCount = len(questions)
	return set, nil
}

func (s *testSetService) AddQuestion(ctx context.Context, testSetID uint, req *models.QuestionCreateRequest) (*models.Question, error) {
	if err := s.validator.ValidateQuestionCreate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if _, err := s.get(ctx, testSetID); err != nil {
		return nil, err
	}

	question := &models.Question{
		TestSetID: testSetID,
		Number:    req.Number,
		Text:      strings.TrimSpace(req.Text),
	}
	for i, a := range req.Answers {
		letter := strings.ToUpper(strings.TrimSpace(a.Letter))
		if letter == "" {
			letter = models.AnswerLetters[i]
		}
		question.Answers = append(question.Answers, models.Answer{
			Letter:    letter,
			Text:      strings.TrimSpace(a.Text),
			IsCorrect: a.IsCorrect,
		})
	}

	if err := s.repo.TestSet().AddQuestion(ctx, question); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, NewBusinessRuleError("unique_question_number",
				fmt.Sprintf("question %d already exists in this test set", req.Number),
				map[string]interface{}{"test_set_id": testSetID, "number": req.Number})
		}
		return nil, fmt.Errorf("failed to add question: %w", err)
	}

	s.logger.Info("Question added", "test_set_id", testSetID, "question_id", question.ID, "number", question.Number)
	return question, nil
}

func (s *testSetService) ImportDocx(ctx context.Context, testSetID uint, data []byte) (*models.ImportResult, error) {
	if _, err := s.get(ctx, testSetID); err != nil {
		return nil, err
	}

	parsed, err := importer.ParseDocx(data)
	if err != nil {
		s.logger.Warn("Question document rejected", "test_set_id", testSetID, "error", err)
		if errors.Is(err, importer.ErrInvalidDocument) || errors.Is(err, importer.ErrMalformedQuestion) || errors.Is(err, importer.ErrNoQuestions) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	questions := importer.ToModels(testSetID, parsed)
	if err := s.validator.ValidateImportedQuestions(questions); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		return tx.TestSet().ReplaceQuestions(ctx, testSetID, questions)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to import questions: %w", err)
	}

	s.logger.Info("Questions imported", "test_set_id", testSetID, "count", len(questions))
	return &models.ImportResult{TestSetID: testSetID, Imported: len(questions)}, nil
}

func (s *testSetService) get(ctx context.Context, id uint) (*models.TestSet, error) {
	set, err := s.repo.TestSet().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestSetNotFound
		}
		return nil, fmt.Errorf("failed to get test set: %w", err)
	}
	return set, nil
}

package validator

import (
	"fmt"
	"strings"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
)

// ValidateQuestionCreate checks tags plus the answer rules of the question bank
func (v *Validator) ValidateQuestionCreate(req *models.QuestionCreateRequest) error {
	errs := v.ValidateStruct(req)
	if len(errs) == 0 {
		errs = append(errs, validateAnswers(req.Answers)...)
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateImportedQuestions checks questions parsed from a document
func (v *Validator) ValidateImportedQuestions(questions []models.Question) error {
	var errs ValidationErrors
	if len(questions) == 0 {
		errs = append(errs, ValidationError{
			Field:   "file",
			Message: "no questions found in document",
			Rule:    "business_logic",
		})
	}

	seen := make(map[int]bool, len(questions))
	for i, q := range questions {
		field := fmt.Sprintf("questions[%d]", i)
		if seen[q.Number] {
			errs = append(errs, ValidationError{
				Field:   field + ".number",
				Message: "duplicate question number",
				Value:   q.Number,
				Rule:    "business_logic",
			})
		}
		seen[q.Number] = true

		if strings.TrimSpace(q.Text) == "" {
			errs = append(errs, ValidationError{Field: field + ".text", Message: "is required", Rule: "required"})
		}
		if len(q.Answers) != models.AnswersPerQuestion {
			errs = append(errs, ValidationError{
				Field:   field + ".answers",
				Message: fmt.Sprintf("must have exactly %d items", models.AnswersPerQuestion),
				Value:   len(q.Answers),
				Rule:    "len",
			})
			continue
		}
		if countCorrect(q.Answers) != 1 {
			errs = append(errs, ValidationError{
				Field:   field + ".answers",
				Message: "must have exactly one correct answer",
				Rule:    "business_logic",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateAssessmentUpsert applies struct tags; inactive tests may omit the test set
func (v *Validator) ValidateAssessmentUpsert(req *models.AssessmentTestUpsertRequest) error {
	errs := v.ValidateStruct(req)
	if req.IsActive != nil && *req.IsActive && req.TestSetID != nil && *req.TestSetID == 0 {
		errs = append(errs, ValidationError{
			Field:   "test_set_id",
			Message: "active test needs a test set",
			Value:   *req.TestSetID,
			Rule:    "business_logic",
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateAnswers(answers []models.AnswerCreateRequest) ValidationErrors {
	var errs ValidationErrors

	correct := 0
	letters := make(map[string]bool, len(answers))
	for i, a := range answers {
		if a.IsCorrect {
			correct++
		}
		if a.Letter == "" {
			continue
		}
		l := strings.ToUpper(a.Letter)
		if letters[l] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("answers[%d].letter", i),
				Message: "duplicate answer letter",
				Value:   a.Letter,
				Rule:    "business_logic",
			})
		}
		letters[l] = true
	}

	if correct != 1 {
		errs = append(errs, ValidationError{
			Field:   "answers",
			Message: "must have exactly one correct answer",
			Value:   correct,
			Rule:    "business_logic",
		})
	}
	return errs
}

func countCorrect(answers []models.Answer) int {
	n := 0
	for _, a := range answers {
		if a.IsCorrect {
			n++
		}
	}
	return n
}

package validator

import (
	"errors"
	"testing"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
)

func intPtr(i int) *int { return &i }

func fourAnswers(correct int) []models.AnswerCreateRequest {
	out := make([]models.AnswerCreateRequest, 4)
	for i := range out {
		out[i] = models.AnswerCreateRequest{Text: models.AnswerLetters[i] + " javob", IsCorrect: i == correct}
	}
	return out
}

func TestValidator_CustomTags(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		req     interface{}
		wantErr bool
		rule    string
	}{
		{"valid course", &models.CourseCreateRequest{Name: "Fizika", ModuleCount: intPtr(5), PassingScore: intPtr(70)}, false, ""},
		{"module count zero", &models.CourseCreateRequest{Name: "Fizika", ModuleCount: intPtr(0)}, true, "module_count"},
		{"module count too big", &models.CourseCreateRequest{Name: "Fizika", ModuleCount: intPtr(101)}, true, "module_count"},
		{"passing score over 100", &models.CourseCreateRequest{Name: "Fizika", PassingScore: intPtr(101)}, true, "percent"},
		{"missing name", &models.CourseCreateRequest{}, true, "required"},
		{"bad answer letter", &models.AnswerCreateRequest{Letter: "E", Text: "x"}, true, "answer_letter"},
		{"lowercase letter ok", &models.AnswerCreateRequest{Letter: "b", Text: "x"}, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.ValidateStruct(tt.req)
			if (len(errs) > 0) != tt.wantErr {
				t.Fatalf("ValidateStruct() = %v, wantErr %v", errs, tt.wantErr)
			}
			if tt.wantErr && errs[0].Rule != tt.rule {
				t.Errorf("rule = %q, want %q", errs[0].Rule, tt.rule)
			}
		})
	}
}

func TestValidator_JSONFieldNames(t *testing.T) {
	errs := New().ValidateStruct(&models.CourseCreateRequest{Name: "x", ModuleCount: intPtr(0)})
	if len(errs) != 1 || errs[0].Field != "module_count" {
		t.Fatalf("errs = %v, want field module_count", errs)
	}
}

func TestValidateQuestionCreate(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		req     models.QuestionCreateRequest
		wantErr bool
	}{
		{"ok", models.QuestionCreateRequest{Number: 1, Text: "Savol?", Answers: fourAnswers(2)}, false},
		{"no correct", models.QuestionCreateRequest{Number: 1, Text: "Savol?", Answers: fourAnswers(-1)}, true},
		{"three answers", models.QuestionCreateRequest{Number: 1, Text: "Savol?", Answers: fourAnswers(0)[:3]}, true},
		{"two correct", func() models.QuestionCreateRequest {
			a := fourAnswers(0)
			a[3].IsCorrect = true
			return models.QuestionCreateRequest{Number: 1, Text: "Savol?", Answers: a}
		}(), true},
		{"duplicate letters", func() models.QuestionCreateRequest {
			a := fourAnswers(0)
			a[0].Letter, a[1].Letter = "A", "a"
			return models.QuestionCreateRequest{Number: 1, Text: "Savol?", Answers: a}
		}(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateQuestionCreate(&tt.req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateQuestionCreate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var ve ValidationErrors
				if !errors.As(err, &ve) {
					t.Errorf("error type = %T, want ValidationErrors", err)
				}
			}
		})
	}
}

func TestValidateImportedQuestions(t *testing.T) {
	v := New()
	q := func(n, correct int) models.Question {
		answers := make([]models.Answer, 4)
		for i := range answers {
			answers[i] = models.Answer{Letter: models.AnswerLetters[i], Text: "j", IsCorrect: i == correct}
		}
		return models.Question{Number: n, Text: "Savol", Answers: answers}
	}

	if err := v.ValidateImportedQuestions([]models.Question{q(1, 0), q(2, 3)}); err != nil {
		t.Errorf("valid import rejected: %v", err)
	}
	if err := v.ValidateImportedQuestions(nil); err == nil {
		t.Error("empty import accepted")
	}
	if err := v.ValidateImportedQuestions([]models.Question{q(1, 0), q(1, 1)}); err == nil {
		t.Error("duplicate numbers accepted")
	}
}

func TestValidationErrors_Error(t *testing.T) {
	if got := (ValidationErrors{}).Error(); got != "validation failed" {
		t.Errorf("empty = %q", got)
	}
	one := ValidationErrors{{Field: "name", Message: "is required"}}
	if got := one.Error(); got != "validation failed: name is required" {
		t.Errorf("one = %q", got)
	}
	two := append(one, ValidationError{Field: "x", Message: "y"})
	if got := two.Error(); got != "validation failed: 2 field errors" {
		t.Errorf("two = %q", got)
	}
}

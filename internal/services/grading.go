package services

import (
	"math"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
)

// MaxCourseTestQuestions caps the questions served in one course test
const MaxCourseTestQuestions = 20

// Score is the raw outcome of one submission
type Score struct {
	Correct int
	Total   int
}

// ScoreAnswers counts answers whose chosen option is the correct one of that
// question. Missing entries and answer ids from other questions are incorrect.
func ScoreAnswers(questions []*models.Question, answers models.AnswerMap) Score {
	score := Score{Total: len(questions)}
	for _, q := range questions {
		chosen, ok := answers[q.ID]
		if !ok {
			continue
		}
		if correct := q.CorrectAnswerID(); correct != 0 && chosen == correct {
			score.Correct++
		}
	}
	return score
}

// CoursePercentage is floor(correct*100/total), 0 for an empty test
func (s Score) CoursePercentage() int {
	if s.Total <= 0 {
		return 0
	}
	return s.Correct * 100 / s.Total
}

// AssessmentPercentage is the untruncated percentage, 0 for an empty test
func (s Score) AssessmentPercentage() float64 {
	if s.Total <= 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total) * 100
}

// CoursePassed compares inclusively; an empty test never passes
func (s Score) CoursePassed(passingScore int) bool {
	return s.Total > 0 && s.CoursePercentage() >= passingScore
}

func (s Score) AssessmentPassed(passPercentage int) bool {
	return s.Total > 0 && s.AssessmentPercentage() >= float64(passPercentage)
}

// RoundPercentage rounds to two decimals for responses
func RoundPercentage(p float64) float64 {
	return math.Round(p*100) / 100
}

// SelectCourseQuestions shuffles the bank and keeps at most MaxCourseTestQuestions
func SelectCourseQuestions(bank []*models.Question, shuffler Shuffler) []*models.Question {
	selected := make([]*models.Question, len(bank))
	copy(selected, bank)
	shuffler.Shuffle(len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})
	if len(selected) > MaxCourseTestQuestions {
		selected = selected[:MaxCourseTestQuestions]
	}
	return selected
}

// filterQuestions keeps the bank questions whose ids are in ids, in ids order
func filterQuestions(bank []*models.Question, ids []uint) []*models.Question {
	byID := make(map[uint]*models.Question, len(bank))
	for _, q := range bank {
		byID[q.ID] = q
	}
	out := make([]*models.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			out = append(out, q)
		}
	}
	return out
}

func questionIDs(questions []*models.Question) []uint {
	ids := make([]uint, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	return ids
}

func serveQuestions(questions []*models.Question) []models.ServedQuestion {
	out := make([]models.ServedQuestion, len(questions))
	for i, q := range questions {
		out[i] = models.NewServedQuestion(q)
	}
	return out
}

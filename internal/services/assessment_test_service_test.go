package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/events"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
)

func newAssessmentFixture(t *testing.T, questions int) (*testEnv, AssessmentTestService, []*models.Question) {
	t.Helper()
	env := newTestEnv()
	set := env.repo.seedTestSet(questions)
	env.repo.seedUser("u1")

	svc := NewAssessmentTestService(env.deps)
	active := true
	if _, err := svc.CreateTest(context.Background(), &models.AssessmentTestUpsertRequest{
		TestSetID: &set.ID,
		IsActive:  &active,
	}); err != nil {
		t.Fatalf("CreateTest() error = %v", err)
	}
	bank, _ := env.repo.TestSet().GetQuestions(context.Background(), set.ID)
	return env, svc, bank
}

func TestAssessment_CreateTestDefaultsAndSingleActive(t *testing.T) {
	env, svc, _ := newAssessmentFixture(t, 3)

	first, err := svc.GetActiveTest(context.Background())
	if err != nil {
		t.Fatalf("GetActiveTest() error = %v", err)
	}
	if first.Title != models.DefaultAssessmentTitle || first.TimeLimit != 60 || first.PassPercentage != 60 || first.RetryDelayHours != 1 {
		t.Errorf("defaults = %+v", first)
	}

	title := "Yangi saralash"
	second, err := svc.CreateTest(context.Background(), &models.AssessmentTestUpsertRequest{Title: &title})
	if err != nil {
		t.Fatalf("CreateTest() error = %v", err)
	}
	if env.repo.assessmentTests[first.ID].IsActive {
		t.Error("creating an active test must deactivate the previous one")
	}
	if active, _ := svc.GetActiveTest(context.Background()); active.ID != second.ID {
		t.Errorf("active test = %d, want %d", active.ID, second.ID)
	}
}

func TestAssessment_StartServesAllInOrder(t *testing.T) {
	_, svc, bank := newAssessmentFixture(t, 30)

	session, err := svc.Start(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if session.TotalQuestions != 30 || session.TimeLimitSeconds != 3600 {
		t.Errorf("session = %d questions / %d s", session.TotalQuestions, session.TimeLimitSeconds)
	}
	for i, q := range session.Questions {
		if q.ID != bank[i].ID {
			t.Fatalf("question %d = %d, want bank order %d", i, q.ID, bank[i].ID)
		}
	}
}

func TestAssessment_NoActiveTest(t *testing.T) {
	env := newTestEnv()
	env.repo.seedUser("u1")
	svc := NewAssessmentTestService(env.deps)

	if _, err := svc.Start(context.Background(), "u1"); !errors.Is(err, ErrNoActiveAssessment) {
		t.Fatalf("Start() error = %v, want ErrNoActiveAssessment", err)
	}
	overview, err := svc.GetOverview(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetOverview() error = %v", err)
	}
	if overview.Test != nil || !overview.Eligibility.CanAttempt {
		t.Errorf("overview = %+v, want no test and eligible", overview)
	}
}

func TestAssessment_SubmitPassPromotes(t *testing.T) {
	env, svc, bank := newAssessmentFixture(t, 3)

	resp, err := svc.Submit(context.Background(), "u1", &models.AssessmentTestSubmitRequest{
		Answers:   answersFor(bank, 2),
		TimeTaken: 420,
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !resp.Passed || resp.Percentage != 66.67 || resp.NewStatus != models.StatusTalented {
		t.Errorf("response = %+v, want 66.67 passed talented", resp)
	}
	if want := env.now.Add(time.Hour); !resp.NextAttempt.Equal(want) {
		t.Errorf("NextAttempt = %v, want %v", resp.NextAttempt, want)
	}

	u := env.repo.users["u1"]
	if u.Status != models.StatusTalented || u.AssessmentStatus != models.StatusTalented {
		t.Errorf("user statuses = %s/%s, want talented", u.Status, u.AssessmentStatus)
	}
	if u.AssessmentScore == nil || *u.AssessmentScore < 66.66 || *u.AssessmentScore > 66.67 {
		t.Errorf("stored score = %v, want unrounded 66.66..", u.AssessmentScore)
	}
	if n := len(env.events.EventsOfType(events.UserPromoted)); n != 1 {
		t.Errorf("promotion events = %d, want 1", n)
	}
}

func TestAssessment_FailNeverDemotes(t *testing.T) {
	env, svc, bank := newAssessmentFixture(t, 5)
	u := env.repo.users["u1"]
	u.Status, u.AssessmentStatus = models.StatusTalented, models.StatusTalented

	resp, err := svc.Submit(context.Background(), "u1", &models.AssessmentTestSubmitRequest{Answers: answersFor(bank, 1)})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if resp.Passed || resp.Percentage != 20 {
		t.Errorf("response = %+v, want 20 failed", resp)
	}
	if u.Status != models.StatusTalented || u.AssessmentStatus != models.StatusTalented {
		t.Error("a failed attempt must not demote")
	}
	if n := len(env.events.EventsOfType(events.UserPromoted)); n != 0 {
		t.Errorf("promotion events = %d, want 0", n)
	}
}

func TestAssessment_CooldownAppliesAfterEveryAttempt(t *testing.T) {
	env, svc, bank := newAssessmentFixture(t, 4)
	req := &models.AssessmentTestSubmitRequest{Answers: answersFor(bank, 4)}

	if _, err := svc.Submit(context.Background(), "u1", req); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	env.advance(30 * time.Minute)
	_, err := svc.Submit(context.Background(), "u1", req)
	var cooldown *CooldownError
	if !errors.As(err, &cooldown) {
		t.Fatalf("second Submit() error = %v, want *CooldownError", err)
	}
	if cooldown.WaitHours != 0 || cooldown.WaitMinutes != 30 {
		t.Errorf("wait = %dh %dm, want 0h 30m", cooldown.WaitHours, cooldown.WaitMinutes)
	}
	if _, err := svc.Start(context.Background(), "u1"); !errors.Is(err, ErrRetryCooldown) {
		t.Errorf("Start() error = %v, want cooldown", err)
	}

	overview, err := svc.GetOverview(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetOverview() error = %v", err)
	}
	if overview.Eligibility.CanAttempt || overview.QuestionCount != 4 || overview.LastResult == nil {
		t.Errorf("overview = %+v", overview)
	}

	env.advance(30 * time.Minute)
	if _, err := svc.Submit(context.Background(), "u1", req); err != nil {
		t.Fatalf("Submit() after delay error = %v", err)
	}
	if len(env.repo.assessmentResults) != 2 {
		t.Errorf("results = %d, want 2", len(env.repo.assessmentResults))
	}
}

func TestAssessment_UpdateTest(t *testing.T) {
	_, svc, _ := newAssessmentFixture(t, 1)
	active, _ := svc.GetActiveTest(context.Background())

	limit, pass := 90, 75
	updated, err := svc.UpdateTest(context.Background(), active.ID, &models.AssessmentTestUpsertRequest{
		TimeLimit:      &limit,
		PassPercentage: &pass,
	})
	if err != nil {
		t.Fatalf("UpdateTest() error = %v", err)
	}
	if updated.TimeLimit != 90 || updated.PassPercentage != 75 {
		t.Errorf("updated = %+v", updated)
	}

	if _, err := svc.UpdateTest(context.Background(), 9999, &models.AssessmentTestUpsertRequest{}); !errors.Is(err, ErrAssessmentNotFound) {
		t.Errorf("missing test error = %v, want ErrAssessmentNotFound", err)
	}
}

func TestAssessment_SubmitAllSkipped(t *testing.T) {
	env, svc, _ := newAssessmentFixture(t, 4)

	var req models.AssessmentTestSubmitRequest
	if err := json.Unmarshal([]byte(`{"answers": {}}`), &req); err != nil {
		t.Fatalf("decode request: %v", err)
	}

	resp, err := svc.Submit(context.Background(), "u1", &req)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if resp.Passed || resp.Percentage != 0 || resp.CorrectAnswers != 0 || resp.TotalQuestions != 4 {
		t.Errorf("response = %+v, want 0/4 0%% not passed", resp)
	}
	if resp.NewStatus != models.StatusRegular {
		t.Errorf("NewStatus = %s, want regular", resp.NewStatus)
	}

	u := env.repo.users["u1"]
	want := env.now.Add(time.Hour)
	if u.AssessmentNextAttempt == nil || !u.AssessmentNextAttempt.Equal(want) {
		t.Errorf("next attempt = %v, want %v", u.AssessmentNextAttempt, want)
	}
	if u.Status != models.StatusRegular || u.AssessmentStatus != models.StatusRegular {
		t.Errorf("user statuses = %s/%s, want regular", u.Status, u.AssessmentStatus)
	}
	if n := len(env.events.EventsOfType(events.UserPromoted)); n != 0 {
		t.Errorf("promotion events = %d, want 0", n)
	}
}

func TestAssessment_StaleFailDoesNotUndoConcurrentPromotion(t *testing.T) {
	env, svc, bank := newAssessmentFixture(t, 5)

	// A passing attempt commits after this submission loaded the user
	env.repo.beforeWrite = func() {
		env.repo.mu.Lock()
		defer env.repo.mu.Unlock()
		u := env.repo.users["u1"]
		u.Status, u.AssessmentStatus = models.StatusTalented, models.StatusTalented
	}

	resp, err := svc.Submit(context.Background(), "u1", &models.AssessmentTestSubmitRequest{Answers: answersFor(bank, 1)})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if resp.Passed {
		t.Fatalf("response = %+v, want failed", resp)
	}
	if resp.NewStatus != models.StatusTalented {
		t.Errorf("NewStatus = %s, want talented", resp.NewStatus)
	}

	u := env.repo.users["u1"]
	if u.Status != models.StatusTalented || u.AssessmentStatus != models.StatusTalented {
		t.Errorf("user statuses = %s/%s, want talented kept", u.Status, u.AssessmentStatus)
	}
	if n := len(env.events.EventsOfType(events.UserPromoted)); n != 0 {
		t.Errorf("promotion events = %d, want 0 from a failed attempt", n)
	}
}

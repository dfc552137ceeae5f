package services

import (
	"time"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
)

// CourseRetryCooldown is the wait after a failed course test
const CourseRetryCooldown = 8 * time.Minute

// CourseRetryStatus evaluates the cooldown from the latest course result.
// Only a failed latest result inside the window blocks a retry.
func CourseRetryStatus(latest *models.UserTestResult, now time.Time) models.RetryStatus {
	if latest == nil || latest.Passed {
		return models.RetryStatus{CanRetry: true}
	}

	retryAt := latest.CompletedAt.Add(CourseRetryCooldown)
	remaining := retryAt.Sub(now)
	if remaining <= 0 {
		return models.RetryStatus{CanRetry: true}
	}

	seconds := remaining.Seconds()
	return models.RetryStatus{
		CanRetry:    false,
		WaitSeconds: int(seconds),
		WaitMinutes: int(seconds/60) + 1,
		RetryAt:     &retryAt,
	}
}

// CourseCooldownError converts a blocked status into an error, nil otherwise
func CourseCooldownError(status models.RetryStatus) error {
	if status.CanRetry {
		return nil
	}
	err := &CooldownError{WaitSeconds: status.WaitSeconds, WaitMinutes: status.WaitMinutes}
	if status.RetryAt != nil {
		err.RetryAt = *status.RetryAt
	}
	return err
}

// AssessmentEligibilityAt reports whether an assessment attempt is allowed at
// now given the stored next attempt time
func AssessmentEligibilityAt(nextAttempt *time.Time, now time.Time) models.AssessmentEligibility {
	if nextAttempt == nil || !now.Before(*nextAttempt) {
		return models.AssessmentEligibility{CanAttempt: true}
	}

	seconds := int(nextAttempt.Sub(now).Seconds())
	next := *nextAttempt
	return models.AssessmentEligibility{
		CanAttempt:  false,
		WaitSeconds: seconds,
		WaitHours:   seconds / 3600,
		WaitMinutes: (seconds % 3600) / 60,
		NextAttempt: &next,
	}
}

func assessmentCooldownError(e models.AssessmentEligibility) error {
	if e.CanAttempt {
		return nil
	}
	err := &CooldownError{WaitSeconds: e.WaitSeconds, WaitHours: e.WaitHours, WaitMinutes: e.WaitMinutes}
	if e.NextAttempt != nil {
		err.RetryAt = *e.NextAttempt
	}
	return err
}

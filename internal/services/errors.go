package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/validator"
)

// ===== SENTINELS =====

var (
	ErrCourseNotFound      = errors.New("course not found")
	ErrCourseInactive      = errors.New("course is not active")
	ErrModuleNotFound      = errors.New("module not found")
	ErrModuleLocked        = errors.New("module is locked")
	ErrModulesIncomplete   = errors.New("all modules must be completed first")
	ErrNoTestSet           = errors.New("no test set assigned")
	ErrNoQuestions         = errors.New("test set has no questions")
	ErrRetryCooldown       = errors.New("retry is not allowed yet")
	ErrTestSetNotFound     = errors.New("test set not found")
	ErrNoActiveAssessment  = errors.New("no active assessment test")
	ErrAssessmentNotFound  = errors.New("assessment test not found")
	ErrCertificateNotFound = errors.New("certificate not found")
	ErrCertificateNoFile   = errors.New("certificate file not available")
	ErrNoPassingResult     = errors.New("no passing test result")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidPhoto        = errors.New("invalid photo")
	ErrPhotoNotFound       = errors.New("profile photo not found")
	ErrInvalidDocument     = errors.New("invalid question document")
	ErrValidationFailed    = errors.New("validation failed")
)

// ValidationErrors is re-exported so handlers only depend on services
type ValidationErrors = validator.ValidationErrors

// ===== TYPED ERRORS =====

// GatingError is returned when a prerequisite of the course test is missing
type GatingError struct {
	Reason           error
	CompletedModules int
	TotalModules     int
}

func (e *GatingError) Error() string {
	if errors.Is(e.Reason, ErrModulesIncomplete) {
		return fmt.Sprintf("%s (%d/%d)", e.Reason, e.CompletedModules, e.TotalModules)
	}
	return e.Reason.Error()
}

func (e *GatingError) Unwrap() error {
	return e.Reason
}

// CooldownError carries the remaining wait of a blocked retry
type CooldownError struct {
	RetryAt     time.Time
	WaitSeconds int
	WaitHours   int
	WaitMinutes int
}

func (e *CooldownError) Error() string {
	if e.WaitHours > 0 {
		return fmt.Sprintf("%s: wait %d h %d min", ErrRetryCooldown, e.WaitHours, e.WaitMinutes)
	}
	return fmt.Sprintf("%s: wait %d min", ErrRetryCooldown, e.WaitMinutes)
}

func (e *CooldownError) Unwrap() error {
	return ErrRetryCooldown
}

// BusinessRuleError reports a rejected request that is otherwise well formed
type BusinessRuleError struct {
	Rule    string
	Message string
	Context map[string]interface{}
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule %s violated: %s", e.Rule, e.Message)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{Rule: rule, Message: message, Context: context}
}

type PermissionError struct {
	UserID     string
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s %d: %s", e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

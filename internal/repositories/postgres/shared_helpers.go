package postgres

import (
	"fmt"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/repositories"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// handleDBError is a package-level helper for handling database errors.
// The driver error stays wrapped so callers can still classify it.
func handleDBError(err error, operation string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s failed: %w", operation, err)
}

// applyPagination clamps limit and offset to sane bounds
func applyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return query.Limit(limit).Offset(offset)
}

// applyResultFilters applies the shared result filters; column names are the
// same on both result tables apart from the test reference.
func applyResultFilters(query *gorm.DB, filters repositories.ResultFilters, testColumn string) *gorm.DB {
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.CourseID != nil && testColumn == "course_id" {
		query = query.Where("course_id = ?", *filters.CourseID)
	}
	if filters.TestID != nil && testColumn == "assessment_test_id" {
		query = query.Where("assessment_test_id = ?", *filters.TestID)
	}
	if filters.Passed != nil {
		query = query.Where("passed = ?", *filters.Passed)
	}
	if filters.DateFrom != nil {
		query = query.Where("completed_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("completed_at <= ?", *filters.DateTo)
	}
	return query
}

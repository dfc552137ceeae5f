package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

func TestSetQuestionsKey(testSetID uint) string {
	return fmt.Sprintf("id:%d:questions", testSetID)
}

func CourseKey(courseID uint) string {
	return fmt.Sprintf("id:%d", courseID)
}

// InvalidateTestSetCache drops the cached bank of one test set
func InvalidateTestSetCache(ctx context.Context, cm *CacheManager, testSetID uint) {
	SafeDelete(ctx, cm.TestSet, TestSetQuestionsKey(testSetID))
	SafeInvalidatePattern(ctx, cm.TestSet, fmt.Sprintf("id:%d:*", testSetID))
}

// InvalidateCourseCache drops a cached course row
func InvalidateCourseCache(ctx context.Context, cm *CacheManager, courseID uint) {
	SafeDelete(ctx, cm.Course, CourseKey(courseID))
}

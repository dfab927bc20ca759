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

// InvalidateCourseCache drops everything derived from one course: the
// slug-keyed detail entry, the catalog listings and the per-category lists.
func InvalidateCourseCache(ctx context.Context, cm *CacheManager, courseID uint, slug string) {
	SafeDelete(ctx, cm.Course,
		fmt.Sprintf("id:%d", courseID),
		fmt.Sprintf("slug:%s", slug))

	SafeInvalidatePattern(ctx, cm.Course, "list:*")
	SafeInvalidatePattern(ctx, cm.Course, "category:*")
	SafeInvalidatePattern(ctx, cm.Stats, "dashboard:*")
}

// InvalidateCategoryCache drops the category listings and the catalog
// entries that embed category names.
func InvalidateCategoryCache(ctx context.Context, cm *CacheManager, categoryID uint) {
	SafeDelete(ctx, cm.Category, fmt.Sprintf("id:%d", categoryID))
	SafeInvalidatePattern(ctx, cm.Category, "list:*")
	SafeInvalidatePattern(ctx, cm.Course, "category:*")
}

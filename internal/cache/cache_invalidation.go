package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern invalidates a cache pattern, logging instead of
// propagating failures.
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete deletes cache keys, logging instead of propagating failures.
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateAssignmentCache drops every cache entry derived from one
// assignment after it is created or edited.
func InvalidateAssignmentCache(ctx context.Context, cm *CacheManager, assignmentID uint, creatorID string) {
	SafeDelete(ctx, cm.Assignment,
		fmt.Sprintf("id:%d", assignmentID),
		fmt.Sprintf("details:%d", assignmentID))

	SafeInvalidatePattern(ctx, cm.Assignment, fmt.Sprintf("creator:%s:*", creatorID))
	SafeInvalidatePattern(ctx, cm.Assignment, "list:*")
}

// InvalidateRosterCache drops cached enrollment rows for a roll after the
// student-management subsystem reports a change.
func InvalidateRosterCache(ctx context.Context, cm *CacheManager, roll string) {
	SafeDelete(ctx, cm.Roster, fmt.Sprintf("roll:%s", roll))
	SafeInvalidatePattern(ctx, cm.Summary, fmt.Sprintf("%s:*", roll))
}

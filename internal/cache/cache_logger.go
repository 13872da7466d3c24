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

// InvalidateWorkshopCache invalidates all caches derived from a workshop
func InvalidateWorkshopCache(ctx context.Context, cm *CacheManager, workshopID, ownerID uint) {
	SafeDelete(ctx, cm.Workshop,
		fmt.Sprintf("id:%d", workshopID),
		fmt.Sprintf("relations:%d", workshopID))

	SafeInvalidatePattern(ctx, cm.Workshop, fmt.Sprintf("owner:%d:*", ownerID))
	SafeInvalidatePattern(ctx, cm.Workshop, "list:*")
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("workshop:%d:*", workshopID))
}

// InvalidateSessionCache invalidates session caches and the stats of its workshop
func InvalidateSessionCache(ctx context.Context, cm *CacheManager, sessionID, workshopID uint) {
	SafeDelete(ctx, cm.Session, fmt.Sprintf("id:%d", sessionID))
	SafeInvalidatePattern(ctx, cm.Session, fmt.Sprintf("workshop:%d:*", workshopID))
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("workshop:%d:*", workshopID))
}

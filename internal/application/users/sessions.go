package users

import (
	"context"

	"armory-backend/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const userSessionsPrefix = "user_sessions:"

// TrackSession records a session id against a user so it can be revoked later.
func TrackSession(ctx context.Context, rdb *redis.Client, userID, sessionID string) {
	if userID == "" || sessionID == "" {
		return
	}
	rdb.SAdd(ctx, userSessionsPrefix+userID, sessionID)
}

// DestroyUserSessions removes all sessions for a user.
// Deletes each session key (session:<sid>) and the user_sessions:<user_id> set.
func DestroyUserSessions(ctx context.Context, rdb *redis.Client, userID string) {
	if userID == "" {
		return
	}
	key := userSessionsPrefix + userID
	sessionIDs, err := rdb.SMembers(ctx, key).Result()
	if err != nil || len(sessionIDs) == 0 {
		rdb.Del(ctx, key)
		return
	}
	for _, sid := range sessionIDs {
		rdb.Del(ctx, middleware.SessionRedisPrefix+sid)
	}
	rdb.Del(ctx, key)
}

package services

import (
	"context"

	"parley-chat/pkg/logger"
)

type ctxKey string

var userIDKey ctxKey = "user_id"

// WithUserContext stores the authenticated user on the request context. Only the
// HTTP boundary reads it back; services receive the id as an explicit argument.
func WithUserContext(ctx context.Context, userID int64) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, logger.UserIdKey, userID)
}

func UserIDFromContext(ctx context.Context) (int64, bool) {
	value := ctx.Value(userIDKey)
	if value == nil {
		return 0, false
	}
	userID, ok := value.(int64)
	return userID, ok && userID > 0
}

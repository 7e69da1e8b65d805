package middleware

import "context"

type contextKey string

const (
	ContextKeyUserID    contextKey = "user_id"
	ContextKeyUserEmail contextKey = "user_email"
	ContextKeyUserRole  contextKey = "role"
)

func UserIDFromContext(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(ContextKeyUserID).(int)
	return v, ok
}

func UserEmailFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextKeyUserEmail).(string)
	return v, ok
}

func RoleFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextKeyUserRole).(string)
	return v, ok
}

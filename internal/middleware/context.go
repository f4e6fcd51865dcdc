package middleware

import (
	"context"

	"civic-portal/internal/domain"
)

type contextKey string

const (
	ContextUserID     contextKey = "userID"
	ContextUser       contextKey = "user"
	ContextRole       contextKey = "role"
	ContextDepartment contextKey = "department"
	ContextIsAdmin    contextKey = "isAdmin"
	ContextIsStaff    contextKey = "isStaff"
)

func GetUserID(ctx context.Context) (string, bool) {
	val, ok := ctx.Value(ContextUserID).(string)
	return val, ok
}

func GetUser(ctx context.Context) (*domain.User, bool) {
	val, ok := ctx.Value(ContextUser).(*domain.User)
	return val, ok
}

func GetDepartment(ctx context.Context) string {
	val, _ := ctx.Value(ContextDepartment).(string)
	return val
}

func IsAdmin(ctx context.Context) bool {
	val, _ := ctx.Value(ContextIsAdmin).(bool)
	return val
}

func IsStaff(ctx context.Context) bool {
	val, _ := ctx.Value(ContextIsStaff).(bool)
	return val
}

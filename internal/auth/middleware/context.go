package auth

import (
	"context"

	"github.com/mind-engage/mindengage-marker/internal/rbac"
)

type subjectKey struct{}

func WithSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, subjectKey{}, sub)
}

// SubjectFromContext returns the authenticated user, set by JWTMiddleware.
func SubjectFromContext(ctx context.Context) string {
	sub, _ := ctx.Value(subjectKey{}).(string)
	return sub
}

// Principal returns the caller's subject and role; both empty when unauthenticated.
func Principal(ctx context.Context) (sub, role string) {
	return SubjectFromContext(ctx), rbac.RoleFromContext(ctx)
}

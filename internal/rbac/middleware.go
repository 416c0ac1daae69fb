package rbac

import (
	"net/http"
)

var defaultChecker = NewChecker(nil)

// Require enforces a single permission with the default policy.
func Require(perm string) func(http.Handler) http.Handler {
	return defaultChecker.Require(perm)
}

// RequireAny enforces that the role has at least one of the permissions.
func RequireAny(perms ...string) func(http.Handler) http.Handler {
	return defaultChecker.RequireAny(perms...)
}

func (c *Checker) Require(perm string) func(http.Handler) http.Handler {
	return c.guard(func(role string) bool { return c.Has(role, perm) })
}

func (c *Checker) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return c.guard(func(role string) bool { return c.Any(role, perms...) })
}

func (c *Checker) guard(allowed func(role string) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromContext(r.Context())
			if role == "" || !allowed(role) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"net/http"

	"civic-portal/internal/domain"
	"civic-portal/internal/response"
)

// RequireStaff passes staff and admin callers through; everyone else gets a
// 403 that does not reveal whether the target resource exists.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IsAdmin(r.Context()) || IsStaff(r.Context()) {
			next.ServeHTTP(w, r)
			return
		}
		response.Error(w, http.StatusForbidden, "Access denied. Admin/Staff only.")
	})
}

// RequireDepartment additionally requires the resolved user's department to
// match the department the session was opened for. The "general" sentinel
// and admin role bypass the check.
func RequireDepartment(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUser(r.Context())
		if !ok {
			response.Error(w, http.StatusForbidden, "Access denied.")
			return
		}
		dept := GetDepartment(r.Context())
		if dept == domain.DefaultDepartment || user.IsAdmin() || user.Department == dept {
			next.ServeHTTP(w, r)
			return
		}
		response.Error(w, http.StatusForbidden, "Access denied for department "+dept+".")
	})
}

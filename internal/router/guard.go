package router

import "staffdesk/internal/model"

// Page paths the guard reasons about. The admin-only set and both
// dashboard paths come from the product's routing table.
const (
	LoginPath             = "/login"
	AdminDashboardPath    = "/dashboard"
	EmployeeDashboardPath = "/employee-dashboard"
)

var adminOnlyPaths = map[string]bool{
	"/employees":           true,
	"/departments":         true,
	"/attendance":          true,
	"/location-attendance": true,
}

// GuardedPaths lists every page path the guard is mounted on.
func GuardedPaths() []string {
	paths := []string{AdminDashboardPath, EmployeeDashboardPath}
	for p := range adminOnlyPaths {
		paths = append(paths, p)
	}
	return paths
}

// RedirectFor is the pure route-guard decision: given the visitor's role
// and the requested page path, it returns the path to redirect to, or ""
// when the visit is allowed. It is re-evaluated on every navigation and
// holds no state.
//
// Employees are sent away from admin-only pages and from the admin
// dashboard; admins are sent away from the employee dashboard.
func RedirectFor(role model.Role, path string) string {
	switch role {
	case model.RoleEmployee:
		if adminOnlyPaths[path] || path == AdminDashboardPath {
			return EmployeeDashboardPath
		}
	case model.RoleAdmin:
		if path == EmployeeDashboardPath {
			return AdminDashboardPath
		}
	}
	return ""
}

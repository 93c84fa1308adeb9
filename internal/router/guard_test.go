package router

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"staffdesk/internal/model"
)

func TestRedirectFor(t *testing.T) {
	tests := []struct {
		name     string
		role     model.Role
		path     string
		expected string
	}{
		{
			name:     "employee on own dashboard stays",
			role:     model.RoleEmployee,
			path:     EmployeeDashboardPath,
			expected: "",
		},
		{
			name:     "employee on admin dashboard is redirected",
			role:     model.RoleEmployee,
			path:     AdminDashboardPath,
			expected: EmployeeDashboardPath,
		},
		{
			name:     "employee on employees page is redirected",
			role:     model.RoleEmployee,
			path:     "/employees",
			expected: EmployeeDashboardPath,
		},
		{
			name:     "employee on departments page is redirected",
			role:     model.RoleEmployee,
			path:     "/departments",
			expected: EmployeeDashboardPath,
		},
		{
			name:     "employee on attendance page is redirected",
			role:     model.RoleEmployee,
			path:     "/attendance",
			expected: EmployeeDashboardPath,
		},
		{
			name:     "employee on location attendance page is redirected",
			role:     model.RoleEmployee,
			path:     "/location-attendance",
			expected: EmployeeDashboardPath,
		},
		{
			name:     "admin on own dashboard stays",
			role:     model.RoleAdmin,
			path:     AdminDashboardPath,
			expected: "",
		},
		{
			name:     "admin on employee dashboard is redirected",
			role:     model.RoleAdmin,
			path:     EmployeeDashboardPath,
			expected: AdminDashboardPath,
		},
		{
			name:     "admin on employees page stays",
			role:     model.RoleAdmin,
			path:     "/employees",
			expected: "",
		},
		{
			name:     "unknown role on a guarded page stays put",
			role:     model.Role("guest"),
			path:     AdminDashboardPath,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RedirectFor(tt.role, tt.path))
		})
	}
}

func TestGuardedPaths(t *testing.T) {
	paths := GuardedPaths()

	assert.Contains(t, paths, AdminDashboardPath)
	assert.Contains(t, paths, EmployeeDashboardPath)
	assert.Contains(t, paths, "/employees")
	assert.Contains(t, paths, "/departments")
	assert.Contains(t, paths, "/attendance")
	assert.Contains(t, paths, "/location-attendance")
	assert.Len(t, paths, 6)
}

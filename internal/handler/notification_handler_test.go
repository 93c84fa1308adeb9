package handler

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"staffdesk/internal/model"
)

func TestVisibleTo(t *testing.T) {
	employee := &model.User{ID: uuid.New(), Role: model.RoleEmployee}
	admin := &model.User{ID: uuid.New(), Role: model.RoleAdmin}
	other := uuid.New()

	tests := []struct {
		name         string
		user         *model.User
		notification *model.Notification
		expected     bool
	}{
		{
			name:         "employee sees a broadcast",
			user:         employee,
			notification: &model.Notification{RecipientID: nil},
			expected:     true,
		},
		{
			name:         "employee sees a notification addressed to them",
			user:         employee,
			notification: &model.Notification{RecipientID: &employee.ID},
			expected:     true,
		},
		{
			name:         "employee does not see another employee's notification",
			user:         employee,
			notification: &model.Notification{RecipientID: &other},
			expected:     false,
		},
		{
			name:         "admin sees a broadcast",
			user:         admin,
			notification: &model.Notification{RecipientID: nil},
			expected:     true,
		},
		{
			name:         "admin sees any addressed notification",
			user:         admin,
			notification: &model.Notification{RecipientID: &other},
			expected:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, visibleTo(tt.user, tt.notification))
		})
	}
}

func TestRecipientScope(t *testing.T) {
	employee := &model.User{ID: uuid.New(), Role: model.RoleEmployee}
	admin := &model.User{ID: uuid.New(), Role: model.RoleAdmin}

	scope := recipientScope(employee)
	assert.NotNil(t, scope)
	assert.Equal(t, employee.ID, *scope)

	assert.Nil(t, recipientScope(admin))
	assert.Nil(t, recipientScope(nil))
}

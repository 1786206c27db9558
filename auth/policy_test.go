package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/123jagadeesh/ProFlow/models"
)

func TestAdminAllowedEverything(t *testing.T) {
	actions := []Action{
		ProjectCreate, ProjectRead, ProjectStatuses, ProjectAttach, ProjectDetach,
		TaskCreate, TaskRead, TaskWrite, TaskStatus, TaskComment, TaskAttach,
		SprintRead, SprintWrite, SprintIssue,
		EmployeeManage, PersonalTaskUse,
	}
	for _, a := range actions {
		assert.True(t, Allowed(models.RoleAdmin, a), "admin should be allowed %s", a)
	}
}

func TestEmployeeCapabilities(t *testing.T) {
	cases := []struct {
		action Action
		want   bool
	}{
		{ProjectCreate, false},
		{ProjectRead, true},
		{ProjectStatuses, false},
		{ProjectAttach, false},
		{ProjectDetach, false},
		{TaskCreate, false},
		{TaskRead, true},
		{TaskWrite, true},
		{TaskStatus, true},
		{TaskComment, true},
		{TaskAttach, true},
		{SprintRead, true},
		{SprintWrite, false},
		{SprintIssue, true},
		{EmployeeManage, false},
		{PersonalTaskUse, true},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Allowed(models.RoleEmployee, c.action), "employee %s", c.action)
	}
}

func TestUnknownRoleDeniedEverything(t *testing.T) {
	assert.False(t, Allowed(models.Role("reporter"), TaskWrite))
	assert.False(t, Allowed(models.Role(""), ProjectRead))
}

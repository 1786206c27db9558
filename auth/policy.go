// Package auth holds the capability table every handler consults before
// touching an entity. Relationship-level checks (task reporter, assignee,
// personal-task owner) stay in the services, where the entity is at hand;
// this table answers only the role half of the question.
package auth

import "github.com/123jagadeesh/ProFlow/models"

type Action string

const (
	ProjectCreate   Action = "project.create"
	ProjectRead     Action = "project.read"
	ProjectStatuses Action = "project.statuses"
	ProjectAttach   Action = "project.attach"
	ProjectDetach   Action = "project.detach"

	TaskCreate  Action = "task.create"
	TaskRead    Action = "task.read"
	TaskWrite   Action = "task.write"  // admin outright, employee only as reporter
	TaskStatus  Action = "task.status" // admin/reporter, or any assignee
	TaskComment Action = "task.comment"
	TaskAttach  Action = "task.attach"

	SprintRead  Action = "sprint.read"
	SprintWrite Action = "sprint.write"
	SprintIssue Action = "sprint.issue"

	EmployeeManage Action = "employee.manage"

	PersonalTaskUse Action = "personal.use"
)

var capabilities = map[models.Role]map[Action]bool{
	models.RoleAdmin: {
		ProjectCreate:   true,
		ProjectRead:     true,
		ProjectStatuses: true,
		ProjectAttach:   true,
		ProjectDetach:   true,
		TaskCreate:      true,
		TaskRead:        true,
		TaskWrite:       true,
		TaskStatus:      true,
		TaskComment:     true,
		TaskAttach:      true,
		SprintRead:      true,
		SprintWrite:     true,
		SprintIssue:     true,
		EmployeeManage:  true,
		PersonalTaskUse: true,
	},
	models.RoleEmployee: {
		ProjectRead:     true,
		TaskRead:        true,
		TaskWrite:       true, // narrowed to own reported tasks in the service
		TaskStatus:      true, // narrowed to assigned tasks in the service
		TaskComment:     true,
		TaskAttach:      true,
		SprintRead:      true,
		SprintIssue:     true,
		PersonalTaskUse: true,
	},
}

// Allowed reports whether the role may attempt the action at all.
func Allowed(role models.Role, action Action) bool {
	return capabilities[role][action]
}

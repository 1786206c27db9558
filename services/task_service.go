package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/123jagadeesh/ProFlow/logging"
	"github.com/123jagadeesh/ProFlow/models"
)

// TaskService manages the task/subtask graph, including comments and
// attachments embedded in task documents.
type TaskService struct {
	TasksCollection    *mongo.Collection
	ProjectsCollection *mongo.Collection
	UsersCollection    *mongo.Collection
	SprintsCollection  *mongo.Collection
}

func NewTaskService(tasksCollection, projectsCollection, usersCollection, sprintsCollection *mongo.Collection) *TaskService {
	return &TaskService{
		TasksCollection:    tasksCollection,
		ProjectsCollection: projectsCollection,
		UsersCollection:    usersCollection,
		SprintsCollection:  sprintsCollection,
	}
}

type CreateTaskInput struct {
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Project          string     `json:"project"`
	ParentTask       string     `json:"parentTask"`
	Sprint           string     `json:"sprint"`
	Assignees        []string   `json:"assignee"`
	Priority         string     `json:"priority"`
	Status           string     `json:"status"`
	PlannedDateStart *time.Time `json:"plannedDateStart"`
	PlannedDateEnd   *time.Time `json:"plannedDateEnd"`
}

func (s *TaskService) CreateTask(ctx context.Context, actor models.Actor, input CreateTaskInput) (*models.Task, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" || input.Project == "" {
		return nil, fmt.Errorf("%w: title and project are required", ErrValidation)
	}

	project, err := s.findTenantProject(ctx, actor, input.Project)
	if err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = project.Statuses[0]
	}
	if !project.HasStatus(status) {
		return nil, fmt.Errorf("%w: invalid status %q, must be one of %s", ErrValidation, status, strings.Join(project.Statuses, ", "))
	}

	priority := models.TaskPriority(input.Priority)
	if input.Priority == "" {
		priority = models.PriorityLow
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("%w: invalid priority %q", ErrValidation, input.Priority)
	}

	assignees, err := s.resolveAssignees(ctx, actor, input.Assignees)
	if err != nil {
		return nil, err
	}

	var parentID *primitive.ObjectID
	if input.ParentTask != "" {
		parent, err := s.findTenantTask(ctx, actor, input.ParentTask)
		if err != nil {
			return nil, err
		}
		if parent.Project != project.ID {
			return nil, fmt.Errorf("%w: parent task belongs to a different project", ErrValidation)
		}
		parentID = &parent.ID
	}

	var sprintID *primitive.ObjectID
	if input.Sprint != "" {
		sprint, err := s.findTenantSprint(ctx, actor, input.Sprint)
		if err != nil {
			return nil, err
		}
		if sprint.Project != project.ID {
			return nil, fmt.Errorf("%w: sprint belongs to a different project", ErrValidation)
		}
		sprintID = &sprint.ID
	}

	task := &models.Task{
		ID:               primitive.NewObjectID(),
		Title:            input.Title,
		Description:      strings.TrimSpace(input.Description),
		Project:          project.ID,
		ParentTask:       parentID,
		Sprint:           sprintID,
		Assignees:        assignees,
		Reporter:         actor.ID,
		Priority:         priority,
		Status:           status,
		PlannedDateStart: input.PlannedDateStart,
		PlannedDateEnd:   input.PlannedDateEnd,
		Attachments:      []models.Attachment{},
		Comments:         []models.Comment{},
		Company:          actor.Company,
		CreatedAt:        time.Now(),
	}

	if _, err := s.TasksCollection.InsertOne(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %v", err)
	}

	logging.Logger.Infof("Event ID: TASK_CREATED, Description: Task '%s' created in project %s", task.Title, project.ID.Hex())
	return task, nil
}

// GetTasks lists tenant tasks, optionally filtered by project and assignee.
// Employees are always restricted to the tasks assigned to them; the
// assignee filter is an admin-only facility.
func (s *TaskService) GetTasks(ctx context.Context, actor models.Actor, projectID, assigneeID string) ([]models.Task, error) {
	filter := bson.M{"company": actor.Company}

	if projectID != "" {
		objectID, err := primitive.ObjectIDFromHex(projectID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid project ID format", ErrValidation)
		}
		filter["project"] = objectID
	}

	if !actor.IsAdmin() {
		filter["assignee"] = actor.ID
	} else if assigneeID != "" {
		objectID, err := primitive.ObjectIDFromHex(assigneeID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid assignee ID format", ErrValidation)
		}
		filter["assignee"] = objectID
	}

	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := s.TasksCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %v", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %v", err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	return tasks, nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, actor models.Actor, taskID string) (*models.Task, error) {
	return s.findTenantTask(ctx, actor, taskID)
}

type UpdateTaskInput struct {
	Title            *string    `json:"title"`
	Description      *string    `json:"description"`
	Priority         *string    `json:"priority"`
	Status           *string    `json:"status"`
	Assignees        *[]string  `json:"assignee"`
	ParentTask       *string    `json:"parentTask"`
	Sprint           *string    `json:"sprint"`
	PlannedDateStart *time.Time `json:"plannedDateStart"`
	PlannedDateEnd   *time.Time `json:"plannedDateEnd"`
}

// UpdateTask applies a partial update. Only admins and the task's reporter
// may call it; field-level validation mirrors CreateTask.
func (s *TaskService) UpdateTask(ctx context.Context, actor models.Actor, taskID string, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.findTenantTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() && !task.IsReporter(actor.ID) {
		return nil, fmt.Errorf("%w: only admin or the task reporter can update a task", ErrForbidden)
	}

	set := bson.M{}
	unset := bson.M{}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be blank", ErrValidation)
		}
		set["title"] = title
	}
	if input.Description != nil {
		set["description"] = strings.TrimSpace(*input.Description)
	}
	if input.Priority != nil {
		priority := models.TaskPriority(*input.Priority)
		if !priority.Valid() {
			return nil, fmt.Errorf("%w: invalid priority %q", ErrValidation, *input.Priority)
		}
		set["priority"] = priority
	}
	if input.Status != nil {
		var project models.Project
		if err := s.ProjectsCollection.FindOne(ctx, bson.M{"_id": task.Project}).Decode(&project); err != nil {
			return nil, fmt.Errorf("failed to load project: %v", err)
		}
		if !project.HasStatus(*input.Status) {
			return nil, fmt.Errorf("%w: invalid status %q, must be one of %s", ErrValidation, *input.Status, strings.Join(project.Statuses, ", "))
		}
		set["status"] = *input.Status
	}
	if input.Assignees != nil {
		assignees, err := s.resolveAssignees(ctx, actor, *input.Assignees)
		if err != nil {
			return nil, err
		}
		set["assignee"] = assignees
	}
	if input.ParentTask != nil {
		if *input.ParentTask == "" {
			unset["parentTask"] = ""
		} else {
			parent, err := s.findTenantTask(ctx, actor, *input.ParentTask)
			if err != nil {
				return nil, err
			}
			if parent.Project != task.Project {
				return nil, fmt.Errorf("%w: parent task belongs to a different project", ErrValidation)
			}
			if parent.ID == task.ID {
				return nil, fmt.Errorf("%w: a task cannot be its own parent", ErrValidation)
			}
			if s.wouldCycle(ctx, task.ID, parent) {
				return nil, fmt.Errorf("%w: parent change would create a subtask cycle", ErrValidation)
			}
			set["parentTask"] = parent.ID
		}
	}
	if input.Sprint != nil {
		if *input.Sprint == "" {
			unset["sprint"] = ""
		} else {
			sprint, err := s.findTenantSprint(ctx, actor, *input.Sprint)
			if err != nil {
				return nil, err
			}
			if sprint.Project != task.Project {
				return nil, fmt.Errorf("%w: sprint belongs to a different project", ErrValidation)
			}
			set["sprint"] = sprint.ID
		}
	}
	if input.PlannedDateStart != nil {
		set["plannedDateStart"] = *input.PlannedDateStart
	}
	if input.PlannedDateEnd != nil {
		set["plannedDateEnd"] = *input.PlannedDateEnd
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	if len(update) == 0 {
		return task, nil
	}

	if _, err := s.TasksCollection.UpdateOne(ctx, bson.M{"_id": task.ID}, update); err != nil {
		return nil, fmt.Errorf("failed to update task: %v", err)
	}

	return s.findTenantTask(ctx, actor, taskID)
}

// ChangeStatus is the status-only path used by the employee board. Admins,
// the reporter, and any assignee may move a task between board columns.
func (s *TaskService) ChangeStatus(ctx context.Context, actor models.Actor, taskID, status string) (*models.Task, error) {
	task, err := s.findTenantTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() && !task.IsReporter(actor.ID) && !task.IsAssignee(actor.ID) {
		return nil, fmt.Errorf("%w: not allowed to change the status of this task", ErrForbidden)
	}

	var project models.Project
	if err := s.ProjectsCollection.FindOne(ctx, bson.M{"_id": task.Project}).Decode(&project); err != nil {
		return nil, fmt.Errorf("failed to load project: %v", err)
	}
	if !project.HasStatus(status) {
		return nil, fmt.Errorf("%w: invalid status %q, must be one of %s", ErrValidation, status, strings.Join(project.Statuses, ", "))
	}

	if _, err := s.TasksCollection.UpdateOne(ctx,
		bson.M{"_id": task.ID},
		bson.M{"$set": bson.M{"status": status}},
	); err != nil {
		return nil, fmt.Errorf("failed to update task status: %v", err)
	}

	task.Status = status
	return task, nil
}

// DeleteTask removes a task together with its whole subtask subtree, so no
// dangling parentTask references are left behind.
func (s *TaskService) DeleteTask(ctx context.Context, actor models.Actor, taskID string) error {
	task, err := s.findTenantTask(ctx, actor, taskID)
	if err != nil {
		return err
	}

	if !actor.IsAdmin() && !task.IsReporter(actor.ID) {
		return fmt.Errorf("%w: only admin or the task reporter can delete a task", ErrForbidden)
	}

	ids, err := s.collectSubtree(ctx, task.ID)
	if err != nil {
		return err
	}

	result, err := s.TasksCollection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return fmt.Errorf("failed to delete task: %v", err)
	}

	logging.Logger.Infof("Event ID: TASK_DELETED, Description: Task %s deleted with %d document(s) in its subtree", task.ID.Hex(), result.DeletedCount)
	return nil
}

// AddComment appends a comment. Admins, the reporter, and assignees may
// comment; comments are immutable once written.
func (s *TaskService) AddComment(ctx context.Context, actor models.Actor, taskID, message string) (*models.Comment, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("%w: comment text is required", ErrValidation)
	}

	task, err := s.findTenantTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() && !task.IsReporter(actor.ID) && !task.IsAssignee(actor.ID) {
		return nil, fmt.Errorf("%w: not allowed to comment on this task", ErrForbidden)
	}

	comment := models.Comment{
		User:      actor.ID,
		Message:   message,
		CreatedAt: time.Now(),
	}

	if _, err := s.TasksCollection.UpdateOne(ctx,
		bson.M{"_id": task.ID},
		bson.M{"$push": bson.M{"comments": comment}},
	); err != nil {
		return nil, fmt.Errorf("failed to add comment: %v", err)
	}

	return &comment, nil
}

// AddAttachment records uploaded file metadata against the task.
func (s *TaskService) AddAttachment(ctx context.Context, actor models.Actor, taskID string, attachment models.Attachment) (*models.Attachment, error) {
	task, err := s.findTenantTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() && !task.IsReporter(actor.ID) && !task.IsAssignee(actor.ID) {
		return nil, fmt.Errorf("%w: not allowed to attach files to this task", ErrForbidden)
	}

	attachment.UploadedBy = actor.ID
	attachment.UploadedAt = time.Now()
	attachment.URL = fmt.Sprintf("/api/tasks/%s/attachments/%s", task.ID.Hex(), attachment.StoredFilename)

	if _, err := s.TasksCollection.UpdateOne(ctx,
		bson.M{"_id": task.ID},
		bson.M{"$push": bson.M{"attachments": attachment}},
	); err != nil {
		return nil, fmt.Errorf("failed to save attachment: %v", err)
	}

	return &attachment, nil
}

// FindAttachment resolves a stored filename for download.
func (s *TaskService) FindAttachment(ctx context.Context, actor models.Actor, taskID, storedFilename string) (*models.Attachment, error) {
	task, err := s.findTenantTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	for i := range task.Attachments {
		if task.Attachments[i].StoredFilename == storedFilename {
			return &task.Attachments[i], nil
		}
	}
	return nil, ErrNotFound
}

// resolveAssignees validates every assignee id against the tenant. A miss
// is reported as absent to avoid confirming users of other companies.
func (s *TaskService) resolveAssignees(ctx context.Context, actor models.Actor, ids []string) ([]primitive.ObjectID, error) {
	assignees := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objectID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid assignee ID format", ErrValidation)
		}
		count, err := s.UsersCollection.CountDocuments(ctx, bson.M{"_id": objectID, "company": actor.Company})
		if err != nil {
			return nil, fmt.Errorf("failed to check assignee: %v", err)
		}
		if count == 0 {
			return nil, fmt.Errorf("%w: assignee %s", ErrNotFound, id)
		}
		assignees = append(assignees, objectID)
	}
	return assignees, nil
}

// wouldCycle reports whether re-parenting taskID under parent would close a
// loop in the subtask tree.
func (s *TaskService) wouldCycle(ctx context.Context, taskID primitive.ObjectID, parent *models.Task) bool {
	return ancestorChainContains(taskID, parent, func(id primitive.ObjectID) (*models.Task, error) {
		var next models.Task
		if err := s.TasksCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&next); err != nil {
			return nil, err
		}
		return &next, nil
	})
}

// ancestorChainContains walks up from start through parentTask references;
// reaching taskID means the proposed re-parenting would close a loop. A
// dangling reference terminates the chain.
func ancestorChainContains(taskID primitive.ObjectID, start *models.Task, load func(primitive.ObjectID) (*models.Task, error)) bool {
	current := start
	for current.ParentTask != nil {
		if *current.ParentTask == taskID {
			return true
		}
		next, err := load(*current.ParentTask)
		if err != nil {
			return false
		}
		current = next
	}
	return false
}

func (s *TaskService) collectSubtree(ctx context.Context, rootID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return gatherSubtree(rootID, func(parents []primitive.ObjectID) ([]models.Task, error) {
		cursor, err := s.TasksCollection.Find(ctx, bson.M{"parentTask": bson.M{"$in": parents}})
		if err != nil {
			return nil, fmt.Errorf("failed to collect subtasks: %v", err)
		}
		var children []models.Task
		if err := cursor.All(ctx, &children); err != nil {
			return nil, fmt.Errorf("failed to decode subtasks: %v", err)
		}
		return children, nil
	})
}

// gatherSubtree gathers the ids of a task and all its descendants,
// breadth-first.
func gatherSubtree(rootID primitive.ObjectID, childrenOf func([]primitive.ObjectID) ([]models.Task, error)) ([]primitive.ObjectID, error) {
	ids := []primitive.ObjectID{rootID}
	frontier := []primitive.ObjectID{rootID}

	for len(frontier) > 0 {
		children, err := childrenOf(frontier)
		if err != nil {
			return nil, err
		}

		frontier = nil
		for _, child := range children {
			ids = append(ids, child.ID)
			frontier = append(frontier, child.ID)
		}
	}

	return ids, nil
}

func (s *TaskService) findTenantProject(ctx context.Context, actor models.Actor, projectID string) (*models.Project, error) {
	objectID, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid project ID format", ErrValidation)
	}

	var project models.Project
	if err := s.ProjectsCollection.FindOne(ctx, bson.M{"_id": objectID, "company": actor.Company}).Decode(&project); err != nil {
		return nil, ErrNotFound
	}
	return &project, nil
}

func (s *TaskService) findTenantTask(ctx context.Context, actor models.Actor, taskID string) (*models.Task, error) {
	objectID, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid task ID format", ErrValidation)
	}

	var task models.Task
	if err := s.TasksCollection.FindOne(ctx, bson.M{"_id": objectID, "company": actor.Company}).Decode(&task); err != nil {
		return nil, ErrNotFound
	}
	return &task, nil
}

func (s *TaskService) findTenantSprint(ctx context.Context, actor models.Actor, sprintID string) (*models.Sprint, error) {
	objectID, err := primitive.ObjectIDFromHex(sprintID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid sprint ID format", ErrValidation)
	}

	var sprint models.Sprint
	if err := s.SprintsCollection.FindOne(ctx, bson.M{"_id": objectID, "company": actor.Company}).Decode(&sprint); err != nil {
		return nil, ErrNotFound
	}
	return &sprint, nil
}

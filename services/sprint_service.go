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

// SprintService manages the sprint lifecycle. Sprint membership lives on
// the task documents (Task.sprint); the issues array returned with sprint
// responses is derived by query, so there is no second copy to keep in
// sync.
type SprintService struct {
	SprintsCollection  *mongo.Collection
	TasksCollection    *mongo.Collection
	ProjectsCollection *mongo.Collection
}

func NewSprintService(sprintsCollection, tasksCollection, projectsCollection *mongo.Collection) *SprintService {
	return &SprintService{
		SprintsCollection:  sprintsCollection,
		TasksCollection:    tasksCollection,
		ProjectsCollection: projectsCollection,
	}
}

type CreateSprintInput struct {
	Title     string     `json:"title"`
	Goal      string     `json:"goal"`
	Duration  int        `json:"duration"`
	Project   string     `json:"project"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

func (s *SprintService) CreateSprint(ctx context.Context, actor models.Actor, input CreateSprintInput) (*models.Sprint, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" || input.Project == "" || input.StartDate == nil || input.EndDate == nil {
		return nil, fmt.Errorf("%w: title, project, startDate and endDate are required", ErrValidation)
	}
	if input.Duration < 1 {
		return nil, fmt.Errorf("%w: duration must be at least one week", ErrValidation)
	}
	if input.EndDate.Before(*input.StartDate) {
		return nil, fmt.Errorf("%w: end date must be after start date", ErrValidation)
	}

	projectObjectID, err := primitive.ObjectIDFromHex(input.Project)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid project ID format", ErrValidation)
	}
	var project models.Project
	if err := s.ProjectsCollection.FindOne(ctx, bson.M{"_id": projectObjectID, "company": actor.Company}).Decode(&project); err != nil {
		return nil, ErrNotFound
	}

	sprint := &models.Sprint{
		ID:        primitive.NewObjectID(),
		Title:     input.Title,
		Goal:      strings.TrimSpace(input.Goal),
		Duration:  input.Duration,
		Project:   project.ID,
		StartDate: *input.StartDate,
		EndDate:   *input.EndDate,
		Status:    models.SprintCreated,
		Company:   actor.Company,
		CreatedAt: time.Now(),
		Issues:    []models.Task{},
	}

	if _, err := s.SprintsCollection.InsertOne(ctx, sprint); err != nil {
		return nil, fmt.Errorf("failed to create sprint: %v", err)
	}

	logging.Logger.Infof("Event ID: SPRINT_CREATED, Description: Sprint '%s' created for project %s", sprint.Title, project.ID.Hex())
	return sprint, nil
}

// GetSprints lists the sprints of a project after the tenant check.
func (s *SprintService) GetSprints(ctx context.Context, actor models.Actor, projectID string) ([]models.Sprint, error) {
	projectObjectID, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid or missing projectId", ErrValidation)
	}

	count, err := s.ProjectsCollection.CountDocuments(ctx, bson.M{"_id": projectObjectID, "company": actor.Company})
	if err != nil {
		return nil, fmt.Errorf("failed to check project: %v", err)
	}
	if count == 0 {
		return nil, ErrNotFound
	}

	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := s.SprintsCollection.Find(ctx, bson.M{"project": projectObjectID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sprints: %v", err)
	}
	defer cursor.Close(ctx)

	var sprints []models.Sprint
	if err := cursor.All(ctx, &sprints); err != nil {
		return nil, fmt.Errorf("failed to decode sprints: %v", err)
	}
	if sprints == nil {
		sprints = []models.Sprint{}
	}

	for i := range sprints {
		issues, err := s.issuesOf(ctx, sprints[i].ID)
		if err != nil {
			return nil, err
		}
		sprints[i].Issues = issues
	}

	return sprints, nil
}

func (s *SprintService) GetSprintByID(ctx context.Context, actor models.Actor, sprintID string) (*models.Sprint, error) {
	sprint, err := s.findTenantSprint(ctx, actor, sprintID)
	if err != nil {
		return nil, err
	}

	issues, err := s.issuesOf(ctx, sprint.ID)
	if err != nil {
		return nil, err
	}
	sprint.Issues = issues

	return sprint, nil
}

type UpdateSprintInput struct {
	Title     *string    `json:"title"`
	Goal      *string    `json:"goal"`
	Duration  *int       `json:"duration"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
	Status    *string    `json:"status"`
}

// UpdateSprint edits sprint fields. Status changes are only accepted along
// the forward chain Created → Started → Completed; anything else is
// rejected and leaves the sprint untouched.
func (s *SprintService) UpdateSprint(ctx context.Context, actor models.Actor, sprintID string, input UpdateSprintInput) (*models.Sprint, error) {
	sprint, err := s.findTenantSprint(ctx, actor, sprintID)
	if err != nil {
		return nil, err
	}

	set := bson.M{}

	if input.Status != nil && models.SprintStatus(*input.Status) != sprint.Status {
		next := models.SprintStatus(*input.Status)
		if !next.Valid() {
			return nil, fmt.Errorf("%w: unknown sprint status %q", ErrValidation, *input.Status)
		}
		if !sprint.Status.CanTransitionTo(next) {
			return nil, fmt.Errorf("%w: invalid status transition %s → %s", ErrValidation, sprint.Status, next)
		}
		set["status"] = next
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be blank", ErrValidation)
		}
		set["title"] = title
	}
	if input.Goal != nil {
		set["goal"] = strings.TrimSpace(*input.Goal)
	}
	if input.Duration != nil {
		if *input.Duration < 1 {
			return nil, fmt.Errorf("%w: duration must be at least one week", ErrValidation)
		}
		set["duration"] = *input.Duration
	}
	if input.StartDate != nil {
		set["startDate"] = *input.StartDate
	}
	if input.EndDate != nil {
		set["endDate"] = *input.EndDate
	}

	if len(set) == 0 {
		return s.GetSprintByID(ctx, actor, sprintID)
	}

	if _, err := s.SprintsCollection.UpdateOne(ctx, bson.M{"_id": sprint.ID}, bson.M{"$set": set}); err != nil {
		return nil, fmt.Errorf("failed to update sprint: %v", err)
	}

	return s.GetSprintByID(ctx, actor, sprintID)
}

// DeleteSprint removes a sprint after detaching its member tasks.
func (s *SprintService) DeleteSprint(ctx context.Context, actor models.Actor, sprintID string) error {
	sprint, err := s.findTenantSprint(ctx, actor, sprintID)
	if err != nil {
		return err
	}

	if _, err := s.TasksCollection.UpdateMany(ctx,
		bson.M{"sprint": sprint.ID},
		bson.M{"$unset": bson.M{"sprint": ""}},
	); err != nil {
		return fmt.Errorf("failed to detach sprint tasks: %v", err)
	}

	if _, err := s.SprintsCollection.DeleteOne(ctx, bson.M{"_id": sprint.ID}); err != nil {
		return fmt.Errorf("failed to delete sprint: %v", err)
	}

	logging.Logger.Infof("Event ID: SPRINT_DELETED, Description: Sprint %s deleted", sprint.ID.Hex())
	return nil
}

// AddIssue puts a task into a sprint by setting its sprint reference.
func (s *SprintService) AddIssue(ctx context.Context, actor models.Actor, sprintID, taskID string) (*models.Sprint, error) {
	sprint, err := s.findTenantSprint(ctx, actor, sprintID)
	if err != nil {
		return nil, err
	}

	task, err := s.findTenantTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	if task.Project != sprint.Project {
		return nil, fmt.Errorf("%w: task belongs to a different project", ErrValidation)
	}

	if _, err := s.TasksCollection.UpdateOne(ctx,
		bson.M{"_id": task.ID},
		bson.M{"$set": bson.M{"sprint": sprint.ID}},
	); err != nil {
		return nil, fmt.Errorf("failed to add issue to sprint: %v", err)
	}

	return s.GetSprintByID(ctx, actor, sprintID)
}

// RemoveIssue takes a task out of a sprint by clearing its sprint
// reference.
func (s *SprintService) RemoveIssue(ctx context.Context, actor models.Actor, sprintID, taskID string) (*models.Sprint, error) {
	sprint, err := s.findTenantSprint(ctx, actor, sprintID)
	if err != nil {
		return nil, err
	}

	task, err := s.findTenantTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}

	if _, err := s.TasksCollection.UpdateOne(ctx,
		bson.M{"_id": task.ID, "sprint": sprint.ID},
		bson.M{"$unset": bson.M{"sprint": ""}},
	); err != nil {
		return nil, fmt.Errorf("failed to remove issue from sprint: %v", err)
	}

	return s.GetSprintByID(ctx, actor, sprintID)
}

// issuesOf derives the member tasks of a sprint from Task.sprint.
func (s *SprintService) issuesOf(ctx context.Context, sprintID primitive.ObjectID) ([]models.Task, error) {
	cursor, err := s.TasksCollection.Find(ctx, bson.M{"sprint": sprintID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sprint issues: %v", err)
	}
	defer cursor.Close(ctx)

	var issues []models.Task
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, fmt.Errorf("failed to decode sprint issues: %v", err)
	}
	if issues == nil {
		issues = []models.Task{}
	}

	return issues, nil
}

func (s *SprintService) findTenantSprint(ctx context.Context, actor models.Actor, sprintID string) (*models.Sprint, error) {
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

func (s *SprintService) findTenantTask(ctx context.Context, actor models.Actor, taskID string) (*models.Task, error) {
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

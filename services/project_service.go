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

// ProjectService manages projects and their status vocabulary.
type ProjectService struct {
	ProjectsCollection *mongo.Collection
	TasksCollection    *mongo.Collection
}

func NewProjectService(projectsCollection, tasksCollection *mongo.Collection) *ProjectService {
	return &ProjectService{
		ProjectsCollection: projectsCollection,
		TasksCollection:    tasksCollection,
	}
}

type CreateProjectInput struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Customer    string     `json:"customer"`
	Statuses    []string   `json:"statuses"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
}

func (s *ProjectService) CreateProject(ctx context.Context, actor models.Actor, input CreateProjectInput) (*models.Project, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, fmt.Errorf("%w: project name is required", ErrValidation)
	}

	statuses := models.DefaultStatuses
	if len(input.Statuses) > 0 {
		cleaned, ok := models.NormalizeStatuses(input.Statuses)
		if !ok {
			return nil, fmt.Errorf("%w: statuses must be a non-empty list of distinct non-blank strings", ErrValidation)
		}
		statuses = cleaned
	}

	startDate := time.Now()
	if input.StartDate != nil {
		startDate = *input.StartDate
	}
	if input.EndDate != nil && input.EndDate.Before(startDate) {
		return nil, fmt.Errorf("%w: end date must be after start date", ErrValidation)
	}

	project := &models.Project{
		ID:          primitive.NewObjectID(),
		Name:        input.Name,
		Description: strings.TrimSpace(input.Description),
		Customer:    strings.TrimSpace(input.Customer),
		Company:     actor.Company,
		Statuses:    statuses,
		Attachments: []models.Attachment{},
		IsActive:    true,
		StartDate:   startDate,
		EndDate:     input.EndDate,
		CreatedBy:   actor.ID,
		CreatedAt:   time.Now(),
	}

	if _, err := s.ProjectsCollection.InsertOne(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %v", err)
	}

	logging.Logger.Infof("Event ID: PROJECT_CREATED, Description: Project '%s' created in company %s", project.Name, actor.Company.Hex())
	return project, nil
}

// GetProjects lists the projects visible to the actor. Admins see every
// project of their company; employees only the projects in which they hold
// at least one assigned task.
func (s *ProjectService) GetProjects(ctx context.Context, actor models.Actor) ([]models.Project, error) {
	filter := bson.M{"company": actor.Company}

	if !actor.IsAdmin() {
		projectIDs, err := s.TasksCollection.Distinct(ctx, "project", bson.M{
			"assignee": actor.ID,
			"company":  actor.Company,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to resolve assigned projects: %v", err)
		}
		if len(projectIDs) == 0 {
			return []models.Project{}, nil
		}
		filter["_id"] = bson.M{"$in": projectIDs}
	}

	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := s.ProjectsCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch projects: %v", err)
	}
	defer cursor.Close(ctx)

	var projects []models.Project
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, fmt.Errorf("failed to decode projects: %v", err)
	}
	if projects == nil {
		projects = []models.Project{}
	}

	return projects, nil
}

// GetProjectByID returns a project after the tenant check. Employees must
// additionally hold a task in the project.
func (s *ProjectService) GetProjectByID(ctx context.Context, actor models.Actor, projectID string) (*models.Project, error) {
	project, err := s.findTenantProject(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() {
		count, err := s.TasksCollection.CountDocuments(ctx, bson.M{
			"project":  project.ID,
			"assignee": actor.ID,
			"company":  actor.Company,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to check task assignment: %v", err)
		}
		if count == 0 {
			return nil, fmt.Errorf("%w: no tasks assigned in this project", ErrForbidden)
		}
	}

	return project, nil
}

// UpdateStatuses replaces the status vocabulary and then repairs every task
// whose status fell out of the new list by moving it to the first entry.
// Tasks are silently repaired rather than rejected so boards never hold
// tasks with an unknown status.
func (s *ProjectService) UpdateStatuses(ctx context.Context, actor models.Actor, projectID string, statuses []string) (*models.Project, error) {
	project, err := s.findTenantProject(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}

	cleaned, ok := models.NormalizeStatuses(statuses)
	if !ok {
		return nil, fmt.Errorf("%w: statuses must be a non-empty list of distinct non-blank strings", ErrValidation)
	}

	if _, err := s.ProjectsCollection.UpdateOne(ctx,
		bson.M{"_id": project.ID},
		bson.M{"$set": bson.M{"statuses": cleaned}},
	); err != nil {
		return nil, fmt.Errorf("failed to update statuses: %v", err)
	}

	repair, err := s.TasksCollection.UpdateMany(ctx,
		bson.M{"project": project.ID, "status": bson.M{"$nin": cleaned}},
		bson.M{"$set": bson.M{"status": cleaned[0]}},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to repair task statuses: %v", err)
	}
	if repair.ModifiedCount > 0 {
		logging.Logger.Infof("Event ID: TASK_STATUS_REPAIRED, Description: %d task(s) in project %s moved to status '%s' after vocabulary change", repair.ModifiedCount, project.ID.Hex(), cleaned[0])
	}

	project.Statuses = cleaned
	return project, nil
}

// AddAttachment records uploaded file metadata against the project.
func (s *ProjectService) AddAttachment(ctx context.Context, actor models.Actor, projectID string, attachment models.Attachment) (*models.Attachment, error) {
	project, err := s.findTenantProject(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}

	attachment.UploadedBy = actor.ID
	attachment.UploadedAt = time.Now()
	attachment.URL = fmt.Sprintf("/api/projects/%s/attachments/%s", project.ID.Hex(), attachment.StoredFilename)

	if _, err := s.ProjectsCollection.UpdateOne(ctx,
		bson.M{"_id": project.ID},
		bson.M{"$push": bson.M{"attachments": attachment}},
	); err != nil {
		return nil, fmt.Errorf("failed to save attachment: %v", err)
	}

	return &attachment, nil
}

// GetAttachments lists the attachment metadata of a project.
func (s *ProjectService) GetAttachments(ctx context.Context, actor models.Actor, projectID string) ([]models.Attachment, error) {
	project, err := s.findTenantProject(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	if project.Attachments == nil {
		return []models.Attachment{}, nil
	}
	return project.Attachments, nil
}

// FindAttachment resolves a stored filename for download.
func (s *ProjectService) FindAttachment(ctx context.Context, actor models.Actor, projectID, storedFilename string) (*models.Attachment, error) {
	project, err := s.findTenantProject(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	for i := range project.Attachments {
		if project.Attachments[i].StoredFilename == storedFilename {
			return &project.Attachments[i], nil
		}
	}
	return nil, ErrNotFound
}

// RemoveAttachment drops attachment metadata; the handler removes the file.
func (s *ProjectService) RemoveAttachment(ctx context.Context, actor models.Actor, projectID, storedFilename string) (*models.Attachment, error) {
	attachment, err := s.FindAttachment(ctx, actor, projectID, storedFilename)
	if err != nil {
		return nil, err
	}

	projectObjectID, _ := primitive.ObjectIDFromHex(projectID)
	if _, err := s.ProjectsCollection.UpdateOne(ctx,
		bson.M{"_id": projectObjectID},
		bson.M{"$pull": bson.M{"attachments": bson.M{"storedFilename": storedFilename}}},
	); err != nil {
		return nil, fmt.Errorf("failed to remove attachment: %v", err)
	}

	return attachment, nil
}

// findTenantProject fetches a project and enforces the tenant boundary.
// A project from another company is reported as absent, not forbidden.
func (s *ProjectService) findTenantProject(ctx context.Context, actor models.Actor, projectID string) (*models.Project, error) {
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

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

	"github.com/123jagadeesh/ProFlow/models"
)

// PersonalTaskService is a closed CRUD loop over per-user to-do items.
// Every mutation re-checks ownership; a foreign task id is answered as
// absent.
type PersonalTaskService struct {
	PersonalTasksCollection *mongo.Collection
}

func NewPersonalTaskService(personalTasksCollection *mongo.Collection) *PersonalTaskService {
	return &PersonalTaskService{PersonalTasksCollection: personalTasksCollection}
}

type PersonalTaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
}

func (s *PersonalTaskService) Create(ctx context.Context, actor models.Actor, input PersonalTaskInput) (*models.PersonalTask, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	priority := models.TaskPriority(input.Priority)
	if input.Priority == "" {
		priority = models.PriorityLow
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("%w: invalid priority %q", ErrValidation, input.Priority)
	}

	status := models.PersonalTaskStatus(input.Status)
	if input.Status == "" {
		status = models.PersonalTodo
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, input.Status)
	}

	task := &models.PersonalTask{
		ID:          primitive.NewObjectID(),
		Title:       input.Title,
		Description: strings.TrimSpace(input.Description),
		Priority:    priority,
		Status:      status,
		User:        actor.ID,
		Company:     actor.Company,
		CreatedAt:   time.Now(),
	}

	if _, err := s.PersonalTasksCollection.InsertOne(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create personal task: %v", err)
	}

	return task, nil
}

func (s *PersonalTaskService) List(ctx context.Context, actor models.Actor) ([]models.PersonalTask, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := s.PersonalTasksCollection.Find(ctx, bson.M{"user": actor.ID, "company": actor.Company}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch personal tasks: %v", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.PersonalTask
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode personal tasks: %v", err)
	}
	if tasks == nil {
		tasks = []models.PersonalTask{}
	}

	return tasks, nil
}

func (s *PersonalTaskService) Get(ctx context.Context, actor models.Actor, taskID string) (*models.PersonalTask, error) {
	return s.findOwned(ctx, actor, taskID)
}

func (s *PersonalTaskService) Update(ctx context.Context, actor models.Actor, taskID string, input PersonalTaskInput) (*models.PersonalTask, error) {
	task, err := s.findOwned(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if title := strings.TrimSpace(input.Title); title != "" {
		set["title"] = title
		task.Title = title
	}
	if input.Description != "" {
		set["description"] = strings.TrimSpace(input.Description)
		task.Description = strings.TrimSpace(input.Description)
	}
	if input.Priority != "" {
		priority := models.TaskPriority(input.Priority)
		if !priority.Valid() {
			return nil, fmt.Errorf("%w: invalid priority %q", ErrValidation, input.Priority)
		}
		set["priority"] = priority
		task.Priority = priority
	}
	if input.Status != "" {
		status := models.PersonalTaskStatus(input.Status)
		if !status.Valid() {
			return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, input.Status)
		}
		set["status"] = status
		task.Status = status
	}

	if len(set) == 0 {
		return task, nil
	}

	if _, err := s.PersonalTasksCollection.UpdateOne(ctx, bson.M{"_id": task.ID}, bson.M{"$set": set}); err != nil {
		return nil, fmt.Errorf("failed to update personal task: %v", err)
	}

	return task, nil
}

func (s *PersonalTaskService) Delete(ctx context.Context, actor models.Actor, taskID string) error {
	task, err := s.findOwned(ctx, actor, taskID)
	if err != nil {
		return err
	}

	if _, err := s.PersonalTasksCollection.DeleteOne(ctx, bson.M{"_id": task.ID}); err != nil {
		return fmt.Errorf("failed to delete personal task: %v", err)
	}

	return nil
}

func (s *PersonalTaskService) findOwned(ctx context.Context, actor models.Actor, taskID string) (*models.PersonalTask, error) {
	objectID, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid task ID format", ErrValidation)
	}

	var task models.PersonalTask
	if err := s.PersonalTasksCollection.FindOne(ctx, bson.M{
		"_id":     objectID,
		"user":    actor.ID,
		"company": actor.Company,
	}).Decode(&task); err != nil {
		return nil, ErrNotFound
	}

	return &task, nil
}

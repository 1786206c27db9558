package services

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/123jagadeesh/ProFlow/logging"
	"github.com/123jagadeesh/ProFlow/models"
	"github.com/123jagadeesh/ProFlow/utils"
)

// EmployeeService invites and lists the users of a tenant.
type EmployeeService struct {
	UsersCollection *mongo.Collection
	MailBreaker     *gobreaker.CircuitBreaker
	SendMail        func(to, subject, body string) error
}

func NewEmployeeService(usersCollection *mongo.Collection, mailBreaker *gobreaker.CircuitBreaker) *EmployeeService {
	return &EmployeeService{
		UsersCollection: usersCollection,
		MailBreaker:     mailBreaker,
		SendMail:        utils.SendEmail,
	}
}

type InviteEmployeeInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateEmployee registers an employee in the admin's company. When no
// password is supplied one is generated and mailed to the new employee.
func (s *EmployeeService) CreateEmployee(ctx context.Context, actor models.Actor, input InviteEmployeeInput) (*models.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if input.Name == "" || input.Email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrValidation)
	}

	var existing models.User
	if err := s.UsersCollection.FindOne(ctx, bson.M{"email": input.Email}).Decode(&existing); err == nil {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	generated := false
	if input.Password == "" {
		input.Password = utils.GenerateRandomPassword()
		generated = true
	}
	if err := utils.ValidatePassword(input.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	employee := &models.User{
		ID:       primitive.NewObjectID(),
		Name:     html.EscapeString(input.Name),
		Email:    input.Email,
		Password: hashed,
		Role:     models.RoleEmployee,
		Company:  actor.Company,
	}
	if _, err := s.UsersCollection.InsertOne(ctx, employee); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, fmt.Errorf("failed to create employee: %v", err)
	}

	if generated {
		body := fmt.Sprintf("Hello %s,<br><br>An account was created for you on ProFlow. Your temporary password is <b>%s</b>. Please change it after signing in.", employee.Name, input.Password)
		if err := s.mail(employee.Email, "Welcome to ProFlow", body); err != nil {
			// The account exists either way; the admin can resend credentials.
			logging.Logger.Warnf("Event ID: INVITE_MAIL_FAILED, Description: Could not send invite mail to %s: %v", employee.Email, err)
		}
	}

	logging.Logger.Infof("Event ID: EMPLOYEE_CREATED, Description: Employee %s invited into company %s", employee.Email, actor.Company.Hex())

	employee.Password = ""
	return employee, nil
}

func (s *EmployeeService) mail(to, subject, body string) error {
	_, err := s.MailBreaker.Execute(func() (interface{}, error) {
		return nil, s.SendMail(to, subject, body)
	})
	return err
}

// GetEmployees lists the employees of the actor's company, passwords
// blanked.
func (s *EmployeeService) GetEmployees(ctx context.Context, actor models.Actor) ([]models.User, error) {
	filter := bson.M{"company": actor.Company, "role": models.RoleEmployee}
	opts := options.Find().SetSort(bson.M{"name": 1})

	cursor, err := s.UsersCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch employees: %v", err)
	}
	defer cursor.Close(ctx)

	var employees []models.User
	if err := cursor.All(ctx, &employees); err != nil {
		return nil, fmt.Errorf("failed to decode employees: %v", err)
	}

	for i := range employees {
		employees[i].Password = ""
	}

	return employees, nil
}

// GetUserInCompany fetches a user and confirms tenant membership; a user
// from another company is reported as absent.
func (s *EmployeeService) GetUserInCompany(ctx context.Context, actor models.Actor, userID primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := s.UsersCollection.FindOne(ctx, bson.M{"_id": userID, "company": actor.Company}).Decode(&user); err != nil {
		return nil, ErrNotFound
	}
	user.Password = ""
	return &user, nil
}

package services

import (
	"context"
	"fmt"
	"html"
	"os"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/123jagadeesh/ProFlow/logging"
	"github.com/123jagadeesh/ProFlow/models"
	"github.com/123jagadeesh/ProFlow/utils"
)

// AuthService owns signup, signin, and the password reset flow.
type AuthService struct {
	UsersCollection     *mongo.Collection
	CompaniesCollection *mongo.Collection
	MailBreaker         *gobreaker.CircuitBreaker
	SendMail            func(to, subject, body string) error
}

func NewAuthService(usersCollection, companiesCollection *mongo.Collection, mailBreaker *gobreaker.CircuitBreaker) *AuthService {
	return &AuthService{
		UsersCollection:     usersCollection,
		CompaniesCollection: companiesCollection,
		MailBreaker:         mailBreaker,
		SendMail:            utils.SendEmail,
	}
}

func (s *AuthService) sendMail(to, subject, body string) error {
	_, err := s.MailBreaker.Execute(func() (interface{}, error) {
		return nil, s.SendMail(to, subject, body)
	})
	return err
}

// AdminSignupInput collects everything needed to create a company with its
// first admin in one step.
type AdminSignupInput struct {
	CompanyName string `json:"companyName"`
	Location    string `json:"location"`
	Industry    string `json:"industry"`
	AdminName   string `json:"adminName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

// RegisterCompany creates a tenant and its admin user.
func (s *AuthService) RegisterCompany(ctx context.Context, input AdminSignupInput) (*models.Company, *models.User, error) {
	input.CompanyName = strings.TrimSpace(input.CompanyName)
	input.AdminName = strings.TrimSpace(input.AdminName)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if input.CompanyName == "" || input.AdminName == "" || input.Email == "" {
		return nil, nil, fmt.Errorf("%w: company name, admin name and email are required", ErrValidation)
	}
	if err := utils.ValidatePassword(input.Password); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var existing models.User
	if err := s.UsersCollection.FindOne(ctx, bson.M{"email": input.Email}).Decode(&existing); err == nil {
		return nil, nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	company := &models.Company{
		ID:         primitive.NewObjectID(),
		Name:       html.EscapeString(input.CompanyName),
		Location:   html.EscapeString(strings.TrimSpace(input.Location)),
		Industry:   html.EscapeString(strings.TrimSpace(input.Industry)),
		AdminName:  html.EscapeString(input.AdminName),
		AdminEmail: input.Email,
		CreatedAt:  time.Now(),
	}
	if _, err := s.CompaniesCollection.InsertOne(ctx, company); err != nil {
		return nil, nil, fmt.Errorf("failed to create company: %v", err)
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, nil, err
	}

	admin := &models.User{
		ID:       primitive.NewObjectID(),
		Name:     company.AdminName,
		Email:    input.Email,
		Password: hashed,
		Role:     models.RoleAdmin,
		Company:  company.ID,
	}
	if _, err := s.UsersCollection.InsertOne(ctx, admin); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, nil, fmt.Errorf("failed to create admin user: %v", err)
	}

	logging.Logger.Infof("Event ID: COMPANY_REGISTERED, Description: Company '%s' registered with admin %s", company.Name, admin.Email)

	admin.Password = ""
	return company, admin, nil
}

// Login checks credentials and issues a bearer token carrying
// {id, role, company}.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := s.UsersCollection.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if !utils.CheckPassword(user.Password, password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(user.ID.Hex(), string(user.Role), user.Company.Hex())
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %v", err)
	}

	user.Password = ""
	return &user, token, nil
}

// ForgotPassword emails a reset link when the address is known. It answers
// identically for unknown addresses so the endpoint cannot be used to probe
// which emails are registered.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}

	var user models.User
	if err := s.UsersCollection.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		logging.Logger.Infof("Event ID: PASSWORD_RESET_UNKNOWN_EMAIL, Description: Reset requested for unknown address")
		return nil
	}

	token, err := utils.GenerateResetToken(user.Email)
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %v", err)
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(os.Getenv("APP_BASE_URL"), "/"), token)
	body := fmt.Sprintf("Hello %s,<br><br>You requested a password reset. The link below is valid for one hour:<br><a href=\"%s\">%s</a>", user.Name, resetLink, resetLink)

	if err := s.sendMail(user.Email, "ProFlow password reset", body); err != nil {
		return fmt.Errorf("failed to send password reset email: %v", err)
	}

	logging.Logger.Infof("Event ID: PASSWORD_RESET_SENT, Description: Password reset link sent to %s", user.Email)
	return nil
}

// ResetPassword validates a reset token and stores the new password.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	claims, err := utils.ValidateResetToken(token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := utils.ValidatePassword(password); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	result, err := s.UsersCollection.UpdateOne(ctx,
		bson.M{"email": claims.Email},
		bson.M{"$set": bson.M{"password": hashed}},
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %v", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}

	logging.Logger.Infof("Event ID: PASSWORD_RESET_DONE, Description: Password reset completed for %s", claims.Email)
	return nil
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/123jagadeesh/ProFlow/handlers"
	"github.com/123jagadeesh/ProFlow/logging"
	"github.com/123jagadeesh/ProFlow/middleware"
	"github.com/123jagadeesh/ProFlow/services"
)

func main() {
	logging.InitLogger()
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting ProFlow server...")

	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("Event ID: ENV_LOAD_WARNING, Description: No .env file loaded: %v", err)
	}

	mongoURI := os.Getenv("MONGO_URI")
	mongoDBName := os.Getenv("MONGO_DB_NAME")
	if mongoURI == "" || mongoDBName == "" {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: MONGO_URI and MONGO_DB_NAME must be set")
	}
	if os.Getenv("JWT_SECRET") == "" {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: JWT_SECRET must be set")
	}

	uploadsDir := os.Getenv("UPLOADS_DIR")
	if uploadsDir == "" {
		uploadsDir = "uploads"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	defer client.Disconnect(context.Background())

	if err := client.Ping(ctx, nil); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", mongoURI)

	db := client.Database(mongoDBName)
	companiesCollection := db.Collection("companies")
	usersCollection := db.Collection("users")

	// The duplicate-email check in the services is check-then-insert; the
	// unique index closes the race between two concurrent signups.
	if _, err := usersCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		logging.Logger.Fatalf("Event ID: DB_INDEX_FAILED, Description: Could not ensure unique email index: %v", err)
	}

	projectsCollection := db.Collection("projects")
	tasksCollection := db.Collection("tasks")
	sprintsCollection := db.Collection("sprints")
	personalTasksCollection := db.Collection("personaltasks")

	mailBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "smtp-cb",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})

	authService := services.NewAuthService(usersCollection, companiesCollection, mailBreaker)
	employeeService := services.NewEmployeeService(usersCollection, mailBreaker)
	projectService := services.NewProjectService(projectsCollection, tasksCollection)
	taskService := services.NewTaskService(tasksCollection, projectsCollection, usersCollection, sprintsCollection)
	sprintService := services.NewSprintService(sprintsCollection, tasksCollection, projectsCollection)
	personalTaskService := services.NewPersonalTaskService(personalTasksCollection)

	authHandler := handlers.NewAuthHandler(authService)
	employeeHandler := handlers.NewEmployeeHandler(employeeService)
	projectHandler := handlers.NewProjectHandler(projectService, uploadsDir)
	taskHandler := handlers.NewTaskHandler(taskService, uploadsDir)
	sprintHandler := handlers.NewSprintHandler(sprintService)
	personalTaskHandler := handlers.NewPersonalTaskHandler(personalTaskService)

	r := mux.NewRouter()

	// Public auth routes
	r.HandleFunc("/api/auth/admin-signup", authHandler.AdminSignup).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/signin", authHandler.SignIn).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/forgot-password", authHandler.ForgotPassword).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/reset-password", authHandler.ResetPassword).Methods(http.MethodPost)

	// Everything below requires a valid bearer token
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.JWTAuthMiddleware)

	api.HandleFunc("/employees", employeeHandler.CreateEmployee).Methods(http.MethodPost)
	api.HandleFunc("/employees", employeeHandler.GetEmployees).Methods(http.MethodGet)
	api.HandleFunc("/employees/{id}", employeeHandler.GetEmployee).Methods(http.MethodGet)

	api.HandleFunc("/projects", projectHandler.CreateProject).Methods(http.MethodPost)
	api.HandleFunc("/projects", projectHandler.GetProjects).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id}", projectHandler.GetProjectByID).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id}/statuses", projectHandler.UpdateStatuses).Methods(http.MethodPut)
	api.HandleFunc("/projects/{id}/attachments", projectHandler.UploadAttachment).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id}/attachments", projectHandler.GetAttachments).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id}/attachments/{filename}", projectHandler.DownloadAttachment).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id}/attachments/{filename}", projectHandler.DeleteAttachment).Methods(http.MethodDelete)

	api.HandleFunc("/tasks", taskHandler.CreateTask).Methods(http.MethodPost)
	api.HandleFunc("/tasks", taskHandler.GetTasks).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id}", taskHandler.GetTaskByID).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id}", taskHandler.UpdateTask).Methods(http.MethodPut)
	api.HandleFunc("/tasks/{id}", taskHandler.DeleteTask).Methods(http.MethodDelete)
	api.HandleFunc("/tasks/{id}/status", taskHandler.ChangeStatus).Methods(http.MethodPut)
	api.HandleFunc("/tasks/{id}/comments", taskHandler.AddComment).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{id}/attachments", taskHandler.UploadAttachment).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{id}/attachments/{filename}", taskHandler.DownloadAttachment).Methods(http.MethodGet)

	api.HandleFunc("/sprints", sprintHandler.CreateSprint).Methods(http.MethodPost)
	api.HandleFunc("/sprints", sprintHandler.GetSprints).Methods(http.MethodGet)
	api.HandleFunc("/sprints/add-issue", sprintHandler.AddIssue).Methods(http.MethodPost)
	api.HandleFunc("/sprints/remove-issue", sprintHandler.RemoveIssue).Methods(http.MethodPost)
	api.HandleFunc("/sprints/{id}", sprintHandler.GetSprintByID).Methods(http.MethodGet)
	api.HandleFunc("/sprints/{id}", sprintHandler.UpdateSprint).Methods(http.MethodPut)
	api.HandleFunc("/sprints/{id}", sprintHandler.DeleteSprint).Methods(http.MethodDelete)

	api.HandleFunc("/personal-tasks", personalTaskHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/personal-tasks", personalTaskHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/personal-tasks/{id}", personalTaskHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/personal-tasks/{id}", personalTaskHandler.Update).Methods(http.MethodPut)
	api.HandleFunc("/personal-tasks/{id}", personalTaskHandler.Delete).Methods(http.MethodDelete)

	corsRouter := middleware.EnableCORS(r)

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "5000"
	}

	serverAddress := fmt.Sprintf(":%s", serverPort)
	logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", serverAddress)

	if err := http.ListenAndServe(serverAddress, corsRouter); err != nil {
		logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
	}
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/viratpk18/Employee-Task-Manager-BE/handlers"
	"github.com/viratpk18/Employee-Task-Manager-BE/logging"
	"github.com/viratpk18/Employee-Task-Manager-BE/middleware"
	"github.com/viratpk18/Employee-Task-Manager-BE/services"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	logging.InitLogger()

	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Task Manager service...")
	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("Event ID: ENV_LOAD_WARNING, Description: No .env file loaded: %v", err)
	}

	mongoURI := os.Getenv("MONGO_URI")
	mongoDBName := os.Getenv("MONGO_DB_NAME")
	if mongoURI == "" || mongoDBName == "" {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: MONGO_URI and MONGO_DB_NAME must be set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	defer client.Disconnect(ctx)

	if err := client.Ping(ctx, nil); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", mongoURI)

	db := client.Database(mongoDBName)
	usersCollection := db.Collection("users")
	employeesCollection := db.Collection("employees")
	tasksCollection := db.Collection("tasks")
	countersCollection := db.Collection("counters")

	notificationsBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "notifications-cb",
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' state changed from %s to %s", name, from.String(), to.String())
		},
	})

	notificationService := services.NewNotificationService(notificationsBreaker)
	taskService := services.NewTaskService(tasksCollection, usersCollection, employeesCollection, notificationService)
	employeeService := services.NewEmployeeService(usersCollection, employeesCollection, tasksCollection, countersCollection)
	authService := services.NewAuthService(usersCollection)

	taskHandler := handlers.NewTaskHandler(taskService)
	employeeHandler := handlers.NewEmployeeHandler(employeeService)
	authHandler := handlers.NewAuthHandler(authService)

	r := mux.NewRouter()
	r.HandleFunc("/api/login", authHandler.Login).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.JWTAuthMiddleware)

	// Static task routes are registered before the {id} routes so mux does
	// not treat "stats" or "calendar" as a task ID.
	api.HandleFunc("/tasks/stats/overview", taskHandler.GetTaskStats).Methods(http.MethodGet)
	api.HandleFunc("/tasks/calendar/view", taskHandler.GetCalendarTasks).Methods(http.MethodGet)
	api.HandleFunc("/tasks", taskHandler.ListTasks).Methods(http.MethodGet)
	api.HandleFunc("/tasks", taskHandler.CreateTask).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{id}", taskHandler.GetTask).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id}", taskHandler.UpdateTask).Methods(http.MethodPut)
	api.HandleFunc("/tasks/{id}", taskHandler.DeleteTask).Methods(http.MethodDelete)
	api.HandleFunc("/tasks/{id}/comments", taskHandler.AddComment).Methods(http.MethodPost)

	api.HandleFunc("/employees/stats/overview", employeeHandler.GetEmployeeStats).Methods(http.MethodGet)
	api.HandleFunc("/employees", employeeHandler.ListEmployees).Methods(http.MethodGet)
	api.HandleFunc("/employees", employeeHandler.CreateEmployee).Methods(http.MethodPost)
	api.HandleFunc("/employees/{id}", employeeHandler.GetEmployee).Methods(http.MethodGet)
	api.HandleFunc("/employees/{id}", employeeHandler.UpdateEmployee).Methods(http.MethodPut)
	api.HandleFunc("/employees/{id}", employeeHandler.DeleteEmployee).Methods(http.MethodDelete)

	corsRouter := enableCORS(r)

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: SERVER_PORT is not set in the environment variables.")
	}

	serverAddress := fmt.Sprintf(":%s", serverPort)
	logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", serverAddress)

	if err := http.ListenAndServe(serverAddress, corsRouter); err != nil {
		logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
	}
}

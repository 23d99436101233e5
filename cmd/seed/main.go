// Command seed fills the database with fake employees and tasks for local
// development.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"sync/atomic"
	"time"

	"github.com/viratpk18/Employee-Task-Manager-BE/models"
	"github.com/viratpk18/Employee-Task-Manager-BE/services"
	"github.com/viratpk18/Employee-Task-Manager-BE/utils"

	"github.com/brianvoe/gofakeit"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

var departments = []string{"Engineering", "Sales", "Marketing", "Support", "Finance", "HR"}

var priorities = []string{"low", "medium", "high", "urgent"}

func main() {
	employees := flag.Int("employees", 20, "number of employees to create")
	tasksPer := flag.Int("tasks", 5, "number of tasks per employee")
	flag.Parse()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	mongoURI := os.Getenv("MONGO_URI")
	mongoDBName := os.Getenv("MONGO_DB_NAME")
	if mongoURI == "" || mongoDBName == "" {
		log.Fatal("MONGO_URI and MONGO_DB_NAME must be set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(mongoDBName)
	usersCollection := db.Collection("users")
	employeesCollection := db.Collection("employees")
	tasksCollection := db.Collection("tasks")
	countersCollection := db.Collection("counters")

	employeeService := services.NewEmployeeService(usersCollection, employeesCollection, tasksCollection, countersCollection)
	taskService := services.NewTaskService(tasksCollection, usersCollection, employeesCollection, nil)

	adminID, err := ensureAdmin(ctx, usersCollection)
	if err != nil {
		log.Fatalf("failed to ensure admin user: %v", err)
	}

	gofakeit.Seed(time.Now().UnixNano())

	var created atomic.Int64
	wg := errgroup.Group{}
	wg.SetLimit(8)

	for i := 0; i < *employees; i++ {
		wg.Go(func() error {
			detail, err := employeeService.CreateEmployee(ctx, fakeEmployee())
			if err != nil {
				// Fake emails can collide; skip duplicates instead of aborting.
				var verr *services.ValidationError
				if errors.As(err, &verr) {
					return nil
				}
				return err
			}

			for j := 0; j < *tasksPer; j++ {
				if _, err := taskService.CreateTask(ctx, adminID, fakeTask(detail.User.ID)); err != nil {
					return err
				}
				created.Add(1)
			}
			return nil
		})
	}

	if err := wg.Wait(); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}

	log.Printf("seeded %d tasks for up to %d employees (admin login: admin@example.com / Admin1234!)", created.Load(), *employees)
}

// ensureAdmin creates the bootstrap admin account once.
func ensureAdmin(ctx context.Context, users *mongo.Collection) (primitive.ObjectID, error) {
	var existing models.User
	err := users.FindOne(ctx, bson.M{"email": "admin@example.com"}).Decode(&existing)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return primitive.NilObjectID, err
	}

	hashed, err := utils.HashPassword("Admin1234!")
	if err != nil {
		return primitive.NilObjectID, err
	}

	admin := models.User{
		ID:         primitive.NewObjectID(),
		Name:       "Administrator",
		Email:      "admin@example.com",
		Password:   hashed,
		Role:       models.RoleAdmin,
		Department: "Management",
		IsActive:   true,
		CreatedAt:  time.Now(),
	}
	if _, err := users.InsertOne(ctx, admin); err != nil {
		return primitive.NilObjectID, err
	}
	return admin.ID, nil
}

func fakeEmployee() services.CreateEmployeeInput {
	return services.CreateEmployeeInput{
		Name:       gofakeit.Name(),
		Email:      fmt.Sprintf("%s.%s@example.com", gofakeit.Username(), gofakeit.Numerify("####")),
		Password:   "Password1234!",
		Department: gofakeit.RandString(departments),
		Position:   gofakeit.JobTitle(),
		Phone:      gofakeit.Phone(),
		Address:    gofakeit.Address().Address,
		Skills:     []string{gofakeit.HackerAbbreviation(), gofakeit.ProgrammingLanguage()},
	}
}

func fakeTask(assignedTo primitive.ObjectID) services.CreateTaskInput {
	now := time.Now()
	return services.CreateTaskInput{
		Title:       gofakeit.HackerVerb() + " " + gofakeit.HackerNoun(),
		Description: gofakeit.HackerPhrase(),
		AssignedTo:  assignedTo,
		Priority:    models.TaskPriority(gofakeit.RandString(priorities)),
		Deadline:    gofakeit.DateRange(now.AddDate(0, 0, -3), now.AddDate(0, 1, 0)),
		Tags:        []string{gofakeit.BuzzWord()},
	}
}

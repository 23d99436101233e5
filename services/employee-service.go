package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/viratpk18/Employee-Task-Manager-BE/logging"
	"github.com/viratpk18/Employee-Task-Manager-BE/models"
	"github.com/viratpk18/Employee-Task-Manager-BE/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const employeeIDCounter = "employeeId"

type EmployeeService struct {
	usersCollection     *mongo.Collection
	employeesCollection *mongo.Collection
	tasksCollection     *mongo.Collection
	countersCollection  *mongo.Collection
}

func NewEmployeeService(users, employees, tasks, counters *mongo.Collection) *EmployeeService {
	return &EmployeeService{
		usersCollection:     users,
		employeesCollection: employees,
		tasksCollection:     tasks,
		countersCollection:  counters,
	}
}

// formatEmployeeID renders a sequence number as the human-readable code.
func formatEmployeeID(seq int64) string {
	return fmt.Sprintf("EMP%04d", seq)
}

// nextEmployeeID atomically increments the counter document and returns the
// resulting code. The single-document $inc is what keeps concurrently created
// employees from ever sharing an ID.
func (s *EmployeeService) nextEmployeeID(ctx context.Context) (string, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.countersCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": employeeIDCounter},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return "", fmt.Errorf("failed to advance employee ID counter: %v", err)
	}

	return formatEmployeeID(counter.Seq), nil
}

// EmployeeFilters are the optional list-query parameters.
type EmployeeFilters struct {
	Search     string
	Department string
	Page       int
	Limit      int
}

func buildEmployeeListFilter(f EmployeeFilters) bson.M {
	filter := bson.M{"role": models.RoleEmployee}

	if f.Department != "" {
		filter["department"] = f.Department
	}
	if f.Search != "" {
		regex := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": regex},
			bson.M{"email": regex},
		}
	}

	return filter
}

// EmployeeListItem is one row of the employee list: user fields joined with
// the profile and task counts.
type EmployeeListItem struct {
	models.User
	EmployeeID     string `json:"employeeId"`
	Position       string `json:"position"`
	TotalTasks     int64  `json:"totalTasks"`
	CompletedTasks int64  `json:"completedTasks"`
}

// EmployeePage is one page of the employee list plus pagination metadata.
type EmployeePage struct {
	Employees   []EmployeeListItem
	Total       int64
	Pages       int
	CurrentPage int
}

func (s *EmployeeService) ListEmployees(ctx context.Context, f EmployeeFilters) (*EmployeePage, error) {
	filter := buildEmployeeListFilter(f)
	page, limit := normalizePaging(f.Page, f.Limit)

	total, err := s.usersCollection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count employees: %v", err)
	}

	opts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := s.usersCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve employees: %v", err)
	}
	defer cursor.Close(ctx)

	items := []EmployeeListItem{}
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, fmt.Errorf("failed to decode user: %v", err)
		}

		item := EmployeeListItem{User: user}

		var profile models.Employee
		err := s.employeesCollection.FindOne(ctx, bson.M{"userId": user.ID}).Decode(&profile)
		if err == nil {
			item.EmployeeID = profile.EmployeeID
			item.Position = profile.Position
		} else if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("failed to retrieve employee profile: %v", err)
		}

		item.TotalTasks, err = s.tasksCollection.CountDocuments(ctx, bson.M{"assignedTo": user.ID})
		if err != nil {
			return nil, fmt.Errorf("failed to count tasks for %s: %v", user.ID.Hex(), err)
		}
		item.CompletedTasks, err = s.tasksCollection.CountDocuments(ctx, bson.M{"assignedTo": user.ID, "status": models.StatusCompleted})
		if err != nil {
			return nil, fmt.Errorf("failed to count completed tasks for %s: %v", user.ID.Hex(), err)
		}

		items = append(items, item)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}

	return &EmployeePage{
		Employees:   items,
		Total:       total,
		Pages:       pageCount(total, limit),
		CurrentPage: page,
	}, nil
}

// EmployeeTask is a task row with its assignor expanded, as returned inside
// the employee detail.
type EmployeeTask struct {
	models.Task
	AssignedBy *models.UserSummary `json:"assignedBy"`
}

// EmployeeDetail is the full employee view: user, profile, and task history.
type EmployeeDetail struct {
	User    models.User      `json:"user"`
	Profile *models.Employee `json:"profile"`
	Tasks   []EmployeeTask   `json:"tasks"`
}

func (s *EmployeeService) GetEmployee(ctx context.Context, userID primitive.ObjectID) (*EmployeeDetail, error) {
	var user models.User
	if err := s.usersCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve user: %v", err)
	}

	detail := &EmployeeDetail{User: user, Tasks: []EmployeeTask{}}

	var profile models.Employee
	err := s.employeesCollection.FindOne(ctx, bson.M{"userId": userID}).Decode(&profile)
	if err == nil {
		detail.Profile = &profile
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to retrieve employee profile: %v", err)
	}

	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := s.tasksCollection.Find(ctx, bson.M{"assignedTo": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %v", err)
	}
	defer cursor.Close(ctx)

	// Assignors repeat across tasks, so summaries are fetched once each.
	assigners := map[primitive.ObjectID]*models.UserSummary{}
	now := time.Now()
	for cursor.Next(ctx) {
		var task models.Task
		if err := cursor.Decode(&task); err != nil {
			return nil, fmt.Errorf("failed to decode task: %v", err)
		}
		task.SetOverdue(now)

		assigner, cached := assigners[task.AssignedBy]
		if !cached {
			var summary models.UserSummary
			err := s.usersCollection.FindOne(ctx, bson.M{"_id": task.AssignedBy}).Decode(&summary)
			if err == nil {
				assigner = &summary
			} else if !errors.Is(err, mongo.ErrNoDocuments) {
				return nil, fmt.Errorf("failed to retrieve assigner: %v", err)
			}
			assigners[task.AssignedBy] = assigner
		}

		detail.Tasks = append(detail.Tasks, EmployeeTask{Task: task, AssignedBy: assigner})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}

	return detail, nil
}

// CreateEmployeeInput is the validated payload for employee creation.
type CreateEmployeeInput struct {
	Name       string
	Email      string
	Password   string
	Department string
	Position   string
	Phone      string
	Address    string
	Skills     []string
}

func (s *EmployeeService) CreateEmployee(ctx context.Context, input CreateEmployeeInput) (*EmployeeDetail, error) {
	err := s.usersCollection.FindOne(ctx, bson.M{"email": input.Email}).Err()
	if err == nil {
		return nil, validationErrorf("a user with this email already exists")
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to check existing email: %v", err)
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	now := time.Now()
	user := models.User{
		ID:         primitive.NewObjectID(),
		Name:       input.Name,
		Email:      input.Email,
		Password:   hashed,
		Role:       models.RoleEmployee,
		Department: input.Department,
		IsActive:   true,
		CreatedAt:  now,
	}

	if _, err := s.usersCollection.InsertOne(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %v", err)
	}

	employeeID, err := s.nextEmployeeID(ctx)
	if err != nil {
		s.compensateUserInsert(ctx, user.ID)
		return nil, err
	}

	skills := input.Skills
	if skills == nil {
		skills = []string{}
	}
	profile := models.Employee{
		ID:          primitive.NewObjectID(),
		UserID:      user.ID,
		EmployeeID:  employeeID,
		Position:    input.Position,
		Phone:       input.Phone,
		Address:     input.Address,
		Skills:      skills,
		Performance: models.Performance{Reviews: []models.Review{}},
		CreatedAt:   now,
	}

	if _, err := s.employeesCollection.InsertOne(ctx, profile); err != nil {
		s.compensateUserInsert(ctx, user.ID)
		return nil, fmt.Errorf("failed to create employee profile: %v", err)
	}

	return &EmployeeDetail{User: user, Profile: &profile, Tasks: []EmployeeTask{}}, nil
}

// compensateUserInsert removes a freshly created user after its paired
// profile failed, so the two collections stay consistent.
func (s *EmployeeService) compensateUserInsert(ctx context.Context, userID primitive.ObjectID) {
	if _, err := s.usersCollection.DeleteOne(ctx, bson.M{"_id": userID}); err != nil {
		logging.Logger.Errorf("Event ID: EMPLOYEE_CREATE_COMPENSATION_FAILED, Description: Failed to remove user %s after profile creation failure: %v", userID.Hex(), err)
	}
}

// EmployeeUpdate holds optional field updates; nil means unchanged. User and
// profile fields are written to their own collections independently.
type EmployeeUpdate struct {
	Name       *string
	Department *string
	IsActive   *bool

	Position          *string
	Phone             *string
	Address           *string
	Skills            *[]string
	PerformanceRating *float64
}

func (s *EmployeeService) UpdateEmployee(ctx context.Context, userID primitive.ObjectID, upd EmployeeUpdate) (*EmployeeDetail, error) {
	if err := s.usersCollection.FindOne(ctx, bson.M{"_id": userID}).Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve user: %v", err)
	}

	userSet := bson.M{}
	if upd.Name != nil {
		userSet["name"] = *upd.Name
	}
	if upd.Department != nil {
		userSet["department"] = *upd.Department
	}
	if upd.IsActive != nil {
		userSet["isActive"] = *upd.IsActive
	}
	if len(userSet) > 0 {
		if _, err := s.usersCollection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": userSet}); err != nil {
			return nil, fmt.Errorf("failed to update user: %v", err)
		}
	}

	profileSet := bson.M{}
	if upd.Position != nil {
		profileSet["position"] = *upd.Position
	}
	if upd.Phone != nil {
		profileSet["phone"] = *upd.Phone
	}
	if upd.Address != nil {
		profileSet["address"] = *upd.Address
	}
	if upd.Skills != nil {
		profileSet["skills"] = *upd.Skills
	}
	if upd.PerformanceRating != nil {
		profileSet["performance.rating"] = *upd.PerformanceRating
	}
	if len(profileSet) > 0 {
		if _, err := s.employeesCollection.UpdateOne(ctx, bson.M{"userId": userID}, bson.M{"$set": profileSet}); err != nil {
			return nil, fmt.Errorf("failed to update employee profile: %v", err)
		}
	}

	detail, err := s.GetEmployee(ctx, userID)
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// cancelTasksFilter selects the tasks an employee deletion cancels: completed
// and already-cancelled tasks keep their status so history survives.
func cancelTasksFilter(userID primitive.ObjectID) bson.M {
	return bson.M{
		"assignedTo": userID,
		"status":     bson.M{"$nin": bson.A{models.StatusCompleted, models.StatusCancelled}},
	}
}

func (s *EmployeeService) DeleteEmployee(ctx context.Context, userID primitive.ObjectID) error {
	if err := s.usersCollection.FindOne(ctx, bson.M{"_id": userID}).Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to retrieve user: %v", err)
	}

	if _, err := s.employeesCollection.DeleteOne(ctx, bson.M{"userId": userID}); err != nil {
		return fmt.Errorf("failed to delete employee profile: %v", err)
	}

	if _, err := s.usersCollection.DeleteOne(ctx, bson.M{"_id": userID}); err != nil {
		return fmt.Errorf("failed to delete user: %v", err)
	}

	result, err := s.tasksCollection.UpdateMany(ctx,
		cancelTasksFilter(userID),
		bson.M{"$set": bson.M{"status": models.StatusCancelled, "updatedAt": time.Now()}},
	)
	if err != nil {
		// The user is already gone; log the partial cascade rather than
		// failing the delete.
		logging.Logger.Errorf("Event ID: TASK_CANCEL_CASCADE_FAILED, Description: Failed to cancel tasks for deleted user %s: %v", userID.Hex(), err)
		return nil
	}

	logging.Logger.Infof("Event ID: EMPLOYEE_DELETED, Description: Deleted employee %s and cancelled %d open tasks", userID.Hex(), result.ModifiedCount)
	return nil
}

// DepartmentCount is one bucket of the department breakdown.
type DepartmentCount struct {
	Department string `json:"department" bson:"_id"`
	Count      int64  `json:"count" bson:"count"`
}

// EmployeeStats is the admin-only aggregate overview.
type EmployeeStats struct {
	TotalEmployees    int64             `json:"totalEmployees"`
	ActiveEmployees   int64             `json:"activeEmployees"`
	InactiveEmployees int64             `json:"inactiveEmployees"`
	ByDepartment      []DepartmentCount `json:"byDepartment"`
}

func (s *EmployeeService) GetEmployeeStats(ctx context.Context) (*EmployeeStats, error) {
	stats := &EmployeeStats{ByDepartment: []DepartmentCount{}}

	var err error
	stats.TotalEmployees, err = s.usersCollection.CountDocuments(ctx, bson.M{"role": models.RoleEmployee})
	if err != nil {
		return nil, fmt.Errorf("failed to count employees: %v", err)
	}
	stats.ActiveEmployees, err = s.usersCollection.CountDocuments(ctx, bson.M{"role": models.RoleEmployee, "isActive": true})
	if err != nil {
		return nil, fmt.Errorf("failed to count active employees: %v", err)
	}
	stats.InactiveEmployees = stats.TotalEmployees - stats.ActiveEmployees

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"role": models.RoleEmployee}}},
		{{Key: "$group", Value: bson.M{"_id": "$department", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	}
	cursor, err := s.usersCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate departments: %v", err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, &stats.ByDepartment); err != nil {
		return nil, fmt.Errorf("failed to decode department aggregation: %v", err)
	}

	return stats, nil
}

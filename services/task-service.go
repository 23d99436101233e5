package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/viratpk18/Employee-Task-Manager-BE/logging"
	"github.com/viratpk18/Employee-Task-Manager-BE/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultPageLimit = 10

// Notifier sends the task-assignment email. Failures never propagate to the
// request that triggered the send.
type Notifier interface {
	TaskAssigned(to string, task *models.Task, assignedBy string) error
}

type TaskService struct {
	tasksCollection     *mongo.Collection
	usersCollection     *mongo.Collection
	employeesCollection *mongo.Collection
	notifier            Notifier
}

func NewTaskService(tasks, users, employees *mongo.Collection, notifier Notifier) *TaskService {
	return &TaskService{
		tasksCollection:     tasks,
		usersCollection:     users,
		employeesCollection: employees,
		notifier:            notifier,
	}
}

// TaskFilters are the optional list-query parameters.
type TaskFilters struct {
	Status     string
	Priority   string
	AssignedTo string
	Search     string
	Page       int
	Limit      int
}

// buildTaskListFilter translates filters into a Mongo query. An employee
// caller is always pinned to its own tasks; the assignedTo filter is honored
// for admins only.
func buildTaskListFilter(callerID primitive.ObjectID, role models.Role, f TaskFilters) (bson.M, error) {
	filter := bson.M{}

	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Priority != "" {
		filter["priority"] = f.Priority
	}

	if role == models.RoleEmployee {
		filter["assignedTo"] = callerID
	} else if f.AssignedTo != "" {
		id, err := primitive.ObjectIDFromHex(f.AssignedTo)
		if err != nil {
			return nil, validationErrorf("invalid assignedTo ID format")
		}
		filter["assignedTo"] = id
	}

	if f.Search != "" {
		regex := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": regex},
			bson.M{"description": regex},
		}
	}

	return filter, nil
}

func normalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	return page, limit
}

func pageCount(total int64, limit int) int {
	return int((total + int64(limit) - 1) / int64(limit))
}

// TaskPage is one page of the task list plus pagination metadata.
type TaskPage struct {
	Tasks       []*models.Task
	Total       int64
	Pages       int
	CurrentPage int
}

func (s *TaskService) ListTasks(ctx context.Context, callerID primitive.ObjectID, role models.Role, f TaskFilters) (*TaskPage, error) {
	filter, err := buildTaskListFilter(callerID, role, f)
	if err != nil {
		return nil, err
	}

	page, limit := normalizePaging(f.Page, f.Limit)

	total, err := s.tasksCollection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %v", err)
	}

	opts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := s.tasksCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %v", err)
	}
	defer cursor.Close(ctx)

	tasks := []*models.Task{}
	now := time.Now()
	for cursor.Next(ctx) {
		var task models.Task
		if err := cursor.Decode(&task); err != nil {
			return nil, fmt.Errorf("failed to decode task: %v", err)
		}
		task.SetOverdue(now)
		tasks = append(tasks, &task)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}

	return &TaskPage{
		Tasks:       tasks,
		Total:       total,
		Pages:       pageCount(total, limit),
		CurrentPage: page,
	}, nil
}

func (s *TaskService) GetTask(ctx context.Context, taskID, callerID primitive.ObjectID, role models.Role) (*models.TaskDetail, error) {
	var task models.Task
	if err := s.tasksCollection.FindOne(ctx, bson.M{"_id": taskID}).Decode(&task); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve task: %v", err)
	}

	if role == models.RoleEmployee && task.AssignedTo != callerID {
		return nil, ErrForbidden
	}

	task.SetOverdue(time.Now())
	return s.expandTask(ctx, &task)
}

// expandTask replaces the raw user references with user summaries.
func (s *TaskService) expandTask(ctx context.Context, task *models.Task) (*models.TaskDetail, error) {
	detail := &models.TaskDetail{Task: *task}

	var err error
	detail.AssignedTo, err = s.userSummary(ctx, task.AssignedTo)
	if err != nil {
		return nil, err
	}
	detail.AssignedBy, err = s.userSummary(ctx, task.AssignedBy)
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *TaskService) userSummary(ctx context.Context, userID primitive.ObjectID) (*models.UserSummary, error) {
	var summary models.UserSummary
	err := s.usersCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&summary)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// The referenced user may have been deleted; the task survives it.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user %s: %v", userID.Hex(), err)
	}
	return &summary, nil
}

// CreateTaskInput is the validated payload for task creation.
type CreateTaskInput struct {
	Title       string
	Description string
	AssignedTo  primitive.ObjectID
	Priority    models.TaskPriority
	Deadline    time.Time
	StartDate   *time.Time
	Tags        []string
}

func (s *TaskService) CreateTask(ctx context.Context, callerID primitive.ObjectID, input CreateTaskInput) (*models.TaskDetail, error) {
	var assignee models.User
	err := s.usersCollection.FindOne(ctx, bson.M{"_id": input.AssignedTo}).Decode(&assignee)
	if errors.Is(err, mongo.ErrNoDocuments) || (err == nil && assignee.Role != models.RoleEmployee) {
		return nil, validationErrorf("assignedTo must reference an existing user with the employee role")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve assignee: %v", err)
	}

	now := time.Now()
	startDate := now
	if input.StartDate != nil {
		startDate = *input.StartDate
	}
	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}

	task := &models.Task{
		ID:          primitive.NewObjectID(),
		Title:       input.Title,
		Description: input.Description,
		AssignedTo:  input.AssignedTo,
		AssignedBy:  callerID,
		Priority:    priority,
		Status:      models.StatusPending,
		StartDate:   startDate,
		Deadline:    input.Deadline,
		Comments:    []models.Comment{},
		Attachments: []models.Attachment{},
		Tags:        tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := s.tasksCollection.InsertOne(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %v", err)
	}

	s.dispatchAssignmentNotification(task, assignee.Email, callerID)

	task.SetOverdue(now)
	return s.expandTask(ctx, task)
}

// dispatchAssignmentNotification fires the email on a separate goroutine so
// the request never waits on SMTP. On success the notificationSent flag is
// recorded; on failure the error is logged and dropped.
func (s *TaskService) dispatchAssignmentNotification(task *models.Task, assigneeEmail string, assignerID primitive.ObjectID) {
	if s.notifier == nil {
		return
	}

	taskCopy := *task
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		assignerName := "an administrator"
		if summary, err := s.userSummary(ctx, assignerID); err == nil && summary != nil {
			assignerName = summary.Name
		}

		if err := s.notifier.TaskAssigned(assigneeEmail, &taskCopy, assignerName); err != nil {
			logging.Logger.Warnf("Event ID: TASK_NOTIFICATION_FAILED, Description: Failed to send assignment email for task %s: %v", taskCopy.ID.Hex(), err)
			return
		}

		if _, err := s.tasksCollection.UpdateOne(ctx, bson.M{"_id": taskCopy.ID}, bson.M{"$set": bson.M{"notificationSent": true}}); err != nil {
			logging.Logger.Warnf("Event ID: TASK_NOTIFICATION_FLAG_FAILED, Description: Failed to record notificationSent for task %s: %v", taskCopy.ID.Hex(), err)
		}
	}()
}

// TaskUpdate holds optional field updates; nil means unchanged.
type TaskUpdate struct {
	Title       *string
	Description *string
	AssignedTo  *primitive.ObjectID
	Priority    *models.TaskPriority
	Status      *models.TaskStatus
	StartDate   *time.Time
	Deadline    *time.Time
	Tags        *[]string
}

// buildTaskUpdateSet produces the $set document for an update and reports
// whether this update is the task's first transition into completed.
func buildTaskUpdateSet(task *models.Task, upd TaskUpdate, now time.Time) (bson.M, bool) {
	set := bson.M{"updatedAt": now}

	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.AssignedTo != nil {
		set["assignedTo"] = *upd.AssignedTo
	}
	if upd.Priority != nil {
		set["priority"] = *upd.Priority
	}
	if upd.StartDate != nil {
		set["startDate"] = *upd.StartDate
	}
	if upd.Deadline != nil {
		set["deadline"] = *upd.Deadline
	}
	if upd.Tags != nil {
		set["tags"] = *upd.Tags
	}

	completing := false
	if upd.Status != nil {
		set["status"] = *upd.Status
		// completedDate is written exactly once, on the first transition
		// into completed; later status changes never touch it.
		if *upd.Status == models.StatusCompleted && task.Status != models.StatusCompleted && task.CompletedDate == nil {
			set["completedDate"] = now
			completing = true
		}
	}

	return set, completing
}

func (s *TaskService) UpdateTask(ctx context.Context, taskID, callerID primitive.ObjectID, role models.Role, upd TaskUpdate) (*models.TaskDetail, error) {
	var task models.Task
	if err := s.tasksCollection.FindOne(ctx, bson.M{"_id": taskID}).Decode(&task); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve task: %v", err)
	}

	if role == models.RoleEmployee {
		if task.AssignedTo != callerID {
			return nil, ErrForbidden
		}
		// Employees may change nothing but the status of their own task.
		upd = TaskUpdate{Status: upd.Status}
		if upd.Status == nil {
			return nil, validationErrorf("status is required")
		}
	}

	set, completing := buildTaskUpdateSet(&task, upd, time.Now())

	if _, err := s.tasksCollection.UpdateOne(ctx, bson.M{"_id": taskID}, bson.M{"$set": set}); err != nil {
		return nil, fmt.Errorf("failed to update task: %v", err)
	}

	if completing {
		if _, err := s.employeesCollection.UpdateOne(ctx,
			bson.M{"userId": task.AssignedTo},
			bson.M{"$inc": bson.M{"tasksCompleted": 1}},
		); err != nil {
			logging.Logger.Warnf("Event ID: TASKS_COMPLETED_INC_FAILED, Description: Failed to increment tasksCompleted for user %s: %v", task.AssignedTo.Hex(), err)
		}
	}

	var updated models.Task
	if err := s.tasksCollection.FindOne(ctx, bson.M{"_id": taskID}).Decode(&updated); err != nil {
		return nil, fmt.Errorf("failed to retrieve updated task: %v", err)
	}

	updated.SetOverdue(time.Now())
	return s.expandTask(ctx, &updated)
}

func (s *TaskService) DeleteTask(ctx context.Context, taskID primitive.ObjectID) error {
	result, err := s.tasksCollection.DeleteOne(ctx, bson.M{"_id": taskID})
	if err != nil {
		return fmt.Errorf("failed to delete task: %v", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *TaskService) AddComment(ctx context.Context, taskID, authorID primitive.ObjectID, text string) (*models.Comment, error) {
	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		Author:    authorID,
		Text:      text,
		CreatedAt: time.Now(),
	}

	result, err := s.tasksCollection.UpdateOne(ctx,
		bson.M{"_id": taskID},
		bson.M{
			"$push": bson.M{"comments": comment},
			"$set":  bson.M{"updatedAt": comment.CreatedAt},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add comment: %v", err)
	}
	if result.MatchedCount == 0 {
		return nil, ErrNotFound
	}

	return &comment, nil
}

// StatusCount is one bucket of the by-status grouping.
type StatusCount struct {
	Status models.TaskStatus `json:"status" bson:"_id"`
	Count  int64             `json:"count" bson:"count"`
}

// PriorityCount is one bucket of the by-priority grouping.
type PriorityCount struct {
	Priority models.TaskPriority `json:"priority" bson:"_id"`
	Count    int64               `json:"count" bson:"count"`
}

// DayStatusCount is one (day, status) bucket of the trailing-week breakdown.
type DayStatusCount struct {
	Day    string            `json:"day"`
	Status models.TaskStatus `json:"status"`
	Count  int64             `json:"count"`
}

// TaskStats is the aggregate overview, scoped like the task list.
type TaskStats struct {
	TotalTasks     int64            `json:"totalTasks"`
	ByStatus       []StatusCount    `json:"byStatus"`
	OverdueTasks   int64            `json:"overdueTasks"`
	CompletionRate float64          `json:"completionRate"`
	ByPriority     []PriorityCount  `json:"byPriority"`
	Last7Days      []DayStatusCount `json:"last7Days"`
}

// completionRate is (completed/total)*100 rounded to two decimals, zero when
// there are no tasks.
func completionRate(completed, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(completed)/float64(total)*10000) / 100
}

func (s *TaskService) GetTaskStats(ctx context.Context, callerID primitive.ObjectID, role models.Role) (*TaskStats, error) {
	scope := bson.M{}
	if role == models.RoleEmployee {
		scope["assignedTo"] = callerID
	}

	byStatus, err := s.groupTaskCounts(ctx, scope, "$status")
	if err != nil {
		return nil, err
	}

	stats := &TaskStats{ByStatus: []StatusCount{}, ByPriority: []PriorityCount{}, Last7Days: []DayStatusCount{}}

	var completed int64
	for _, bucket := range byStatus {
		stats.TotalTasks += bucket.Count
		stats.ByStatus = append(stats.ByStatus, StatusCount{Status: models.TaskStatus(bucket.Key), Count: bucket.Count})
		if models.TaskStatus(bucket.Key) == models.StatusCompleted {
			completed = bucket.Count
		}
	}
	stats.CompletionRate = completionRate(completed, stats.TotalTasks)

	now := time.Now()
	overdueFilter := bson.M{
		"status":   bson.M{"$ne": models.StatusCompleted},
		"deadline": bson.M{"$lt": now},
	}
	for k, v := range scope {
		overdueFilter[k] = v
	}
	stats.OverdueTasks, err = s.tasksCollection.CountDocuments(ctx, overdueFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to count overdue tasks: %v", err)
	}

	byPriority, err := s.groupTaskCounts(ctx, scope, "$priority")
	if err != nil {
		return nil, err
	}
	for _, bucket := range byPriority {
		stats.ByPriority = append(stats.ByPriority, PriorityCount{Priority: models.TaskPriority(bucket.Key), Count: bucket.Count})
	}

	stats.Last7Days, err = s.trailingWeekCounts(ctx, scope, now)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

type groupBucket struct {
	Key   string `bson:"_id"`
	Count int64  `bson:"count"`
}

func (s *TaskService) groupTaskCounts(ctx context.Context, scope bson.M, field string) ([]groupBucket, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: scope}},
		{{Key: "$group", Value: bson.M{"_id": field, "count": bson.M{"$sum": 1}}}},
	}

	cursor, err := s.tasksCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate tasks by %s: %v", field, err)
	}
	defer cursor.Close(ctx)

	var buckets []groupBucket
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, fmt.Errorf("failed to decode aggregation: %v", err)
	}
	return buckets, nil
}

func (s *TaskService) trailingWeekCounts(ctx context.Context, scope bson.M, now time.Time) ([]DayStatusCount, error) {
	match := bson.M{"createdAt": bson.M{"$gte": now.AddDate(0, 0, -7)}}
	for k, v := range scope {
		match[k] = v
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"day":    bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$createdAt"}},
				"status": "$status",
			},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id.day": 1}}},
	}

	cursor, err := s.tasksCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate trailing week: %v", err)
	}
	defer cursor.Close(ctx)

	var raw []struct {
		ID struct {
			Day    string            `bson:"day"`
			Status models.TaskStatus `bson:"status"`
		} `bson:"_id"`
		Count int64 `bson:"count"`
	}
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode trailing week aggregation: %v", err)
	}

	buckets := []DayStatusCount{}
	for _, r := range raw {
		buckets = append(buckets, DayStatusCount{Day: r.ID.Day, Status: r.ID.Status, Count: r.Count})
	}
	return buckets, nil
}

// CalendarTask is the reduced projection returned by the calendar view.
type CalendarTask struct {
	ID         primitive.ObjectID  `json:"id" bson:"_id"`
	Title      string              `json:"title" bson:"title"`
	Priority   models.TaskPriority `json:"priority" bson:"priority"`
	Status     models.TaskStatus   `json:"status" bson:"status"`
	Deadline   time.Time           `json:"deadline" bson:"deadline"`
	AssignedTo primitive.ObjectID  `json:"assignedTo" bson:"assignedTo"`
}

// parseCalendarRange parses YYYY-MM-DD bounds; the end date is inclusive, so
// the upper bound extends to the end of that day.
func parseCalendarRange(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return time.Time{}, time.Time{}, validationErrorf("invalid startDate, expected YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return time.Time{}, time.Time{}, validationErrorf("invalid endDate, expected YYYY-MM-DD")
	}
	end = end.AddDate(0, 0, 1)
	if end.Before(start) {
		return time.Time{}, time.Time{}, validationErrorf("endDate must not be before startDate")
	}
	return start, end, nil
}

func (s *TaskService) CalendarTasks(ctx context.Context, callerID primitive.ObjectID, role models.Role, startDate, endDate string) ([]CalendarTask, error) {
	start, end, err := parseCalendarRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	filter := bson.M{"deadline": bson.M{"$gte": start, "$lt": end}}
	if role == models.RoleEmployee {
		filter["assignedTo"] = callerID
	}

	opts := options.Find().
		SetSort(bson.M{"deadline": 1}).
		SetProjection(bson.M{"title": 1, "priority": 1, "status": 1, "deadline": 1, "assignedTo": 1})

	cursor, err := s.tasksCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve calendar tasks: %v", err)
	}
	defer cursor.Close(ctx)

	tasks := []CalendarTask{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode calendar tasks: %v", err)
	}
	return tasks, nil
}

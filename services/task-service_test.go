package services

import (
	"errors"
	"testing"
	"time"

	"github.com/viratpk18/Employee-Task-Manager-BE/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestBuildTaskListFilter_EmployeeScope verifies an employee caller is always
// pinned to its own tasks, no matter what assignedTo filter it supplies.
func TestBuildTaskListFilter_EmployeeScope(t *testing.T) {
	callerID := primitive.NewObjectID()
	otherID := primitive.NewObjectID()

	filter, err := buildTaskListFilter(callerID, models.RoleEmployee, TaskFilters{
		AssignedTo: otherID.Hex(),
		Status:     "pending",
	})
	if err != nil {
		t.Fatalf("buildTaskListFilter() returned error: %v", err)
	}

	if got := filter["assignedTo"]; got != callerID {
		t.Errorf("assignedTo = %v, want caller %v", got, callerID)
	}
	if got := filter["status"]; got != "pending" {
		t.Errorf("status = %v, want pending", got)
	}
}

// TestBuildTaskListFilter_AdminAssignedTo verifies the explicit assignedTo
// filter is honored for admin callers.
func TestBuildTaskListFilter_AdminAssignedTo(t *testing.T) {
	callerID := primitive.NewObjectID()
	targetID := primitive.NewObjectID()

	filter, err := buildTaskListFilter(callerID, models.RoleAdmin, TaskFilters{AssignedTo: targetID.Hex()})
	if err != nil {
		t.Fatalf("buildTaskListFilter() returned error: %v", err)
	}

	if got := filter["assignedTo"]; got != targetID {
		t.Errorf("assignedTo = %v, want target %v", got, targetID)
	}
}

func TestBuildTaskListFilter_AdminUnfiltered(t *testing.T) {
	filter, err := buildTaskListFilter(primitive.NewObjectID(), models.RoleAdmin, TaskFilters{})
	if err != nil {
		t.Fatalf("buildTaskListFilter() returned error: %v", err)
	}
	if _, scoped := filter["assignedTo"]; scoped {
		t.Error("admin filter without assignedTo should not be scoped")
	}
}

func TestBuildTaskListFilter_InvalidAssignedTo(t *testing.T) {
	_, err := buildTaskListFilter(primitive.NewObjectID(), models.RoleAdmin, TaskFilters{AssignedTo: "not-an-id"})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for malformed assignedTo, got %v", err)
	}
}

func TestBuildTaskListFilter_Search(t *testing.T) {
	filter, err := buildTaskListFilter(primitive.NewObjectID(), models.RoleAdmin, TaskFilters{Search: "a.b"})
	if err != nil {
		t.Fatalf("buildTaskListFilter() returned error: %v", err)
	}

	or, ok := filter["$or"].(bson.A)
	if !ok || len(or) != 2 {
		t.Fatalf("expected $or over title and description, got %v", filter["$or"])
	}

	title := or[0].(bson.M)["title"].(primitive.Regex)
	if title.Options != "i" {
		t.Errorf("search regex options = %q, want case-insensitive", title.Options)
	}
	if title.Pattern != `a\.b` {
		t.Errorf("search pattern = %q, want quoted literal", title.Pattern)
	}
}

func TestCompletionRate(t *testing.T) {
	tests := []struct {
		completed int64
		total     int64
		want      float64
	}{
		{0, 0, 0},
		{3, 7, 42.86},
		{1, 3, 33.33},
		{5, 5, 100},
		{0, 4, 0},
	}

	for _, tt := range tests {
		if got := completionRate(tt.completed, tt.total); got != tt.want {
			t.Errorf("completionRate(%d, %d) = %v, want %v", tt.completed, tt.total, got, tt.want)
		}
	}
}

func TestNormalizePaging(t *testing.T) {
	page, limit := normalizePaging(0, 0)
	if page != 1 || limit != defaultPageLimit {
		t.Errorf("normalizePaging(0, 0) = (%d, %d), want (1, %d)", page, limit, defaultPageLimit)
	}

	page, limit = normalizePaging(3, 25)
	if page != 3 || limit != 25 {
		t.Errorf("normalizePaging(3, 25) = (%d, %d), want (3, 25)", page, limit)
	}
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		total int64
		limit int
		want  int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{21, 10, 3},
	}

	for _, tt := range tests {
		if got := pageCount(tt.total, tt.limit); got != tt.want {
			t.Errorf("pageCount(%d, %d) = %d, want %d", tt.total, tt.limit, got, tt.want)
		}
	}
}

// TestBuildTaskUpdateSet_FirstCompletion verifies completedDate is written on
// the first transition into completed, together with the counter signal.
func TestBuildTaskUpdateSet_FirstCompletion(t *testing.T) {
	now := time.Now()
	task := &models.Task{Status: models.StatusInProgress}
	status := models.StatusCompleted

	set, completing := buildTaskUpdateSet(task, TaskUpdate{Status: &status}, now)

	if !completing {
		t.Error("first transition to completed should report completing")
	}
	if got := set["completedDate"]; got != now {
		t.Errorf("completedDate = %v, want %v", got, now)
	}
	if got := set["status"]; got != models.StatusCompleted {
		t.Errorf("status = %v, want completed", got)
	}
}

// TestBuildTaskUpdateSet_CompletedDateSetOnce verifies a task completed once
// before never gets its completedDate rewritten.
func TestBuildTaskUpdateSet_CompletedDateSetOnce(t *testing.T) {
	first := time.Now().Add(-48 * time.Hour)
	task := &models.Task{Status: models.StatusPending, CompletedDate: &first}
	status := models.StatusCompleted

	set, completing := buildTaskUpdateSet(task, TaskUpdate{Status: &status}, time.Now())

	if completing {
		t.Error("re-completion should not report completing")
	}
	if _, written := set["completedDate"]; written {
		t.Error("completedDate must not be rewritten on re-completion")
	}
}

func TestBuildTaskUpdateSet_NoStatusChange(t *testing.T) {
	title := "new title"
	set, completing := buildTaskUpdateSet(&models.Task{}, TaskUpdate{Title: &title}, time.Now())

	if completing {
		t.Error("title-only update should not report completing")
	}
	if got := set["title"]; got != "new title" {
		t.Errorf("title = %v, want new title", got)
	}
	if _, ok := set["status"]; ok {
		t.Error("status should not appear in a title-only update")
	}
}

func TestParseCalendarRange_InclusiveEnd(t *testing.T) {
	start, end, err := parseCalendarRange("2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("parseCalendarRange() returned error: %v", err)
	}

	lastMoment := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)
	if !lastMoment.After(start) || !lastMoment.Before(end) {
		t.Errorf("deadline at the end of the last day should fall inside [%v, %v)", start, end)
	}

	outside := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	if outside.Before(end) {
		t.Errorf("first moment of the next day should fall outside the range, end = %v", end)
	}
}

func TestParseCalendarRange_Invalid(t *testing.T) {
	if _, _, err := parseCalendarRange("01-01-2024", "2024-01-31"); err == nil {
		t.Error("expected error for malformed startDate")
	}
	if _, _, err := parseCalendarRange("2024-01-31", "2024-01-01"); err == nil {
		t.Error("expected error for reversed range")
	}
}

func TestSetOverdue(t *testing.T) {
	now := time.Now()

	task := models.Task{Status: models.StatusPending, Deadline: now.Add(-time.Hour)}
	task.SetOverdue(now)
	if !task.IsOverdue {
		t.Error("pending task past its deadline should be overdue")
	}

	task = models.Task{Status: models.StatusCompleted, Deadline: now.Add(-time.Hour)}
	task.SetOverdue(now)
	if task.IsOverdue {
		t.Error("completed task is never overdue")
	}

	task = models.Task{Status: models.StatusPending, Deadline: now.Add(time.Hour)}
	task.SetOverdue(now)
	if task.IsOverdue {
		t.Error("task before its deadline should not be overdue")
	}
}

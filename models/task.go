package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
	StatusCancelled  TaskStatus = "cancelled"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

type Comment struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Author    primitive.ObjectID `json:"author" bson:"author"`
	Text      string             `json:"text" bson:"text"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

type Attachment struct {
	Filename   string    `json:"filename" bson:"filename"`
	URL        string    `json:"url" bson:"url"`
	UploadedAt time.Time `json:"uploadedAt" bson:"uploadedAt"`
}

type Task struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title            string             `json:"title" bson:"title"`
	Description      string             `json:"description" bson:"description"`
	AssignedTo       primitive.ObjectID `json:"assignedTo" bson:"assignedTo"`
	AssignedBy       primitive.ObjectID `json:"assignedBy" bson:"assignedBy"`
	Priority         TaskPriority       `json:"priority" bson:"priority"`
	Status           TaskStatus         `json:"status" bson:"status"`
	StartDate        time.Time          `json:"startDate" bson:"startDate"`
	Deadline         time.Time          `json:"deadline" bson:"deadline"`
	CompletedDate    *time.Time         `json:"completedDate,omitempty" bson:"completedDate,omitempty"`
	Comments         []Comment          `json:"comments" bson:"comments"`
	Attachments      []Attachment       `json:"attachments" bson:"attachments"`
	Tags             []string           `json:"tags" bson:"tags"`
	NotificationSent bool               `json:"notificationSent" bson:"notificationSent"`
	CreatedAt        time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt" bson:"updatedAt"`

	// IsOverdue is derived, never stored.
	IsOverdue bool `json:"isOverdue" bson:"-"`
}

// SetOverdue recomputes the derived overdue flag as of now.
func (t *Task) SetOverdue(now time.Time) {
	t.IsOverdue = t.Status != StatusCompleted && now.After(t.Deadline)
}

// TaskDetail is a task with its user references expanded. The outer fields
// shadow the raw ObjectIDs of the embedded Task in the JSON output.
type TaskDetail struct {
	Task
	AssignedTo *UserSummary `json:"assignedTo"`
	AssignedBy *UserSummary `json:"assignedBy"`
}

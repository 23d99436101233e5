package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is a single dated performance review entry.
type Review struct {
	Reviewer string    `json:"reviewer" bson:"reviewer"`
	Comment  string    `json:"comment" bson:"comment"`
	Rating   float64   `json:"rating" bson:"rating"`
	Date     time.Time `json:"date" bson:"date"`
}

type Performance struct {
	Rating  float64  `json:"rating" bson:"rating"`
	Reviews []Review `json:"reviews" bson:"reviews"`
}

// Employee is the profile record paired with a User whose role is "employee".
// EmployeeID is assigned once from the counters collection and never changes.
type Employee struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID         primitive.ObjectID `json:"userId" bson:"userId"`
	EmployeeID     string             `json:"employeeId" bson:"employeeId"`
	Position       string             `json:"position" bson:"position"`
	Phone          string             `json:"phone" bson:"phone"`
	Address        string             `json:"address" bson:"address"`
	Skills         []string           `json:"skills" bson:"skills"`
	Performance    Performance        `json:"performance" bson:"performance"`
	TasksCompleted int64              `json:"tasksCompleted" bson:"tasksCompleted"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
}

package services

import (
	"fmt"

	"github.com/viratpk18/Employee-Task-Manager-BE/logging"
	"github.com/viratpk18/Employee-Task-Manager-BE/models"
	"github.com/viratpk18/Employee-Task-Manager-BE/utils"

	"github.com/sony/gobreaker"
)

// NotificationService sends task emails through a circuit breaker so a dead
// SMTP server stops being retried on every task creation.
type NotificationService struct {
	breaker *gobreaker.CircuitBreaker
}

func NewNotificationService(breaker *gobreaker.CircuitBreaker) *NotificationService {
	return &NotificationService{breaker: breaker}
}

// taskAssignedBody renders the HTML body of the assignment email.
func taskAssignedBody(task *models.Task, assignedBy string) string {
	return fmt.Sprintf(
		"<h3>You have been assigned a new task</h3>"+
			"<p><b>Task:</b> %s</p>"+
			"<p><b>Assigned by:</b> %s</p>"+
			"<p><b>Priority:</b> %s</p>"+
			"<p><b>Deadline:</b> %s</p>",
		task.Title, assignedBy, task.Priority, task.Deadline.Format("2006-01-02 15:04"),
	)
}

// TaskAssigned notifies the assignee about a new task. A missing mail
// configuration is a silent no-op, not an error.
func (s *NotificationService) TaskAssigned(to string, task *models.Task, assignedBy string) error {
	if !utils.MailConfigured() {
		logging.Logger.Infof("Event ID: MAIL_NOT_CONFIGURED, Description: Skipping assignment email for task %s", task.ID.Hex())
		return nil
	}

	subject := fmt.Sprintf("New task assigned: %s", task.Title)
	body := taskAssignedBody(task, assignedBy)

	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, utils.SendEmail(to, subject, body)
	})
	return err
}

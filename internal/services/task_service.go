package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"donezo/internal/models"
	"donezo/internal/repositories"
)

// Task event kinds published to the message queue.
const (
	EventTaskCreated   = "task.created"
	EventTaskCompleted = "task.completed"
	EventTaskDeleted   = "task.deleted"
)

// EventPublisher publishes task lifecycle events. *rabbitmq.Client satisfies
// it; tests pass a mock. A nil publisher disables publishing.
type EventPublisher interface {
	Publish(eventType string, body []byte) error
}

// TaskUpdate carries a partial update. Nil fields are left untouched.
type TaskUpdate struct {
	Text      *string `json:"text"`
	Tag       *string `json:"tag"`
	Completed *bool   `json:"completed"`
	Date      *string `json:"date"`
}

// TaskService handles business logic for tasks. Every operation is scoped to
// the owner identity resolved from the caller's token: a task under another
// owner is indistinguishable from a task that does not exist.
type TaskService struct {
	taskRepo  repositories.TaskRepository
	publisher EventPublisher
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repositories.TaskRepository, publisher EventPublisher) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		publisher: publisher,
	}
}

// Create stores a new task for the owner. Tag defaults to "General" and date
// to today when absent.
func (s *TaskService) Create(ownerID, text, tag, date string) (*models.Task, error) {
	if ownerID == "" {
		return nil, ErrMissingOwner
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrInvalidInput
	}
	if tag == "" {
		tag = models.DefaultTag
	}
	if date == "" {
		date = time.Now().Format(models.DateLayout)
	} else if _, err := time.Parse(models.DateLayout, date); err != nil {
		return nil, ErrInvalidInput
	}

	task := &models.Task{
		UserID:    ownerID,
		Text:      text,
		Tag:       tag,
		Completed: false,
		Date:      date,
	}
	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.publishEvent(EventTaskCreated, task)
	return task, nil
}

// List returns all of the owner's tasks, most recently created first.
func (s *TaskService) List(ownerID string) ([]models.Task, error) {
	if ownerID == "" {
		return nil, ErrMissingOwner
	}
	return s.taskRepo.GetAllByUser(ownerID)
}

// Update applies a partial update to one of the owner's tasks. Only supplied
// fields are overwritten; omitted fields keep their prior values. Completion
// is persisted through this path like any other field.
func (s *TaskService) Update(ownerID, taskID string, upd TaskUpdate) (*models.Task, error) {
	if ownerID == "" {
		return nil, ErrMissingOwner
	}

	task, err := s.taskRepo.GetByIDAndUser(taskID, ownerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	if upd.Text != nil {
		text := strings.TrimSpace(*upd.Text)
		if text == "" {
			return nil, ErrInvalidInput
		}
		task.Text = text
	}
	if upd.Tag != nil {
		tag := *upd.Tag
		if tag == "" {
			tag = models.DefaultTag
		}
		task.Tag = tag
	}
	if upd.Date != nil {
		if _, err := time.Parse(models.DateLayout, *upd.Date); err != nil {
			return nil, ErrInvalidInput
		}
		task.Date = *upd.Date
	}
	justCompleted := false
	if upd.Completed != nil {
		justCompleted = *upd.Completed && !task.Completed
		task.Completed = *upd.Completed
	}

	if err := s.taskRepo.Update(task); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// Deleted between the fetch and the write.
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if justCompleted {
		s.publishEvent(EventTaskCompleted, task)
	}
	return task, nil
}

// Delete removes one of the owner's tasks. Removal is irrecoverable.
func (s *TaskService) Delete(ownerID, taskID string) error {
	if ownerID == "" {
		return ErrMissingOwner
	}
	if err := s.taskRepo.DeleteByIDAndUser(taskID, ownerID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.publishEvent(EventTaskDeleted, &models.Task{ID: taskID, UserID: ownerID})
	return nil
}

// publishEvent sends a task event to the message queue. Publishing is
// best-effort: a broker failure is logged and never fails the request.
func (s *TaskService) publishEvent(eventType string, task *models.Task) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(map[string]interface{}{
		"taskID": task.ID,
		"userID": task.UserID,
		"text":   task.Text,
		"tag":    task.Tag,
		"date":   task.Date,
	})
	if err != nil {
		log.Printf("Failed to marshal %s event for task %s: %v", eventType, task.ID, err)
		return
	}
	if err := s.publisher.Publish(eventType, body); err != nil {
		log.Printf("Warning: Failed to publish %s event for task %s: %v", eventType, task.ID, err)
	}
}

package repositories

import (
	"errors"
	"fmt"

	"donezo/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMTaskRepository is a GORM implementation of TaskRepository.
type GORMTaskRepository struct {
	db *gorm.DB
}

// NewGORMTaskRepository creates a new instance of GORMTaskRepository.
func NewGORMTaskRepository(db *gorm.DB) *GORMTaskRepository {
	return &GORMTaskRepository{
		db: db,
	}
}

// GetAllByUser retrieves the user's tasks, most recently created first.
func (r *GORMTaskRepository) GetAllByUser(userID string) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to get tasks for user: %w", err)
	}
	return tasks, nil
}

// GetByIDAndUser retrieves a single task scoped to its owner.
func (r *GORMTaskRepository) GetByIDAndUser(id, userID string) (*models.Task, error) {
	var task models.Task
	if err := r.db.First(&task, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task by ID %s: %w", id, err)
	}
	return &task, nil
}

// Create inserts a new task.
func (r *GORMTaskRepository) Create(task *models.Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if err := r.db.Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// Update persists all fields of an existing task.
func (r *GORMTaskRepository) Update(task *models.Task) error {
	res := r.db.Save(task) // Save updates all fields, including zero values
	if res.Error != nil {
		return fmt.Errorf("failed to update task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// GORM's Save doesn't return ErrRecordNotFound when no rows match,
		// so we check RowsAffected.
		return ErrNotFound
	}
	return nil
}

// DeleteByIDAndUser removes a task scoped to its owner. A task held by
// another owner reads as not found.
func (r *GORMTaskRepository) DeleteByIDAndUser(id, userID string) error {
	res := r.db.Delete(&models.Task{}, "id = ? AND user_id = ?", id, userID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

package repositories

import "donezo/internal/models"

// TaskRepository defines the interface for task data access.
// Every read and mutation is scoped to the owning user: a task that exists
// under another owner behaves exactly like a task that does not exist.
type TaskRepository interface {
	// GetAllByUser returns the user's tasks ordered by creation time,
	// most recent first.
	GetAllByUser(userID string) ([]models.Task, error)
	GetByIDAndUser(id, userID string) (*models.Task, error)
	Create(task *models.Task) error
	Update(task *models.Task) error
	DeleteByIDAndUser(id, userID string) error
}

package repositories

import (
	"sort"
	"sync"
	"time"

	"donezo/internal/models"

	"github.com/google/uuid"
)

// MockTaskRepository is an in-memory implementation of TaskRepository.
type MockTaskRepository struct {
	tasks map[string]models.Task
	mu    sync.RWMutex
}

// NewMockTaskRepository creates a new instance of MockTaskRepository.
func NewMockTaskRepository() *MockTaskRepository {
	return &MockTaskRepository{
		tasks: make(map[string]models.Task),
	}
}

// GetAllByUser returns the user's tasks, most recently created first.
func (r *MockTaskRepository) GetAllByUser(userID string) ([]models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	taskList := make([]models.Task, 0)
	for _, t := range r.tasks {
		if t.UserID == userID {
			taskList = append(taskList, t)
		}
	}
	sort.Slice(taskList, func(i, j int) bool {
		return taskList[i].CreatedAt.After(taskList[j].CreatedAt)
	})
	return taskList, nil
}

// GetByIDAndUser returns a task scoped to its owner.
func (r *MockTaskRepository) GetByIDAndUser(id, userID string) (*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id]
	if !ok || task.UserID != userID {
		return nil, ErrNotFound
	}
	return &task, nil
}

// Create adds a new task.
func (r *MockTaskRepository) Create(task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	task.UpdatedAt = time.Now()
	r.tasks[task.ID] = *task
	return nil
}

// Update modifies an existing task.
func (r *MockTaskRepository) Update(task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.tasks[task.ID]
	if !ok {
		return ErrNotFound
	}
	task.UpdatedAt = time.Now()
	r.tasks[task.ID] = *task
	return nil
}

// DeleteByIDAndUser removes a task scoped to its owner.
func (r *MockTaskRepository) DeleteByIDAndUser(id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok || task.UserID != userID {
		return ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

package repositories

import "donezo/internal/models"

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	// GetByUsernameOrEmail returns the first user matching either value.
	// Registration uses it as a single combined collision lookup.
	GetByUsernameOrEmail(username, email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
}

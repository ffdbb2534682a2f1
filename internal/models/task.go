package models

import "gorm.io/gorm"

// DateLayout is the calendar-date format tasks are associated with.
const DateLayout = "2006-01-02"

// DefaultTag is assigned to tasks created without an explicit tag.
const DefaultTag = "General"

// Task represents a single to-do item owned by exactly one user.
type Task struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	UserID     string `json:"user_id" gorm:"index;type:varchar(36)" validate:"required,uuid"`
	Text       string `json:"text" validate:"required,max=500"`
	Tag        string `json:"tag" validate:"omitempty,max=100"`
	Completed  bool   `json:"completed"`
	Date       string `json:"date" gorm:"type:varchar(10)" validate:"omitempty,datetime=2006-01-02"` // YYYY-MM-DD
	gorm.Model        // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

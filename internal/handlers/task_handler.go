package handlers

import (
	"errors"
	"log"

	"donezo/internal/middleware"
	"donezo/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// TaskHandler handles HTTP requests for tasks. All routes sit behind the
// auth middleware; the owner identity comes from the verified token, never
// from the request payload or headers.
type TaskHandler struct {
	service  *services.TaskService
	validate *validator.Validate
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(service *services.TaskService) *TaskHandler {
	return &TaskHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the task routes with the Fiber app.
func (h *TaskHandler) RegisterRoutes(router fiber.Router) {
	taskRoutes := router.Group("/tasks")
	taskRoutes.Get("/", h.HandleListTasks)
	taskRoutes.Post("/", h.HandleCreateTask)
	taskRoutes.Put("/:id", h.HandleUpdateTask)
	taskRoutes.Delete("/:id", h.HandleDeleteTask)
}

// CreateTaskRequest represents the request body for creating a task.
type CreateTaskRequest struct {
	Text string `json:"text" validate:"required,max=500"`
	Tag  string `json:"tag" validate:"omitempty,max=100"`
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// HandleCreateTask creates a new task for the authenticated user.
func (h *TaskHandler) HandleCreateTask(c *fiber.Ctx) error {
	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create task request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	task, err := h.service.Create(middleware.UserID(c), req.Text, req.Tag, req.Date)
	if err != nil {
		return taskError(c, "Could not create task", err)
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

// HandleListTasks returns all of the authenticated user's tasks, most
// recently created first.
func (h *TaskHandler) HandleListTasks(c *fiber.Ctx) error {
	tasks, err := h.service.List(middleware.UserID(c))
	if err != nil {
		return taskError(c, "Could not retrieve tasks", err)
	}
	return c.JSON(tasks)
}

// HandleUpdateTask applies a partial update to one of the authenticated
// user's tasks. Fields absent from the body keep their prior values.
func (h *TaskHandler) HandleUpdateTask(c *fiber.Ctx) error {
	var upd services.TaskUpdate
	if err := c.BodyParser(&upd); err != nil {
		log.Printf("Error parsing update task request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	task, err := h.service.Update(middleware.UserID(c), c.Params("id"), upd)
	if err != nil {
		return taskError(c, "Could not update task", err)
	}
	return c.JSON(task)
}

// HandleDeleteTask removes one of the authenticated user's tasks.
func (h *TaskHandler) HandleDeleteTask(c *fiber.Ctx) error {
	if err := h.service.Delete(middleware.UserID(c), c.Params("id")); err != nil {
		return taskError(c, "Could not delete task", err)
	}
	return c.JSON(fiber.Map{
		"message": "Task deleted successfully",
	})
}

// taskError maps task service failures to their stable status codes. A task
// owned by another user surfaces as the same 404 as a missing one.
func taskError(c *fiber.Ctx, fallback string, err error) error {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Task not found",
		})
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrMissingOwner):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	default:
		log.Printf("%s: %v", fallback, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": fallback,
		})
	}
}

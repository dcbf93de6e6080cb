package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hokamoto/studygroup-api/internal/authz"
	"github.com/hokamoto/studygroup-api/internal/dto"
	apierrors "github.com/hokamoto/studygroup-api/internal/errors"
	"github.com/hokamoto/studygroup-api/internal/models"
	"github.com/hokamoto/studygroup-api/internal/repository"
	"github.com/hokamoto/studygroup-api/internal/services"
	"github.com/hokamoto/studygroup-api/internal/utils"
)

// TaskHandler coordinates task HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns every task joined with group and assignee details, or a
// filtered, paginated plain listing when filters are present.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	if c.Query("group_id") == "" && c.Query("status") == "" && c.Query("assignee_id") == "" {
		rows, err := h.taskService.ListTasksWithDetails()
		if err != nil {
			respondTaskError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"tasks": dto.ToTaskWithDetailsDTOs(rows, time.Now()),
		})
		return
	}

	filter := repository.TaskFilter{}

	if raw := c.Query("group_id"); raw != "" {
		groupID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid group_id")
			return
		}
		filter.GroupID = &groupID
	}
	if raw := c.Query("status"); raw != "" {
		status := models.TaskStatus(raw)
		if !models.ValidTaskStatus(status) {
			apierrors.BadRequest(c, services.ErrInvalidStatus.Error())
			return
		}
		filter.Status = &status
	}
	if raw := c.Query("assignee_id"); raw != "" {
		assigneeID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid assignee_id")
			return
		}
		filter.AssigneeID = &assigneeID
	}

	params := utils.GetPaginationParams(c)
	filter.Page = params.Page
	filter.PageSize = params.Limit

	tasks, total, err := h.taskService.ListTasks(filter)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TaskListResponse{
		Tasks: dto.ToTaskDTOs(tasks, time.Now()),
		Pagination: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetTask returns one task with its group and assignee.
func (h *TaskHandler) GetTask(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(taskID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task, time.Now()))
}

// CreateTask creates a task scoped to a group.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	type CreateTaskRequest struct {
		GroupID     uint64     `json:"group_id" binding:"required"`
		Title       string     `json:"title" binding:"required"`
		Description string     `json:"description"`
		Status      string     `json:"status"`
		Priority    string     `json:"priority"`
		AssigneeID  *uint64    `json:"assignee_id"`
		DueDate     *time.Time `json:"due_date"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(actor, services.CreateTaskInput{
		GroupID:     req.GroupID,
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskStatus(req.Status),
		Priority:    models.TaskPriority(req.Priority),
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task, time.Now()))
}

// UpdateTask merges the provided fields into a task.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type UpdateTaskRequest struct {
		Title         *string    `json:"title"`
		Description   *string    `json:"description"`
		Status        *string    `json:"status"`
		Priority      *string    `json:"priority"`
		AssigneeID    *uint64    `json:"assignee_id"`
		ClearAssignee bool       `json:"clear_assignee"`
		DueDate       *time.Time `json:"due_date"`
		ClearDueDate  bool       `json:"clear_due_date"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		AssigneeID:    req.AssigneeID,
		ClearAssignee: req.ClearAssignee,
		DueDate:       req.DueDate,
		ClearDueDate:  req.ClearDueDate,
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		input.Status = &status
	}
	if req.Priority != nil {
		priority := models.TaskPriority(*req.Priority)
		input.Priority = &priority
	}

	task, err := h.taskService.UpdateTask(actor, taskID, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task, time.Now()))
}

// DeleteTask deletes a task.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(actor, taskID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, authz.ErrForbidden):
		apierrors.Forbidden(c)
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrGroupNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrTaskGroupNotFound),
		errors.Is(err, services.ErrAssigneeNotMember):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c)
	}
}

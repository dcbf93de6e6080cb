package dto

import (
	"time"

	"github.com/hokamoto/studygroup-api/internal/models"
	"github.com/hokamoto/studygroup-api/internal/repository"
	"github.com/hokamoto/studygroup-api/internal/utils"
)

// TaskDTO represents a task in API responses. DueClass is a display
// classification computed at render time, never stored.
type TaskDTO struct {
	ID          uint64              `json:"id"`
	GroupID     uint64              `json:"group_id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	AssigneeID  *uint64             `json:"assignee_id"`
	DueDate     *time.Time          `json:"due_date"`
	DueClass    utils.DueClass      `json:"due_class"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Group       *GroupDTO           `json:"group,omitempty"`
	Assignee    *UserDTO            `json:"assignee,omitempty"`
}

// TaskWithDetailsDTO is a task joined with its group and assignee. Group is
// null only when the integrity invariant was broken upstream.
type TaskWithDetailsDTO struct {
	TaskDTO
	Group    *GroupDTO `json:"group"`
	Assignee *UserDTO  `json:"assignee"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task, now time.Time) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		GroupID:     task.GroupID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		AssigneeID:  task.AssigneeID,
		DueDate:     task.DueDate,
		DueClass:    utils.ClassifyDueDate(task.DueDate, task.Status, now),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	if task.Group.ID != 0 {
		group := ToGroupDTO(task.Group)
		dto.Group = &group
	}
	if task.Assignee != nil && task.Assignee.ID != 0 {
		assignee := ToUserDTO(*task.Assignee)
		dto.Assignee = &assignee
	}

	return dto
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task, now time.Time) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = ToTaskDTO(task, now)
	}
	return dtos
}

// ToTaskWithDetailsDTO converts a joined task row to DTO
func ToTaskWithDetailsDTO(row repository.TaskWithDetails, now time.Time) TaskWithDetailsDTO {
	dto := TaskWithDetailsDTO{
		TaskDTO: ToTaskDTO(row.Task, now),
	}
	if row.GroupDetail != nil {
		group := ToGroupDTO(*row.GroupDetail)
		dto.Group = &group
	}
	if row.Assignee != nil {
		assignee := ToUserDTO(*row.Assignee)
		dto.Assignee = &assignee
	}
	return dto
}

// ToTaskWithDetailsDTOs converts a slice of joined task rows
func ToTaskWithDetailsDTOs(rows []repository.TaskWithDetails, now time.Time) []TaskWithDetailsDTO {
	dtos := make([]TaskWithDetailsDTO, len(rows))
	for i, row := range rows {
		dtos[i] = ToTaskWithDetailsDTO(row, now)
	}
	return dtos
}

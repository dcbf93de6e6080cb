package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/hokamoto/studygroup-api/internal/authz"
	"github.com/hokamoto/studygroup-api/internal/models"
	"github.com/hokamoto/studygroup-api/internal/repository"
)

var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrTitleRequired     = errors.New("title is required")
	ErrTitleEmpty        = errors.New("title cannot be empty")
	ErrInvalidStatus     = errors.New("status must be one of pending, in_progress, completed")
	ErrInvalidPriority   = errors.New("priority must be one of low, medium, high")
	ErrTaskGroupNotFound = errors.New("task group does not exist")
	ErrAssigneeNotMember = errors.New("assignee is not a member of the group")
)

// TaskService owns the task lifecycle. Status is a free-form enum, not a
// state machine: any authorized caller may set any valid status at any time,
// including reopening a completed task.
type TaskService struct {
	taskRepo  repository.TaskRepository
	groupRepo repository.GroupRepository
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository, groupRepo repository.GroupRepository) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		groupRepo: groupRepo,
	}
}

// CreateTaskInput represents input for creating a task.
type CreateTaskInput struct {
	GroupID     uint64
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	AssigneeID  *uint64
	DueDate     *time.Time
}

// CreateTask creates a task scoped to a group. The caller must be a member of
// that group; the assignee, when given, must be a current member.
func (s *TaskService) CreateTask(actor authz.Actor, input CreateTaskInput) (*models.Task, error) {
	group, err := s.groupRepo.FindByID(input.GroupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskGroupNotFound
		}
		return nil, fmt.Errorf("failed to find group: %w", err)
	}

	isMember, err := s.isMember(input.GroupID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := authz.Can(actor, authz.ActionCreateTask, authz.GroupContext{CreatorID: group.CreatorID, IsMember: isMember}); err != nil {
		return nil, err
	}

	if input.Title == "" {
		return nil, ErrTitleRequired
	}

	if input.Status == "" {
		input.Status = models.TaskStatusPending
	}
	if !models.ValidTaskStatus(input.Status) {
		return nil, ErrInvalidStatus
	}

	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}
	if !models.ValidTaskPriority(input.Priority) {
		return nil, ErrInvalidPriority
	}

	if input.AssigneeID != nil {
		if err := s.ensureAssigneeIsMember(input.GroupID, *input.AssigneeID); err != nil {
			return nil, err
		}
	}

	task := &models.Task{
		GroupID:     input.GroupID,
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		AssigneeID:  input.AssigneeID,
		DueDate:     input.DueDate,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// GetTask returns a task with its group and assignee loaded.
func (s *TaskService) GetTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Group", "Assignee")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// ListTasks retrieves tasks with filtering and pagination.
func (s *TaskService) ListTasks(filter repository.TaskFilter) ([]models.Task, int64, error) {
	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// ListTasksByGroup lists all tasks of one group.
func (s *TaskService) ListTasksByGroup(groupID uint64) ([]models.Task, error) {
	if _, err := s.groupRepo.FindByID(groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to find group: %w", err)
	}

	tasks, err := s.taskRepo.ListByGroup(groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group tasks: %w", err)
	}
	return tasks, nil
}

// ListTasksWithDetails joins every task to its group and assignee.
func (s *TaskService) ListTasksWithDetails() ([]repository.TaskWithDetails, error) {
	tasks, err := s.taskRepo.ListWithDetails()
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTaskInput carries the mutable task fields. GroupID is immutable once
// set and deliberately absent here.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	AssigneeID    *uint64
	ClearAssignee bool
	DueDate       *time.Time
	ClearDueDate  bool
}

// UpdateTask merges the provided fields into an existing task.
func (s *TaskService) UpdateTask(actor authz.Actor, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.loadTaskForManage(actor, taskID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !models.ValidTaskStatus(*input.Status) {
			return nil, ErrInvalidStatus
		}
		task.Status = *input.Status
	}
	if input.Priority != nil {
		if !models.ValidTaskPriority(*input.Priority) {
			return nil, ErrInvalidPriority
		}
		task.Priority = *input.Priority
	}
	if input.ClearAssignee {
		task.AssigneeID = nil
	} else if input.AssigneeID != nil {
		if err := s.ensureAssigneeIsMember(task.GroupID, *input.AssigneeID); err != nil {
			return nil, err
		}
		task.AssigneeID = input.AssigneeID
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// SetStatus sets the task status to any valid value.
func (s *TaskService) SetStatus(actor authz.Actor, taskID uint64, status models.TaskStatus) (*models.Task, error) {
	if !models.ValidTaskStatus(status) {
		return nil, ErrInvalidStatus
	}
	return s.UpdateTask(actor, taskID, UpdateTaskInput{Status: &status})
}

// DeleteTask deletes a task. Unconditional once authorized; tasks have no
// dependents.
func (s *TaskService) DeleteTask(actor authz.Actor, taskID uint64) error {
	if _, err := s.loadTaskForManage(actor, taskID); err != nil {
		return err
	}

	found, err := s.taskRepo.Delete(taskID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if !found {
		return ErrTaskNotFound
	}

	return nil
}

// loadTaskForManage loads the task and runs the actor through the manage
// gate, which admits the group creator and global admins.
func (s *TaskService) loadTaskForManage(actor authz.Actor, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	var creatorID uint64
	group, err := s.groupRepo.FindByID(task.GroupID)
	if err == nil {
		creatorID = group.CreatorID
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to find group: %w", err)
	}
	// A missing group here is the integrity-violation case; the gate then
	// only admits admins, which is the safe denial.

	if err := authz.Can(actor, authz.ActionManageTask, authz.GroupContext{CreatorID: creatorID}); err != nil {
		return nil, err
	}

	return task, nil
}

func (s *TaskService) ensureAssigneeIsMember(groupID, userID uint64) error {
	if _, err := s.groupRepo.FindMember(groupID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssigneeNotMember
		}
		return fmt.Errorf("failed to verify assignee membership: %w", err)
	}
	return nil
}

func (s *TaskService) isMember(groupID, userID uint64) (bool, error) {
	if _, err := s.groupRepo.FindMember(groupID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to verify membership: %w", err)
	}
	return true, nil
}

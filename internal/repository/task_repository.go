package repository

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hokamoto/studygroup-api/internal/database"
	"github.com/hokamoto/studygroup-api/internal/models"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB, logger *zap.Logger) TaskRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GormTaskRepository{db: db, logger: logger}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{})

	if filter.GroupID != nil {
		query = query.Where("group_id = ?", *filter.GroupID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.AssigneeID != nil {
		query = query.Where("assignee_id = ?", *filter.AssigneeID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("created_at DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(filter.Page, filter.PageSize))
	}

	if err := listQuery.Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// ListByGroup lists all tasks of one group
func (r *GormTaskRepository) ListByGroup(groupID uint64) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Where("group_id = ?", groupID).
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListWithDetails joins every task to its group and assignee. A missing
// assignee is the accepted dangling-reference case and emits nil; a missing
// group means a cascade was skipped somewhere and is logged as an integrity
// violation, but the row is still returned rather than failing the whole
// listing.
func (r *GormTaskRepository) ListWithDetails() ([]TaskWithDetails, error) {
	var tasks []models.Task
	if err := r.db.Preload("Group").Preload("Assignee").
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}

	result := make([]TaskWithDetails, 0, len(tasks))
	for _, task := range tasks {
		detail := TaskWithDetails{Task: task}

		if task.Group.ID != 0 {
			group := task.Group
			detail.GroupDetail = &group
		} else {
			r.logger.Error("integrity violation: task references missing group",
				zap.Uint64("task_id", task.ID),
				zap.Uint64("group_id", task.GroupID),
			)
		}

		if task.Assignee != nil && task.Assignee.ID != 0 {
			assignee := *task.Assignee
			detail.Assignee = &assignee
		}

		// The embedded relation structs are already flattened into the
		// detail fields; zero them so they don't serialize twice.
		detail.Task.Group = models.Group{}
		detail.Task.Assignee = nil

		result = append(result, detail)
	}

	return result, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// Delete soft deletes a task. Tasks own nothing, so there is no cascade.
func (r *GormTaskRepository) Delete(id uint64) (bool, error) {
	res := r.db.Delete(&models.Task{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

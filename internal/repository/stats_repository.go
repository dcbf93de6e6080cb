package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/hokamoto/studygroup-api/internal/models"
)

// GormStatsRepository is a GORM implementation of StatsRepository. Every
// counter is a fresh count query; nothing is cached, so read-after-write
// consistency is automatic and cost scales with table size.
type GormStatsRepository struct {
	db *gorm.DB
}

// NewStatsRepository creates a new StatsRepository
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &GormStatsRepository{db: db}
}

// TotalGroups counts all groups
func (r *GormStatsRepository) TotalGroups() (int64, error) {
	var count int64
	err := r.db.Model(&models.Group{}).Count(&count).Error
	return count, err
}

// ActiveTasks counts tasks that are not completed
func (r *GormStatsRepository) ActiveTasks() (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).
		Where("status <> ?", models.TaskStatusCompleted).
		Count(&count).Error
	return count, err
}

// CompletedToday counts completed tasks created on the current calendar day.
// There is no completed_at column, so creation date stands in for completion
// date.
func (r *GormStatsRepository) CompletedToday(now time.Time) (int64, error) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.Add(24 * time.Hour)

	var count int64
	err := r.db.Model(&models.Task{}).
		Where("status = ?", models.TaskStatusCompleted).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&count).Error
	return count, err
}

// DueThisWeek counts incomplete tasks due within [today, today+7)
func (r *GormStatsRepository) DueThisWeek(now time.Time) (int64, error) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.Add(7 * 24 * time.Hour)

	var count int64
	err := r.db.Model(&models.Task{}).
		Where("status <> ?", models.TaskStatusCompleted).
		Where("due_date >= ? AND due_date < ?", start, end).
		Count(&count).Error
	return count, err
}

package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hokamoto/studygroup-api/internal/models"
)

func setupTaskRepoDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupMember{},
		&models.Task{},
	)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

func TestTaskRepository_ListWithDetails_MissingGroup(t *testing.T) {
	db := setupTaskRepoDB(t)

	core, logs := observer.New(zap.ErrorLevel)
	repo := NewTaskRepository(db, zap.New(core))

	intact := &models.Group{Name: "Math", Description: "study", CreatorID: 1}
	require.NoError(t, db.Create(intact).Error)
	doomed := &models.Group{Name: "Physics", Description: "study", CreatorID: 1}
	require.NoError(t, db.Create(doomed).Error)

	require.NoError(t, db.Create(&models.Task{GroupID: intact.ID, Title: "kept", Status: models.TaskStatusPending, Priority: models.TaskPriorityMedium}).Error)
	orphan := &models.Task{GroupID: doomed.ID, Title: "orphaned", Status: models.TaskStatusPending, Priority: models.TaskPriorityMedium}
	require.NoError(t, db.Create(orphan).Error)

	// Remove the group out from under its task, skipping the cascade.
	require.NoError(t, db.Unscoped().Delete(&models.Group{}, doomed.ID).Error)

	rows, err := repo.ListWithDetails()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byTitle := make(map[string]TaskWithDetails, len(rows))
	for _, row := range rows {
		byTitle[row.Task.Title] = row
	}

	require.NotNil(t, byTitle["kept"].GroupDetail)
	require.Equal(t, intact.ID, byTitle["kept"].GroupDetail.ID)

	// The orphaned row is still emitted, with a nil group.
	require.Nil(t, byTitle["orphaned"].GroupDetail)

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Contains(t, entries[0].Message, "integrity violation")
	require.EqualValues(t, orphan.ID, entries[0].ContextMap()["task_id"])
}

func TestTaskRepository_List_Pagination(t *testing.T) {
	db := setupTaskRepoDB(t)
	repo := NewTaskRepository(db, zap.NewNop())

	group := &models.Group{Name: "Math", Description: "study", CreatorID: 1}
	require.NoError(t, db.Create(group).Error)

	for i := 0; i < 5; i++ {
		require.NoError(t, db.Create(&models.Task{
			GroupID:  group.ID,
			Title:    "t",
			Status:   models.TaskStatusPending,
			Priority: models.TaskPriorityMedium,
		}).Error)
	}

	tasks, total, err := repo.List(TaskFilter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	require.EqualValues(t, 5, total)
	require.Len(t, tasks, 2)

	tasks, total, err = repo.List(TaskFilter{Page: 3, PageSize: 2})
	require.NoError(t, err)
	require.EqualValues(t, 5, total)
	require.Len(t, tasks, 1)

	// No pagination requested returns everything.
	tasks, _, err = repo.List(TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 5)
}

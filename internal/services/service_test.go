package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hokamoto/studygroup-api/internal/authz"
	"github.com/hokamoto/studygroup-api/internal/models"
	"github.com/hokamoto/studygroup-api/internal/repository"
)

type serviceTestEnv struct {
	db           *gorm.DB
	groupService *GroupService
	taskService  *TaskService
	userService  *UserService
	statsService *StatsService
	authService  *AuthService
}

func setupServiceTestEnv(t *testing.T) serviceTestEnv {
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

	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	taskRepo := repository.NewTaskRepository(db, zap.NewNop())
	statsRepo := repository.NewStatsRepository(db)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return serviceTestEnv{
		db:           db,
		groupService: NewGroupService(groupRepo, userRepo),
		taskService:  NewTaskService(taskRepo, groupRepo),
		userService:  NewUserService(userRepo),
		statsService: NewStatsService(statsRepo, userRepo),
		authService:  NewAuthService(userRepo),
	}
}

func createTestUser(t *testing.T, db *gorm.DB, name string, role models.UserRole) *models.User {
	t.Helper()

	user := &models.User{
		FullName:     name,
		Email:        name + "@example.com",
		PasswordHash: "hashed",
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func actorFor(user *models.User) authz.Actor {
	return authz.Actor{UserID: user.ID, Role: user.Role}
}

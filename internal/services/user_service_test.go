package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hokamoto/studygroup-api/internal/authz"
	"github.com/hokamoto/studygroup-api/internal/models"
)

func TestUserService_AdminGate(t *testing.T) {
	env := setupServiceTestEnv(t)

	student := createTestUser(t, env.db, "student", models.RoleStudent)
	teacher := createTestUser(t, env.db, "teacher", models.RoleTeacher)

	for _, actor := range []*models.User{student, teacher} {
		_, err := env.userService.ListUsers(actorFor(actor))
		require.ErrorIs(t, err, authz.ErrForbidden)

		_, err = env.userService.SetSuspended(actorFor(actor), student.ID, true)
		require.ErrorIs(t, err, authz.ErrForbidden)

		err = env.userService.DeleteUser(actorFor(actor), student.ID)
		require.ErrorIs(t, err, authz.ErrForbidden)
	}
}

func TestUserService_CreateUser_AnyRole(t *testing.T) {
	env := setupServiceTestEnv(t)

	admin := createTestUser(t, env.db, "admin", models.RoleAdmin)

	user, err := env.userService.CreateUser(actorFor(admin), CreateUserInput{
		FullName: "New Teacher",
		Email:    "teacher@example.com",
		Password: "password123",
		Role:     models.RoleTeacher,
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleTeacher, user.Role)

	// Omitted role defaults to student.
	user, err = env.userService.CreateUser(actorFor(admin), CreateUserInput{
		FullName: "New Student",
		Email:    "student@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleStudent, user.Role)

	_, err = env.userService.CreateUser(actorFor(admin), CreateUserInput{
		FullName: "Bad Role",
		Email:    "bad@example.com",
		Password: "password123",
		Role:     models.UserRole("superuser"),
	})
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestUserService_UpdateUser(t *testing.T) {
	env := setupServiceTestEnv(t)

	admin := createTestUser(t, env.db, "admin", models.RoleAdmin)
	user := createTestUser(t, env.db, "user", models.RoleStudent)
	taken := createTestUser(t, env.db, "taken", models.RoleStudent)

	name := "Renamed"
	role := models.RoleTeacher
	updated, err := env.userService.UpdateUser(actorFor(admin), user.ID, UpdateUserInput{
		FullName: &name,
		Role:     &role,
	})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.FullName)
	require.Equal(t, models.RoleTeacher, updated.Role)
	require.Equal(t, user.Email, updated.Email)

	_, err = env.userService.UpdateUser(actorFor(admin), user.ID, UpdateUserInput{Email: &taken.Email})
	require.ErrorIs(t, err, ErrEmailTaken)

	_, err = env.userService.UpdateUser(actorFor(admin), 999, UpdateUserInput{})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_SuspendAndUnsuspend(t *testing.T) {
	env := setupServiceTestEnv(t)

	admin := createTestUser(t, env.db, "admin", models.RoleAdmin)
	user := createTestUser(t, env.db, "user", models.RoleStudent)

	suspended, err := env.userService.SetSuspended(actorFor(admin), user.ID, true)
	require.NoError(t, err)
	require.True(t, suspended.Suspended)

	restored, err := env.userService.SetSuspended(actorFor(admin), user.ID, false)
	require.NoError(t, err)
	require.False(t, restored.Suspended)
}

func TestUserService_DeleteUser_NoCascade(t *testing.T) {
	env := setupServiceTestEnv(t)

	admin := createTestUser(t, env.db, "admin", models.RoleAdmin)
	owner := createTestUser(t, env.db, "owner", models.RoleStudent)
	member := createTestUser(t, env.db, "member", models.RoleStudent)

	group := setupTaskGroup(t, env, owner)
	_, err := env.groupService.Join(actorFor(member), group.ID)
	require.NoError(t, err)

	task, err := env.taskService.CreateTask(actorFor(owner), CreateTaskInput{
		GroupID:    group.ID,
		Title:      "t",
		AssigneeID: &member.ID,
	})
	require.NoError(t, err)

	require.NoError(t, env.userService.DeleteUser(actorFor(admin), member.ID))

	_, err = env.authService.GetUser(member.ID)
	require.ErrorIs(t, err, ErrUserNotFound)

	// The assignee reference is weak: the task keeps the dangling id.
	kept, err := env.taskService.GetTask(task.ID)
	require.NoError(t, err)
	require.NotNil(t, kept.AssigneeID)
	require.Equal(t, member.ID, *kept.AssigneeID)

	err = env.userService.DeleteUser(actorFor(admin), member.ID)
	require.ErrorIs(t, err, ErrUserNotFound)
}

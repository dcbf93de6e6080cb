package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	apierrors "github.com/hokamoto/studygroup-api/internal/errors"
	"github.com/hokamoto/studygroup-api/internal/models"
)

func TestUserHandler_AdminOnly(t *testing.T) {
	env := setupHandlerTestEnv(t)
	student := createUser(t, env.db, "student", models.RoleStudent)
	teacher := createUser(t, env.db, "teacher", models.RoleTeacher)

	for _, u := range []*models.User{student, teacher} {
		w := env.do(t, http.MethodGet, "/api/users", nil, u)
		require.Equal(t, http.StatusForbidden, w.Code)
		require.Equal(t, apierrors.ErrCodeForbidden, errorCode(t, w))
	}

	w := env.do(t, http.MethodGet, "/api/users", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserHandler_ListUsers(t *testing.T) {
	env := setupHandlerTestEnv(t)
	admin := createUser(t, env.db, "admin", models.RoleAdmin)
	createUser(t, env.db, "student", models.RoleStudent)

	w := env.do(t, http.MethodGet, "/api/users", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	users, ok := body["users"].([]interface{})
	require.True(t, ok)
	require.Len(t, users, 2)
}

func TestUserHandler_CreateUser(t *testing.T) {
	env := setupHandlerTestEnv(t)
	admin := createUser(t, env.db, "admin", models.RoleAdmin)

	w := env.do(t, http.MethodPost, "/api/users", map[string]interface{}{
		"full_name": "New Teacher",
		"email":     "newteacher@example.com",
		"password":  "password123",
		"role":      "teacher",
	}, admin)
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, "teacher", body["role"])

	w = env.do(t, http.MethodPost, "/api/users", map[string]interface{}{
		"full_name": "Bad Role",
		"email":     "bad@example.com",
		"password":  "password123",
		"role":      "superuser",
	}, admin)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserHandler_SuspendLifecycle(t *testing.T) {
	env := setupHandlerTestEnv(t)
	admin := createUser(t, env.db, "admin", models.RoleAdmin)
	user := createUser(t, env.db, "user", models.RoleStudent)

	w := env.do(t, http.MethodPost, fmt.Sprintf("/api/users/%d/suspend", user.ID), nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, true, body["suspended"])

	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/users/%d/unsuspend", user.ID), nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	require.Equal(t, false, body["suspended"])
}

func TestUserHandler_UpdateUser(t *testing.T) {
	env := setupHandlerTestEnv(t)
	admin := createUser(t, env.db, "admin", models.RoleAdmin)
	user := createUser(t, env.db, "user", models.RoleStudent)

	w := env.do(t, http.MethodPut, fmt.Sprintf("/api/users/%d", user.ID), map[string]interface{}{
		"full_name": "Renamed",
		"role":      "teacher",
	}, admin)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, "Renamed", body["full_name"])
	require.Equal(t, "teacher", body["role"])

	w = env.do(t, http.MethodPut, "/api/users/999", map[string]interface{}{
		"full_name": "Ghost",
	}, admin)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserHandler_DeleteUser(t *testing.T) {
	env := setupHandlerTestEnv(t)
	admin := createUser(t, env.db, "admin", models.RoleAdmin)
	user := createUser(t, env.db, "user", models.RoleStudent)

	w := env.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", user.ID), nil, admin)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", user.ID), nil, admin)
	require.Equal(t, http.StatusNotFound, w.Code)
}

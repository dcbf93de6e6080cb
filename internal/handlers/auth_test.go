package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	apierrors "github.com/hokamoto/studygroup-api/internal/errors"
)

func TestAuthHandler_Register(t *testing.T) {
	env := setupHandlerTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/auth/register", map[string]interface{}{
		"full_name": "Alice",
		"email":     "alice@example.com",
		"password":  "password123",
	}, nil)

	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, "alice@example.com", body["email"])
	require.Equal(t, "student", body["role"])
	// The hash must never leak into responses.
	require.NotContains(t, w.Body.String(), "password")
}

func TestAuthHandler_Register_InvalidBody(t *testing.T) {
	env := setupHandlerTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/auth/register", map[string]interface{}{
		"full_name": "Alice",
		"email":     "not-an-email",
		"password":  "password123",
	}, nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, apierrors.ErrCodeInvalidInput, errorCode(t, w))
}

func TestAuthHandler_Register_ShortPassword(t *testing.T) {
	env := setupHandlerTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/auth/register", map[string]interface{}{
		"full_name": "Alice",
		"email":     "alice@example.com",
		"password":  "short",
	}, nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	env := setupHandlerTestEnv(t)

	payload := map[string]interface{}{
		"full_name": "Alice",
		"email":     "alice@example.com",
		"password":  "password123",
	}

	w := env.do(t, http.MethodPost, "/api/auth/register", payload, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/api/auth/register", payload, nil)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, apierrors.ErrCodeConflict, errorCode(t, w))
}

func TestAuthHandler_SessionFlow(t *testing.T) {
	env := setupHandlerTestEnv(t)
	r := sessionRouter(env)

	w := sessionRequest(t, r, http.MethodPost, "/api/auth/register", map[string]interface{}{
		"full_name": "Alice",
		"email":     "alice@example.com",
		"password":  "password123",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	// No session yet.
	w = sessionRequest(t, r, http.MethodGet, "/api/auth/me", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = sessionRequest(t, r, http.MethodPost, "/api/auth/login", map[string]interface{}{
		"email":    "alice@example.com",
		"password": "password123",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	w = sessionRequest(t, r, http.MethodGet, "/api/auth/me", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, "alice@example.com", body["email"])

	// Logout invalidates the session.
	w = sessionRequest(t, r, http.MethodPost, "/api/auth/logout", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	w = sessionRequest(t, r, http.MethodGet, "/api/auth/me", nil, w.Result().Cookies())
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	env := setupHandlerTestEnv(t)
	r := sessionRouter(env)

	w := sessionRequest(t, r, http.MethodPost, "/api/auth/register", map[string]interface{}{
		"full_name": "Alice",
		"email":     "alice@example.com",
		"password":  "password123",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = sessionRequest(t, r, http.MethodPost, "/api/auth/login", map[string]interface{}{
		"email":    "alice@example.com",
		"password": "wrong-password",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, apierrors.ErrCodeInvalidCredentials, errorCode(t, w))
}

func TestAuthHandler_Login_SuspendedAccount(t *testing.T) {
	env := setupHandlerTestEnv(t)
	r := sessionRouter(env)

	w := sessionRequest(t, r, http.MethodPost, "/api/auth/register", map[string]interface{}{
		"full_name": "Alice",
		"email":     "alice@example.com",
		"password":  "password123",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	require.NoError(t, env.db.Exec("UPDATE users SET suspended = ? WHERE email = ?", true, "alice@example.com").Error)

	w = sessionRequest(t, r, http.MethodPost, "/api/auth/login", map[string]interface{}{
		"email":    "alice@example.com",
		"password": "password123",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, apierrors.ErrCodeUnauthorized, errorCode(t, w))
}

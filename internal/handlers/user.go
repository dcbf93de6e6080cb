package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hokamoto/studygroup-api/internal/authz"
	"github.com/hokamoto/studygroup-api/internal/dto"
	apierrors "github.com/hokamoto/studygroup-api/internal/errors"
	"github.com/hokamoto/studygroup-api/internal/models"
	"github.com/hokamoto/studygroup-api/internal/services"
)

// UserHandler coordinates the admin user-management HTTP handlers.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ListUsers returns every user.
func (h *UserHandler) ListUsers(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	users, err := h.userService.ListUsers(actor)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": dto.ToUserDTOs(users),
	})
}

// CreateUser creates a user with an explicit role.
func (h *UserHandler) CreateUser(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	type CreateUserRequest struct {
		FullName string `json:"full_name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		Role     string `json:"role"`
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.CreateUser(actor, services.CreateUserInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Role:     models.UserRole(req.Role),
	})
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// UpdateUser merges the provided fields into a user record.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type UpdateUserRequest struct {
		FullName *string `json:"full_name"`
		Email    *string `json:"email"`
		Role     *string `json:"role"`
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateUserInput{
		FullName: req.FullName,
		Email:    req.Email,
	}
	if req.Role != nil {
		role := models.UserRole(*req.Role)
		input.Role = &role
	}

	user, err := h.userService.UpdateUser(actor, userID, input)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// SuspendUser suspends a user account.
func (h *UserHandler) SuspendUser(c *gin.Context) {
	h.setSuspended(c, true)
}

// UnsuspendUser reactivates a suspended user account.
func (h *UserHandler) UnsuspendUser(c *gin.Context) {
	h.setSuspended(c, false)
}

func (h *UserHandler) setSuspended(c *gin.Context, suspended bool) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.SetSuspended(actor, userID, suspended)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// DeleteUser hard-deletes a user account.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(actor, userID); err != nil {
		respondUserError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func respondUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, authz.ErrForbidden):
		apierrors.Forbidden(c)
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrFullNameRequired),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrInvalidRole):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, err.Error())
	default:
		apierrors.InternalError(c)
	}
}

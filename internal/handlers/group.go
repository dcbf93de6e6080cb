package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hokamoto/studygroup-api/internal/authz"
	"github.com/hokamoto/studygroup-api/internal/dto"
	apierrors "github.com/hokamoto/studygroup-api/internal/errors"
	"github.com/hokamoto/studygroup-api/internal/middleware"
	"github.com/hokamoto/studygroup-api/internal/services"
)

// GroupHandler coordinates group and membership HTTP handlers.
type GroupHandler struct {
	groupService *services.GroupService
	taskService  *services.TaskService
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(groupService *services.GroupService, taskService *services.TaskService) *GroupHandler {
	return &GroupHandler{
		groupService: groupService,
		taskService:  taskService,
	}
}

// ListGroups returns every group with its recomputed stats.
func (h *GroupHandler) ListGroups(c *gin.Context) {
	groups, err := h.groupService.ListGroupsWithStats()
	if err != nil {
		respondGroupError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"groups": dto.ToGroupWithStatsDTOs(groups),
	})
}

// CreateGroup creates a new group owned by the caller.
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	type CreateGroupRequest struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description" binding:"required"`
	}

	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	group, err := h.groupService.CreateGroup(actor, services.CreateGroupInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondGroupError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToGroupDTO(*group))
}

// GetGroup returns a single group.
func (h *GroupHandler) GetGroup(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	group, err := h.groupService.GetGroup(groupID)
	if err != nil {
		respondGroupError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToGroupDTO(*group))
}

// UpdateGroup merges name/description changes into a group.
func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type UpdateGroupRequest struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}

	var req UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	group, err := h.groupService.UpdateGroup(actor, groupID, services.UpdateGroupInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondGroupError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToGroupDTO(*group))
}

// DeleteGroup removes a group and cascades its memberships and tasks.
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.groupService.DeleteGroup(actor, groupID); err != nil {
		respondGroupError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListMembers returns a group's members in insertion order.
func (h *GroupHandler) ListMembers(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	members, err := h.groupService.ListMembers(groupID)
	if err != nil {
		respondGroupError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"members": dto.ToGroupMemberDTOs(members),
	})
}

// JoinGroup adds the caller to a group.
func (h *GroupHandler) JoinGroup(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	member, err := h.groupService.Join(actor, groupID)
	if err != nil {
		respondGroupError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToGroupMemberDTO(*member))
}

// AddMember adds another user to a group on behalf of the owner or an admin.
func (h *GroupHandler) AddMember(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type AddMemberRequest struct {
		UserID uint64 `json:"user_id" binding:"required"`
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.groupService.AddMember(actor, groupID, req.UserID)
	if err != nil {
		respondGroupError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToGroupMemberDTO(*member))
}

// RemoveMember removes a user from a group.
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.groupService.RemoveMember(actor, groupID, userID); err != nil {
		respondGroupError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ReassignOwner makes an existing member the group's new owner.
func (h *GroupHandler) ReassignOwner(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type ReassignOwnerRequest struct {
		NewOwnerID uint64 `json:"new_owner_id" binding:"required"`
	}

	var req ReassignOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	group, err := h.groupService.ReassignOwner(actor, groupID, req.NewOwnerID)
	if err != nil {
		respondGroupError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToGroupDTO(*group))
}

// ListGroupTasks lists every task of one group.
func (h *GroupHandler) ListGroupTasks(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	tasks, err := h.taskService.ListTasksByGroup(groupID)
	if err != nil {
		respondGroupError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToTaskDTOs(tasks, time.Now()),
	})
}

func respondGroupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, authz.ErrForbidden):
		apierrors.Forbidden(c)
	case errors.Is(err, services.ErrGroupNotFound),
		errors.Is(err, services.ErrMemberNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvalidGroupName),
		errors.Is(err, services.ErrInvalidGroupDescription),
		errors.Is(err, services.ErrMemberUserNotFound),
		errors.Is(err, services.ErrNotGroupMember):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrAlreadyMember),
		errors.Is(err, services.ErrOwnerRemoval):
		apierrors.Conflict(c, err.Error())
	default:
		apierrors.InternalError(c)
	}
}

func requireActor(c *gin.Context) (authz.Actor, bool) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return authz.Actor{}, false
	}
	return actor, true
}

func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid ID")
		return 0, false
	}
	return id, true
}

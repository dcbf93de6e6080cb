package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/hokamoto/studygroup-api/internal/authz"
	"github.com/hokamoto/studygroup-api/internal/constants"
	"github.com/hokamoto/studygroup-api/internal/models"
	"github.com/hokamoto/studygroup-api/internal/repository"
)

var (
	ErrGroupNotFound           = errors.New("group not found")
	ErrInvalidGroupName        = errors.New("group name cannot be empty")
	ErrInvalidGroupDescription = errors.New("group description cannot be empty")
	ErrAlreadyMember           = errors.New("user is already a member of this group")
	ErrOwnerRemoval            = errors.New("group owner cannot be removed without reassigning ownership first")
	ErrMemberNotFound          = errors.New("group member not found")
	ErrNotGroupMember          = errors.New("user is not a member of this group")
	ErrMemberUserNotFound      = errors.New("user does not exist")
)

// GroupService owns group CRUD and membership semantics. Every mutation runs
// its caller through the authz gate before touching the repository.
type GroupService struct {
	groupRepo repository.GroupRepository
	userRepo  repository.UserRepository
}

// NewGroupService creates a new GroupService.
func NewGroupService(groupRepo repository.GroupRepository, userRepo repository.UserRepository) *GroupService {
	return &GroupService{
		groupRepo: groupRepo,
		userRepo:  userRepo,
	}
}

// CreateGroupInput represents parameters to create a new group.
type CreateGroupInput struct {
	Name        string
	Description string
}

// CreateGroup creates a group owned by the actor, who becomes its sole
// initial member.
func (s *GroupService) CreateGroup(actor authz.Actor, input CreateGroupInput) (*models.Group, error) {
	if err := authz.Can(actor, authz.ActionCreateGroup, authz.GroupContext{}); err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidGroupName
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, ErrInvalidGroupDescription
	}

	group := &models.Group{
		Name:        input.Name,
		Description: input.Description,
		CreatorID:   actor.UserID,
	}

	if err := s.groupRepo.Create(group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	return group, nil
}

// GetGroup returns a group by id.
func (s *GroupService) GetGroup(groupID uint64) (*models.Group, error) {
	group, err := s.groupRepo.FindByID(groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to find group: %w", err)
	}
	return group, nil
}

// ListGroupsWithStats returns every group with its recomputed aggregates.
func (s *GroupService) ListGroupsWithStats() ([]repository.GroupWithStats, error) {
	groups, err := s.groupRepo.ListWithStats(constants.RecentMemberCount)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

// UpdateGroupInput carries the mutable group fields. Creator and member list
// are not reachable through update.
type UpdateGroupInput struct {
	Name        *string
	Description *string
}

// UpdateGroup merges the provided fields into the group.
func (s *GroupService) UpdateGroup(actor authz.Actor, groupID uint64, input UpdateGroupInput) (*models.Group, error) {
	group, err := s.GetGroup(groupID)
	if err != nil {
		return nil, err
	}

	if err := authz.Can(actor, authz.ActionManageGroup, authz.GroupContext{CreatorID: group.CreatorID}); err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrInvalidGroupName
		}
		group.Name = *input.Name
	}
	if input.Description != nil {
		if strings.TrimSpace(*input.Description) == "" {
			return nil, ErrInvalidGroupDescription
		}
		group.Description = *input.Description
	}

	if err := s.groupRepo.Update(group); err != nil {
		return nil, fmt.Errorf("failed to update group: %w", err)
	}

	return group, nil
}

// DeleteGroup removes the group with all its memberships and tasks.
func (s *GroupService) DeleteGroup(actor authz.Actor, groupID uint64) error {
	group, err := s.GetGroup(groupID)
	if err != nil {
		return err
	}

	if err := authz.Can(actor, authz.ActionManageGroup, authz.GroupContext{CreatorID: group.CreatorID}); err != nil {
		return err
	}

	found, err := s.groupRepo.Delete(groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if !found {
		return ErrGroupNotFound
	}

	return nil
}

// Join adds the actor to the group. Joining a group twice is rejected, not
// silently ignored; that is the documented contract.
func (s *GroupService) Join(actor authz.Actor, groupID uint64) (*models.GroupMember, error) {
	if err := authz.Can(actor, authz.ActionJoinGroup, authz.GroupContext{}); err != nil {
		return nil, err
	}

	if _, err := s.GetGroup(groupID); err != nil {
		return nil, err
	}

	return s.addMember(groupID, actor.UserID)
}

// AddMember adds another user to the group on behalf of the owner or an
// admin.
func (s *GroupService) AddMember(actor authz.Actor, groupID, userID uint64) (*models.GroupMember, error) {
	group, err := s.GetGroup(groupID)
	if err != nil {
		return nil, err
	}

	if err := authz.Can(actor, authz.ActionManageGroup, authz.GroupContext{CreatorID: group.CreatorID}); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return s.addMember(groupID, userID)
}

// addMember performs the duplicate check and insert. The pre-check gives the
// deterministic ErrAlreadyMember contract; the unique index on
// (group_id, user_id) closes the race between two concurrent joins, and the
// re-check after a failed insert maps that collision onto the same error.
func (s *GroupService) addMember(groupID, userID uint64) (*models.GroupMember, error) {
	if _, err := s.groupRepo.FindMember(groupID, userID); err == nil {
		return nil, ErrAlreadyMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	member := &models.GroupMember{
		GroupID:  groupID,
		UserID:   userID,
		JoinedAt: time.Now(),
	}

	if err := s.groupRepo.AddMember(member); err != nil {
		if _, findErr := s.groupRepo.FindMember(groupID, userID); findErr == nil {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return member, nil
}

// RemoveMember removes a user from the group. The owner can never be removed;
// a group must always retain its owner, so ownership has to be reassigned
// first.
func (s *GroupService) RemoveMember(actor authz.Actor, groupID, userID uint64) error {
	group, err := s.GetGroup(groupID)
	if err != nil {
		return err
	}

	if err := authz.Can(actor, authz.ActionManageGroup, authz.GroupContext{CreatorID: group.CreatorID}); err != nil {
		return err
	}

	if userID == group.CreatorID {
		return ErrOwnerRemoval
	}

	if _, err := s.groupRepo.FindMember(groupID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to find group member: %w", err)
	}

	if err := s.groupRepo.RemoveMember(groupID, userID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

// ReassignOwner makes an existing member the new owner. The old owner stays a
// plain member until separately removed; the group keeps exactly one owner.
func (s *GroupService) ReassignOwner(actor authz.Actor, groupID, newOwnerID uint64) (*models.Group, error) {
	group, err := s.GetGroup(groupID)
	if err != nil {
		return nil, err
	}

	if err := authz.Can(actor, authz.ActionManageGroup, authz.GroupContext{CreatorID: group.CreatorID}); err != nil {
		return nil, err
	}

	if _, err := s.groupRepo.FindMember(groupID, newOwnerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotGroupMember
		}
		return nil, fmt.Errorf("failed to find group member: %w", err)
	}

	group.CreatorID = newOwnerID
	if err := s.groupRepo.Update(group); err != nil {
		return nil, fmt.Errorf("failed to reassign owner: %w", err)
	}

	return group, nil
}

// ListMembers returns a group's members in insertion order.
func (s *GroupService) ListMembers(groupID uint64) ([]models.GroupMember, error) {
	if _, err := s.GetGroup(groupID); err != nil {
		return nil, err
	}

	members, err := s.groupRepo.ListMembers(groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group members: %w", err)
	}
	return members, nil
}

// IsMember reports whether the user currently belongs to the group.
func (s *GroupService) IsMember(groupID, userID uint64) (bool, error) {
	if _, err := s.groupRepo.FindMember(groupID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to verify membership: %w", err)
	}
	return true, nil
}

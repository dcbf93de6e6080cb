package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/hokamoto/studygroup-api/internal/models"
)

// GormGroupRepository is a GORM implementation of GroupRepository
type GormGroupRepository struct {
	db *gorm.DB
}

// NewGroupRepository creates a new GroupRepository
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &GormGroupRepository{db: db}
}

// Create creates a group and adds the creator as its first member. Both rows
// commit together so a group is never observable without its owner.
func (r *GormGroupRepository) Create(group *models.Group) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}

		member := &models.GroupMember{
			GroupID:  group.ID,
			UserID:   group.CreatorID,
			JoinedAt: time.Now(),
		}
		return tx.Create(member).Error
	})
}

// FindByID finds a group by ID
func (r *GormGroupRepository) FindByID(id uint64) (*models.Group, error) {
	var group models.Group
	if err := r.db.First(&group, id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// Update updates a group
func (r *GormGroupRepository) Update(group *models.Group) error {
	return r.db.Save(group).Error
}

// Delete removes the group's tasks, memberships, and the group itself in a
// single transaction. All-or-nothing: no task may outlive its group.
func (r *GormGroupRepository) Delete(id uint64) (bool, error) {
	found := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if err := tx.Where("group_id = ?", id).Delete(&models.GroupMember{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.Group{}, id)
		if res.Error != nil {
			return res.Error
		}
		found = res.RowsAffected > 0
		return nil
	})
	return found, err
}

// ListWithStats recomputes member and task counts plus the first members in
// insertion order for every group. Full recomputation per call; callers must
// not assume O(1) cost.
func (r *GormGroupRepository) ListWithStats(recent int) ([]GroupWithStats, error) {
	var groups []models.Group
	if err := r.db.Order("id").Find(&groups).Error; err != nil {
		return nil, err
	}

	result := make([]GroupWithStats, 0, len(groups))
	for _, group := range groups {
		var memberCount int64
		if err := r.db.Model(&models.GroupMember{}).
			Where("group_id = ?", group.ID).
			Count(&memberCount).Error; err != nil {
			return nil, err
		}

		var taskCount int64
		if err := r.db.Model(&models.Task{}).
			Where("group_id = ?", group.ID).
			Count(&taskCount).Error; err != nil {
			return nil, err
		}

		var recentMembers []models.GroupMember
		if err := r.db.Preload("User").
			Where("group_id = ?", group.ID).
			Order("id").
			Limit(recent).
			Find(&recentMembers).Error; err != nil {
			return nil, err
		}

		result = append(result, GroupWithStats{
			Group:         group,
			MemberCount:   memberCount,
			TaskCount:     taskCount,
			RecentMembers: recentMembers,
		})
	}

	return result, nil
}

// AddMember adds a member to a group
func (r *GormGroupRepository) AddMember(member *models.GroupMember) error {
	return r.db.Create(member).Error
}

// RemoveMember removes a member from a group
func (r *GormGroupRepository) RemoveMember(groupID, userID uint64) error {
	return r.db.Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.GroupMember{}).Error
}

// FindMember finds a specific group member
func (r *GormGroupRepository) FindMember(groupID, userID uint64) (*models.GroupMember, error) {
	var member models.GroupMember
	if err := r.db.Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers lists all members of a group in insertion order
func (r *GormGroupRepository) ListMembers(groupID uint64) ([]models.GroupMember, error) {
	var members []models.GroupMember
	if err := r.db.Preload("User").
		Where("group_id = ?", groupID).
		Order("id").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// ListMembersByUserID lists all groups a user is a member of
func (r *GormGroupRepository) ListMembersByUserID(userID uint64) ([]models.GroupMember, error) {
	var memberships []models.GroupMember
	if err := r.db.Preload("Group").
		Where("user_id = ?", userID).
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

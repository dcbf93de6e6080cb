package dto

import (
	"time"

	"github.com/hokamoto/studygroup-api/internal/models"
	"github.com/hokamoto/studygroup-api/internal/repository"
)

// GroupDTO represents a group in API responses
type GroupDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatorID   uint64    `json:"creator_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// GroupMemberDTO represents a membership row, with the user included when
// preloaded
type GroupMemberDTO struct {
	ID       uint64    `json:"id"`
	GroupID  uint64    `json:"group_id"`
	UserID   uint64    `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
	User     *UserDTO  `json:"user,omitempty"`
}

// GroupWithStatsDTO is a group plus its recomputed aggregates
type GroupWithStatsDTO struct {
	GroupDTO
	MemberCount   int64            `json:"member_count"`
	TaskCount     int64            `json:"task_count"`
	RecentMembers []GroupMemberDTO `json:"recent_members"`
}

// ToGroupDTO converts a Group model to GroupDTO
func ToGroupDTO(group models.Group) GroupDTO {
	return GroupDTO{
		ID:          group.ID,
		Name:        group.Name,
		Description: group.Description,
		CreatorID:   group.CreatorID,
		CreatedAt:   group.CreatedAt,
	}
}

// ToGroupMemberDTO converts a membership row to DTO
func ToGroupMemberDTO(member models.GroupMember) GroupMemberDTO {
	dto := GroupMemberDTO{
		ID:       member.ID,
		GroupID:  member.GroupID,
		UserID:   member.UserID,
		JoinedAt: member.JoinedAt,
	}
	if member.User.ID != 0 {
		user := ToUserDTO(member.User)
		dto.User = &user
	}
	return dto
}

// ToGroupMemberDTOs converts a slice of membership rows
func ToGroupMemberDTOs(members []models.GroupMember) []GroupMemberDTO {
	dtos := make([]GroupMemberDTO, len(members))
	for i, member := range members {
		dtos[i] = ToGroupMemberDTO(member)
	}
	return dtos
}

// ToGroupWithStatsDTO converts a stats row to DTO
func ToGroupWithStatsDTO(row repository.GroupWithStats) GroupWithStatsDTO {
	return GroupWithStatsDTO{
		GroupDTO:      ToGroupDTO(row.Group),
		MemberCount:   row.MemberCount,
		TaskCount:     row.TaskCount,
		RecentMembers: ToGroupMemberDTOs(row.RecentMembers),
	}
}

// ToGroupWithStatsDTOs converts a slice of stats rows
func ToGroupWithStatsDTOs(rows []repository.GroupWithStats) []GroupWithStatsDTO {
	dtos := make([]GroupWithStatsDTO, len(rows))
	for i, row := range rows {
		dtos[i] = ToGroupWithStatsDTO(row)
	}
	return dtos
}

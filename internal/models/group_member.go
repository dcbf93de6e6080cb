package models

import "time"

// GroupMember rows are hard-deleted, never soft-deleted: the unique index on
// (group_id, user_id) is what makes a concurrent double-join impossible, and a
// tombstone row would collide with a legitimate re-join.
//
// The auto-increment id doubles as insertion order for "recent members".
type GroupMember struct {
	ID       uint64    `gorm:"primarykey" json:"id"`
	GroupID  uint64    `gorm:"not null;uniqueIndex:idx_group_members_group_user" json:"group_id"`
	UserID   uint64    `gorm:"not null;uniqueIndex:idx_group_members_group_user" json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`

	// Relations
	Group Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

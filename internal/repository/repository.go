package repository

import (
	"time"

	"github.com/hokamoto/studygroup-api/internal/models"
)

// GroupWithStats is a group row joined with its recompute-on-read aggregates.
type GroupWithStats struct {
	models.Group
	MemberCount   int64                `json:"member_count"`
	TaskCount     int64                `json:"task_count"`
	RecentMembers []models.GroupMember `json:"recent_members"`
}

// TaskWithDetails joins a task to its owning group and, when set, its
// assignee. Group is nil only when an integrity violation slipped through a
// non-cascaded delete; Assignee is nil for unassigned tasks and for the
// accepted dangling-assignee case.
type TaskWithDetails struct {
	models.Task
	GroupDetail *models.Group `json:"group"`
	Assignee    *models.User  `json:"assignee"`
}

// GroupRepository defines the interface for group and membership data access
type GroupRepository interface {
	// Create creates a group and its creator membership in one transaction
	Create(group *models.Group) error

	// FindByID finds a group by ID
	FindByID(id uint64) (*models.Group, error)

	// Update updates a group
	Update(group *models.Group) error

	// Delete removes the group with all its memberships and tasks in one
	// transaction. Returns false when the group does not exist.
	Delete(id uint64) (bool, error)

	// ListWithStats returns every group with member/task counts and the first
	// members in insertion order, recomputed on every call
	ListWithStats(recent int) ([]GroupWithStats, error)

	// AddMember adds a member row; the unique index on (group_id, user_id)
	// rejects a concurrent duplicate at the storage layer
	AddMember(member *models.GroupMember) error

	// RemoveMember removes a membership row
	RemoveMember(groupID, userID uint64) error

	// FindMember finds a specific membership
	FindMember(groupID, userID uint64) (*models.GroupMember, error)

	// ListMembers lists a group's members in insertion order
	ListMembers(groupID uint64) ([]models.GroupMember, error)

	// ListMembersByUserID lists all memberships of a user
	ListMembersByUserID(userID uint64) ([]models.GroupMember, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	GroupID    *uint64
	Status     *models.TaskStatus
	AssigneeID *uint64
	Page       int
	PageSize   int
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// ListByGroup lists all tasks of one group
	ListByGroup(groupID uint64) ([]models.Task, error)

	// ListWithDetails joins every task to its group and assignee
	ListWithDetails() ([]TaskWithDetails, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete soft deletes a task; tasks have no dependents to cascade
	Delete(id uint64) (bool, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// List returns all users
	List() ([]models.User, error)

	// Update updates a user
	Update(user *models.User) error

	// Delete hard-deletes a user; nothing cascades, historical creator and
	// assignee ids stay behind as dangling references
	Delete(id uint64) (bool, error)

	// CountBySuspended counts users partitioned by the suspended flag
	CountBySuspended(suspended bool) (int64, error)
}

// StatsRepository exposes the dashboard counters, each recomputed per call
type StatsRepository interface {
	TotalGroups() (int64, error)
	ActiveTasks() (int64, error)
	CompletedToday(now time.Time) (int64, error)
	DueThisWeek(now time.Time) (int64, error)
}

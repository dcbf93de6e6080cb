package services

import (
	"fmt"
	"time"

	"github.com/hokamoto/studygroup-api/internal/repository"
)

// Stats is the dashboard counter set. Every field is recomputed from the
// store on each read.
type Stats struct {
	TotalGroups    int64 `json:"total_groups"`
	ActiveTasks    int64 `json:"active_tasks"`
	CompletedToday int64 `json:"completed_today"`
	DueThisWeek    int64 `json:"due_this_week"`
	ActiveUsers    int64 `json:"active_users"`
	SuspendedUsers int64 `json:"suspended_users"`
}

// StatsService derives the dashboard counters by recomputation on read.
type StatsService struct {
	statsRepo repository.StatsRepository
	userRepo  repository.UserRepository
}

// NewStatsService creates a new StatsService.
func NewStatsService(statsRepo repository.StatsRepository, userRepo repository.UserRepository) *StatsService {
	return &StatsService{
		statsRepo: statsRepo,
		userRepo:  userRepo,
	}
}

// Overview computes the full counter set as of now.
func (s *StatsService) Overview(now time.Time) (*Stats, error) {
	totalGroups, err := s.statsRepo.TotalGroups()
	if err != nil {
		return nil, fmt.Errorf("failed to count groups: %w", err)
	}

	activeTasks, err := s.statsRepo.ActiveTasks()
	if err != nil {
		return nil, fmt.Errorf("failed to count active tasks: %w", err)
	}

	completedToday, err := s.statsRepo.CompletedToday(now)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks completed today: %w", err)
	}

	dueThisWeek, err := s.statsRepo.DueThisWeek(now)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks due this week: %w", err)
	}

	activeUsers, err := s.userRepo.CountBySuspended(false)
	if err != nil {
		return nil, fmt.Errorf("failed to count active users: %w", err)
	}

	suspendedUsers, err := s.userRepo.CountBySuspended(true)
	if err != nil {
		return nil, fmt.Errorf("failed to count suspended users: %w", err)
	}

	return &Stats{
		TotalGroups:    totalGroups,
		ActiveTasks:    activeTasks,
		CompletedToday: completedToday,
		DueThisWeek:    dueThisWeek,
		ActiveUsers:    activeUsers,
		SuspendedUsers: suspendedUsers,
	}, nil
}

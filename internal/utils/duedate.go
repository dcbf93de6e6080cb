package utils

import (
	"time"

	"github.com/hokamoto/studygroup-api/internal/models"
)

// DueClass buckets a due date for display. It never drives a state
// transition.
type DueClass string

const (
	DueNone     DueClass = "none"
	DueOverdue  DueClass = "overdue"
	DueToday    DueClass = "today"
	DueTomorrow DueClass = "tomorrow"
	DueThisWeek DueClass = "this_week"
	DueNextWeek DueClass = "next_week"
	DueFuture   DueClass = "future"
)

// ClassifyDueDate buckets a task's due date relative to now. Completed tasks
// are never overdue; a past-due completed task falls through to its calendar
// bucket.
func ClassifyDueDate(due *time.Time, status models.TaskStatus, now time.Time) DueClass {
	if due == nil {
		return DueNone
	}

	if due.Before(now) && status != models.TaskStatusCompleted {
		return DueOverdue
	}

	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dueDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, due.Location())
	days := int(dueDay.Sub(startOfToday).Hours() / 24)

	switch {
	case days <= 0:
		return DueToday
	case days == 1:
		return DueTomorrow
	case days <= 7:
		return DueThisWeek
	case days <= 14:
		return DueNextWeek
	default:
		return DueFuture
	}
}

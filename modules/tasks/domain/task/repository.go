package task

import (
	"context"
	"time"
)

type FindParams struct {
	DepartmentIDs []uint
	AssigneeID    *uint
	CreatorID     *uint
	RelatedTo     *uint
	Statuses      []Status
	FinishBefore  *time.Time
	Limit         int
	Offset        int
}

type Repository interface {
	GetByID(ctx context.Context, id uint) (*Task, error)
	List(ctx context.Context, params *FindParams) ([]*Task, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
	Create(ctx context.Context, t *Task) (*Task, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id uint) error
}

type HistoryRepository interface {
	Create(ctx context.Context, h *History) error
	ListByTask(ctx context.Context, taskID uint) ([]*History, error)
}

// StatsFilter narrows the counting queries; zero values mean no filter.
type StatsFilter struct {
	DepartmentIDs []uint
	AssigneeID    *uint
	Now           time.Time
}

// StatusCounts aggregates tasks by lifecycle position.
type StatusCounts struct {
	Open       int
	InProgress int
	Done       int
	Approved   int
	Cancelled  int
	// Late: working tasks whose finish date has passed.
	Late int
	// NotStarted: open tasks whose start date is in the future.
	NotStarted int
	// Unassigned: working tasks without an assignee.
	Unassigned int
}

type StatsRepository interface {
	StatusCounts(ctx context.Context, filter StatsFilter) (*StatusCounts, error)
	RankCounts(ctx context.Context, departmentIDs []uint) (map[RequesterRank]int, error)
}

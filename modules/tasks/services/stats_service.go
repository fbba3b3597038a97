package services

import (
	"context"

	"github.com/jonboulle/clockwork"

	"github.com/iota-uz/taskdesk/modules/core/domain/entities/permission"
	"github.com/iota-uz/taskdesk/modules/tasks/domain/task"
	"github.com/iota-uz/taskdesk/pkg/serrors"
)

// DepartmentStats is the per-department task breakdown. RankCounts is filled
// only for callers holding Departments level >= 3.
type DepartmentStats struct {
	DepartmentID uint
	Counts       task.StatusCounts
	RankCounts   map[task.RequesterRank]int
}

type UserStats struct {
	UserID uint
	Counts task.StatusCounts
}

// StatsService answers the statistics reads. Visibility follows the same
// levels as the task list: level 1 and 2 see their own task counts, level 3
// and up sees department-wide numbers including the unassigned pool.
type StatsService struct {
	repo  task.StatsRepository
	authz Authorizer
	clock clockwork.Clock
}

func NewStatsService(repo task.StatsRepository, authz Authorizer, clock clockwork.Clock) *StatsService {
	return &StatsService{repo: repo, authz: authz, clock: clock}
}

func (s *StatsService) ForDepartment(ctx context.Context, actorID, departmentID uint) (*DepartmentStats, error) {
	target := departmentID
	if err := s.authz.Authorize(ctx, actorID, permission.CategoryTasks, 1, &target); err != nil {
		return nil, err
	}
	level, err := s.authz.LevelFor(ctx, actorID, permission.CategoryTasks)
	if err != nil {
		return nil, err
	}

	filter := task.StatsFilter{
		DepartmentIDs: []uint{departmentID},
		Now:           s.clock.Now(),
	}
	if level < 3 {
		filter.AssigneeID = &actorID
	}

	counts, err := s.repo.StatusCounts(ctx, filter)
	if err != nil {
		return nil, err
	}
	if level < 3 {
		// the unassigned pool is only visible to those who can assign
		counts.Unassigned = 0
	}

	stats := &DepartmentStats{DepartmentID: departmentID, Counts: *counts}

	deptLevel, err := s.authz.LevelFor(ctx, actorID, permission.CategoryDepartments)
	if err != nil {
		return nil, err
	}
	if deptLevel >= 3 {
		ranks, err := s.repo.RankCounts(ctx, []uint{departmentID})
		if err != nil {
			return nil, err
		}
		stats.RankCounts = ranks
	}
	return stats, nil
}

func (s *StatsService) ForUser(ctx context.Context, actorID, userID uint) (*UserStats, error) {
	if actorID != userID {
		if err := s.authz.Authorize(ctx, actorID, permission.CategoryUsers, 3, nil); err != nil {
			return nil, err
		}
	}
	level, err := s.authz.LevelFor(ctx, actorID, permission.CategoryTasks)
	if err != nil {
		return nil, err
	}
	if level < 1 {
		return nil, serrors.NewForbiddenError(string(permission.CategoryTasks), 1, level)
	}

	counts, err := s.repo.StatusCounts(ctx, task.StatsFilter{
		AssigneeID: &userID,
		Now:        s.clock.Now(),
	})
	if err != nil {
		return nil, err
	}
	counts.Unassigned = 0
	return &UserStats{UserID: userID, Counts: *counts}, nil
}

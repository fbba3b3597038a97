package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/iota-uz/taskdesk/modules/tasks/domain/task"
	"github.com/iota-uz/taskdesk/pkg/composables"
	"github.com/iota-uz/taskdesk/pkg/repo"
)

type StatsRepository struct{}

func NewStatsRepository() task.StatsRepository {
	return &StatsRepository{}
}

// StatusCounts aggregates in one round trip using FILTER clauses. The derived
// columns (late, not started, unassigned) are computed against filter.Now so
// callers control the reference time.
func (r *StatsRepository) StatusCounts(ctx context.Context, filter task.StatsFilter) (*task.StatusCounts, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	where, args, argPos := buildStatsFilters(filter)
	now := filter.Now
	if now.IsZero() {
		now = time.Now()
	}
	args = append(args, now)

	query := repo.Join(fmt.Sprintf(`
		SELECT
			COUNT(*) FILTER (WHERE status = 'open'),
			COUNT(*) FILTER (WHERE status = 'inprogress'),
			COUNT(*) FILTER (WHERE status = 'done'),
			COUNT(*) FILTER (WHERE status = 'approved'),
			COUNT(*) FILTER (WHERE status = 'cancelled'),
			COUNT(*) FILTER (WHERE status IN ('open', 'inprogress') AND finish_date IS NOT NULL AND finish_date < $%d),
			COUNT(*) FILTER (WHERE status = 'open' AND start_date IS NOT NULL AND start_date > $%d),
			COUNT(*) FILTER (WHERE status IN ('open', 'inprogress') AND assignee_id IS NULL)
		FROM tasks`, argPos, argPos),
		repo.JoinWhere(where...),
	)

	var counts task.StatusCounts
	if err := tx.QueryRow(ctx, query, args...).Scan(
		&counts.Open,
		&counts.InProgress,
		&counts.Done,
		&counts.Approved,
		&counts.Cancelled,
		&counts.Late,
		&counts.NotStarted,
		&counts.Unassigned,
	); err != nil {
		return nil, err
	}
	return &counts, nil
}

func (r *StatsRepository) RankCounts(ctx context.Context, departmentIDs []uint) (map[task.RequesterRank]int, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT requester_rank, COUNT(*) FROM tasks`
	var args []interface{}
	if len(departmentIDs) > 0 {
		query += ` WHERE department_id = ANY($1)`
		args = append(args, departmentIDs)
	}
	query += ` GROUP BY requester_rank`

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[task.RequesterRank]int)
	for rows.Next() {
		var rank string
		var count int
		if err := rows.Scan(&rank, &count); err != nil {
			return nil, err
		}
		counts[task.RequesterRank(rank)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

func buildStatsFilters(filter task.StatsFilter) ([]string, []interface{}, int) {
	var where []string
	var args []interface{}
	argPos := 1

	if len(filter.DepartmentIDs) > 0 {
		where = append(where, fmt.Sprintf("department_id = ANY($%d)", argPos))
		args = append(args, filter.DepartmentIDs)
		argPos++
	}
	if filter.AssigneeID != nil {
		where = append(where, fmt.Sprintf("assignee_id = $%d", argPos))
		args = append(args, *filter.AssigneeID)
		argPos++
	}
	return where, args, argPos
}

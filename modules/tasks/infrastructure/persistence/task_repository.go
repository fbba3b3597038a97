package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/taskdesk/modules/tasks/domain/task"
	"github.com/iota-uz/taskdesk/modules/tasks/infrastructure/persistence/models"
	"github.com/iota-uz/taskdesk/pkg/composables"
	"github.com/iota-uz/taskdesk/pkg/repo"
	"github.com/iota-uz/taskdesk/pkg/serrors"
)

const taskColumns = `id, title, description, creator_id, authorizer_id, assignee_id, department_id,
	status, start_date, finish_date, requester_name, requester_contact, requester_rank,
	created_at, updated_at`

type TaskRepository struct{}

func NewTaskRepository() task.Repository {
	return &TaskRepository{}
}

func (r *TaskRepository) GetByID(ctx context.Context, id uint) (*task.Task, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	var row models.Task
	err = tx.QueryRow(
		ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`,
		id,
	).Scan(
		&row.ID, &row.Title, &row.Description, &row.CreatorID, &row.AuthorizerID,
		&row.AssigneeID, &row.DepartmentID, &row.Status, &row.StartDate, &row.FinishDate,
		&row.RequesterName, &row.RequesterContact, &row.RequesterRank,
		&row.CreatedAt, &row.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, serrors.NewNotFoundError("task", id)
	}
	if err != nil {
		return nil, err
	}
	return toDomainTask(&row), nil
}

func (r *TaskRepository) List(ctx context.Context, params *task.FindParams) ([]*task.Task, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	where, args := buildTaskFilters(params)
	query := repo.Join(
		`SELECT `+taskColumns+` FROM tasks`,
		repo.JoinWhere(where...),
		`ORDER BY created_at DESC, id DESC`,
	)
	if params != nil {
		query = repo.Join(query, repo.FormatLimitOffset(params.Limit, params.Offset))
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*task.Task
	for rows.Next() {
		var row models.Task
		if err := rows.Scan(
			&row.ID, &row.Title, &row.Description, &row.CreatorID, &row.AuthorizerID,
			&row.AssigneeID, &row.DepartmentID, &row.Status, &row.StartDate, &row.FinishDate,
			&row.RequesterName, &row.RequesterContact, &row.RequesterRank,
			&row.CreatedAt, &row.UpdatedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, toDomainTask(&row))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *TaskRepository) Count(ctx context.Context, params *task.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	where, args := buildTaskFilters(params)

	var count int64
	if err := tx.QueryRow(
		ctx,
		repo.Join(`SELECT COUNT(*) FROM tasks`, repo.JoinWhere(where...)),
		args...,
	).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *TaskRepository) Create(ctx context.Context, entity *task.Task) (*task.Task, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	err = tx.QueryRow(
		ctx,
		`INSERT INTO tasks (
			title, description, creator_id, authorizer_id, assignee_id, department_id,
			status, start_date, finish_date, requester_name, requester_contact, requester_rank
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id, created_at, updated_at`,
		entity.Title, entity.Description, entity.CreatorID, entity.AuthorizerID,
		entity.AssigneeID, entity.DepartmentID, string(entity.Status),
		entity.StartDate, entity.FinishDate,
		entity.RequesterName, entity.RequesterContact, string(entity.RequesterRank),
	).Scan(&entity.ID, &entity.CreatedAt, &entity.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (r *TaskRepository) Update(ctx context.Context, entity *task.Task) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(
		ctx,
		`UPDATE tasks SET
			title = $1, description = $2, authorizer_id = $3, assignee_id = $4,
			department_id = $5, status = $6, start_date = $7, finish_date = $8,
			requester_name = $9, requester_contact = $10, requester_rank = $11,
			updated_at = NOW()
		 WHERE id = $12`,
		entity.Title, entity.Description, entity.AuthorizerID, entity.AssigneeID,
		entity.DepartmentID, string(entity.Status), entity.StartDate, entity.FinishDate,
		entity.RequesterName, entity.RequesterContact, string(entity.RequesterRank),
		entity.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return serrors.NewNotFoundError("task", entity.ID)
	}
	return nil
}

// Delete removes the task row only. History rows reference the task by value
// and survive.
func (r *TaskRepository) Delete(ctx context.Context, id uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM task_comments WHERE task_id = $1`, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return serrors.NewNotFoundError("task", id)
	}
	return nil
}

func buildTaskFilters(params *task.FindParams) ([]string, []interface{}) {
	var where []string
	var args []interface{}
	if params == nil {
		return where, args
	}
	argPos := 1

	if len(params.DepartmentIDs) > 0 {
		where = append(where, fmt.Sprintf("department_id = ANY($%d)", argPos))
		args = append(args, params.DepartmentIDs)
		argPos++
	}
	if params.AssigneeID != nil {
		where = append(where, fmt.Sprintf("assignee_id = $%d", argPos))
		args = append(args, *params.AssigneeID)
		argPos++
	}
	if params.CreatorID != nil {
		where = append(where, fmt.Sprintf("creator_id = $%d", argPos))
		args = append(args, *params.CreatorID)
		argPos++
	}
	if params.RelatedTo != nil {
		where = append(where, fmt.Sprintf(
			"(creator_id = $%d OR authorizer_id = $%d OR assignee_id = $%d)",
			argPos, argPos, argPos,
		))
		args = append(args, *params.RelatedTo)
		argPos++
	}
	if len(params.Statuses) > 0 {
		statuses := make([]string, 0, len(params.Statuses))
		for _, s := range params.Statuses {
			statuses = append(statuses, string(s))
		}
		where = append(where, fmt.Sprintf("status = ANY($%d)", argPos))
		args = append(args, statuses)
		argPos++
	}
	if params.FinishBefore != nil {
		where = append(where, fmt.Sprintf("finish_date IS NOT NULL AND finish_date < $%d", argPos))
		args = append(args, *params.FinishBefore)
	}
	return where, args
}

package persistence

import (
	"context"
	"time"

	"github.com/iota-uz/taskdesk/modules/tasks/domain/task"
	"github.com/iota-uz/taskdesk/modules/tasks/infrastructure/persistence/models"
	"github.com/iota-uz/taskdesk/pkg/composables"
)

const taskHistoryColumns = `id, task_id, title, description, creator_id, authorizer_id, assignee_id,
	department_id, status, start_date, finish_date, requester_name, requester_contact,
	requester_rank, changed_by, created_at`

type TaskHistoryRepository struct{}

func NewTaskHistoryRepository() task.HistoryRepository {
	return &TaskHistoryRepository{}
}

func (r *TaskHistoryRepository) Create(ctx context.Context, h *task.History) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}
	return tx.QueryRow(
		ctx,
		`INSERT INTO task_history (
			task_id, title, description, creator_id, authorizer_id, assignee_id,
			department_id, status, start_date, finish_date, requester_name,
			requester_contact, requester_rank, changed_by, created_at
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 RETURNING id`,
		h.TaskID, h.Title, h.Description, h.CreatorID, h.AuthorizerID, h.AssigneeID,
		h.DepartmentID, string(h.Status), h.StartDate, h.FinishDate,
		h.RequesterName, h.RequesterContact, string(h.RequesterRank),
		h.ChangedBy, h.CreatedAt,
	).Scan(&h.ID)
}

func (r *TaskHistoryRepository) ListByTask(ctx context.Context, taskID uint) ([]*task.History, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(
		ctx,
		`SELECT `+taskHistoryColumns+` FROM task_history WHERE task_id = $1 ORDER BY created_at, id`,
		taskID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*task.History
	for rows.Next() {
		var row models.TaskHistory
		if err := rows.Scan(
			&row.ID, &row.TaskID, &row.Title, &row.Description, &row.CreatorID,
			&row.AuthorizerID, &row.AssigneeID, &row.DepartmentID, &row.Status,
			&row.StartDate, &row.FinishDate, &row.RequesterName, &row.RequesterContact,
			&row.RequesterRank, &row.ChangedBy, &row.CreatedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, toDomainTaskHistory(&row))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

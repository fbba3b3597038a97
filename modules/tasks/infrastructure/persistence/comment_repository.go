package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/taskdesk/modules/tasks/domain/comment"
	"github.com/iota-uz/taskdesk/modules/tasks/infrastructure/persistence/models"
	"github.com/iota-uz/taskdesk/pkg/composables"
	"github.com/iota-uz/taskdesk/pkg/serrors"
)

const commentColumns = "id, task_id, author_id, body, image_url, created_at, updated_at"

type CommentRepository struct{}

func NewCommentRepository() comment.Repository {
	return &CommentRepository{}
}

func (r *CommentRepository) GetByID(ctx context.Context, id uint) (*comment.Comment, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	var row models.Comment
	err = tx.QueryRow(
		ctx,
		`SELECT `+commentColumns+` FROM task_comments WHERE id = $1`,
		id,
	).Scan(&row.ID, &row.TaskID, &row.AuthorID, &row.Body, &row.ImageURL, &row.CreatedAt, &row.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, serrors.NewNotFoundError("comment", id)
	}
	if err != nil {
		return nil, err
	}
	return toDomainComment(&row), nil
}

func (r *CommentRepository) ListByTask(ctx context.Context, taskID uint) ([]*comment.Comment, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(
		ctx,
		`SELECT `+commentColumns+` FROM task_comments WHERE task_id = $1 ORDER BY created_at, id`,
		taskID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*comment.Comment
	for rows.Next() {
		var row models.Comment
		if err := rows.Scan(
			&row.ID, &row.TaskID, &row.AuthorID, &row.Body, &row.ImageURL,
			&row.CreatedAt, &row.UpdatedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, toDomainComment(&row))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *CommentRepository) Create(ctx context.Context, entity *comment.Comment) (*comment.Comment, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	err = tx.QueryRow(
		ctx,
		`INSERT INTO task_comments (task_id, author_id, body, image_url)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		entity.TaskID, entity.AuthorID, entity.Body, entity.ImageURL,
	).Scan(&entity.ID, &entity.CreatedAt, &entity.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (r *CommentRepository) Update(ctx context.Context, entity *comment.Comment) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(
		ctx,
		`UPDATE task_comments SET body = $1, image_url = $2, updated_at = NOW() WHERE id = $3`,
		entity.Body, entity.ImageURL, entity.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return serrors.NewNotFoundError("comment", entity.ID)
	}
	return nil
}

func (r *CommentRepository) Delete(ctx context.Context, id uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM task_comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return serrors.NewNotFoundError("comment", id)
	}
	return nil
}

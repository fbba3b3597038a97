package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/taskdesk/modules/core/domain/aggregates/user"
	"github.com/iota-uz/taskdesk/modules/core/infrastructure/persistence/models"
	"github.com/iota-uz/taskdesk/pkg/composables"
	"github.com/iota-uz/taskdesk/pkg/repo"
	"github.com/iota-uz/taskdesk/pkg/serrors"
)

const userColumns = "u.id, u.name, u.email, u.phone, u.address, u.role_id, u.push_token, u.created_at, u.updated_at"

type UserRepository struct{}

func NewUserRepository() user.Repository {
	return &UserRepository{}
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	var row models.User
	err = tx.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM users u WHERE u.id = $1`,
		id,
	).Scan(
		&row.ID, &row.Name, &row.Email, &row.Phone, &row.Address,
		&row.RoleID, &row.PushToken, &row.CreatedAt, &row.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, serrors.NewNotFoundError("user", id)
	}
	if err != nil {
		return nil, err
	}

	entity := toDomainUser(&row)
	if err := r.loadMemberships(ctx, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func (r *UserRepository) List(ctx context.Context, params *user.FindParams) ([]*user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	var where []string
	var args []interface{}
	query := `SELECT ` + userColumns + ` FROM users u`
	argPos := 1

	if params != nil && params.DepartmentID != nil {
		query += ` JOIN department_members dm ON dm.user_id = u.id`
		where = append(where, fmt.Sprintf("dm.department_id = $%d", argPos))
		args = append(args, *params.DepartmentID)
		argPos++
	}
	if params != nil && params.RoleID != nil {
		where = append(where, fmt.Sprintf("u.role_id = $%d", argPos))
		args = append(args, *params.RoleID)
	}

	query = repo.Join(query, repo.JoinWhere(where...), "ORDER BY u.id")
	if params != nil {
		query = repo.Join(query, repo.FormatLimitOffset(params.Limit, params.Offset))
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*user.User
	for rows.Next() {
		var row models.User
		if err := rows.Scan(
			&row.ID, &row.Name, &row.Email, &row.Phone, &row.Address,
			&row.RoleID, &row.PushToken, &row.CreatedAt, &row.UpdatedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, toDomainUser(&row))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, entity := range results {
		if err := r.loadMemberships(ctx, entity); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (r *UserRepository) Create(ctx context.Context, entity *user.User) (*user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	err = tx.QueryRow(
		ctx,
		`INSERT INTO users (name, email, phone, address, role_id, push_token)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		entity.Name, entity.Email, entity.Phone, entity.Address, entity.RoleID, entity.PushToken,
	).Scan(&entity.ID, &entity.CreatedAt, &entity.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (r *UserRepository) Update(ctx context.Context, entity *user.User) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(
		ctx,
		`UPDATE users
		 SET name = $1, email = $2, phone = $3, address = $4, role_id = $5, updated_at = NOW()
		 WHERE id = $6`,
		entity.Name, entity.Email, entity.Phone, entity.Address, entity.RoleID, entity.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return serrors.NewNotFoundError("user", entity.ID)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM department_members WHERE user_id = $1`, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return serrors.NewNotFoundError("user", id)
	}
	return nil
}

func (r *UserRepository) SetPushToken(ctx context.Context, id uint, token *string) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(
		ctx,
		`UPDATE users SET push_token = $1, updated_at = NOW() WHERE id = $2`,
		token, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return serrors.NewNotFoundError("user", id)
	}
	return nil
}

func (r *UserRepository) loadMemberships(ctx context.Context, entity *user.User) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	rows, err := tx.Query(
		ctx,
		`SELECT department_id FROM department_members WHERE user_id = $1 ORDER BY department_id`,
		entity.ID,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	entity.DepartmentIDs = nil
	for rows.Next() {
		var departmentID uint
		if err := rows.Scan(&departmentID); err != nil {
			return err
		}
		entity.DepartmentIDs = append(entity.DepartmentIDs, departmentID)
	}
	return rows.Err()
}

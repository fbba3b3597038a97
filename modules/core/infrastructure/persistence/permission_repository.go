package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/taskdesk/modules/core/domain/entities/permission"
	"github.com/iota-uz/taskdesk/modules/core/infrastructure/persistence/models"
	"github.com/iota-uz/taskdesk/pkg/composables"
	"github.com/iota-uz/taskdesk/pkg/repo"
	"github.com/iota-uz/taskdesk/pkg/serrors"
)

const permissionColumns = "id, category, level, description"

type PermissionRepository struct{}

func NewPermissionRepository() permission.Repository {
	return &PermissionRepository{}
}

func (r *PermissionRepository) GetByID(ctx context.Context, id uint) (*permission.Permission, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	var row models.Permission
	err = tx.QueryRow(
		ctx,
		`SELECT `+permissionColumns+` FROM permissions WHERE id = $1`,
		id,
	).Scan(&row.ID, &row.Category, &row.Level, &row.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, serrors.NewNotFoundError("permission", id)
	}
	if err != nil {
		return nil, err
	}
	return toDomainPermission(&row), nil
}

func (r *PermissionRepository) GetByCategoryLevel(ctx context.Context, category permission.Category, level int) (*permission.Permission, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	var row models.Permission
	err = tx.QueryRow(
		ctx,
		`SELECT `+permissionColumns+` FROM permissions WHERE category = $1 AND level = $2`,
		string(category), level,
	).Scan(&row.ID, &row.Category, &row.Level, &row.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, serrors.NewNotFoundError("permission", 0)
	}
	if err != nil {
		return nil, err
	}
	return toDomainPermission(&row), nil
}

func (r *PermissionRepository) List(ctx context.Context, params *permission.FindParams) ([]*permission.Permission, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + permissionColumns + ` FROM permissions`
	var args []interface{}
	if params != nil && params.Category != nil {
		query += ` WHERE category = $1`
		args = append(args, string(*params.Category))
	}
	query += ` ORDER BY category, level`
	if params != nil {
		query += " " + repo.FormatLimitOffset(params.Limit, params.Offset)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*permission.Permission
	for rows.Next() {
		var row models.Permission
		if err := rows.Scan(&row.ID, &row.Category, &row.Level, &row.Description); err != nil {
			return nil, err
		}
		results = append(results, toDomainPermission(&row))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *PermissionRepository) Create(ctx context.Context, p *permission.Permission) (*permission.Permission, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	err = tx.QueryRow(
		ctx,
		`INSERT INTO permissions (category, level, description)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		string(p.Category), p.Level, p.Description,
	).Scan(&p.ID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PermissionRepository) Update(ctx context.Context, p *permission.Permission) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(
		ctx,
		`UPDATE permissions SET category = $1, level = $2, description = $3 WHERE id = $4`,
		string(p.Category), p.Level, p.Description, p.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return serrors.NewNotFoundError("permission", p.ID)
	}
	return nil
}

func (r *PermissionRepository) Delete(ctx context.Context, id uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM permissions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return serrors.NewNotFoundError("permission", id)
	}
	return nil
}

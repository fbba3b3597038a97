package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/taskdesk/modules/core/domain/aggregates/role"
	"github.com/iota-uz/taskdesk/modules/core/domain/entities/permission"
	"github.com/iota-uz/taskdesk/modules/core/infrastructure/persistence/models"
	"github.com/iota-uz/taskdesk/pkg/composables"
	"github.com/iota-uz/taskdesk/pkg/repo"
	"github.com/iota-uz/taskdesk/pkg/serrors"
)

type RoleRepository struct{}

func NewRoleRepository() role.Repository {
	return &RoleRepository{}
}

func (r *RoleRepository) GetByID(ctx context.Context, id uint) (*role.Role, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *RoleRepository) GetByName(ctx context.Context, name string) (*role.Role, error) {
	return r.getOne(ctx, `name = $1`, name)
}

func (r *RoleRepository) getOne(ctx context.Context, condition string, arg interface{}) (*role.Role, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	var row models.Role
	err = tx.QueryRow(
		ctx,
		`SELECT id, name, created_at, updated_at FROM roles WHERE `+condition,
		arg,
	).Scan(&row.ID, &row.Name, &row.CreatedAt, &row.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, serrors.NewNotFoundError("role", 0)
	}
	if err != nil {
		return nil, err
	}

	entity := toDomainRole(&row)
	if err := r.loadPermissions(ctx, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func (r *RoleRepository) List(ctx context.Context, params *role.FindParams) ([]*role.Role, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, name, created_at, updated_at FROM roles ORDER BY id`
	if params != nil {
		query += " " + repo.FormatLimitOffset(params.Limit, params.Offset)
	}

	rows, err := tx.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*role.Role
	for rows.Next() {
		var row models.Role
		if err := rows.Scan(&row.ID, &row.Name, &row.CreatedAt, &row.UpdatedAt); err != nil {
			return nil, err
		}
		results = append(results, toDomainRole(&row))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, entity := range results {
		if err := r.loadPermissions(ctx, entity); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (r *RoleRepository) Create(ctx context.Context, entity *role.Role) (*role.Role, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	err = tx.QueryRow(
		ctx,
		`INSERT INTO roles (name) VALUES ($1) RETURNING id, created_at, updated_at`,
		entity.Name,
	).Scan(&entity.ID, &entity.CreatedAt, &entity.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (r *RoleRepository) Update(ctx context.Context, entity *role.Role) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(
		ctx,
		`UPDATE roles SET name = $1, updated_at = NOW() WHERE id = $2`,
		entity.Name, entity.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return serrors.NewNotFoundError("role", entity.ID)
	}
	return nil
}

func (r *RoleRepository) Delete(ctx context.Context, id uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return serrors.NewNotFoundError("role", id)
	}
	return nil
}

// AttachPermission replaces the role's entry in p's category and links p. Both
// statements run on the caller's transaction.
func (r *RoleRepository) AttachPermission(ctx context.Context, roleID uint, p *permission.Permission) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(
		ctx,
		`DELETE FROM role_permissions rp
		 USING permissions perm
		 WHERE rp.permission_id = perm.id AND rp.role_id = $1 AND perm.category = $2`,
		roleID, string(p.Category),
	)
	if err != nil {
		return err
	}

	_, err = tx.Exec(
		ctx,
		`INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2)`,
		roleID, p.ID,
	)
	return err
}

func (r *RoleRepository) DetachPermission(ctx context.Context, roleID, permissionID uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(
		ctx,
		`DELETE FROM role_permissions WHERE role_id = $1 AND permission_id = $2`,
		roleID, permissionID,
	)
	return err
}

func (r *RoleRepository) loadPermissions(ctx context.Context, entity *role.Role) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	rows, err := tx.Query(
		ctx,
		`SELECT perm.id, perm.category, perm.level, perm.description
		 FROM role_permissions rp
		 JOIN permissions perm ON perm.id = rp.permission_id
		 WHERE rp.role_id = $1
		 ORDER BY perm.category`,
		entity.ID,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	entity.Permissions = nil
	for rows.Next() {
		var row models.Permission
		if err := rows.Scan(&row.ID, &row.Category, &row.Level, &row.Description); err != nil {
			return err
		}
		p := toDomainPermission(&row)
		if !p.Category.IsValid() {
			return fmt.Errorf("role %d references unknown permission category %q", entity.ID, p.Category)
		}
		entity.SetPermission(p)
	}
	return rows.Err()
}

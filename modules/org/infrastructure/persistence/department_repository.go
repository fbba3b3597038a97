package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/taskdesk/modules/org/domain/department"
	"github.com/iota-uz/taskdesk/modules/org/infrastructure/persistence/models"
	"github.com/iota-uz/taskdesk/pkg/composables"
	"github.com/iota-uz/taskdesk/pkg/repo"
	"github.com/iota-uz/taskdesk/pkg/serrors"
)

const departmentColumns = "id, name, parent_id, manager_id, created_at, updated_at"

type DepartmentRepository struct{}

func NewDepartmentRepository() department.Repository {
	return &DepartmentRepository{}
}

func (r *DepartmentRepository) GetByID(ctx context.Context, id uint) (*department.Department, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	var row models.Department
	err = tx.QueryRow(
		ctx,
		`SELECT `+departmentColumns+` FROM departments WHERE id = $1`,
		id,
	).Scan(&row.ID, &row.Name, &row.ParentID, &row.ManagerID, &row.CreatedAt, &row.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, serrors.NewNotFoundError("department", id)
	}
	if err != nil {
		return nil, err
	}

	entity := toDomainDepartment(&row)
	if err := r.loadMembers(ctx, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func (r *DepartmentRepository) GetAll(ctx context.Context) ([]*department.Department, error) {
	return r.query(ctx, `SELECT `+departmentColumns+` FROM departments ORDER BY id`)
}

func (r *DepartmentRepository) List(ctx context.Context, params *department.FindParams) ([]*department.Department, error) {
	query := `SELECT ` + departmentColumns + ` FROM departments`
	var args []interface{}
	if params != nil && params.ParentID != nil {
		query += ` WHERE parent_id = $1`
		args = append(args, *params.ParentID)
	}
	query += ` ORDER BY id`
	if params != nil {
		query = repo.Join(query, repo.FormatLimitOffset(params.Limit, params.Offset))
	}
	return r.query(ctx, query, args...)
}

func (r *DepartmentRepository) query(ctx context.Context, query string, args ...interface{}) ([]*department.Department, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*department.Department
	for rows.Next() {
		var row models.Department
		if err := rows.Scan(&row.ID, &row.Name, &row.ParentID, &row.ManagerID, &row.CreatedAt, &row.UpdatedAt); err != nil {
			return nil, err
		}
		results = append(results, toDomainDepartment(&row))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, entity := range results {
		if err := r.loadMembers(ctx, entity); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (r *DepartmentRepository) Create(ctx context.Context, entity *department.Department) (*department.Department, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	err = tx.QueryRow(
		ctx,
		`INSERT INTO departments (name, parent_id, manager_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		entity.Name, entity.ParentID, entity.ManagerID,
	).Scan(&entity.ID, &entity.CreatedAt, &entity.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (r *DepartmentRepository) Update(ctx context.Context, entity *department.Department) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(
		ctx,
		`UPDATE departments
		 SET name = $1, parent_id = $2, manager_id = $3, updated_at = NOW()
		 WHERE id = $4`,
		entity.Name, entity.ParentID, entity.ManagerID, entity.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return serrors.NewNotFoundError("department", entity.ID)
	}
	return nil
}

func (r *DepartmentRepository) Delete(ctx context.Context, id uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM department_members WHERE department_id = $1`, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return serrors.NewNotFoundError("department", id)
	}
	return nil
}

func (r *DepartmentRepository) AddMember(ctx context.Context, departmentID, userID uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(
		ctx,
		`INSERT INTO department_members (department_id, user_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		departmentID, userID,
	)
	return err
}

func (r *DepartmentRepository) RemoveMember(ctx context.Context, departmentID, userID uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(
		ctx,
		`DELETE FROM department_members WHERE department_id = $1 AND user_id = $2`,
		departmentID, userID,
	)
	return err
}

func (r *DepartmentRepository) ManagedBy(ctx context.Context, userID uint) ([]*department.Department, error) {
	return r.query(
		ctx,
		`SELECT `+departmentColumns+` FROM departments WHERE manager_id = $1 ORDER BY id`,
		userID,
	)
}

func (r *DepartmentRepository) loadMembers(ctx context.Context, entity *department.Department) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	rows, err := tx.Query(
		ctx,
		`SELECT user_id FROM department_members WHERE department_id = $1 ORDER BY user_id`,
		entity.ID,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	entity.MemberIDs = nil
	for rows.Next() {
		var userID uint
		if err := rows.Scan(&userID); err != nil {
			return err
		}
		entity.MemberIDs = append(entity.MemberIDs, userID)
	}
	return rows.Err()
}

func toDomainDepartment(row *models.Department) *department.Department {
	return &department.Department{
		ID:        row.ID,
		Name:      row.Name,
		ParentID:  row.ParentID,
		ManagerID: row.ManagerID,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

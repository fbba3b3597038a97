package role

import (
	"context"

	"github.com/iota-uz/taskdesk/modules/core/domain/entities/permission"
)

type FindParams struct {
	Limit  int
	Offset int
}

type Repository interface {
	GetByID(ctx context.Context, id uint) (*Role, error)
	GetByName(ctx context.Context, name string) (*Role, error)
	List(ctx context.Context, params *FindParams) ([]*Role, error)
	Create(ctx context.Context, r *Role) (*Role, error)
	Update(ctx context.Context, r *Role) error
	Delete(ctx context.Context, id uint) error

	// AttachPermission links an existing catalog permission to the role,
	// replacing any prior entry in the same category.
	AttachPermission(ctx context.Context, roleID uint, p *permission.Permission) error
	DetachPermission(ctx context.Context, roleID, permissionID uint) error
}

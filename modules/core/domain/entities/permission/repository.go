package permission

import "context"

type FindParams struct {
	Category *Category
	Limit    int
	Offset   int
}

type Repository interface {
	GetByID(ctx context.Context, id uint) (*Permission, error)
	GetByCategoryLevel(ctx context.Context, category Category, level int) (*Permission, error)
	List(ctx context.Context, params *FindParams) ([]*Permission, error)
	Create(ctx context.Context, p *Permission) (*Permission, error)
	Update(ctx context.Context, p *Permission) error
	Delete(ctx context.Context, id uint) error
}

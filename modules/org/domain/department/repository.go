package department

import "context"

type FindParams struct {
	ParentID *uint
	Limit    int
	Offset   int
}

type Repository interface {
	GetByID(ctx context.Context, id uint) (*Department, error)
	// GetAll returns every department row. The tree index is rebuilt from this
	// snapshot for each authorization decision.
	GetAll(ctx context.Context) ([]*Department, error)
	List(ctx context.Context, params *FindParams) ([]*Department, error)
	Create(ctx context.Context, d *Department) (*Department, error)
	Update(ctx context.Context, d *Department) error
	Delete(ctx context.Context, id uint) error

	AddMember(ctx context.Context, departmentID, userID uint) error
	RemoveMember(ctx context.Context, departmentID, userID uint) error
	// ManagedBy returns the departments whose manager is userID.
	ManagedBy(ctx context.Context, userID uint) ([]*Department, error)
}

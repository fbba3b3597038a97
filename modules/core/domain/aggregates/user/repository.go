package user

import "context"

type FindParams struct {
	DepartmentID *uint
	RoleID       *uint
	Limit        int
	Offset       int
}

type Repository interface {
	GetByID(ctx context.Context, id uint) (*User, error)
	List(ctx context.Context, params *FindParams) ([]*User, error)
	Create(ctx context.Context, u *User) (*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id uint) error
	SetPushToken(ctx context.Context, id uint, token *string) error
}

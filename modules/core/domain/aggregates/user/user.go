package user

import (
	"fmt"
	"time"
)

type User struct {
	ID        uint
	Name      string
	Email     string
	Phone     string
	Address   string
	RoleID    uint
	PushToken *string
	// DepartmentIDs is the user's direct memberships, hydrated on read.
	DepartmentIDs []uint
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func New(name, email string, roleID uint) (*User, error) {
	if name == "" {
		return nil, fmt.Errorf("user name is required")
	}
	if roleID == 0 {
		return nil, fmt.Errorf("user role is required")
	}
	return &User{Name: name, Email: email, RoleID: roleID}, nil
}

func (u *User) IsMemberOf(departmentID uint) bool {
	for _, id := range u.DepartmentIDs {
		if id == departmentID {
			return true
		}
	}
	return false
}

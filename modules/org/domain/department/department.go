package department

import (
	"fmt"
	"time"
)

type Department struct {
	ID        uint
	Name      string
	ParentID  *uint
	ManagerID uint
	MemberIDs []uint
	CreatedAt time.Time
	UpdatedAt time.Time
}

func New(name string, parentID *uint, managerID uint) (*Department, error) {
	if name == "" {
		return nil, fmt.Errorf("department name is required")
	}
	if managerID == 0 {
		return nil, fmt.Errorf("department manager is required")
	}
	return &Department{Name: name, ParentID: parentID, ManagerID: managerID}, nil
}

func (d *Department) IsTopLevel() bool {
	return d.ParentID == nil
}

func (d *Department) HasMember(userID uint) bool {
	for _, id := range d.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

package models

import "time"

type Department struct {
	ID        uint
	Name      string
	ParentID  *uint
	ManagerID uint
	CreatedAt time.Time
	UpdatedAt time.Time
}

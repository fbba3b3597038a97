package models

import "time"

type Permission struct {
	ID          uint
	Category    string
	Level       int
	Description string
}

type Role struct {
	ID        uint
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type User struct {
	ID        uint
	Name      string
	Email     string
	Phone     string
	Address   string
	RoleID    uint
	PushToken *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

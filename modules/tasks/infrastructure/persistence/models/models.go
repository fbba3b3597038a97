package models

import "time"

type Task struct {
	ID               uint
	Title            string
	Description      string
	CreatorID        uint
	AuthorizerID     uint
	AssigneeID       *uint
	DepartmentID     uint
	Status           string
	StartDate        *time.Time
	FinishDate       *time.Time
	RequesterName    string
	RequesterContact string
	RequesterRank    string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type TaskHistory struct {
	ID               uint
	TaskID           uint
	Title            string
	Description      string
	CreatorID        uint
	AuthorizerID     uint
	AssigneeID       *uint
	DepartmentID     uint
	Status           string
	StartDate        *time.Time
	FinishDate       *time.Time
	RequesterName    string
	RequesterContact string
	RequesterRank    string
	ChangedBy        uint
	CreatedAt        time.Time
}

type Comment struct {
	ID        uint
	TaskID    uint
	AuthorID  uint
	Body      string
	ImageURL  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

package task

import (
	"time"
)

type Task struct {
	ID           uint
	Title        string
	Description  string
	CreatorID    uint
	AuthorizerID uint
	AssigneeID   *uint
	DepartmentID uint
	Status       Status
	StartDate    *time.Time
	FinishDate   *time.Time

	RequesterName    string
	RequesterContact string
	RequesterRank    RequesterRank

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (t *Task) IsAssignee(userID uint) bool {
	return t.AssigneeID != nil && *t.AssigneeID == userID
}

func (t *Task) IsAuthorizer(userID uint) bool {
	return t.AuthorizerID == userID
}

func (t *Task) IsCreator(userID uint) bool {
	return t.CreatorID == userID
}

// IsRelated reports whether the user is creator, authorizer, or assignee.
func (t *Task) IsRelated(userID uint) bool {
	return t.IsCreator(userID) || t.IsAuthorizer(userID) || t.IsAssignee(userID)
}

// Snapshot clones the task's current field set for a history row.
func (t *Task) Snapshot(changedBy uint, at time.Time) *History {
	return &History{
		TaskID:           t.ID,
		Title:            t.Title,
		Description:      t.Description,
		CreatorID:        t.CreatorID,
		AuthorizerID:     t.AuthorizerID,
		AssigneeID:       t.AssigneeID,
		DepartmentID:     t.DepartmentID,
		Status:           t.Status,
		StartDate:        t.StartDate,
		FinishDate:       t.FinishDate,
		RequesterName:    t.RequesterName,
		RequesterContact: t.RequesterContact,
		RequesterRank:    t.RequesterRank,
		ChangedBy:        changedBy,
		CreatedAt:        at,
	}
}

// History is an immutable point-in-time copy of a task, one per mutation.
type History struct {
	ID               uint
	TaskID           uint
	Title            string
	Description      string
	CreatorID        uint
	AuthorizerID     uint
	AssigneeID       *uint
	DepartmentID     uint
	Status           Status
	StartDate        *time.Time
	FinishDate       *time.Time
	RequesterName    string
	RequesterContact string
	RequesterRank    RequesterRank
	ChangedBy        uint
	CreatedAt        time.Time
}

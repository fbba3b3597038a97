package persistence

import (
	"github.com/iota-uz/taskdesk/modules/tasks/domain/comment"
	"github.com/iota-uz/taskdesk/modules/tasks/domain/task"
	"github.com/iota-uz/taskdesk/modules/tasks/infrastructure/persistence/models"
)

func toDomainTask(row *models.Task) *task.Task {
	return &task.Task{
		ID:               row.ID,
		Title:            row.Title,
		Description:      row.Description,
		CreatorID:        row.CreatorID,
		AuthorizerID:     row.AuthorizerID,
		AssigneeID:       row.AssigneeID,
		DepartmentID:     row.DepartmentID,
		Status:           task.Status(row.Status),
		StartDate:        row.StartDate,
		FinishDate:       row.FinishDate,
		RequesterName:    row.RequesterName,
		RequesterContact: row.RequesterContact,
		RequesterRank:    task.RequesterRank(row.RequesterRank),
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}

func toDomainTaskHistory(row *models.TaskHistory) *task.History {
	return &task.History{
		ID:               row.ID,
		TaskID:           row.TaskID,
		Title:            row.Title,
		Description:      row.Description,
		CreatorID:        row.CreatorID,
		AuthorizerID:     row.AuthorizerID,
		AssigneeID:       row.AssigneeID,
		DepartmentID:     row.DepartmentID,
		Status:           task.Status(row.Status),
		StartDate:        row.StartDate,
		FinishDate:       row.FinishDate,
		RequesterName:    row.RequesterName,
		RequesterContact: row.RequesterContact,
		RequesterRank:    task.RequesterRank(row.RequesterRank),
		ChangedBy:        row.ChangedBy,
		CreatedAt:        row.CreatedAt,
	}
}

func toDomainComment(row *models.Comment) *comment.Comment {
	return &comment.Comment{
		ID:        row.ID,
		TaskID:    row.TaskID,
		AuthorID:  row.AuthorID,
		Body:      row.Body,
		ImageURL:  row.ImageURL,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

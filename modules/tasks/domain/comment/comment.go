package comment

import (
	"context"
	"fmt"
	"time"
)

type Comment struct {
	ID        uint
	TaskID    uint
	AuthorID  uint
	Body      string
	ImageURL  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func New(taskID, authorID uint, body string, imageURL *string) (*Comment, error) {
	if body == "" {
		return nil, fmt.Errorf("comment body is required")
	}
	return &Comment{
		TaskID:   taskID,
		AuthorID: authorID,
		Body:     body,
		ImageURL: imageURL,
	}, nil
}

type Repository interface {
	GetByID(ctx context.Context, id uint) (*Comment, error)
	ListByTask(ctx context.Context, taskID uint) ([]*Comment, error)
	Create(ctx context.Context, c *Comment) (*Comment, error)
	Update(ctx context.Context, c *Comment) error
	Delete(ctx context.Context, id uint) error
}

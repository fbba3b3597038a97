package activitylog

import (
	"context"
	"encoding/json"
	"time"
)

// ActivityLog is one append-only audit record. Rows are never updated or
// deleted.
type ActivityLog struct {
	ID         uint
	UserID     uint
	Action     string
	TargetType string
	TargetID   uint
	Metadata   json.RawMessage
	CreatedAt  time.Time
}

type FindParams struct {
	UserID     *uint
	Action     string
	TargetType string
	TargetID   *uint
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

type Repository interface {
	List(ctx context.Context, params *FindParams) ([]*ActivityLog, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
	Create(ctx context.Context, entry *ActivityLog) error
}

package notification

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	KindTaskAssigned  = "task_assigned"
	KindTaskAvailable = "task_available"
	KindTaskDone      = "task_done"
	KindTaskApproved  = "task_approved"
	KindTaskCancelled = "task_cancelled"
	KindTaskDueToday  = "task_due_today"
	KindTaskOverdue   = "task_overdue"
)

type Notification struct {
	ID          uuid.UUID
	RecipientID uint
	Title       string
	Body        string
	Kind        string
	Metadata    json.RawMessage
	Read        bool
	DeepLink    string
	CreatedAt   time.Time
}

type FindParams struct {
	RecipientID *uint
	Unread      *bool
	From        *time.Time
	Limit       int
	Offset      int
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	List(ctx context.Context, params *FindParams) ([]*Notification, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
	Create(ctx context.Context, n *Notification) error
	MarkRead(ctx context.Context, id uuid.UUID) error

	// HasUnreadSince reports whether the recipient already has an unread
	// notification of kind pointing at deepLink created at or after since.
	// Sweep jobs use it for per-day de-duplication.
	HasUnreadSince(ctx context.Context, recipientID uint, kind, deepLink string, since time.Time) (bool, error)
	// UnreadCountsSince returns, per recipient, how many unread notifications
	// were created at or after since.
	UnreadCountsSince(ctx context.Context, since time.Time) (map[uint]int, error)
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/taskdesk/modules/core/domain/aggregates/role"
	"github.com/iota-uz/taskdesk/modules/core/domain/aggregates/user"
	"github.com/iota-uz/taskdesk/modules/core/domain/entities/permission"
	"github.com/iota-uz/taskdesk/modules/notifications/domain/entities/notification"
	"github.com/iota-uz/taskdesk/modules/notifications/infrastructure/push"
	"github.com/iota-uz/taskdesk/modules/org/domain/department"
	"github.com/iota-uz/taskdesk/pkg/composables"
	"github.com/iota-uz/taskdesk/pkg/metrics"
	"github.com/iota-uz/taskdesk/pkg/serrors"
)

// TaskRef carries the task fields the dispatcher needs to pick recipients.
type TaskRef struct {
	ID           uint
	Title        string
	CreatorID    uint
	AuthorizerID uint
	AssigneeID   *uint
	DepartmentID uint
}

func (r TaskRef) deepLink() string {
	return fmt.Sprintf("/tasks/%d", r.ID)
}

// DispatcherService decides who must hear about task changes, persists the
// notification rows, and forwards them to the push sender once the enclosing
// unit of work commits. Persistence errors propagate (the rows belong to the
// mutation's atomic unit); delivery errors are logged per recipient and
// swallowed.
type DispatcherService struct {
	repo        notification.Repository
	users       user.Repository
	roles       role.Repository
	departments department.Repository
	sender      push.Sender
	clock       clockwork.Clock
	log         *logrus.Entry
}

func NewDispatcherService(
	repo notification.Repository,
	users user.Repository,
	roles role.Repository,
	departments department.Repository,
	sender push.Sender,
	clock clockwork.Clock,
	log *logrus.Logger,
) *DispatcherService {
	return &DispatcherService{
		repo:        repo,
		users:       users,
		roles:       roles,
		departments: departments,
		sender:      sender,
		clock:       clock,
		log:         log.WithField("component", "dispatcher"),
	}
}

// NotifyAssignment handles a task gaining or changing its assignee. With a
// named assignee the notification goes to them directly; an unassigned task is
// broadcast to every member of its department holding Tasks level >= 3.
func (s *DispatcherService) NotifyAssignment(ctx context.Context, ref TaskRef) error {
	if ref.AssigneeID != nil {
		return s.dispatch(ctx, *ref.AssigneeID, notification.KindTaskAssigned,
			"Task assigned",
			fmt.Sprintf("%q has been assigned to you", ref.Title),
			ref)
	}

	pool, err := s.pickupPool(ctx, ref.DepartmentID)
	if err != nil {
		return err
	}
	for _, recipientID := range pool {
		if err := s.dispatch(ctx, recipientID, notification.KindTaskAvailable,
			"Task available",
			fmt.Sprintf("%q is waiting for an assignee", ref.Title),
			ref); err != nil {
			return err
		}
	}
	return nil
}

// NotifyStatusChange handles an applied status transition. done notifies the
// authorizer; approved and cancelled notify the creator. Other statuses have
// no status-triggered recipient.
func (s *DispatcherService) NotifyStatusChange(ctx context.Context, ref TaskRef, newStatus string) error {
	switch newStatus {
	case "done":
		return s.dispatch(ctx, ref.AuthorizerID, notification.KindTaskDone,
			"Task finished",
			fmt.Sprintf("%q is done and awaits your decision", ref.Title),
			ref)
	case "approved":
		return s.dispatch(ctx, ref.CreatorID, notification.KindTaskApproved,
			"Task approved",
			fmt.Sprintf("%q has been approved", ref.Title),
			ref)
	case "cancelled":
		return s.dispatch(ctx, ref.CreatorID, notification.KindTaskCancelled,
			"Task cancelled",
			fmt.Sprintf("%q has been cancelled", ref.Title),
			ref)
	}
	return nil
}

// NotifyDue emits a due-today or overdue reminder to the task's assignee.
// Idempotent per day: if an unread reminder of the same kind for the task was
// already created today, nothing is emitted. Returns whether a notification
// was created.
func (s *DispatcherService) NotifyDue(ctx context.Context, ref TaskRef, overdue bool) (bool, error) {
	if ref.AssigneeID == nil {
		return false, nil
	}

	kind := notification.KindTaskDueToday
	title := "Task due today"
	body := fmt.Sprintf("%q is due today", ref.Title)
	if overdue {
		kind = notification.KindTaskOverdue
		title = "Task overdue"
		body = fmt.Sprintf("%q is overdue", ref.Title)
	}

	dayStart := startOfDay(s.clock.Now())
	exists, err := s.repo.HasUnreadSince(ctx, *ref.AssigneeID, kind, ref.deepLink(), dayStart)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	if err := s.dispatch(ctx, *ref.AssigneeID, kind, title, body, ref); err != nil {
		return false, err
	}
	return true, nil
}

// RunUnreadDigest pushes one summary per user holding unread notifications
// created within the trailing window. Nothing is persisted or marked read.
// Returns how many digests went out.
func (s *DispatcherService) RunUnreadDigest(ctx context.Context, window time.Duration) (int, error) {
	counts, err := s.repo.UnreadCountsSince(ctx, s.clock.Now().Add(-window))
	if err != nil {
		return 0, err
	}

	sent := 0
	for recipientID, count := range counts {
		s.push(ctx, recipientID,
			"Unread notifications",
			fmt.Sprintf("You have %d unread notifications", count),
			"/notifications")
		sent++
	}
	return sent, nil
}

// ListForUser returns the actor's own notification history.
func (s *DispatcherService) ListForUser(ctx context.Context, actorID uint, unreadOnly bool, limit, offset int) ([]*notification.Notification, error) {
	params := &notification.FindParams{
		RecipientID: &actorID,
		Limit:       limit,
		Offset:      offset,
	}
	if unreadOnly {
		unread := true
		params.Unread = &unread
	}
	return s.repo.List(ctx, params)
}

// MarkRead flips the read flag. Only the recipient may do so.
func (s *DispatcherService) MarkRead(ctx context.Context, actorID uint, id uuid.UUID) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.RecipientID != actorID {
		return serrors.NewForbiddenError("Notifications", 0, 0)
	}
	if n.Read {
		return nil
	}
	return s.repo.MarkRead(ctx, id)
}

func (s *DispatcherService) dispatch(ctx context.Context, recipientID uint, kind, title, body string, ref TaskRef) error {
	meta, _ := json.Marshal(map[string]any{"task_id": ref.ID})
	n := &notification.Notification{
		ID:          uuid.New(),
		RecipientID: recipientID,
		Title:       title,
		Body:        body,
		Kind:        kind,
		Metadata:    meta,
		DeepLink:    ref.deepLink(),
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	metrics.NotificationsDispatched.WithLabelValues(kind).Inc()

	// delivery waits for the surrounding unit to commit; a rolled-back
	// mutation must not page anyone
	deepLink := n.DeepLink
	composables.OnCommit(ctx, func(ctx context.Context) {
		s.push(ctx, recipientID, title, body, deepLink)
	})
	return nil
}

func (s *DispatcherService) push(ctx context.Context, recipientID uint, title, body, deepLink string) {
	recipient, err := s.users.GetByID(ctx, recipientID)
	if err != nil {
		s.log.WithError(err).WithField("recipient_id", recipientID).Warn("push recipient lookup failed")
		return
	}
	if recipient.PushToken == nil || *recipient.PushToken == "" {
		return
	}

	err = s.sender.Send(ctx, push.Message{
		Token:    *recipient.PushToken,
		Title:    title,
		Body:     body,
		DeepLink: deepLink,
	})
	if err != nil {
		metrics.PushSendFailures.Inc()
		s.log.WithError(err).WithField("recipient_id", recipientID).Warn("push delivery failed")
	}
}

// pickupPool lists department members whose role holds Tasks level >= 3.
func (s *DispatcherService) pickupPool(ctx context.Context, departmentID uint) ([]uint, error) {
	dept, err := s.departments.GetByID(ctx, departmentID)
	if err != nil {
		return nil, err
	}

	levels := make(map[uint]int)
	var pool []uint
	for _, memberID := range dept.MemberIDs {
		member, err := s.users.GetByID(ctx, memberID)
		if err != nil {
			return nil, err
		}
		level, ok := levels[member.RoleID]
		if !ok {
			r, err := s.roles.GetByID(ctx, member.RoleID)
			if err != nil {
				return nil, err
			}
			level = r.LevelFor(permission.CategoryTasks)
			levels[member.RoleID] = level
		}
		if level >= 3 {
			pool = append(pool, memberID)
		}
	}
	return pool, nil
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

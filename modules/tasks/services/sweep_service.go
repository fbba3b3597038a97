package services

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	notifsvc "github.com/iota-uz/taskdesk/modules/notifications/services"
	"github.com/iota-uz/taskdesk/modules/tasks/domain/task"
	"github.com/iota-uz/taskdesk/pkg/metrics"
)

type DueNotifier interface {
	NotifyDue(ctx context.Context, ref notifsvc.TaskRef, overdue bool) (bool, error)
	RunUnreadDigest(ctx context.Context, window time.Duration) (int, error)
}

// SweepService runs the periodic scans. Both are idempotent per day and are
// triggered by an external scheduler.
type SweepService struct {
	repo         task.Repository
	notifier     DueNotifier
	clock        clockwork.Clock
	log          *logrus.Entry
	dueWindow    time.Duration
	digestWindow time.Duration
}

func NewSweepService(
	repo task.Repository,
	notifier DueNotifier,
	clock clockwork.Clock,
	log *logrus.Logger,
	dueWindow time.Duration,
	digestWindow time.Duration,
) *SweepService {
	return &SweepService{
		repo:         repo,
		notifier:     notifier,
		clock:        clock,
		log:          log.WithField("component", "sweep"),
		dueWindow:    dueWindow,
		digestWindow: digestWindow,
	}
}

// RunDueScan reminds assignees about working tasks whose finish date falls
// within the look-ahead window starting today. Tasks finishing before today
// are tagged overdue, the rest due-today. Returns how many reminders were
// created.
func (s *SweepService) RunDueScan(ctx context.Context) (int, error) {
	now := s.clock.Now()
	horizon := startOfDay(now).Add(s.dueWindow)

	due, err := s.repo.List(ctx, &task.FindParams{
		Statuses:     []task.Status{task.StatusOpen, task.StatusInProgress},
		FinishBefore: &horizon,
	})
	if err != nil {
		return 0, err
	}

	created := 0
	for _, t := range due {
		if t.FinishDate == nil {
			continue
		}
		overdue := t.FinishDate.Before(startOfDay(now))
		emitted, err := s.notifier.NotifyDue(ctx, toRef(t), overdue)
		if err != nil {
			s.log.WithError(err).WithField("task_id", t.ID).Warn("due reminder failed")
			continue
		}
		if emitted {
			created++
		}
	}

	metrics.SweepRuns.WithLabelValues("due_scan").Inc()
	s.log.WithFields(logrus.Fields{"scanned": len(due), "notified": created}).Info("due scan finished")
	return created, nil
}

// RunUnreadDigest pushes one unread-count summary per user with unread
// notifications in the trailing window.
func (s *SweepService) RunUnreadDigest(ctx context.Context) (int, error) {
	sent, err := s.notifier.RunUnreadDigest(ctx, s.digestWindow)
	if err != nil {
		return 0, err
	}
	metrics.SweepRuns.WithLabelValues("unread_digest").Inc()
	s.log.WithField("sent", sent).Info("unread digest finished")
	return sent, nil
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

package main

import (
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	corepersistence "github.com/iota-uz/taskdesk/modules/core/infrastructure/persistence"
	notifpersistence "github.com/iota-uz/taskdesk/modules/notifications/infrastructure/persistence"
	"github.com/iota-uz/taskdesk/modules/notifications/infrastructure/push"
	notifsvc "github.com/iota-uz/taskdesk/modules/notifications/services"
	orgpersistence "github.com/iota-uz/taskdesk/modules/org/infrastructure/persistence"
	taskpersistence "github.com/iota-uz/taskdesk/modules/tasks/infrastructure/persistence"
	tasksvc "github.com/iota-uz/taskdesk/modules/tasks/services"
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run a scheduled notification sweep",
	}
	cmd.AddCommand(newSweepDueCmd())
	cmd.AddCommand(newSweepDigestCmd())
	return cmd
}

func newSweepDueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "due",
		Short: "Notify assignees about tasks due today or overdue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			_, err = newSweepService(a).RunDueScan(a.context(cmd.Context()))
			return err
		},
	}
}

func newSweepDigestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "digest",
		Short: "Push unread-notification summaries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			_, err = newSweepService(a).RunUnreadDigest(a.context(cmd.Context()))
			return err
		},
	}
}

func newSweepService(a *app) *tasksvc.SweepService {
	var sender push.Sender = push.NopSender{}
	if a.cfg.Push.Enabled {
		sender = push.NewHTTPSender(a.cfg.Push.Endpoint, a.cfg.Push.Timeout)
	}

	clock := clockwork.NewRealClock()
	dispatcher := notifsvc.NewDispatcherService(
		notifpersistence.NewNotificationRepository(),
		corepersistence.NewUserRepository(),
		corepersistence.NewRoleRepository(),
		orgpersistence.NewDepartmentRepository(),
		sender,
		clock,
		a.log,
	)
	return tasksvc.NewSweepService(
		taskpersistence.NewTaskRepository(),
		dispatcher,
		clock,
		a.log,
		a.cfg.Sweep.DueSoonWindow,
		a.cfg.Sweep.DigestAfter,
	)
}

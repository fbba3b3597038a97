package task

import (
	"time"

	"github.com/iota-uz/taskdesk/pkg/serrors"
)

// GuardTransition decides whether a caller may move a task from one status to
// another, given their Tasks permission level and their relationship to the
// task. The assignee drives the working states at level 2 and up, the
// authorizer reopens, cancels and approves at level 3 and up, and level 4 is
// unrestricted. Grants stack when the caller holds both relationships.
func GuardTransition(from, to Status, level int, isAssignee, isAuthorizer bool) error {
	if !to.IsValid() {
		return serrors.NewInvalidTransitionError(string(from), string(to), "unknown status")
	}

	if level >= 4 {
		return nil
	}

	if from.IsTerminal() {
		return serrors.NewInvalidTransitionError(string(from), string(to), "task is in a terminal status")
	}

	if level >= 2 && isAssignee {
		if to == StatusOpen || to == StatusInProgress || to == StatusDone {
			return nil
		}
	}
	if level >= 3 && isAuthorizer {
		if to == StatusOpen || to == StatusCancelled {
			return nil
		}
		if to == StatusApproved && from == StatusDone {
			return nil
		}
	}

	return serrors.NewInvalidTransitionError(string(from), string(to), "caller's level and relationship do not permit this transition")
}

// GuardTemporal rejects entering a working status before the task's start
// date. Approval and cancellation are exempt.
func GuardTemporal(to Status, startDate *time.Time, now time.Time) error {
	if startDate == nil {
		return nil
	}
	if to != StatusOpen && to != StatusInProgress && to != StatusDone {
		return nil
	}
	if startDate.After(now) {
		return serrors.NewInvalidTransitionError("", string(to), "task's start date is in the future")
	}
	return nil
}

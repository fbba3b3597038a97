package services

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	"github.com/wI2L/jsondiff"

	"github.com/iota-uz/taskdesk/modules/core/domain/entities/permission"
	notifsvc "github.com/iota-uz/taskdesk/modules/notifications/services"
	"github.com/iota-uz/taskdesk/modules/org/domain/department"
	"github.com/iota-uz/taskdesk/modules/tasks/domain/task"
	"github.com/iota-uz/taskdesk/pkg/composables"
	"github.com/iota-uz/taskdesk/pkg/eventbus"
	"github.com/iota-uz/taskdesk/pkg/metrics"
	"github.com/iota-uz/taskdesk/pkg/serrors"
)

type Authorizer interface {
	Authorize(ctx context.Context, actorID uint, category permission.Category, minLevel int, targetDeptID *uint) error
	LevelFor(ctx context.Context, actorID uint, category permission.Category) (int, error)
	VisibleDepartments(ctx context.Context, actorID uint) ([]uint, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, actorID uint, action, targetType string, targetID uint, meta map[string]any)
}

type Dispatcher interface {
	NotifyAssignment(ctx context.Context, ref notifsvc.TaskRef) error
	NotifyStatusChange(ctx context.Context, ref notifsvc.TaskRef, newStatus string) error
}

type CreateTaskDTO struct {
	Title            string `validate:"required"`
	Description      string
	DepartmentID     uint `validate:"required"`
	AssigneeID       *uint
	StartDate        *time.Time
	FinishDate       *time.Time
	RequesterName    string
	RequesterContact string
	RequesterRank    task.RequesterRank `validate:"omitempty,oneof=milletvekili kaymakamlik muhtarlik diger"`
}

type UpdateTaskDTO struct {
	Title            *string `validate:"omitempty,min=1"`
	Description      *string
	DepartmentID     *uint
	AssigneeID       *uint
	ClearAssignee    bool
	StartDate        *time.Time
	FinishDate       *time.Time
	RequesterName    *string
	RequesterContact *string
	RequesterRank    *task.RequesterRank `validate:"omitempty,oneof=milletvekili kaymakamlik muhtarlik diger"`
}

// TaskService orchestrates the task lifecycle. Every mutation commits the task
// row, its history snapshot, the audit entry, and any notification rows as one
// transaction.
type TaskService struct {
	repo        task.Repository
	history     task.HistoryRepository
	departments department.Repository
	authz       Authorizer
	audit       AuditRecorder
	dispatcher  Dispatcher
	publisher   eventbus.EventBus
	validate    *validator.Validate
	clock       clockwork.Clock
}

func NewTaskService(
	repo task.Repository,
	history task.HistoryRepository,
	departments department.Repository,
	authz Authorizer,
	audit AuditRecorder,
	dispatcher Dispatcher,
	publisher eventbus.EventBus,
	clock clockwork.Clock,
) *TaskService {
	return &TaskService{
		repo:        repo,
		history:     history,
		departments: departments,
		authz:       authz,
		audit:       audit,
		dispatcher:  dispatcher,
		publisher:   publisher,
		validate:    validator.New(),
		clock:       clock,
	}
}

func toRef(t *task.Task) notifsvc.TaskRef {
	return notifsvc.TaskRef{
		ID:           t.ID,
		Title:        t.Title,
		CreatorID:    t.CreatorID,
		AuthorizerID: t.AuthorizerID,
		AssigneeID:   t.AssigneeID,
		DepartmentID: t.DepartmentID,
	}
}

func (s *TaskService) CreateTask(ctx context.Context, actorID uint, dto CreateTaskDTO) (*task.Task, error) {
	if err := s.validate.Struct(dto); err != nil {
		return nil, err
	}
	target := dto.DepartmentID
	if err := s.authz.Authorize(ctx, actorID, permission.CategoryTasks, 3, &target); err != nil {
		return nil, err
	}

	dept, err := s.departments.GetByID(ctx, dto.DepartmentID)
	if err != nil {
		return nil, err
	}
	if dto.AssigneeID != nil && !dept.HasMember(*dto.AssigneeID) {
		return nil, serrors.NewConstraintViolationError(
			"assignee_membership",
			"the assignee must be a member of the assigned department",
			map[string]any{"assignee_id": *dto.AssigneeID, "department_id": dto.DepartmentID},
		)
	}

	rank := dto.RequesterRank
	if rank == "" {
		rank = task.RankDiger
	}

	now := s.clock.Now()
	entity := &task.Task{
		Title:            dto.Title,
		Description:      dto.Description,
		CreatorID:        actorID,
		AuthorizerID:     actorID,
		AssigneeID:       dto.AssigneeID,
		DepartmentID:     dto.DepartmentID,
		Status:           task.StatusOpen,
		StartDate:        dto.StartDate,
		FinishDate:       dto.FinishDate,
		RequesterName:    dto.RequesterName,
		RequesterContact: dto.RequesterContact,
		RequesterRank:    rank,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	var created *task.Task
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		created, err = s.repo.Create(txCtx, entity)
		if err != nil {
			return err
		}
		if err := s.history.Create(txCtx, created.Snapshot(actorID, now)); err != nil {
			return err
		}
		s.audit.Record(txCtx, actorID, "create", "task", created.ID, map[string]any{
			"title":         created.Title,
			"department_id": created.DepartmentID,
			"assignee_id":   created.AssigneeID,
			"status":        created.Status,
		})
		return s.dispatcher.NotifyAssignment(txCtx, toRef(created))
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(&task.CreatedEvent{ActorID: actorID, Result: created})
	return created, nil
}

// UpdateTask patches non-status fields. Every caller needs Tasks level 3;
// changing the assignment (department or assignee) re-authorizes department
// scope and re-checks assignee membership. A caller already related to the
// task is promoted to its authorizer.
func (s *TaskService) UpdateTask(ctx context.Context, actorID, taskID uint, dto UpdateTaskDTO) (*task.Task, error) {
	if err := s.validate.Struct(dto); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	level, err := s.authz.LevelFor(ctx, actorID, permission.CategoryTasks)
	if err != nil {
		return nil, err
	}
	if level < 3 {
		return nil, serrors.NewForbiddenError(string(permission.CategoryTasks), 3, level)
	}
	related := existing.IsRelated(actorID)
	if !related {
		target := existing.DepartmentID
		if err := s.authz.Authorize(ctx, actorID, permission.CategoryTasks, 3, &target); err != nil {
			return nil, err
		}
	}

	before := *existing
	updated := *existing

	if dto.Title != nil {
		updated.Title = *dto.Title
	}
	if dto.Description != nil {
		updated.Description = *dto.Description
	}
	if dto.DepartmentID != nil {
		updated.DepartmentID = *dto.DepartmentID
	}
	if dto.AssigneeID != nil {
		updated.AssigneeID = dto.AssigneeID
	} else if dto.ClearAssignee {
		updated.AssigneeID = nil
	}
	if dto.StartDate != nil {
		updated.StartDate = dto.StartDate
	}
	if dto.FinishDate != nil {
		updated.FinishDate = dto.FinishDate
	}
	if dto.RequesterName != nil {
		updated.RequesterName = *dto.RequesterName
	}
	if dto.RequesterContact != nil {
		updated.RequesterContact = *dto.RequesterContact
	}
	if dto.RequesterRank != nil {
		updated.RequesterRank = *dto.RequesterRank
	}

	deptChanged := updated.DepartmentID != before.DepartmentID
	assigneeChanged := !equalAssignee(updated.AssigneeID, before.AssigneeID)

	if deptChanged || assigneeChanged {
		target := updated.DepartmentID
		if err := s.authz.Authorize(ctx, actorID, permission.CategoryTasks, 3, &target); err != nil {
			return nil, err
		}
		if updated.AssigneeID != nil {
			dept, err := s.departments.GetByID(ctx, updated.DepartmentID)
			if err != nil {
				return nil, err
			}
			if !dept.HasMember(*updated.AssigneeID) {
				return nil, serrors.NewConstraintViolationError(
					"assignee_membership",
					"the assignee must be a member of the assigned department",
					map[string]any{"assignee_id": *updated.AssigneeID, "department_id": updated.DepartmentID},
				)
			}
		}
	}

	if related {
		updated.AuthorizerID = actorID
	}
	updated.UpdatedAt = s.clock.Now()

	patch, err := jsondiff.Compare(before, updated)
	if err != nil {
		patch = nil
	}

	err = composables.InTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, &updated); err != nil {
			return err
		}
		if err := s.history.Create(txCtx, updated.Snapshot(actorID, updated.UpdatedAt)); err != nil {
			return err
		}
		s.audit.Record(txCtx, actorID, "update", "task", updated.ID, map[string]any{"patch": patch})
		if deptChanged || assigneeChanged {
			return s.dispatcher.NotifyAssignment(txCtx, toRef(&updated))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(&task.UpdatedEvent{ActorID: actorID, Result: &updated})
	return &updated, nil
}

// SetTaskStatus applies one transition of the status machine. Setting the
// current value is a no-op: no write, no history, no notification.
func (s *TaskService) SetTaskStatus(ctx context.Context, actorID, taskID uint, newStatus task.Status) (*task.Task, error) {
	existing, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	// the level gate runs before the no-op shortcut so the shortcut never
	// leaks a task to an actor who could not transition it
	level, err := s.authz.LevelFor(ctx, actorID, permission.CategoryTasks)
	if err != nil {
		return nil, err
	}
	if level < 2 {
		return nil, serrors.NewForbiddenError(string(permission.CategoryTasks), 2, level)
	}
	if newStatus == existing.Status {
		return existing, nil
	}

	if err := task.GuardTransition(
		existing.Status,
		newStatus,
		level,
		existing.IsAssignee(actorID),
		existing.IsAuthorizer(actorID),
	); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	if err := task.GuardTemporal(newStatus, existing.StartDate, now); err != nil {
		return nil, err
	}

	from := existing.Status
	updated := *existing
	updated.Status = newStatus
	updated.UpdatedAt = now

	err = composables.InTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, &updated); err != nil {
			return err
		}
		if err := s.history.Create(txCtx, updated.Snapshot(actorID, now)); err != nil {
			return err
		}
		s.audit.Record(txCtx, actorID, "status_change", "task", updated.ID, map[string]any{
			"from": from,
			"to":   newStatus,
		})
		return s.dispatcher.NotifyStatusChange(txCtx, toRef(&updated), string(newStatus))
	})
	if err != nil {
		return nil, err
	}

	metrics.TaskTransitions.WithLabelValues(string(newStatus)).Inc()
	s.publisher.Publish(&task.StatusChangedEvent{ActorID: actorID, From: from, To: newStatus, Result: &updated})
	return &updated, nil
}

// DeleteTask removes the task row. History rows are retained for point-in-time
// reconstruction.
func (s *TaskService) DeleteTask(ctx context.Context, actorID, taskID uint) error {
	existing, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	target := existing.DepartmentID
	if err := s.authz.Authorize(ctx, actorID, permission.CategoryTasks, 4, &target); err != nil {
		return err
	}

	err = composables.InTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, taskID); err != nil {
			return err
		}
		s.audit.Record(txCtx, actorID, "delete", "task", taskID, map[string]any{
			"title":  existing.Title,
			"status": existing.Status,
		})
		return nil
	})
	if err != nil {
		return err
	}

	s.publisher.Publish(&task.DeletedEvent{ActorID: actorID, Result: existing})
	return nil
}

func (s *TaskService) GetByID(ctx context.Context, actorID, taskID uint) (*task.Task, error) {
	t, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t.IsRelated(actorID) {
		return t, nil
	}
	target := t.DepartmentID
	if err := s.authz.Authorize(ctx, actorID, permission.CategoryTasks, 3, &target); err != nil {
		return nil, err
	}
	return t, nil
}

// List returns tasks visible to the actor. Level 3 and up sees the tasks of
// every department within scope; below that the actor sees tasks they are
// related to.
func (s *TaskService) List(ctx context.Context, actorID uint, limit, offset int) ([]*task.Task, error) {
	level, err := s.authz.LevelFor(ctx, actorID, permission.CategoryTasks)
	if err != nil {
		return nil, err
	}
	if level < 1 {
		return nil, serrors.NewForbiddenError(string(permission.CategoryTasks), 1, level)
	}

	params := &task.FindParams{Limit: limit, Offset: offset}
	if level >= 3 {
		visible, err := s.authz.VisibleDepartments(ctx, actorID)
		if err != nil {
			return nil, err
		}
		if len(visible) == 0 {
			return nil, nil
		}
		params.DepartmentIDs = visible
	} else {
		params.RelatedTo = &actorID
	}
	return s.repo.List(ctx, params)
}

// History lists the task's immutable snapshots, newest last.
func (s *TaskService) History(ctx context.Context, actorID, taskID uint) ([]*task.History, error) {
	if _, err := s.GetByID(ctx, actorID, taskID); err != nil {
		return nil, err
	}
	return s.history.ListByTask(ctx, taskID)
}

func equalAssignee(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

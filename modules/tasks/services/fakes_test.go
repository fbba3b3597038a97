package services

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/taskdesk/modules/core/domain/entities/permission"
	notifsvc "github.com/iota-uz/taskdesk/modules/notifications/services"
	"github.com/iota-uz/taskdesk/modules/org/domain/department"
	"github.com/iota-uz/taskdesk/modules/tasks/domain/comment"
	"github.com/iota-uz/taskdesk/modules/tasks/domain/task"
	"github.com/iota-uz/taskdesk/pkg/serrors"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

type taskRepoFake struct {
	tasks  map[uint]*task.Task
	nextID uint
}

func newTaskRepoFake(tasks ...*task.Task) *taskRepoFake {
	f := &taskRepoFake{tasks: make(map[uint]*task.Task)}
	for _, t := range tasks {
		f.tasks[t.ID] = t
		if t.ID > f.nextID {
			f.nextID = t.ID
		}
	}
	return f
}

func (f *taskRepoFake) GetByID(_ context.Context, id uint) (*task.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, serrors.NewNotFoundError("task", id)
	}
	copied := *t
	return &copied, nil
}

func (f *taskRepoFake) List(_ context.Context, params *task.FindParams) ([]*task.Task, error) {
	var out []*task.Task
	for _, t := range f.tasks {
		if params != nil && !matches(t, params) {
			continue
		}
		copied := *t
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func matches(t *task.Task, params *task.FindParams) bool {
	if len(params.DepartmentIDs) > 0 {
		found := false
		for _, id := range params.DepartmentIDs {
			if t.DepartmentID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if params.AssigneeID != nil && !t.IsAssignee(*params.AssigneeID) {
		return false
	}
	if params.CreatorID != nil && t.CreatorID != *params.CreatorID {
		return false
	}
	if params.RelatedTo != nil && !t.IsRelated(*params.RelatedTo) {
		return false
	}
	if len(params.Statuses) > 0 {
		found := false
		for _, s := range params.Statuses {
			if t.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if params.FinishBefore != nil {
		if t.FinishDate == nil || !t.FinishDate.Before(*params.FinishBefore) {
			return false
		}
	}
	return true
}

func (f *taskRepoFake) Count(ctx context.Context, params *task.FindParams) (int64, error) {
	out, err := f.List(ctx, params)
	return int64(len(out)), err
}

func (f *taskRepoFake) Create(_ context.Context, t *task.Task) (*task.Task, error) {
	f.nextID++
	t.ID = f.nextID
	copied := *t
	f.tasks[t.ID] = &copied
	return t, nil
}

func (f *taskRepoFake) Update(_ context.Context, t *task.Task) error {
	if _, ok := f.tasks[t.ID]; !ok {
		return serrors.NewNotFoundError("task", t.ID)
	}
	copied := *t
	f.tasks[t.ID] = &copied
	return nil
}

func (f *taskRepoFake) Delete(_ context.Context, id uint) error {
	if _, ok := f.tasks[id]; !ok {
		return serrors.NewNotFoundError("task", id)
	}
	delete(f.tasks, id)
	return nil
}

type historyRepoFake struct {
	rows      []*task.History
	createErr error
}

func (f *historyRepoFake) Create(_ context.Context, h *task.History) error {
	if f.createErr != nil {
		return f.createErr
	}
	h.ID = uint(len(f.rows) + 1)
	f.rows = append(f.rows, h)
	return nil
}

func (f *historyRepoFake) ListByTask(_ context.Context, taskID uint) ([]*task.History, error) {
	var out []*task.History
	for _, h := range f.rows {
		if h.TaskID == taskID {
			out = append(out, h)
		}
	}
	return out, nil
}

type commentRepoFake struct {
	comments map[uint]*comment.Comment
	nextID   uint
}

func newCommentRepoFake() *commentRepoFake {
	return &commentRepoFake{comments: make(map[uint]*comment.Comment)}
}

func (f *commentRepoFake) GetByID(_ context.Context, id uint) (*comment.Comment, error) {
	c, ok := f.comments[id]
	if !ok {
		return nil, serrors.NewNotFoundError("comment", id)
	}
	return c, nil
}

func (f *commentRepoFake) ListByTask(_ context.Context, taskID uint) ([]*comment.Comment, error) {
	var out []*comment.Comment
	for _, c := range f.comments {
		if c.TaskID == taskID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *commentRepoFake) Create(_ context.Context, c *comment.Comment) (*comment.Comment, error) {
	f.nextID++
	c.ID = f.nextID
	f.comments[c.ID] = c
	return c, nil
}

func (f *commentRepoFake) Update(_ context.Context, c *comment.Comment) error {
	if _, ok := f.comments[c.ID]; !ok {
		return serrors.NewNotFoundError("comment", c.ID)
	}
	f.comments[c.ID] = c
	return nil
}

func (f *commentRepoFake) Delete(_ context.Context, id uint) error {
	if _, ok := f.comments[id]; !ok {
		return serrors.NewNotFoundError("comment", id)
	}
	delete(f.comments, id)
	return nil
}

type deptReaderFake struct {
	departments map[uint]*department.Department
}

func (f *deptReaderFake) GetByID(_ context.Context, id uint) (*department.Department, error) {
	d, ok := f.departments[id]
	if !ok {
		return nil, serrors.NewNotFoundError("department", id)
	}
	return d, nil
}
func (f *deptReaderFake) GetAll(context.Context) ([]*department.Department, error) { return nil, nil }
func (f *deptReaderFake) List(context.Context, *department.FindParams) ([]*department.Department, error) {
	return nil, nil
}
func (f *deptReaderFake) Create(_ context.Context, d *department.Department) (*department.Department, error) {
	return d, nil
}
func (f *deptReaderFake) Update(context.Context, *department.Department) error { return nil }
func (f *deptReaderFake) Delete(context.Context, uint) error                   { return nil }
func (f *deptReaderFake) AddMember(context.Context, uint, uint) error          { return nil }
func (f *deptReaderFake) RemoveMember(context.Context, uint, uint) error       { return nil }
func (f *deptReaderFake) ManagedBy(context.Context, uint) ([]*department.Department, error) {
	return nil, nil
}

// authzFake resolves levels from a per-actor table and allows any department
// in scope[actorID].
type authzFake struct {
	levels map[uint]map[permission.Category]int
	scope  map[uint][]uint
}

func (f *authzFake) LevelFor(_ context.Context, actorID uint, category permission.Category) (int, error) {
	return f.levels[actorID][category], nil
}

func (f *authzFake) Authorize(_ context.Context, actorID uint, category permission.Category, minLevel int, targetDeptID *uint) error {
	level := f.levels[actorID][category]
	if level < minLevel {
		return serrors.NewForbiddenError(string(category), minLevel, level)
	}
	if targetDeptID == nil {
		return nil
	}
	for _, id := range f.scope[actorID] {
		if id == *targetDeptID {
			return nil
		}
	}
	return serrors.NewScopeError(*targetDeptID)
}

func (f *authzFake) VisibleDepartments(_ context.Context, actorID uint) ([]uint, error) {
	return f.scope[actorID], nil
}

type auditFake struct {
	records []string
}

func (f *auditFake) Record(_ context.Context, _ uint, action, targetType string, _ uint, _ map[string]any) {
	f.records = append(f.records, targetType+"."+action)
}

type statusNotice struct {
	ref    notifsvc.TaskRef
	status string
}

type dispatcherFake struct {
	assignments []notifsvc.TaskRef
	statuses    []statusNotice
	due         []notifsvc.TaskRef
	digestSent  int
}

func (f *dispatcherFake) NotifyAssignment(_ context.Context, ref notifsvc.TaskRef) error {
	f.assignments = append(f.assignments, ref)
	return nil
}

func (f *dispatcherFake) NotifyStatusChange(_ context.Context, ref notifsvc.TaskRef, newStatus string) error {
	f.statuses = append(f.statuses, statusNotice{ref: ref, status: newStatus})
	return nil
}

func (f *dispatcherFake) NotifyDue(_ context.Context, ref notifsvc.TaskRef, _ bool) (bool, error) {
	for _, seen := range f.due {
		if seen.ID == ref.ID {
			return false, nil
		}
	}
	f.due = append(f.due, ref)
	return true, nil
}

func (f *dispatcherFake) RunUnreadDigest(context.Context, time.Duration) (int, error) {
	return f.digestSent, nil
}

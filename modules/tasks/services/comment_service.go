package services

import (
	"context"

	"github.com/iota-uz/taskdesk/modules/core/domain/entities/permission"
	"github.com/iota-uz/taskdesk/modules/tasks/domain/comment"
	"github.com/iota-uz/taskdesk/modules/tasks/domain/task"
	"github.com/iota-uz/taskdesk/pkg/composables"
	"github.com/iota-uz/taskdesk/pkg/serrors"
)

// CommentService guards task comments. Level 1 holders may comment on tasks
// they are related to and touch only their own comments; level 2 and up acts
// on any comment within reach of the task.
type CommentService struct {
	repo  comment.Repository
	tasks task.Repository
	authz Authorizer
	audit AuditRecorder
}

func NewCommentService(
	repo comment.Repository,
	tasks task.Repository,
	authz Authorizer,
	audit AuditRecorder,
) *CommentService {
	return &CommentService{repo: repo, tasks: tasks, authz: authz, audit: audit}
}

func (s *CommentService) Add(ctx context.Context, actorID, taskID uint, body string, imageURL *string) (*comment.Comment, error) {
	level, err := s.authz.LevelFor(ctx, actorID, permission.CategoryComments)
	if err != nil {
		return nil, err
	}
	if level < 1 {
		return nil, serrors.NewForbiddenError(string(permission.CategoryComments), 1, level)
	}

	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if level == 1 && !t.IsRelated(actorID) {
		return nil, serrors.NewForbiddenError(string(permission.CategoryComments), 2, level)
	}

	entity, err := comment.New(taskID, actorID, body, imageURL)
	if err != nil {
		return nil, err
	}

	var created *comment.Comment
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		created, err = s.repo.Create(txCtx, entity)
		if err != nil {
			return err
		}
		s.audit.Record(txCtx, actorID, "create", "comment", created.ID, map[string]any{"task_id": taskID})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *CommentService) Edit(ctx context.Context, actorID, commentID uint, body string) (*comment.Comment, error) {
	entity, err := s.authorizeOwnership(ctx, actorID, commentID)
	if err != nil {
		return nil, err
	}

	entity.Body = body
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, entity); err != nil {
			return err
		}
		s.audit.Record(txCtx, actorID, "update", "comment", entity.ID, map[string]any{"task_id": entity.TaskID})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *CommentService) Delete(ctx context.Context, actorID, commentID uint) error {
	entity, err := s.authorizeOwnership(ctx, actorID, commentID)
	if err != nil {
		return err
	}

	return composables.InTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, commentID); err != nil {
			return err
		}
		s.audit.Record(txCtx, actorID, "delete", "comment", commentID, map[string]any{"task_id": entity.TaskID})
		return nil
	})
}

func (s *CommentService) ListByTask(ctx context.Context, actorID, taskID uint) ([]*comment.Comment, error) {
	level, err := s.authz.LevelFor(ctx, actorID, permission.CategoryComments)
	if err != nil {
		return nil, err
	}
	if level < 1 {
		return nil, serrors.NewForbiddenError(string(permission.CategoryComments), 1, level)
	}
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if level == 1 && !t.IsRelated(actorID) {
		return nil, serrors.NewForbiddenError(string(permission.CategoryComments), 2, level)
	}
	return s.repo.ListByTask(ctx, taskID)
}

func (s *CommentService) authorizeOwnership(ctx context.Context, actorID, commentID uint) (*comment.Comment, error) {
	entity, err := s.repo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}

	level, err := s.authz.LevelFor(ctx, actorID, permission.CategoryComments)
	if err != nil {
		return nil, err
	}
	if level < 1 {
		return nil, serrors.NewForbiddenError(string(permission.CategoryComments), 1, level)
	}
	if level == 1 && entity.AuthorID != actorID {
		return nil, serrors.NewForbiddenError(string(permission.CategoryComments), 2, level)
	}
	return entity, nil
}

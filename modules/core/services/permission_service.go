package services

import (
	"context"

	"github.com/iota-uz/taskdesk/modules/core/domain/entities/permission"
	"github.com/iota-uz/taskdesk/pkg/composables"
	"github.com/iota-uz/taskdesk/pkg/serrors"
)

type Authorizer interface {
	Authorize(ctx context.Context, actorID uint, category permission.Category, minLevel int, targetDeptID *uint) error
	LevelFor(ctx context.Context, actorID uint, category permission.Category) (int, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, actorID uint, action, targetType string, targetID uint, meta map[string]any)
}

type CreatePermissionDTO struct {
	Category    permission.Category
	Level       int
	Description string
}

type PermissionService struct {
	repo  permission.Repository
	authz Authorizer
	audit AuditRecorder
}

func NewPermissionService(repo permission.Repository, authz Authorizer, audit AuditRecorder) *PermissionService {
	return &PermissionService{repo: repo, authz: authz, audit: audit}
}

func (s *PermissionService) Create(ctx context.Context, actorID uint, dto CreatePermissionDTO) (*permission.Permission, error) {
	if err := s.authz.Authorize(ctx, actorID, permission.CategoryPermissions, 3, nil); err != nil {
		return nil, err
	}

	entity, err := permission.New(dto.Category, dto.Level, dto.Description)
	if err != nil {
		return nil, err
	}
	if existing, err := s.repo.GetByCategoryLevel(ctx, dto.Category, dto.Level); err == nil && existing != nil {
		return nil, serrors.NewConstraintViolationError(
			"permission_category_level",
			"a permission with this category and level already exists",
			map[string]any{"category": dto.Category, "level": dto.Level, "permission_id": existing.ID},
		)
	} else if err != nil && !serrors.IsNotFound(err) {
		return nil, err
	}

	var created *permission.Permission
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		created, err = s.repo.Create(txCtx, entity)
		if err != nil {
			return err
		}
		s.audit.Record(txCtx, actorID, "create", "permission", created.ID, map[string]any{
			"category": created.Category,
			"level":    created.Level,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *PermissionService) UpdateDescription(ctx context.Context, actorID, id uint, description string) (*permission.Permission, error) {
	if err := s.authz.Authorize(ctx, actorID, permission.CategoryPermissions, 3, nil); err != nil {
		return nil, err
	}
	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	entity.Description = description

	err = composables.InTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, entity); err != nil {
			return err
		}
		s.audit.Record(txCtx, actorID, "update", "permission", entity.ID, map[string]any{
			"description": description,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *PermissionService) Delete(ctx context.Context, actorID, id uint) error {
	if err := s.authz.Authorize(ctx, actorID, permission.CategoryPermissions, 3, nil); err != nil {
		return err
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	return composables.InTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, id); err != nil {
			return err
		}
		s.audit.Record(txCtx, actorID, "delete", "permission", id, nil)
		return nil
	})
}

func (s *PermissionService) List(ctx context.Context, actorID uint, params *permission.FindParams) ([]*permission.Permission, error) {
	if err := s.authz.Authorize(ctx, actorID, permission.CategoryPermissions, 1, nil); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, params)
}

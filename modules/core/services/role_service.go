package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/taskdesk/modules/core/domain/aggregates/role"
	"github.com/iota-uz/taskdesk/modules/core/domain/entities/permission"
	"github.com/iota-uz/taskdesk/pkg/composables"
	"github.com/iota-uz/taskdesk/pkg/eventbus"
	"github.com/iota-uz/taskdesk/pkg/serrors"
)

type RoleService struct {
	repo      role.Repository
	perms     permission.Repository
	authz     Authorizer
	audit     AuditRecorder
	publisher eventbus.EventBus
	log       *logrus.Entry
}

func NewRoleService(
	repo role.Repository,
	perms permission.Repository,
	authz Authorizer,
	audit AuditRecorder,
	publisher eventbus.EventBus,
	log *logrus.Logger,
) *RoleService {
	return &RoleService{
		repo:      repo,
		perms:     perms,
		authz:     authz,
		audit:     audit,
		publisher: publisher,
		log:       log.WithField("component", "roles"),
	}
}

// Create makes a new role and seeds a level-0 catalog entry for every
// category, so level resolution never has a missing case.
func (s *RoleService) Create(ctx context.Context, actorID uint, name string) (*role.Role, error) {
	if err := s.authz.Authorize(ctx, actorID, permission.CategoryRoles, 3, nil); err != nil {
		return nil, err
	}

	entity, err := role.New(name)
	if err != nil {
		return nil, err
	}

	var created *role.Role
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		created, err = s.repo.Create(txCtx, entity)
		if err != nil {
			return err
		}
		for _, category := range permission.AllCategories {
			nothing, err := s.ensureCatalogEntry(txCtx, category, 0, "Nothing")
			if err != nil {
				return err
			}
			if err := s.repo.AttachPermission(txCtx, created.ID, nothing); err != nil {
				return err
			}
			created.SetPermission(nothing)
		}
		s.audit.Record(txCtx, actorID, "create", "role", created.ID, map[string]any{"name": name})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(&RoleCreatedEvent{ActorID: actorID, Result: created})
	return created, nil
}

func (s *RoleService) Rename(ctx context.Context, actorID, id uint, name string) (*role.Role, error) {
	if err := s.authz.Authorize(ctx, actorID, permission.CategoryRoles, 2, nil); err != nil {
		return nil, err
	}
	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	entity.Name = name

	err = composables.InTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, entity); err != nil {
			return err
		}
		s.audit.Record(txCtx, actorID, "update", "role", entity.ID, map[string]any{"name": name})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *RoleService) Delete(ctx context.Context, actorID, id uint) error {
	if err := s.authz.Authorize(ctx, actorID, permission.CategoryRoles, 3, nil); err != nil {
		return err
	}
	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	err = composables.InTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, id); err != nil {
			return err
		}
		s.audit.Record(txCtx, actorID, "delete", "role", id, map[string]any{"name": entity.Name})
		return nil
	})
	if err != nil {
		return err
	}

	s.publisher.Publish(&RoleDeletedEvent{ActorID: actorID, Result: entity})
	return nil
}

// SetPermission swaps the role's entry in the permission's category.
func (s *RoleService) SetPermission(ctx context.Context, actorID, roleID, permissionID uint) (*role.Role, error) {
	if err := s.authz.Authorize(ctx, actorID, permission.CategoryPermissions, 3, nil); err != nil {
		return nil, err
	}

	entity, err := s.repo.GetByID(ctx, roleID)
	if err != nil {
		return nil, err
	}
	p, err := s.perms.GetByID(ctx, permissionID)
	if err != nil {
		return nil, err
	}

	previous := entity.PermissionFor(p.Category)
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.AttachPermission(txCtx, roleID, p); err != nil {
			return err
		}
		meta := map[string]any{"category": p.Category, "level": p.Level}
		if previous != nil {
			meta["previous_level"] = previous.Level
		}
		s.audit.Record(txCtx, actorID, "set_permission", "role", roleID, meta)
		return nil
	})
	if err != nil {
		return nil, err
	}

	entity.SetPermission(p)
	return entity, nil
}

func (s *RoleService) GetByID(ctx context.Context, actorID, id uint) (*role.Role, error) {
	if err := s.authz.Authorize(ctx, actorID, permission.CategoryRoles, 1, nil); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *RoleService) List(ctx context.Context, actorID uint, params *role.FindParams) ([]*role.Role, error) {
	if err := s.authz.Authorize(ctx, actorID, permission.CategoryRoles, 1, nil); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, params)
}

// ensureCatalogEntry resolves a (category, level) catalog row, creating it on
// the defensive path only. A healthy catalog is seeded up front.
func (s *RoleService) ensureCatalogEntry(ctx context.Context, category permission.Category, level int, description string) (*permission.Permission, error) {
	existing, err := s.perms.GetByCategoryLevel(ctx, category, level)
	if err == nil {
		return existing, nil
	}
	if !serrors.IsNotFound(err) {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"category": category, "level": level}).
		Warn("catalog entry missing, creating it lazily")
	entity, err := permission.New(category, level, description)
	if err != nil {
		return nil, err
	}
	return s.perms.Create(ctx, entity)
}

type RoleCreatedEvent struct {
	ActorID uint
	Result  *role.Role
}

type RoleDeletedEvent struct {
	ActorID uint
	Result  *role.Role
}

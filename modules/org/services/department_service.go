package services

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/iota-uz/taskdesk/modules/core/domain/aggregates/user"
	"github.com/iota-uz/taskdesk/modules/core/domain/entities/permission"
	"github.com/iota-uz/taskdesk/modules/org/domain/department"
	"github.com/iota-uz/taskdesk/modules/org/domain/tree"
	"github.com/iota-uz/taskdesk/pkg/composables"
	"github.com/iota-uz/taskdesk/pkg/eventbus"
	"github.com/iota-uz/taskdesk/pkg/serrors"
)

// AuditRecorder receives one entry per mutating operation. Implementations
// must swallow their own failures.
type AuditRecorder interface {
	Record(ctx context.Context, actorID uint, action, targetType string, targetID uint, meta map[string]any)
}

type CreateDepartmentDTO struct {
	Name      string `validate:"required"`
	ParentID  *uint
	ManagerID uint `validate:"required"`
}

type UpdateDepartmentDTO struct {
	Name      *string `validate:"omitempty,min=1"`
	ParentID  *uint
	ManagerID *uint
	// ClearParent promotes the department to top level. ParentID wins when
	// both are set.
	ClearParent bool
}

type DepartmentService struct {
	repo           department.Repository
	users          user.Repository
	authz          *AuthzService
	audit          AuditRecorder
	publisher      eventbus.EventBus
	validate       *validator.Validate
	chairmanRoleID uint
}

func NewDepartmentService(
	repo department.Repository,
	users user.Repository,
	authz *AuthzService,
	audit AuditRecorder,
	publisher eventbus.EventBus,
	chairmanRoleID uint,
) *DepartmentService {
	return &DepartmentService{
		repo:           repo,
		users:          users,
		authz:          authz,
		audit:          audit,
		publisher:      publisher,
		validate:       validator.New(),
		chairmanRoleID: chairmanRoleID,
	}
}

func (s *DepartmentService) Create(ctx context.Context, actorID uint, dto CreateDepartmentDTO) (*department.Department, error) {
	if err := s.validate.Struct(dto); err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, actorID, permission.CategoryDepartments, 4, dto.ParentID); err != nil {
		return nil, err
	}

	manager, err := s.users.GetByID(ctx, dto.ManagerID)
	if err != nil {
		return nil, err
	}
	if dto.ParentID == nil && manager.RoleID != s.chairmanRoleID {
		return nil, serrors.NewConstraintViolationError(
			"top_level_manager_role",
			"a top-level department's manager must hold the chairman role",
			map[string]any{"manager_id": manager.ID, "role_id": manager.RoleID},
		)
	}

	entity, err := department.New(dto.Name, dto.ParentID, dto.ManagerID)
	if err != nil {
		return nil, err
	}

	var created *department.Department
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		created, err = s.repo.Create(txCtx, entity)
		if err != nil {
			return err
		}
		if err := s.repo.AddMember(txCtx, created.ID, dto.ManagerID); err != nil {
			return err
		}
		created.MemberIDs = append(created.MemberIDs, dto.ManagerID)
		s.audit.Record(txCtx, actorID, "create", "department", created.ID, map[string]any{
			"name":       created.Name,
			"parent_id":  created.ParentID,
			"manager_id": created.ManagerID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(&department.CreatedEvent{ActorID: actorID, Result: created})
	return created, nil
}

func (s *DepartmentService) Update(ctx context.Context, actorID, id uint, dto UpdateDepartmentDTO) (*department.Department, error) {
	if err := s.validate.Struct(dto); err != nil {
		return nil, err
	}
	target := id
	if err := s.authz.Authorize(ctx, actorID, permission.CategoryDepartments, 4, &target); err != nil {
		return nil, err
	}

	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		entity.Name = *dto.Name
	}
	if dto.ParentID != nil {
		all, err := s.repo.GetAll(ctx)
		if err != nil {
			return nil, err
		}
		idx := tree.NewIndex(all)
		if !idx.Contains(*dto.ParentID) {
			return nil, serrors.NewNotFoundError("department", *dto.ParentID)
		}
		if idx.WouldCycle(id, *dto.ParentID) {
			return nil, serrors.NewConstraintViolationError(
				"department_cycle",
				"the new parent is a descendant of the department",
				map[string]any{"department_id": id, "parent_id": *dto.ParentID},
			)
		}
		entity.ParentID = dto.ParentID
	} else if dto.ClearParent {
		entity.ParentID = nil
	}
	if dto.ManagerID != nil {
		entity.ManagerID = *dto.ManagerID
	}

	if entity.ParentID == nil {
		manager, err := s.users.GetByID(ctx, entity.ManagerID)
		if err != nil {
			return nil, err
		}
		if manager.RoleID != s.chairmanRoleID {
			return nil, serrors.NewConstraintViolationError(
				"top_level_manager_role",
				"a top-level department's manager must hold the chairman role",
				map[string]any{"manager_id": manager.ID, "role_id": manager.RoleID},
			)
		}
	}

	err = composables.InTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, entity); err != nil {
			return err
		}
		s.audit.Record(txCtx, actorID, "update", "department", entity.ID, map[string]any{
			"name":       entity.Name,
			"parent_id":  entity.ParentID,
			"manager_id": entity.ManagerID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(&department.UpdatedEvent{ActorID: actorID, Result: entity})
	return entity, nil
}

func (s *DepartmentService) Delete(ctx context.Context, actorID, id uint) error {
	target := id
	if err := s.authz.Authorize(ctx, actorID, permission.CategoryDepartments, 4, &target); err != nil {
		return err
	}

	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return err
	}
	if count := tree.NewIndex(all).DescendantCount(id); count > 0 {
		return serrors.NewConstraintViolationError(
			"department_has_descendants",
			"department cannot be deleted while descendants exist",
			map[string]any{"department_id": id, "descendant_count": count},
		)
	}

	err = composables.InTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, id); err != nil {
			return err
		}
		s.audit.Record(txCtx, actorID, "delete", "department", id, map[string]any{"name": entity.Name})
		return nil
	})
	if err != nil {
		return err
	}

	s.publisher.Publish(&department.DeletedEvent{ActorID: actorID, Result: entity})
	return nil
}

// AddMember is idempotent: adding an existing member is a no-op.
func (s *DepartmentService) AddMember(ctx context.Context, actorID, departmentID, userID uint) error {
	target := departmentID
	if err := s.authz.Authorize(ctx, actorID, permission.CategoryDepartments, 3, &target); err != nil {
		return err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}
	entity, err := s.repo.GetByID(ctx, departmentID)
	if err != nil {
		return err
	}
	if entity.HasMember(userID) {
		return nil
	}

	err = composables.InTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.AddMember(txCtx, departmentID, userID); err != nil {
			return err
		}
		s.audit.Record(txCtx, actorID, "add_member", "department", departmentID, map[string]any{"user_id": userID})
		return nil
	})
	if err != nil {
		return err
	}

	s.publisher.Publish(&department.MemberAddedEvent{ActorID: actorID, DepartmentID: departmentID, UserID: userID})
	return nil
}

func (s *DepartmentService) RemoveMember(ctx context.Context, actorID, departmentID, userID uint) error {
	target := departmentID
	if err := s.authz.Authorize(ctx, actorID, permission.CategoryDepartments, 3, &target); err != nil {
		return err
	}
	entity, err := s.repo.GetByID(ctx, departmentID)
	if err != nil {
		return err
	}
	if entity.ManagerID == userID {
		return serrors.NewConstraintViolationError(
			"department_manager_membership",
			"the department's manager cannot be removed from its members",
			map[string]any{"department_id": departmentID, "user_id": userID},
		)
	}
	if !entity.HasMember(userID) {
		return nil
	}

	err = composables.InTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.RemoveMember(txCtx, departmentID, userID); err != nil {
			return err
		}
		s.audit.Record(txCtx, actorID, "remove_member", "department", departmentID, map[string]any{"user_id": userID})
		return nil
	})
	if err != nil {
		return err
	}

	s.publisher.Publish(&department.MemberRemovedEvent{ActorID: actorID, DepartmentID: departmentID, UserID: userID})
	return nil
}

func (s *DepartmentService) GetByID(ctx context.Context, actorID, id uint) (*department.Department, error) {
	target := id
	if err := s.authz.Authorize(ctx, actorID, permission.CategoryDepartments, 1, &target); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// List returns the departments visible to the actor under their scope.
func (s *DepartmentService) List(ctx context.Context, actorID uint) ([]*department.Department, error) {
	if err := s.authz.Authorize(ctx, actorID, permission.CategoryDepartments, 1, nil); err != nil {
		return nil, err
	}
	visible, err := s.authz.VisibleDepartments(ctx, actorID)
	if err != nil {
		return nil, err
	}
	allowed := make(map[uint]bool, len(visible))
	for _, id := range visible {
		allowed[id] = true
	}

	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []*department.Department
	for _, d := range all {
		if allowed[d.ID] {
			out = append(out, d)
		}
	}
	return out, nil
}

// Closure exposes the descendant closure to callers outside the module.
func (s *DepartmentService) Closure(ctx context.Context, deptID uint) ([]uint, error) {
	return s.authz.DepartmentClosure(ctx, deptID)
}

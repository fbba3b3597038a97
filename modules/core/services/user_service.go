package services

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/iota-uz/taskdesk/modules/core/domain/aggregates/user"
	"github.com/iota-uz/taskdesk/modules/core/domain/entities/permission"
	"github.com/iota-uz/taskdesk/modules/org/domain/department"
	"github.com/iota-uz/taskdesk/pkg/composables"
	"github.com/iota-uz/taskdesk/pkg/eventbus"
	"github.com/iota-uz/taskdesk/pkg/serrors"
)

type CreateUserDTO struct {
	Name         string `validate:"required"`
	Email        string `validate:"omitempty,email"`
	Phone        string
	Address      string
	RoleID       uint
	DepartmentID uint `validate:"required"`
}

type UpdateUserDTO struct {
	Name    *string `validate:"omitempty,min=1"`
	Email   *string `validate:"omitempty,email"`
	Phone   *string
	Address *string
	RoleID  *uint
}

type UserService struct {
	repo           user.Repository
	departments    department.Repository
	authz          Authorizer
	audit          AuditRecorder
	publisher      eventbus.EventBus
	validate       *validator.Validate
	defaultRoleID  uint
	chairmanRoleID uint
}

func NewUserService(
	repo user.Repository,
	departments department.Repository,
	authz Authorizer,
	audit AuditRecorder,
	publisher eventbus.EventBus,
	defaultRoleID uint,
	chairmanRoleID uint,
) *UserService {
	return &UserService{
		repo:           repo,
		departments:    departments,
		authz:          authz,
		audit:          audit,
		publisher:      publisher,
		validate:       validator.New(),
		defaultRoleID:  defaultRoleID,
		chairmanRoleID: chairmanRoleID,
	}
}

// Create registers a user inside a department. Without an explicit role the
// configured default role is assigned.
func (s *UserService) Create(ctx context.Context, actorID uint, dto CreateUserDTO) (*user.User, error) {
	if err := s.validate.Struct(dto); err != nil {
		return nil, err
	}
	target := dto.DepartmentID
	if err := s.authz.Authorize(ctx, actorID, permission.CategoryUsers, 4, &target); err != nil {
		return nil, err
	}

	roleID := dto.RoleID
	if roleID == 0 {
		roleID = s.defaultRoleID
	}
	entity, err := user.New(dto.Name, dto.Email, roleID)
	if err != nil {
		return nil, err
	}
	entity.Phone = dto.Phone
	entity.Address = dto.Address

	var created *user.User
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		created, err = s.repo.Create(txCtx, entity)
		if err != nil {
			return err
		}
		if err := s.departments.AddMember(txCtx, dto.DepartmentID, created.ID); err != nil {
			return err
		}
		created.DepartmentIDs = append(created.DepartmentIDs, dto.DepartmentID)
		s.audit.Record(txCtx, actorID, "create", "user", created.ID, map[string]any{
			"name":          created.Name,
			"role_id":       created.RoleID,
			"department_id": dto.DepartmentID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(&UserCreatedEvent{ActorID: actorID, Result: created})
	return created, nil
}

// Update patches profile fields and, with restrictions, the role. A user may
// not change their own role, and the manager of a top-level department must
// keep the chairman role.
func (s *UserService) Update(ctx context.Context, actorID, id uint, dto UpdateUserDTO) (*user.User, error) {
	if err := s.validate.Struct(dto); err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, actorID, permission.CategoryUsers, 3, nil); err != nil {
		return nil, err
	}

	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.RoleID != nil && *dto.RoleID != entity.RoleID {
		if actorID == id {
			return nil, serrors.NewConstraintViolationError(
				"self_role_change",
				"users cannot change their own role",
				map[string]any{"user_id": id},
			)
		}
		if *dto.RoleID != s.chairmanRoleID {
			managed, err := s.departments.ManagedBy(ctx, id)
			if err != nil {
				return nil, err
			}
			for _, d := range managed {
				if d.IsTopLevel() {
					return nil, serrors.NewConstraintViolationError(
						"top_level_manager_role",
						"the manager of a top-level department must keep the chairman role",
						map[string]any{"user_id": id, "department_id": d.ID},
					)
				}
			}
		}
		entity.RoleID = *dto.RoleID
	}

	if dto.Name != nil {
		entity.Name = *dto.Name
	}
	if dto.Email != nil {
		entity.Email = *dto.Email
	}
	if dto.Phone != nil {
		entity.Phone = *dto.Phone
	}
	if dto.Address != nil {
		entity.Address = *dto.Address
	}

	err = composables.InTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, entity); err != nil {
			return err
		}
		s.audit.Record(txCtx, actorID, "update", "user", entity.ID, map[string]any{
			"name":    entity.Name,
			"role_id": entity.RoleID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(&UserUpdatedEvent{ActorID: actorID, Result: entity})
	return entity, nil
}

// Delete removes a user. Self-deletion and deleting a department manager are
// blocked.
func (s *UserService) Delete(ctx context.Context, actorID, id uint) error {
	if err := s.authz.Authorize(ctx, actorID, permission.CategoryUsers, 4, nil); err != nil {
		return err
	}
	if actorID == id {
		return serrors.NewConstraintViolationError(
			"self_deletion",
			"users cannot delete themselves",
			map[string]any{"user_id": id},
		)
	}

	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	managed, err := s.departments.ManagedBy(ctx, id)
	if err != nil {
		return err
	}
	if len(managed) > 0 {
		return serrors.NewConstraintViolationError(
			"manager_deletion",
			"a department manager cannot be deleted",
			map[string]any{"user_id": id, "department_id": managed[0].ID},
		)
	}

	err = composables.InTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, id); err != nil {
			return err
		}
		s.audit.Record(txCtx, actorID, "delete", "user", id, map[string]any{"name": entity.Name})
		return nil
	})
	if err != nil {
		return err
	}

	s.publisher.Publish(&UserDeletedEvent{ActorID: actorID, Result: entity})
	return nil
}

// SetPushToken registers the caller's own device token.
func (s *UserService) SetPushToken(ctx context.Context, actorID uint, token *string) error {
	return s.repo.SetPushToken(ctx, actorID, token)
}

func (s *UserService) GetByID(ctx context.Context, actorID, id uint) (*user.User, error) {
	if actorID != id {
		if err := s.authz.Authorize(ctx, actorID, permission.CategoryUsers, 1, nil); err != nil {
			return nil, err
		}
	}
	return s.repo.GetByID(ctx, id)
}

// ListByDepartment lists a department's users within the actor's scope.
func (s *UserService) ListByDepartment(ctx context.Context, actorID, departmentID uint) ([]*user.User, error) {
	target := departmentID
	if err := s.authz.Authorize(ctx, actorID, permission.CategoryUsers, 1, &target); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, &user.FindParams{DepartmentID: &departmentID})
}

type UserCreatedEvent struct {
	ActorID uint
	Result  *user.User
}

type UserUpdatedEvent struct {
	ActorID uint
	Result  *user.User
}

type UserDeletedEvent struct {
	ActorID uint
	Result  *user.User
}

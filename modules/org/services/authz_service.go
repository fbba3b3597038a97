package services

import (
	"context"

	"github.com/iota-uz/taskdesk/modules/core/domain/aggregates/role"
	"github.com/iota-uz/taskdesk/modules/core/domain/aggregates/user"
	"github.com/iota-uz/taskdesk/modules/core/domain/entities/permission"
	"github.com/iota-uz/taskdesk/modules/org/domain/department"
	"github.com/iota-uz/taskdesk/modules/org/domain/tree"
	"github.com/iota-uz/taskdesk/pkg/metrics"
	"github.com/iota-uz/taskdesk/pkg/serrors"
)

// AuthzService is the single authorization decision point. Every guarded
// operation calls Authorize; call sites differ only in category and minimum
// level.
type AuthzService struct {
	users       user.Repository
	roles       role.Repository
	departments department.Repository
}

func NewAuthzService(
	users user.Repository,
	roles role.Repository,
	departments department.Repository,
) *AuthzService {
	return &AuthzService{
		users:       users,
		roles:       roles,
		departments: departments,
	}
}

// LevelFor resolves the actor's permission level in a category.
func (s *AuthzService) LevelFor(ctx context.Context, actorID uint, category permission.Category) (int, error) {
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return 0, err
	}
	r, err := s.roles.GetByID(ctx, actor.RoleID)
	if err != nil {
		return 0, err
	}
	return r.LevelFor(category), nil
}

// Authorize decides whether actorID may perform an operation requiring
// minLevel in category. When targetDeptID is set, department scope is checked
// on top of the level: an actor with Departments level >= 2 reaches the whole
// subtree under their own departments, an actor at level 1 reaches only the
// departments they are literally a member of.
func (s *AuthzService) Authorize(
	ctx context.Context,
	actorID uint,
	category permission.Category,
	minLevel int,
	targetDeptID *uint,
) error {
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return err
	}
	r, err := s.roles.GetByID(ctx, actor.RoleID)
	if err != nil {
		return err
	}

	level := r.LevelFor(category)
	if level < minLevel {
		metrics.AuthorizationDenied.WithLabelValues(string(category)).Inc()
		return serrors.NewForbiddenError(string(category), minLevel, level)
	}

	if targetDeptID == nil {
		return nil
	}

	all, err := s.departments.GetAll(ctx)
	if err != nil {
		return err
	}
	idx := tree.NewIndex(all)
	if !idx.Contains(*targetDeptID) {
		return serrors.NewNotFoundError("department", *targetDeptID)
	}

	if r.LevelFor(permission.CategoryDepartments) >= 2 {
		if idx.IsWithinScope(*targetDeptID, actor.DepartmentIDs) {
			return nil
		}
	} else {
		if actor.IsMemberOf(*targetDeptID) {
			return nil
		}
	}

	metrics.AuthorizationDenied.WithLabelValues(string(category)).Inc()
	return serrors.NewScopeError(*targetDeptID)
}

// DepartmentClosure returns deptID plus every transitive descendant.
func (s *AuthzService) DepartmentClosure(ctx context.Context, deptID uint) ([]uint, error) {
	all, err := s.departments.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	closure := tree.NewIndex(all).Closure(deptID)
	if closure == nil {
		return nil, serrors.NewNotFoundError("department", deptID)
	}
	return closure, nil
}

// VisibleDepartments lists the departments the actor may read: the whole
// subtree under their memberships at broad scope, bare memberships otherwise.
func (s *AuthzService) VisibleDepartments(ctx context.Context, actorID uint) ([]uint, error) {
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	r, err := s.roles.GetByID(ctx, actor.RoleID)
	if err != nil {
		return nil, err
	}

	if r.LevelFor(permission.CategoryDepartments) < 2 {
		return append([]uint(nil), actor.DepartmentIDs...), nil
	}

	all, err := s.departments.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	idx := tree.NewIndex(all)

	seen := make(map[uint]bool)
	var visible []uint
	for _, own := range actor.DepartmentIDs {
		for _, id := range idx.Closure(own) {
			if !seen[id] {
				seen[id] = true
				visible = append(visible, id)
			}
		}
	}
	return visible, nil
}

package seed

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/taskdesk/modules/core/domain/aggregates/role"
	"github.com/iota-uz/taskdesk/modules/core/domain/entities/permission"
	"github.com/iota-uz/taskdesk/pkg/composables"
	"github.com/iota-uz/taskdesk/pkg/serrors"
)

const (
	MemberRoleName   = "member"
	ChairmanRoleName = "chairman"
)

// Seeder installs the baseline catalog and roles. It runs once at system
// initialization; the services fail fast when the seed data is absent instead
// of creating it on the fly.
type Seeder struct {
	perms          permission.Repository
	roles          role.Repository
	log            *logrus.Entry
	chairmanRoleID uint
}

func New(perms permission.Repository, roles role.Repository, log *logrus.Logger, chairmanRoleID uint) *Seeder {
	return &Seeder{
		perms:          perms,
		roles:          roles,
		log:            log.WithField("component", "seed"),
		chairmanRoleID: chairmanRoleID,
	}
}

// EnsureSeeded is idempotent: existing rows are left untouched.
func (s *Seeder) EnsureSeeded(ctx context.Context) error {
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		for _, category := range permission.AllCategories {
			if _, err := s.ensurePermission(txCtx, category, 0, "Nothing"); err != nil {
				return err
			}
			if _, err := s.ensurePermission(txCtx, category, 4, "Everything"); err != nil {
				return err
			}
		}
		if _, err := s.ensureRole(txCtx, MemberRoleName, 0); err != nil {
			return err
		}
		if _, err := s.ensureRole(txCtx, ChairmanRoleName, 4); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	return s.Validate(ctx)
}

// Validate fails with a ConstraintViolation when the expected seed data is
// missing, so callers can refuse to start.
func (s *Seeder) Validate(ctx context.Context) error {
	for _, category := range permission.AllCategories {
		if _, err := s.perms.GetByCategoryLevel(ctx, category, 0); err != nil {
			if serrors.IsNotFound(err) {
				return serrors.NewConstraintViolationError(
					"seed_missing",
					"the permission catalog has not been seeded",
					map[string]any{"category": category},
				)
			}
			return err
		}
	}

	chairman, err := s.roles.GetByID(ctx, s.chairmanRoleID)
	if err != nil {
		if serrors.IsNotFound(err) {
			return serrors.NewConstraintViolationError(
				"seed_missing",
				"the configured chairman role does not exist",
				map[string]any{"chairman_role_id": s.chairmanRoleID},
			)
		}
		return err
	}
	if !chairman.HasLevel(permission.CategoryDepartments, 4) {
		return serrors.NewConstraintViolationError(
			"seed_missing",
			"the chairman role lacks full department access",
			map[string]any{"chairman_role_id": s.chairmanRoleID},
		)
	}
	return nil
}

func (s *Seeder) ensurePermission(ctx context.Context, category permission.Category, level int, description string) (*permission.Permission, error) {
	existing, err := s.perms.GetByCategoryLevel(ctx, category, level)
	if err == nil {
		return existing, nil
	}
	if !serrors.IsNotFound(err) {
		return nil, err
	}

	entity, err := permission.New(category, level, description)
	if err != nil {
		return nil, err
	}
	created, err := s.perms.Create(ctx, entity)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"category": category, "level": level}).Info("seeded permission")
	return created, nil
}

func (s *Seeder) ensureRole(ctx context.Context, name string, level int) (*role.Role, error) {
	existing, err := s.roles.GetByName(ctx, name)
	if err == nil {
		return existing, nil
	}
	if !serrors.IsNotFound(err) {
		return nil, err
	}

	entity, err := role.New(name)
	if err != nil {
		return nil, err
	}
	created, err := s.roles.Create(ctx, entity)
	if err != nil {
		return nil, err
	}
	for _, category := range permission.AllCategories {
		p, err := s.perms.GetByCategoryLevel(ctx, category, level)
		if err != nil {
			return nil, err
		}
		if err := s.roles.AttachPermission(ctx, created.ID, p); err != nil {
			return nil, err
		}
		created.SetPermission(p)
	}
	s.log.WithField("role", name).Info("seeded role")
	return created, nil
}

package seed

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/taskdesk/modules/core/domain/aggregates/role"
	"github.com/iota-uz/taskdesk/modules/core/domain/entities/permission"
	"github.com/iota-uz/taskdesk/pkg/serrors"
)

type permRepoFake struct {
	perms  map[uint]*permission.Permission
	nextID uint
}

func newPermRepoFake() *permRepoFake {
	return &permRepoFake{perms: make(map[uint]*permission.Permission)}
}

func (f *permRepoFake) GetByID(_ context.Context, id uint) (*permission.Permission, error) {
	p, ok := f.perms[id]
	if !ok {
		return nil, serrors.NewNotFoundError("permission", id)
	}
	return p, nil
}

func (f *permRepoFake) GetByCategoryLevel(_ context.Context, category permission.Category, level int) (*permission.Permission, error) {
	for _, p := range f.perms {
		if p.Category == category && p.Level == level {
			return p, nil
		}
	}
	return nil, serrors.NewNotFoundError("permission", 0)
}

func (f *permRepoFake) List(_ context.Context, _ *permission.FindParams) ([]*permission.Permission, error) {
	var out []*permission.Permission
	for _, p := range f.perms {
		out = append(out, p)
	}
	return out, nil
}

func (f *permRepoFake) Create(_ context.Context, p *permission.Permission) (*permission.Permission, error) {
	f.nextID++
	p.ID = f.nextID
	f.perms[p.ID] = p
	return p, nil
}

func (f *permRepoFake) Update(_ context.Context, p *permission.Permission) error {
	f.perms[p.ID] = p
	return nil
}

func (f *permRepoFake) Delete(_ context.Context, id uint) error {
	delete(f.perms, id)
	return nil
}

type roleRepoFake struct {
	roles  map[uint]*role.Role
	nextID uint
}

func newRoleRepoFake() *roleRepoFake {
	return &roleRepoFake{roles: make(map[uint]*role.Role)}
}

func (f *roleRepoFake) GetByID(_ context.Context, id uint) (*role.Role, error) {
	r, ok := f.roles[id]
	if !ok {
		return nil, serrors.NewNotFoundError("role", id)
	}
	return r, nil
}

func (f *roleRepoFake) GetByName(_ context.Context, name string) (*role.Role, error) {
	for _, r := range f.roles {
		if r.Name == name {
			return r, nil
		}
	}
	return nil, serrors.NewNotFoundError("role", 0)
}

func (f *roleRepoFake) List(_ context.Context, _ *role.FindParams) ([]*role.Role, error) {
	var out []*role.Role
	for _, r := range f.roles {
		out = append(out, r)
	}
	return out, nil
}

func (f *roleRepoFake) Create(_ context.Context, r *role.Role) (*role.Role, error) {
	f.nextID++
	r.ID = f.nextID
	f.roles[r.ID] = r
	return r, nil
}

func (f *roleRepoFake) Update(_ context.Context, r *role.Role) error {
	f.roles[r.ID] = r
	return nil
}

func (f *roleRepoFake) Delete(_ context.Context, id uint) error {
	delete(f.roles, id)
	return nil
}

func (f *roleRepoFake) AttachPermission(_ context.Context, roleID uint, p *permission.Permission) error {
	r, ok := f.roles[roleID]
	if !ok {
		return serrors.NewNotFoundError("role", roleID)
	}
	r.SetPermission(p)
	return nil
}

func (f *roleRepoFake) DetachPermission(_ context.Context, roleID, permissionID uint) error {
	r, ok := f.roles[roleID]
	if !ok {
		return serrors.NewNotFoundError("role", roleID)
	}
	kept := r.Permissions[:0]
	for _, p := range r.Permissions {
		if p.ID != permissionID {
			kept = append(kept, p)
		}
	}
	r.Permissions = kept
	return nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestSeeder_EnsureSeeded(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh install gets catalog and both roles", func(t *testing.T) {
		perms := newPermRepoFake()
		roles := newRoleRepoFake()
		// the chairman role is created second, so it gets ID 2
		seeder := New(perms, roles, quietLogger(), 2)

		require.NoError(t, seeder.EnsureSeeded(ctx))

		for _, category := range permission.AllCategories {
			_, err := perms.GetByCategoryLevel(ctx, category, 0)
			assert.NoError(t, err, "level 0 for %s", category)
			_, err = perms.GetByCategoryLevel(ctx, category, 4)
			assert.NoError(t, err, "level 4 for %s", category)
		}

		member, err := roles.GetByName(ctx, MemberRoleName)
		require.NoError(t, err)
		assert.Equal(t, 0, member.LevelFor(permission.CategoryTasks))

		chairman, err := roles.GetByName(ctx, ChairmanRoleName)
		require.NoError(t, err)
		for _, category := range permission.AllCategories {
			assert.Equal(t, 4, chairman.LevelFor(category))
		}
	})

	t.Run("reruns are idempotent", func(t *testing.T) {
		perms := newPermRepoFake()
		roles := newRoleRepoFake()
		seeder := New(perms, roles, quietLogger(), 2)

		require.NoError(t, seeder.EnsureSeeded(ctx))
		permCount := len(perms.perms)
		roleCount := len(roles.roles)

		require.NoError(t, seeder.EnsureSeeded(ctx))
		assert.Equal(t, permCount, len(perms.perms))
		assert.Equal(t, roleCount, len(roles.roles))
	})

	t.Run("misconfigured chairman role id fails validation", func(t *testing.T) {
		perms := newPermRepoFake()
		roles := newRoleRepoFake()
		seeder := New(perms, roles, quietLogger(), 42)

		err := seeder.EnsureSeeded(ctx)
		require.Error(t, err)

		var cv *serrors.ConstraintViolationError
		require.ErrorAs(t, err, &cv)
		assert.Equal(t, "seed_missing", cv.Constraint)
	})
}

func TestSeeder_Validate(t *testing.T) {
	ctx := context.Background()

	t.Run("empty catalog is reported before startup", func(t *testing.T) {
		seeder := New(newPermRepoFake(), newRoleRepoFake(), quietLogger(), 2)

		err := seeder.Validate(ctx)
		require.Error(t, err)
		assert.True(t, serrors.IsConstraintViolation(err))
	})

	t.Run("chairman without full department access is rejected", func(t *testing.T) {
		perms := newPermRepoFake()
		roles := newRoleRepoFake()
		seeder := New(perms, roles, quietLogger(), 1)

		for _, category := range permission.AllCategories {
			entry, err := permission.New(category, 0, "Nothing")
			require.NoError(t, err)
			_, err = perms.Create(ctx, entry)
			require.NoError(t, err)
		}
		weak, err := role.New("chairman")
		require.NoError(t, err)
		_, err = roles.Create(ctx, weak)
		require.NoError(t, err)

		verr := seeder.Validate(ctx)
		var cv *serrors.ConstraintViolationError
		require.ErrorAs(t, verr, &cv)
		assert.Equal(t, "seed_missing", cv.Constraint)
	})
}

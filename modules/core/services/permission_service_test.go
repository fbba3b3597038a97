package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/taskdesk/modules/core/domain/entities/permission"
	"github.com/iota-uz/taskdesk/pkg/serrors"
)

func newCatalogAuthz() *authzFake {
	return &authzFake{
		levels: map[uint]map[permission.Category]int{
			// actor 1 administers the catalog, actor 2 can only read it
			1: {permission.CategoryPermissions: 3, permission.CategoryRoles: 3},
			2: {permission.CategoryPermissions: 1, permission.CategoryRoles: 1},
		},
	}
}

func TestPermissionService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a catalog entry and audits it", func(t *testing.T) {
		repo := newPermRepoFake()
		audit := &auditFake{}
		svc := NewPermissionService(repo, newCatalogAuthz(), audit)

		created, err := svc.Create(ctx, 1, CreatePermissionDTO{
			Category:    permission.CategoryTasks,
			Level:       2,
			Description: "work on own tasks",
		})
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.Contains(t, audit.records, "permission.create")
	})

	t.Run("rejects a duplicate category and level pair", func(t *testing.T) {
		existing, err := permission.New(permission.CategoryTasks, 2, "work on own tasks")
		require.NoError(t, err)
		existing.ID = 7
		repo := newPermRepoFake(existing)
		svc := NewPermissionService(repo, newCatalogAuthz(), &auditFake{})

		_, err = svc.Create(ctx, 1, CreatePermissionDTO{
			Category:    permission.CategoryTasks,
			Level:       2,
			Description: "duplicate",
		})
		require.Error(t, err)
		assert.True(t, serrors.IsConstraintViolation(err))

		var cv *serrors.ConstraintViolationError
		require.ErrorAs(t, err, &cv)
		assert.Equal(t, "permission_category_level", cv.Constraint)
		assert.Equal(t, uint(7), cv.Details["permission_id"])
	})

	t.Run("same level in another category is fine", func(t *testing.T) {
		existing, err := permission.New(permission.CategoryTasks, 2, "work on own tasks")
		require.NoError(t, err)
		existing.ID = 7
		repo := newPermRepoFake(existing)
		svc := NewPermissionService(repo, newCatalogAuthz(), &auditFake{})

		_, err = svc.Create(ctx, 1, CreatePermissionDTO{
			Category:    permission.CategoryComments,
			Level:       2,
			Description: "edit own comments",
		})
		assert.NoError(t, err)
	})

	t.Run("requires Permissions level 3", func(t *testing.T) {
		svc := NewPermissionService(newPermRepoFake(), newCatalogAuthz(), &auditFake{})

		_, err := svc.Create(ctx, 2, CreatePermissionDTO{
			Category: permission.CategoryTasks,
			Level:    1,
		})
		assert.True(t, serrors.IsForbidden(err))
	})
}

func TestPermissionService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	entry, err := permission.New(permission.CategoryUsers, 3, "manage users")
	require.NoError(t, err)
	entry.ID = 4

	t.Run("update rewrites the description only", func(t *testing.T) {
		repo := newPermRepoFake(entry)
		svc := NewPermissionService(repo, newCatalogAuthz(), &auditFake{})

		updated, err := svc.UpdateDescription(ctx, 1, 4, "manage users in scope")
		require.NoError(t, err)
		assert.Equal(t, "manage users in scope", updated.Description)
		assert.Equal(t, 3, updated.Level)
	})

	t.Run("delete removes the entry", func(t *testing.T) {
		repo := newPermRepoFake(entry)
		audit := &auditFake{}
		svc := NewPermissionService(repo, newCatalogAuthz(), audit)

		require.NoError(t, svc.Delete(ctx, 1, 4))
		_, err := repo.GetByID(ctx, 4)
		assert.True(t, serrors.IsNotFound(err))
		assert.Contains(t, audit.records, "permission.delete")
	})

	t.Run("delete of a missing entry reports not found", func(t *testing.T) {
		svc := NewPermissionService(newPermRepoFake(), newCatalogAuthz(), &auditFake{})
		assert.True(t, serrors.IsNotFound(svc.Delete(ctx, 1, 99)))
	})
}

func TestPermissionService_List(t *testing.T) {
	ctx := context.Background()
	a, _ := permission.New(permission.CategoryTasks, 1, "")
	a.ID = 1
	b, _ := permission.New(permission.CategoryUsers, 1, "")
	b.ID = 2
	repo := newPermRepoFake(a, b)
	svc := NewPermissionService(repo, newCatalogAuthz(), &auditFake{})

	t.Run("level 1 can read the catalog", func(t *testing.T) {
		category := permission.CategoryTasks
		out, err := svc.List(ctx, 2, &permission.FindParams{Category: &category})
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, permission.CategoryTasks, out[0].Category)
	})

	t.Run("level 0 cannot", func(t *testing.T) {
		_, err := svc.List(ctx, 9, nil)
		assert.True(t, serrors.IsForbidden(err))
	})
}

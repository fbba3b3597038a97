package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/taskdesk/pkg/serrors"
)

type commentFixture struct {
	svc   *CommentService
	repo  *commentRepoFake
	audit *auditFake
}

func newCommentFixture() *commentFixture {
	repo := newCommentRepoFake()
	audit := &auditFake{}
	tasks := newTaskRepoFake(openTask())
	svc := NewCommentService(repo, tasks, newTaskAuthz(), audit)
	return &commentFixture{svc: svc, repo: repo, audit: audit}
}

func TestCommentService_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("related level 1 caller comments", func(t *testing.T) {
		f := newCommentFixture()
		created, err := f.svc.Add(ctx, 1, 42, "pump ordered", nil)
		require.NoError(t, err)
		assert.Equal(t, uint(1), created.AuthorID)
		assert.Contains(t, f.audit.records, "comment.create")
	})

	t.Run("unrelated level 1 caller denied", func(t *testing.T) {
		f := newCommentFixture()
		_, err := f.svc.Add(ctx, 4, 42, "drive-by", nil)
		assert.True(t, serrors.IsForbidden(err))
	})

	t.Run("level 2 comments on any reachable task", func(t *testing.T) {
		f := newCommentFixture()
		_, err := f.svc.Add(ctx, 2, 42, "status?", nil)
		require.NoError(t, err)
	})

	t.Run("empty body rejected", func(t *testing.T) {
		f := newCommentFixture()
		_, err := f.svc.Add(ctx, 1, 42, "", nil)
		assert.Error(t, err)
	})
}

func TestCommentService_OwnershipRules(t *testing.T) {
	ctx := context.Background()

	t.Run("author edits own comment", func(t *testing.T) {
		f := newCommentFixture()
		created, err := f.svc.Add(ctx, 1, 42, "v1", nil)
		require.NoError(t, err)

		updated, err := f.svc.Edit(ctx, 1, created.ID, "v2")
		require.NoError(t, err)
		assert.Equal(t, "v2", updated.Body)
	})

	t.Run("level 1 cannot edit someone else's comment", func(t *testing.T) {
		f := newCommentFixture()
		created, err := f.svc.Add(ctx, 2, 42, "from the lead", nil)
		require.NoError(t, err)

		_, err = f.svc.Edit(ctx, 1, created.ID, "rewrite")
		assert.True(t, serrors.IsForbidden(err))
	})

	t.Run("level 2 deletes any comment", func(t *testing.T) {
		f := newCommentFixture()
		created, err := f.svc.Add(ctx, 1, 42, "mine", nil)
		require.NoError(t, err)

		require.NoError(t, f.svc.Delete(ctx, 2, created.ID))
		_, err = f.repo.GetByID(ctx, created.ID)
		assert.True(t, serrors.IsNotFound(err))
		assert.Contains(t, f.audit.records, "comment.delete")
	})
}

func TestCommentService_ListByTask(t *testing.T) {
	ctx := context.Background()
	f := newCommentFixture()
	_, err := f.svc.Add(ctx, 1, 42, "first", nil)
	require.NoError(t, err)
	_, err = f.svc.Add(ctx, 2, 42, "second", nil)
	require.NoError(t, err)

	out, err := f.svc.ListByTask(ctx, 1, 42)
	require.NoError(t, err)
	assert.Len(t, out, 2)

	_, err = f.svc.ListByTask(ctx, 4, 42)
	assert.True(t, serrors.IsForbidden(err))
}

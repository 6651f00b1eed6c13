package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"thesisrepo/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	userID := uint(1)
	comment := &models.Comment{Content: "Solid methodology", ThesisID: 1, UserID: &userID, Status: models.CommentStatusApproved}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "comments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Create(ctx, comment)
	assert.NoError(t, err)
	assert.Equal(t, uint(1), comment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_ListByThesis_Mock(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "comments" WHERE thesis_id = $1 ORDER BY created_at ASC,id ASC`)).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "thesis_id", "content", "user_id"}).
			AddRow(1, 7, "Comment 1", 101).
			AddRow(2, 7, "Comment 2", 102))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" IN ($1,$2)`)).
		WithArgs(101, 102).
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name"}).
			AddRow(101, "User 101").
			AddRow(102, "User 102"))

	comments, err := repo.ListByThesis(ctx, 7)
	assert.NoError(t, err)
	assert.Len(t, comments, 2)
	assert.Equal(t, "Comment 1", comments[0].Content)
	if assert.NotNil(t, comments[1].User) {
		assert.Equal(t, "User 102", comments[1].User.FullName)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_ListByThesis_OrdersByCreatedThenID(t *testing.T) {
	db := setupSQLiteDB(t)
	f := seedFixture(t, db)
	th := f.thesis(t, db, "Ordering", 2023)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	same := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	earlier := same.Add(-time.Hour)
	rows := []models.Comment{
		{ThesisID: th.ID, Content: "b", Status: models.CommentStatusApproved, CreatedAt: same},
		{ThesisID: th.ID, Content: "c", Status: models.CommentStatusPending, CreatedAt: same},
		{ThesisID: th.ID, Content: "a", Status: models.CommentStatusApproved, CreatedAt: earlier},
	}
	for i := range rows {
		require.NoError(t, repo.Create(ctx, &rows[i]))
	}

	got, err := repo.ListByThesis(ctx, th.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{got[0].Content, got[1].Content, got[2].Content})
}

func TestCommentRepository_DeleteSubtree(t *testing.T) {
	db := setupSQLiteDB(t)
	f := seedFixture(t, db)
	th := f.thesis(t, db, "Subtree", 2022)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	add := func(parent *uint, content string) uint {
		c := &models.Comment{ThesisID: th.ID, ParentCommentID: parent, Content: content, Status: models.CommentStatusApproved}
		require.NoError(t, repo.Create(ctx, c))
		return c.ID
	}

	root := add(nil, "root")
	child := add(&root, "child")
	add(&child, "grandchild")
	add(&root, "second child")
	other := add(nil, "unrelated")

	deleted, err := repo.DeleteSubtree(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)

	remaining, err := repo.ListByThesis(ctx, th.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, other, remaining[0].ID)

	_, err = repo.DeleteSubtree(ctx, root)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestCommentRepository_DeleteSubtree_CountsCascadedRows(t *testing.T) {
	db := setupSQLiteDB(t)
	f := seedFixture(t, db)
	th := f.thesis(t, db, "Cascade", 2023)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	add := func(parent *uint) uint {
		c := &models.Comment{ThesisID: th.ID, ParentCommentID: parent, Content: "x", Status: models.CommentStatusApproved}
		require.NoError(t, repo.Create(ctx, c))
		return c.ID
	}
	remaining := func() int64 {
		var n int64
		require.NoError(t, db.Model(&models.Comment{}).Where("thesis_id = ?", th.ID).Count(&n).Error)
		return n
	}

	t.Run("deep chain", func(t *testing.T) {
		root := add(nil)
		parent := root
		for i := 0; i < 5; i++ {
			id := add(&parent)
			parent = id
		}

		deleted, err := repo.DeleteSubtree(ctx, root)
		require.NoError(t, err)
		assert.Equal(t, int64(6), deleted)
		assert.Zero(t, remaining())
	})

	t.Run("reply cycle", func(t *testing.T) {
		a := add(nil)
		b := add(&a)
		require.NoError(t, db.Model(&models.Comment{}).Where("id = ?", a).Update("parent_comment_id", b).Error)

		deleted, err := repo.DeleteSubtree(ctx, a)
		require.NoError(t, err)
		assert.Equal(t, int64(2), deleted)
		assert.Zero(t, remaining())
	})
}

func TestCommentRepository_UpdateStatusAndQueue(t *testing.T) {
	db := setupSQLiteDB(t)
	f := seedFixture(t, db)
	th := f.thesis(t, db, "Moderation", 2024)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	studentID := f.Student.ID
	c := &models.Comment{ThesisID: th.ID, UserID: &studentID, Content: "pending one", Status: models.CommentStatusPending}
	require.NoError(t, repo.Create(ctx, c))

	queue, err := repo.ListByStatus(ctx, models.CommentStatusPending, 50, 0)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	if assert.NotNil(t, queue[0].User) {
		assert.Equal(t, "Selin Kaya", queue[0].User.FullName)
	}

	reason := "off topic"
	require.NoError(t, repo.UpdateStatus(ctx, c.ID, models.CommentStatusRejected, &reason))

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CommentStatusRejected, got.Status)
	require.NotNil(t, got.RejectedReason)
	assert.Equal(t, reason, *got.RejectedReason)

	queue, err = repo.ListByStatus(ctx, models.CommentStatusPending, 50, 0)
	require.NoError(t, err)
	assert.Empty(t, queue)

	err = repo.UpdateStatus(ctx, 9999, models.CommentStatusApproved, nil)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestCommentRepository_CreateUnknownThesis(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewCommentRepository(db)

	err := repo.Create(context.Background(), &models.Comment{ThesisID: 404, Content: "orphan", Status: models.CommentStatusApproved})
	assert.True(t, models.HasCode(err, models.CodeValidation))
}

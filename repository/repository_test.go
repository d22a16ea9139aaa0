package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"liist/common"
	"liist/database"
	"liist/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.OpenInMemory(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t *testing.T, repo *UserRepository, id, email string) *models.User {
	t.Helper()
	u := &models.User{ID: id, Email: email, Username: id, PasswordHash: "digest", CreatedAt: t0}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	seedUser(t, repo, "u1", "a@x.com")

	byEmail, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", byEmail.ID)
	assert.Equal(t, "digest", byEmail.PasswordHash)
	assert.True(t, byEmail.CreatedAt.Equal(t0))

	byID, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", byID.Email)

	_, err = repo.GetByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	seedUser(t, repo, "u1", "a@x.com")

	err := repo.Create(ctx, &models.User{ID: "u2", Email: "a@x.com", Username: "other", PasswordHash: "d", CreatedAt: t0})
	assert.ErrorIs(t, err, common.ErrDuplicateEmail)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestItemRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepository(db)
	items := NewItemRepository(db)
	seedUser(t, users, "alice", "a@x.com")
	seedUser(t, users, "bob", "b@x.com")

	milk := &models.ListItem{OwnerID: "alice", Text: "milk", UpdatedAt: t0}
	eggs := &models.ListItem{OwnerID: "alice", Text: "eggs", UpdatedAt: t0.Add(time.Minute)}
	require.NoError(t, items.Create(ctx, milk))
	require.NoError(t, items.Create(ctx, eggs))
	assert.NotZero(t, milk.ID)
	assert.Greater(t, eggs.ID, milk.ID)

	list, err := items.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "milk", list[0].Text)
	assert.Equal(t, "eggs", list[1].Text)

	bobList, err := items.ListByOwner(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, bobList)

	updated, err := items.UpdateText(ctx, "alice", milk.ID, "oat milk", t0.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "oat milk", updated.Text)
	assert.True(t, updated.UpdatedAt.Equal(t0.Add(2*time.Minute)))

	list, err = items.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"eggs", "oat milk"}, []string{list[0].Text, list[1].Text})

	require.NoError(t, items.Delete(ctx, "alice", eggs.ID))
	assert.ErrorIs(t, items.Delete(ctx, "alice", eggs.ID), common.ErrNotFound)

	list, err = items.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, milk.ID, list[0].ID)
}

func TestItemRepository_OwnershipIsEnforced(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepository(db)
	items := NewItemRepository(db)
	seedUser(t, users, "alice", "a@x.com")
	seedUser(t, users, "bob", "b@x.com")

	milk := &models.ListItem{OwnerID: "alice", Text: "milk", UpdatedAt: t0}
	require.NoError(t, items.Create(ctx, milk))

	_, err := items.GetOwned(ctx, "bob", milk.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = items.UpdateText(ctx, "bob", milk.ID, "poison", t0.Add(time.Hour))
	assert.ErrorIs(t, err, common.ErrNotFound)

	assert.ErrorIs(t, items.Delete(ctx, "bob", milk.ID), common.ErrNotFound)

	got, err := items.GetOwned(ctx, "alice", milk.ID)
	require.NoError(t, err)
	assert.Equal(t, "milk", got.Text)
	assert.True(t, got.UpdatedAt.Equal(t0))
}

func TestItemRepository_OwnerMustExist(t *testing.T) {
	items := NewItemRepository(newTestDB(t))

	err := items.Create(context.Background(), &models.ListItem{OwnerID: "ghost", Text: "milk", UpdatedAt: t0})
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}))
	assert.False(t, isUniqueViolation(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}))
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
	assert.False(t, isUniqueViolation(nil))
}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestItemRepository_FailedUpdateRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	items := NewItemRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE list_items SET text = ?, updated_at = ?")).
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	_, err := items.UpdateText(context.Background(), "alice", 1, "oat milk", t0)
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemRepository_NotOwnedRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	items := NewItemRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM list_items WHERE id = ? AND owner_id = ?")).
		WithArgs(int64(7), "bob").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := items.Delete(context.Background(), "bob", 7)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_StoreUnavailable(t *testing.T) {
	db, mock := newMockDB(t)
	users := NewUserRepository(db)

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	err := users.Create(context.Background(), &models.User{ID: "u1", Email: "a@x.com"})
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemRepository_CommitFailure(t *testing.T) {
	db, mock := newMockDB(t)
	items := NewItemRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM list_items")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errors.New("database is locked"))

	err := items.Delete(context.Background(), "alice", 1)
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"contact-keeper/internal/domain"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, NewUserRepository(db).Init(ctx))
	require.NoError(t, NewContactRepository(db).Init(ctx))
	return db
}

func seedUser(t *testing.T, db *sql.DB, email string) int64 {
	t.Helper()

	id, err := NewUserRepository(db).Create(context.Background(), &domain.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: "x",
	})
	require.NoError(t, err)
	return id
}

func TestContactRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewContactRepository(db)
	ctx := context.Background()
	owner := seedUser(t, db, "owner@example.com")

	contact := &domain.Contact{
		ID:      uuid.NewString(),
		OwnerID: owner,
		Name:    "Bob",
		Email:   "bob@example.com",
		Phone:   "555-0100",
		Type:    domain.ContactTypePersonal,
	}
	require.NoError(t, repo.Create(ctx, contact))
	require.False(t, contact.CreatedAt.IsZero())

	got, err := repo.Get(ctx, contact.ID)
	require.NoError(t, err)
	require.Equal(t, "Bob", got.Name)
	require.Equal(t, owner, got.OwnerID)
	require.Equal(t, "bob@example.com", got.Email)
}

func TestContactRepository_Get_NotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewContactRepository(db)

	_, err := repo.Get(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestContactRepository_ListByOwner_Ordering(t *testing.T) {
	db := newTestDB(t)
	repo := NewContactRepository(db)
	ctx := context.Background()
	owner := seedUser(t, db, "owner@example.com")
	other := seedUser(t, db, "other@example.com")

	first := &domain.Contact{ID: uuid.NewString(), OwnerID: owner, Name: "First", Type: "personal"}
	require.NoError(t, repo.Create(ctx, first))
	time.Sleep(5 * time.Millisecond)
	second := &domain.Contact{ID: uuid.NewString(), OwnerID: owner, Name: "Second", Type: "personal"}
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, &domain.Contact{ID: uuid.NewString(), OwnerID: other, Name: "Elsewhere", Type: "personal"}))

	contacts, err := repo.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	require.Equal(t, "Second", contacts[0].Name)
	require.Equal(t, "First", contacts[1].Name)
}

func TestContactRepository_ListByOwner_Empty(t *testing.T) {
	db := newTestDB(t)
	repo := NewContactRepository(db)

	contacts, err := repo.ListByOwner(context.Background(), 99)
	require.NoError(t, err)
	require.NotNil(t, contacts)
	require.Empty(t, contacts)
}

func TestContactRepository_Update(t *testing.T) {
	db := newTestDB(t)
	repo := NewContactRepository(db)
	ctx := context.Background()
	owner := seedUser(t, db, "owner@example.com")

	contact := &domain.Contact{ID: uuid.NewString(), OwnerID: owner, Name: "Bob", Phone: "555", Type: "personal"}
	require.NoError(t, repo.Create(ctx, contact))

	contact.Phone = "555-0199"
	require.NoError(t, repo.Update(ctx, contact))

	got, err := repo.Get(ctx, contact.ID)
	require.NoError(t, err)
	require.Equal(t, "555-0199", got.Phone)
	require.Equal(t, "Bob", got.Name)
}

func TestContactRepository_Update_NotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewContactRepository(db)

	err := repo.Update(context.Background(), &domain.Contact{ID: uuid.NewString(), Name: "Ghost"})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestContactRepository_Delete_Twice(t *testing.T) {
	db := newTestDB(t)
	repo := NewContactRepository(db)
	ctx := context.Background()
	owner := seedUser(t, db, "owner@example.com")

	contact := &domain.Contact{ID: uuid.NewString(), OwnerID: owner, Name: "Bob", Type: "personal"}
	require.NoError(t, repo.Create(ctx, contact))

	require.NoError(t, repo.Delete(ctx, contact.ID))
	require.ErrorIs(t, repo.Delete(ctx, contact.ID), domain.ErrNotFound)
}

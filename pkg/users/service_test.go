package users

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techshelf/techshelf/pkg/auth"
	"github.com/techshelf/techshelf/pkg/config"
	"github.com/techshelf/techshelf/pkg/database"
	"github.com/techshelf/techshelf/pkg/errcodes"
	"github.com/techshelf/techshelf/pkg/migrations"
	"github.com/techshelf/techshelf/pkg/models"
	"github.com/uptrace/bun"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := database.New(config.NewForTest())
	require.NoError(t, err)

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func countProfiles(t *testing.T, db *bun.DB) int {
	t.Helper()
	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM profiles`).Scan(&count))
	return count
}

func TestService_Register(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	email := "alice@example.com"
	user, err := svc.Register(ctx, RegisterOptions{
		Username:  "alice",
		FirstName: "Alice",
		LastName:  "Liddell",
		Email:     &email,
		Password:  "wonderland42",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.True(t, auth.CheckPassword("wonderland42", user.PasswordHash))

	require.NotNil(t, user.Profile)
	require.NotNil(t, user.Profile.Avatar)
	assert.Equal(t, models.DefaultAvatar, *user.Profile.Avatar)
	assert.False(t, user.Profile.HasCustomAvatar())
}

func TestService_Register_DuplicateUsername(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterOptions{Username: "alice", Password: "wonderland42"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterOptions{Username: "Alice", Password: "wonderland42"})
	require.Error(t, err)
	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "validation_error", codeErr.Code)
	assert.Equal(t, 1, countProfiles(t, db))
}

func TestService_Register_Concurrent(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	const attempts = 4
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(ctx, RegisterOptions{Username: "bob", Password: "builder123"})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, countProfiles(t, db))
}

func TestService_EnsureProfile_Idempotent(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterOptions{Username: "alice", Password: "wonderland42"})
	require.NoError(t, err)

	_, err = db.Exec(`UPDATE profiles SET avatar = 'avatars/custom.png' WHERE user_id = ?`, user.ID)
	require.NoError(t, err)

	require.NoError(t, svc.EnsureProfile(ctx, db, user.ID))
	require.NoError(t, svc.EnsureProfile(ctx, db, user.ID))
	assert.Equal(t, 1, countProfiles(t, db))

	user, err = svc.Retrieve(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "avatars/custom.png", *user.Profile.Avatar)
}

func TestService_Retrieve_NotFound(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := NewService(db)

	_, err := svc.Retrieve(context.Background(), 42)
	assert.True(t, errors.Is(err, errcodes.NotFound("User")))
}

func TestService_DeleteAll(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterOptions{Username: "alice", Password: "wonderland42"})
	require.NoError(t, err)

	deleted, err := svc.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.Equal(t, 0, countProfiles(t, db))
}

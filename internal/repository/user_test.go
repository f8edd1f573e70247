package repository

import (
	"testing"
	"time"

	"wavelength/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_GetByEmail(t *testing.T) {
	db := setupDB(t)
	repo := NewUserRepository(db)
	alice := createTestUser(t, db, "alice")

	got, err := repo.GetByEmail(testCtx(), "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, alice.ID, got.ID)

	// Unknown email is not an error; it is simply absent.
	missing, err := repo.GetByEmail(testCtx(), "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepository_Search(t *testing.T) {
	db := setupDB(t)
	repo := NewUserRepository(db)
	createTestUser(t, db, "alice")
	createTestUser(t, db, "alicia")
	createTestUser(t, db, "bob")

	results, err := repo.Search(testCtx(), "ali", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "alice", results[0].Name)
	assert.Equal(t, "alicia", results[1].Name)

	limited, err := repo.Search(testCtx(), "ali", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestUserRepository_Suggestions(t *testing.T) {
	db := setupDB(t)
	repo := NewUserRepository(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")
	dave := createTestUser(t, db, "dave")

	recent := time.Now().Add(-time.Hour)
	stale := time.Now().Add(-30 * 24 * time.Hour)
	require.NoError(t, db.Model(bob).Update("last_seen_at", recent).Error)
	require.NoError(t, db.Model(carol).Update("last_seen_at", recent).Error)
	require.NoError(t, db.Model(dave).Update("last_seen_at", stale).Error)

	// Any friendship row, even pending, removes a candidate.
	require.NoError(t, db.Create(&models.Friendship{
		RequesterID: carol.ID, AddresseeID: alice.ID, Status: models.FriendshipStatusPending,
	}).Error)

	got, err := repo.Suggestions(testCtx(), alice.ID, time.Now().Add(-7*24*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, bob.ID, got[0].ID)
}

func TestUserRepository_TouchLastSeen(t *testing.T) {
	db := setupDB(t)
	repo := NewUserRepository(db)
	alice := createTestUser(t, db, "alice")
	require.Nil(t, alice.LastSeenAt)

	seenAt := time.Now()
	require.NoError(t, repo.TouchLastSeen(testCtx(), alice.ID, seenAt))

	var stored models.User
	require.NoError(t, db.First(&stored, alice.ID).Error)
	require.NotNil(t, stored.LastSeenAt)
	assert.WithinDuration(t, seenAt, *stored.LastSeenAt, time.Second)
}

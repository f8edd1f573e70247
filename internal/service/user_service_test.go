package service

import (
	"strings"
	"testing"
	"time"

	"wavelength/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUpdateProfile(t *testing.T) {
	env := setupEnv(t)
	user := env.createUser(t, "ada")

	updated, err := env.users.UpdateProfile(ctx(), UpdateProfileInput{
		UserID: user.ID,
		Name:   "Ada Lovelace",
		Email:  "  Ada.Lovelace@Example.COM  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", updated.Name)
	assert.Equal(t, "ada.lovelace@example.com", updated.Email)

	fresh, err := env.users.GetUserByID(ctx(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", fresh.Name)
}

func TestUpdateProfile_BlankFieldsLeaveProfileUntouched(t *testing.T) {
	env := setupEnv(t)
	user := env.createUser(t, "ada")

	updated, err := env.users.UpdateProfile(ctx(), UpdateProfileInput{UserID: user.ID})
	require.NoError(t, err)
	assert.Equal(t, "ada", updated.Name)
	assert.Equal(t, "ada@example.com", updated.Email)
}

func TestUpdateProfile_Validation(t *testing.T) {
	env := setupEnv(t)
	user := env.createUser(t, "ada")

	_, err := env.users.UpdateProfile(ctx(), UpdateProfileInput{
		UserID: user.ID,
		Name:   strings.Repeat("a", maxNameLen+1),
	})
	assertAppErrorCode(t, err, "VALIDATION_ERROR")

	_, err = env.users.UpdateProfile(ctx(), UpdateProfileInput{UserID: 9999, Name: "ghost"})
	assertAppErrorCode(t, err, "NOT_FOUND")
}

func TestChangePassword(t *testing.T) {
	env := setupEnv(t)
	user := env.createUser(t, "ada")

	err := env.users.ChangePassword(ctx(), user.ID, "Sup3rSecret!pass", "N3wSecret!pass")
	require.NoError(t, err)

	fresh, err := env.users.GetUserByID(ctx(), user.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(fresh.Password), []byte("N3wSecret!pass")))
}

func TestChangePassword_WrongCurrentPassword(t *testing.T) {
	env := setupEnv(t)
	user := env.createUser(t, "ada")

	err := env.users.ChangePassword(ctx(), user.ID, "not-the-password", "N3wSecret!pass")
	assertAppErrorCode(t, err, "VALIDATION_ERROR")

	// The stored hash must be untouched after a failed attempt.
	fresh, err := env.users.GetUserByID(ctx(), user.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(fresh.Password), []byte("Sup3rSecret!pass")))
}

func TestSetProfileImage(t *testing.T) {
	env := setupEnv(t)
	user := env.createUser(t, "ada")

	updated, err := env.users.SetProfileImage(ctx(), user.ID, "ab12cd34")
	require.NoError(t, err)
	require.NotNil(t, updated.ProfileImage)
	assert.Equal(t, "ab12cd34", *updated.ProfileImage)
}

func TestSearch_AnnotatesFriendStatus(t *testing.T) {
	env := setupEnv(t)
	caller := env.createUser(t, "ada")
	friend := env.createUser(t, "adam")
	sentTo := env.createUser(t, "adele")
	receivedFrom := env.createUser(t, "adrian")
	stranger := env.createUser(t, "addison")

	env.befriend(t, caller, friend)
	sent := &models.Friendship{RequesterID: caller.ID, AddresseeID: sentTo.ID, Status: models.FriendshipStatusPending}
	require.NoError(t, env.db.Create(sent).Error)
	received := &models.Friendship{RequesterID: receivedFrom.ID, AddresseeID: caller.ID, Status: models.FriendshipStatusPending}
	require.NoError(t, env.db.Create(received).Error)

	results, err := env.users.Search(ctx(), caller.ID, "ad", 50)
	require.NoError(t, err)

	byID := make(map[uint]UserSearchResult, len(results))
	for _, r := range results {
		require.NotEqual(t, caller.ID, r.User.ID, "caller must be excluded from results")
		byID[r.User.ID] = r
	}
	require.Len(t, byID, 4)

	assert.Equal(t, "friends", byID[friend.ID].FriendStatus)
	assert.Equal(t, "pending_sent", byID[sentTo.ID].FriendStatus)
	assert.Equal(t, sent.ID, byID[sentTo.ID].FriendshipID)
	assert.Equal(t, "pending_received", byID[receivedFrom.ID].FriendStatus)
	assert.Equal(t, received.ID, byID[receivedFrom.ID].FriendshipID)
	assert.Equal(t, "none", byID[stranger.ID].FriendStatus)
	assert.Zero(t, byID[stranger.ID].FriendshipID)
}

func TestSearch_RequiresQuery(t *testing.T) {
	env := setupEnv(t)
	caller := env.createUser(t, "ada")

	_, err := env.users.Search(ctx(), caller.ID, "   ", 10)
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
}

func TestTouchLastSeen_ThrottlesWrites(t *testing.T) {
	env := setupEnv(t)
	user := env.createUser(t, "ada")

	env.users.TouchLastSeen(ctx(), user.ID)
	first, err := env.users.GetUserByID(ctx(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, first.LastSeenAt)

	// A second touch inside the throttle interval must not write again.
	time.Sleep(5 * time.Millisecond)
	env.users.TouchLastSeen(ctx(), user.ID)
	second, err := env.users.GetUserByID(ctx(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, second.LastSeenAt)
	assert.True(t, second.LastSeenAt.Equal(*first.LastSeenAt))
}

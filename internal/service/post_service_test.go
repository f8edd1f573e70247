package service

import (
	"strings"
	"testing"

	"wavelength/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost(t *testing.T) {
	env := setupEnv(t)
	alice := env.createUser(t, "alice")

	post, err := env.posts.CreatePost(ctx(), alice.ID, "hello world")
	require.NoError(t, err)
	assert.NotZero(t, post.ID)
	assert.Equal(t, "hello world", post.Content)
	assert.Equal(t, alice.ID, post.User.ID)

	_, err = env.posts.CreatePost(ctx(), alice.ID, "   ")
	assertAppErrorCode(t, err, "VALIDATION_ERROR")

	_, err = env.posts.CreatePost(ctx(), alice.ID, strings.Repeat("x", models.MaxPostContentLength+1))
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
}

func TestUpdateAndDeletePost_AuthorOnly(t *testing.T) {
	env := setupEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	post, err := env.posts.CreatePost(ctx(), alice.ID, "original")
	require.NoError(t, err)

	_, err = env.posts.UpdatePost(ctx(), bob.ID, post.ID, "hijacked")
	assertAppErrorCode(t, err, "FORBIDDEN")

	updated, err := env.posts.UpdatePost(ctx(), alice.ID, post.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	err = env.posts.DeletePost(ctx(), bob.ID, post.ID)
	assertAppErrorCode(t, err, "FORBIDDEN")

	require.NoError(t, env.posts.DeletePost(ctx(), alice.ID, post.ID))

	_, err = env.posts.GetPost(ctx(), alice.ID, post.ID)
	assertAppErrorCode(t, err, "NOT_FOUND")
}

func TestToggleLike(t *testing.T) {
	env := setupEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	post, err := env.posts.CreatePost(ctx(), alice.ID, "like me")
	require.NoError(t, err)

	liked, count, err := env.posts.ToggleLike(ctx(), bob.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.EqualValues(t, 1, count)

	// The author hears about it exactly once.
	notifs, err := env.notifications.List(ctx(), alice.ID)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, models.NotificationPostLiked, notifs[0].Kind)

	// Toggle off.
	liked, count, err = env.posts.ToggleLike(ctx(), bob.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.EqualValues(t, 0, count)

	// Re-like: a second notification entry is acceptable ledger history,
	// but un-liking must never notify.
	_, _, err = env.posts.ToggleLike(ctx(), bob.ID, post.ID)
	require.NoError(t, err)
}

func TestToggleLike_SelfLikeDoesNotNotify(t *testing.T) {
	env := setupEnv(t)
	alice := env.createUser(t, "alice")

	post, err := env.posts.CreatePost(ctx(), alice.ID, "my own post")
	require.NoError(t, err)

	liked, count, err := env.posts.ToggleLike(ctx(), alice.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.EqualValues(t, 1, count)

	notifs, err := env.notifications.List(ctx(), alice.ID)
	require.NoError(t, err)
	assert.Empty(t, notifs)
}

func TestGetFeed_ScopedToFriends(t *testing.T) {
	env := setupEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	stranger := env.createUser(t, "stranger")
	env.befriend(t, alice, bob)

	_, err := env.posts.CreatePost(ctx(), alice.ID, "mine")
	require.NoError(t, err)
	_, err = env.posts.CreatePost(ctx(), bob.ID, "friend's")
	require.NoError(t, err)
	_, err = env.posts.CreatePost(ctx(), stranger.ID, "invisible")
	require.NoError(t, err)

	feed, err := env.posts.GetFeed(ctx(), alice.ID, 20, 0)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	for _, p := range feed {
		assert.NotEqual(t, stranger.ID, p.UserID)
	}
}

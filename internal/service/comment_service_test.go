package service

import (
	"testing"

	"wavelength/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddComment(t *testing.T) {
	env := setupEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	post, err := env.posts.CreatePost(ctx(), alice.ID, "discuss")
	require.NoError(t, err)

	comment, err := env.comments.AddComment(ctx(), bob.ID, post.ID, "nice post")
	require.NoError(t, err)
	assert.NotZero(t, comment.ID)
	assert.Equal(t, post.ID, comment.PostID)

	// The post author is notified about someone else's comment.
	notifs, err := env.notifications.List(ctx(), alice.ID)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, models.NotificationPostCommented, notifs[0].Kind)
	assert.Equal(t, comment.ID, notifs[0].Data.CommentID)

	// Commenting on your own post stays silent.
	_, err = env.comments.AddComment(ctx(), alice.ID, post.ID, "thanks!")
	require.NoError(t, err)
	notifs, err = env.notifications.List(ctx(), alice.ID)
	require.NoError(t, err)
	assert.Len(t, notifs, 1)
}

func TestAddComment_Validation(t *testing.T) {
	env := setupEnv(t)
	alice := env.createUser(t, "alice")

	post, err := env.posts.CreatePost(ctx(), alice.ID, "discuss")
	require.NoError(t, err)

	_, err = env.comments.AddComment(ctx(), alice.ID, post.ID, "  ")
	assertAppErrorCode(t, err, "VALIDATION_ERROR")

	_, err = env.comments.AddComment(ctx(), alice.ID, 9999, "hello")
	assertAppErrorCode(t, err, "NOT_FOUND")
}

func TestUpdateAndDeleteComment_AuthorOnly(t *testing.T) {
	env := setupEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	post, err := env.posts.CreatePost(ctx(), alice.ID, "discuss")
	require.NoError(t, err)
	comment, err := env.comments.AddComment(ctx(), bob.ID, post.ID, "original")
	require.NoError(t, err)

	_, err = env.comments.UpdateComment(ctx(), alice.ID, comment.ID, "hijacked")
	assertAppErrorCode(t, err, "FORBIDDEN")

	updated, err := env.comments.UpdateComment(ctx(), bob.ID, comment.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	err = env.comments.DeleteComment(ctx(), alice.ID, comment.ID)
	assertAppErrorCode(t, err, "FORBIDDEN")
	require.NoError(t, env.comments.DeleteComment(ctx(), bob.ID, comment.ID))

	err = env.comments.DeleteComment(ctx(), bob.ID, comment.ID)
	assertAppErrorCode(t, err, "NOT_FOUND")
}

package server

import (
	"fmt"
	"testing"

	"wavelength/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (ta *testApp) createPost(token, content string) *models.Post {
	ta.t.Helper()
	resp := ta.request(fiber.MethodPost, "/api/posts/", token, fiber.Map{"content": content})
	require.Equal(ta.t, fiber.StatusCreated, resp.StatusCode)
	var post models.Post
	decodeJSON(ta.t, resp, &post)
	return &post
}

func TestCreatePost(t *testing.T) {
	ta := newTestApp(t)
	token, user := ta.register("alice")

	post := ta.createPost(token, "hello wavelength")
	assert.Equal(t, "hello wavelength", post.Content)
	assert.Equal(t, user.ID, post.UserID)

	resp := ta.request(fiber.MethodPost, "/api/posts/", token, fiber.Map{"content": ""})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestGetFeed_FriendsOnly(t *testing.T) {
	ta := newTestApp(t)
	aliceToken, _ := ta.register("alice")
	bobToken, bob := ta.register("bob")
	strangerToken, _ := ta.register("carol")

	ta.befriend(aliceToken, bobToken, bob.ID)

	ta.createPost(aliceToken, "from alice")
	ta.createPost(bobToken, "from bob")
	ta.createPost(strangerToken, "from carol")

	resp := ta.request(fiber.MethodGet, "/api/posts/", aliceToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var feed []models.Post
	decodeJSON(t, resp, &feed)

	require.Len(t, feed, 2)
	for _, p := range feed {
		assert.NotEqual(t, "from carol", p.Content)
	}
}

func TestUpdateAndDeletePost_AuthorOnly(t *testing.T) {
	ta := newTestApp(t)
	aliceToken, _ := ta.register("alice")
	bobToken, _ := ta.register("bob")

	post := ta.createPost(aliceToken, "draft")

	resp := ta.request(fiber.MethodPut, fmt.Sprintf("/api/posts/%d", post.ID), bobToken, fiber.Map{"content": "hijacked"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	resp = ta.request(fiber.MethodPut, fmt.Sprintf("/api/posts/%d", post.ID), aliceToken, fiber.Map{"content": "final"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var updated models.Post
	decodeJSON(t, resp, &updated)
	assert.Equal(t, "final", updated.Content)

	resp = ta.request(fiber.MethodDelete, fmt.Sprintf("/api/posts/%d", post.ID), bobToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	resp = ta.request(fiber.MethodDelete, fmt.Sprintf("/api/posts/%d", post.ID), aliceToken, nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	resp = ta.request(fiber.MethodGet, fmt.Sprintf("/api/posts/%d", post.ID), aliceToken, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestToggleLike(t *testing.T) {
	ta := newTestApp(t)
	aliceToken, _ := ta.register("alice")
	bobToken, bob := ta.register("bob")
	ta.befriend(aliceToken, bobToken, bob.ID)

	post := ta.createPost(aliceToken, "like me")
	likePath := fmt.Sprintf("/api/posts/%d/like", post.ID)

	resp := ta.request(fiber.MethodPost, likePath, bobToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body struct {
		Liked      bool  `json:"liked"`
		LikesCount int64 `json:"likes_count"`
	}
	decodeJSON(t, resp, &body)
	assert.True(t, body.Liked)
	assert.EqualValues(t, 1, body.LikesCount)

	resp = ta.request(fiber.MethodPost, likePath, bobToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &body)
	assert.False(t, body.Liked)
	assert.EqualValues(t, 0, body.LikesCount)
}

func TestComments(t *testing.T) {
	ta := newTestApp(t)
	aliceToken, _ := ta.register("alice")
	bobToken, bob := ta.register("bob")
	ta.befriend(aliceToken, bobToken, bob.ID)

	post := ta.createPost(aliceToken, "discuss")
	commentsPath := fmt.Sprintf("/api/posts/%d/comments", post.ID)

	resp := ta.request(fiber.MethodPost, commentsPath, bobToken, fiber.Map{"content": "first!"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var comment models.Comment
	decodeJSON(t, resp, &comment)
	assert.Equal(t, "first!", comment.Content)
	assert.Equal(t, bob.ID, comment.UserID)

	// Only the comment's author may edit it.
	commentPath := fmt.Sprintf("/api/posts/%d/comments/%d", post.ID, comment.ID)
	resp = ta.request(fiber.MethodPut, commentPath, aliceToken, fiber.Map{"content": "edited"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	resp = ta.request(fiber.MethodPut, commentPath, bobToken, fiber.Map{"content": "edited"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var edited models.Comment
	decodeJSON(t, resp, &edited)
	assert.Equal(t, "edited", edited.Content)

	resp = ta.request(fiber.MethodDelete, commentPath, bobToken, nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	// Commenting on a missing post is a 404.
	resp = ta.request(fiber.MethodPost, "/api/posts/9999/comments", bobToken, fiber.Map{"content": "hi"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestGetPost_IncludesEngagement(t *testing.T) {
	ta := newTestApp(t)
	aliceToken, _ := ta.register("alice")
	bobToken, bob := ta.register("bob")
	ta.befriend(aliceToken, bobToken, bob.ID)

	post := ta.createPost(aliceToken, "engagement")
	resp := ta.request(fiber.MethodPost, fmt.Sprintf("/api/posts/%d/like", post.ID), bobToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = ta.request(fiber.MethodGet, fmt.Sprintf("/api/posts/%d", post.ID), bobToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var got models.Post
	decodeJSON(t, resp, &got)
	assert.EqualValues(t, 1, got.LikesCount)
	assert.True(t, got.Liked)
}

package server

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"wavelength/internal/models"
	"wavelength/internal/service"
	"wavelength/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateMyProfile(t *testing.T) {
	ta := newTestApp(t)
	token, _ := ta.register("alice")

	resp := ta.request(fiber.MethodPut, "/api/users/me", token, fiber.Map{
		"name":  "alice2",
		"email": "alice2@example.com",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var user models.User
	decodeJSON(t, resp, &user)
	assert.Equal(t, "alice2", user.Name)
	assert.Equal(t, "alice2@example.com", user.Email)

	resp = ta.request(fiber.MethodPut, "/api/users/me", token, fiber.Map{"email": "broken"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestChangeMyPassword(t *testing.T) {
	ta := newTestApp(t)
	token, _ := ta.register("alice")

	resp := ta.request(fiber.MethodPut, "/api/users/me/password", token, fiber.Map{
		"current_password": testPassword,
		"new_password":     "An0ther!Secret",
		"confirm_password": "An0ther!Secret",
	})
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	// Old password no longer works, the new one does.
	resp = ta.request(fiber.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "alice@example.com",
		"password": testPassword,
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()

	resp = ta.request(fiber.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "alice@example.com",
		"password": "An0ther!Secret",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestChangeMyPassword_Rejections(t *testing.T) {
	ta := newTestApp(t)
	token, _ := ta.register("alice")

	// Wrong current password.
	resp := ta.request(fiber.MethodPut, "/api/users/me/password", token, fiber.Map{
		"current_password": "wrong",
		"new_password":     "An0ther!Secret",
		"confirm_password": "An0ther!Secret",
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	_ = resp.Body.Close()

	// Replacement below the length floor.
	resp = ta.request(fiber.MethodPut, "/api/users/me/password", token, fiber.Map{
		"current_password": testPassword,
		"new_password":     "short",
		"confirm_password": "short",
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	_ = resp.Body.Close()

	// Confirmation mismatch.
	resp = ta.request(fiber.MethodPut, "/api/users/me/password", token, fiber.Map{
		"current_password": testPassword,
		"new_password":     "An0ther!Secret",
		"confirm_password": "Different!Secret1",
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestGetUserProfile(t *testing.T) {
	ta := newTestApp(t)
	token, _ := ta.register("alice")
	_, bob := ta.register("bob")

	resp := ta.request(fiber.MethodGet, fmt.Sprintf("/api/users/%d", bob.ID), token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var user models.User
	decodeJSON(t, resp, &user)
	assert.Equal(t, "bob", user.Name)

	resp = ta.request(fiber.MethodGet, "/api/users/9999", token, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestSearchUsers(t *testing.T) {
	ta := newTestApp(t)
	aliceToken, _ := ta.register("alice")
	bobToken, bob := ta.register("bob")
	ta.register("bonnie")
	ta.befriend(aliceToken, bobToken, bob.ID)

	resp := ta.request(fiber.MethodGet, "/api/users/search?q=bo", aliceToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var results []service.UserSearchResult
	decodeJSON(t, resp, &results)
	require.Len(t, results, 2)

	byName := map[string]service.UserSearchResult{}
	for _, r := range results {
		byName[r.User.Name] = r
	}
	assert.Equal(t, "friends", byName["bob"].FriendStatus)
	assert.Equal(t, "none", byName["bonnie"].FriendStatus)

	resp = ta.request(fiber.MethodGet, "/api/users/search", aliceToken, nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestGetFriendSuggestions_FeatureFlagged(t *testing.T) {
	ta := newTestApp(t)
	token, _ := ta.register("alice")
	bobToken, _ := ta.register("bob")

	// Bob counts as recently active once he makes an authenticated request.
	resp := ta.request(fiber.MethodGet, "/api/auth/me", bobToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = ta.request(fiber.MethodGet, "/api/users/suggestions", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var suggestions []models.User
	decodeJSON(t, resp, &suggestions)
	// Bob registered just now, so he is an active non-friend candidate.
	require.Len(t, suggestions, 1)
	assert.Equal(t, "bob", suggestions[0].Name)

	// With the flag off the endpoint returns an empty list.
	ta.srv.flags = nil
	resp = ta.request(fiber.MethodGet, "/api/users/suggestions", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &suggestions)
	assert.Empty(t, suggestions)
}

func TestUploadProfileImage(t *testing.T) {
	ta := newTestApp(t)
	token, _ := ta.register("alice")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "avatar.png")
	require.NoError(t, err)
	_, err = part.Write(testutil.TinyPNG(t))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(fiber.MethodPost, "/api/users/me/image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var user models.User
	decodeJSON(t, resp, &user)
	require.NotNil(t, user.ProfileImage)
	assert.NotEmpty(t, *user.ProfileImage)
}

func TestUploadProfileImage_RejectsNonImage(t *testing.T) {
	ta := newTestApp(t)
	token, _ := ta.register("alice")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("plain text, not an image"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(fiber.MethodPost, "/api/users/me/image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

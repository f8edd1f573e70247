package server

import (
	"testing"

	"wavelength/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	ta := newTestApp(t)

	token, user := ta.register("alice")
	assert.NotEmpty(t, token)
	assert.Equal(t, "alice", user.Name)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotZero(t, user.ID)
}

func TestRegister_Validation(t *testing.T) {
	ta := newTestApp(t)

	tests := []struct {
		name string
		body fiber.Map
	}{
		{name: "missing fields", body: fiber.Map{"email": "a@example.com"}},
		{name: "bad username", body: fiber.Map{"name": "-x-", "email": "a@example.com", "password": testPassword, "password_confirmation": testPassword}},
		{name: "bad email", body: fiber.Map{"name": "alice", "email": "not-an-email", "password": testPassword, "password_confirmation": testPassword}},
		{name: "short password", body: fiber.Map{"name": "alice", "email": "a@example.com", "password": "tiny1", "password_confirmation": "tiny1"}},
		{name: "confirmation mismatch", body: fiber.Map{"name": "alice", "email": "a@example.com", "password": testPassword, "password_confirmation": "different"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ta.request(fiber.MethodPost, "/api/auth/register", "", tt.body)
			assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
			_ = resp.Body.Close()
		})
	}
}

func TestRegister_SimplePasswordAccepted(t *testing.T) {
	ta := newTestApp(t)

	resp := ta.request(fiber.MethodPost, "/api/auth/register", "", fiber.Map{
		"name":                  "alice",
		"email":                 "alice@example.com",
		"password":              "password1",
		"password_confirmation": "password1",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	resp = ta.request(fiber.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "alice@example.com",
		"password": "password1",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ta := newTestApp(t)
	ta.register("alice")

	resp := ta.request(fiber.MethodPost, "/api/auth/register", "", fiber.Map{
		"name":                  "alice2",
		"email":                 "alice@example.com",
		"password":              testPassword,
		"password_confirmation": testPassword,
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestLogin(t *testing.T) {
	ta := newTestApp(t)
	ta.register("alice")

	resp := ta.request(fiber.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "alice@example.com",
		"password": testPassword,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Token string       `json:"token"`
		User  *models.User `json:"user"`
	}
	decodeJSON(t, resp, &body)
	assert.NotEmpty(t, body.Token)
	assert.Equal(t, "alice", body.User.Name)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ta := newTestApp(t)
	ta.register("alice")

	resp := ta.request(fiber.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()

	resp = ta.request(fiber.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "nobody@example.com",
		"password": testPassword,
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestMe(t *testing.T) {
	ta := newTestApp(t)
	token, user := ta.register("alice")

	resp := ta.request(fiber.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var me models.User
	decodeJSON(t, resp, &me)
	assert.Equal(t, user.ID, me.ID)
	assert.Equal(t, "alice", me.Name)
}

func TestMe_RequiresAuth(t *testing.T) {
	ta := newTestApp(t)

	resp := ta.request(fiber.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()

	resp = ta.request(fiber.MethodGet, "/api/auth/me", "garbage-token", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestLogout_WithoutRedisStillSucceeds(t *testing.T) {
	ta := newTestApp(t)
	token, _ := ta.register("alice")

	resp := ta.request(fiber.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()
}

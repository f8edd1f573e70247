package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"wavelength/internal/config"
	"wavelength/internal/models"
	"wavelength/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "Sup3rSecret!pass"

// testApp is a fully wired server on sqlite with an in-memory image store
// and no Redis, driven through app.Test.
type testApp struct {
	t   *testing.T
	srv *Server
	app *fiber.App
	db  *gorm.DB
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Conversation{},
		&models.Message{},
		&models.ConversationUser{},
		&models.Friendship{},
		&models.Notification{},
	))

	cfg := &config.Config{
		Env:          "test",
		JWTSecret:    "test-secret",
		FeatureFlags: "friend_suggestions=on",
	}

	srv, err := NewServerWithDeps(cfg, db, nil, testutil.NewMemoryImageStore())
	require.NoError(t, err)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		},
	})
	srv.SetupRoutes(app)

	return &testApp{t: t, srv: srv, app: app, db: db}
}

func (ta *testApp) request(method, path, token string, body interface{}) *http.Response {
	ta.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(ta.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ta.app.Test(req, -1)
	require.NoError(ta.t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// register creates an account through the API and returns its token and user.
func (ta *testApp) register(name string) (string, *models.User) {
	ta.t.Helper()

	resp := ta.request(fiber.MethodPost, "/api/auth/register", "", fiber.Map{
		"name":                  name,
		"email":                 fmt.Sprintf("%s@example.com", name),
		"password":              testPassword,
		"password_confirmation": testPassword,
	})
	require.Equal(ta.t, fiber.StatusCreated, resp.StatusCode)

	var body struct {
		Token string       `json:"token"`
		User  *models.User `json:"user"`
	}
	decodeJSON(ta.t, resp, &body)
	require.NotEmpty(ta.t, body.Token)
	require.NotNil(ta.t, body.User)
	return body.Token, body.User
}

// befriend runs the full request/accept flow between two registered users.
func (ta *testApp) befriend(aToken string, bToken string, bID uint) {
	ta.t.Helper()

	resp := ta.request(fiber.MethodPost, fmt.Sprintf("/api/friends/requests/%d", bID), aToken, nil)
	require.Equal(ta.t, fiber.StatusCreated, resp.StatusCode)

	var friendship models.Friendship
	decodeJSON(ta.t, resp, &friendship)

	resp = ta.request(fiber.MethodPost, fmt.Sprintf("/api/friends/requests/%d/accept", friendship.ID), bToken, nil)
	require.Equal(ta.t, fiber.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
}

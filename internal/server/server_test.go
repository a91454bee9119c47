package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"focusgram/internal/config"
	"focusgram/internal/database"
	"focusgram/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testServer struct {
	server *Server
	app    *fiber.App
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		JWTSecret:    "test-secret-key",
		MediaDir:     t.TempDir(),
		MediaBaseURL: "/media",
		Env:          "test",
	}
	s, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)
	require.NoError(t, s.state.Init(context.Background()))

	app := fiber.New()
	s.SetupRoutes(app)
	return &testServer{server: s, app: app}
}

func (ts *testServer) request(t *testing.T, method, path string, body any, token string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// signup registers a viewer and returns the session token.
func (ts *testServer) signup(t *testing.T, username string) string {
	t.Helper()
	resp := ts.request(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    username + "@example.com",
		"username": username,
		"name":     username,
		"password": "SecurePass12",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestSignupLoginLogoutFlow(t *testing.T) {
	ts := setupTestServer(t)

	token := ts.signup(t, "alice")

	// the session endpoint reports the established viewer
	resp := ts.request(t, http.MethodGet, "/api/auth/session", nil, "")
	body := decodeBody(t, resp)
	assert.Equal(t, true, body["authenticated"])

	// duplicate username is rejected before credentials are created
	resp = ts.request(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    "other@example.com",
		"username": "alice",
		"password": "SecurePass12",
	}, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, models.CodeDuplicateUsername, body["code"])

	// logout clears the session
	resp = ts.request(t, http.MethodPost, "/api/auth/logout", nil, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = ts.request(t, http.MethodGet, "/api/auth/session", nil, "")
	body = decodeBody(t, resp)
	assert.Equal(t, false, body["authenticated"])

	// login re-establishes it through credential verification
	resp = ts.request(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "SecurePass12",
	}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.NotEmpty(t, body["token"])
}

func TestLoginWrongPassword(t *testing.T) {
	ts := setupTestServer(t)
	ts.signup(t, "alice")

	resp := ts.request(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "WrongPass99",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, models.CodeInvalidCredentials, body["code"])
}

func TestCreatePostAndFeed(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.signup(t, "alice")

	resp := ts.request(t, http.MethodPost, "/api/posts", map[string]any{
		"media":   []map[string]string{{"url": "/media/a.webp", "type": "image"}},
		"caption": "first!",
	}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)
	author := created["user"].(map[string]any)
	assert.Equal(t, "alice", author["username"])
	assert.Equal(t, false, created["isLiked"])

	// the new post is at the head of the feed immediately
	resp = ts.request(t, http.MethodGet, "/api/feed", nil, "")
	feed := decodeBody(t, resp)
	posts := feed["posts"].([]any)
	require.Len(t, posts, 1)
	head := posts[0].(map[string]any)
	assert.Equal(t, created["id"], head["id"])

	// unauthenticated creation is rejected
	resp = ts.request(t, http.MethodPost, "/api/posts", map[string]any{
		"media":   []map[string]string{{"url": "/media/b.webp", "type": "image"}},
		"caption": "nope",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()

	ts.server.state.WaitForWrites()
}

func TestLikeAndCommentFlow(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.signup(t, "alice")

	resp := ts.request(t, http.MethodPost, "/api/posts", map[string]any{
		"media": []map[string]string{{"url": "/media/a.webp", "type": "image"}},
	}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	postID := decodeBody(t, resp)["id"].(string)
	ts.server.state.WaitForWrites()

	resp = ts.request(t, http.MethodPost, "/api/posts/"+postID+"/like", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decodeBody(t, resp)["isLiked"])

	resp = ts.request(t, http.MethodPost, "/api/posts/"+postID+"/like", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, decodeBody(t, resp)["isLiked"])

	resp = ts.request(t, http.MethodPost, "/api/posts/"+postID+"/comments", map[string]string{
		"text": "nice shot!",
	}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	comment := decodeBody(t, resp)
	assert.Equal(t, "nice shot!", comment["text"])

	resp = ts.request(t, http.MethodGet, "/api/posts/"+postID, nil, "")
	view := decodeBody(t, resp)
	comments := view["comments"].([]any)
	require.Len(t, comments, 1)
	first := comments[0].(map[string]any)
	assert.Equal(t, "alice", first["user"].(map[string]any)["username"])

	ts.server.state.WaitForWrites()
}

func TestFollowAndProfile(t *testing.T) {
	ts := setupTestServer(t)

	ts.signup(t, "bob")
	bob := ts.server.session.CurrentViewer()
	ts.server.session.SignOut(context.Background())

	token := ts.signup(t, "alice")

	resp := ts.request(t, http.MethodPost, "/api/users/"+bob.ID+"/follow", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decodeBody(t, resp)["isFollowing"])

	resp = ts.request(t, http.MethodGet, "/api/users/bob", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	profile := decodeBody(t, resp)
	user := profile["user"].(map[string]any)
	assert.Equal(t, float64(1), user["followersCount"])
	assert.Equal(t, true, profile["isFollowing"])

	// self-follow is rejected
	alice := ts.server.session.CurrentViewer()
	resp = ts.request(t, http.MethodPost, "/api/users/"+alice.ID+"/follow", nil, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()

	ts.server.state.WaitForWrites()
}

func TestProtectedRoutesRejectStaleToken(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.signup(t, "alice")
	ts.server.session.SignOut(context.Background())

	resp := ts.request(t, http.MethodPost, "/api/posts", map[string]any{
		"media": []map[string]string{{"url": "/media/a.webp", "type": "image"}},
	}, token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGetPostNotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.request(t, http.MethodGet, "/api/posts/ghost", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

package main

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/blogmhq/blogm/internal/notifyservice"
)

func TestHealthCheck(t *testing.T) {
	app, _, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	status, _, env := ts.get(t, "/api/v2/healthcheck", nil)

	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.Equal(t, "available", env.Message)
}

func TestUserEndpoints(t *testing.T) {
	app, _, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	t.Run("Register", func(t *testing.T) {
		status, _, env := ts.post(t, "/api/v2/users", map[string]any{
			"name":     "testuser",
			"email":    "user@example.com",
			"password": "Test_1234!",
			"gender":   "other",
		}, nil)

		assert.Equal(t, http.StatusCreated, status)
		assert.True(t, env.Success)
	})

	t.Run("Register Duplicate Email", func(t *testing.T) {
		status, _, env := ts.post(t, "/api/v2/users", map[string]any{
			"name":     "otheruser",
			"email":    "user@example.com",
			"password": "Test_1234!",
			"gender":   "other",
		}, nil)

		assert.Equal(t, http.StatusConflict, status)
		assert.False(t, env.Success)
		assert.Equal(t, "User already exists", env.Message)
	})

	t.Run("Register Invalid Email", func(t *testing.T) {
		status, _, _ := ts.post(t, "/api/v2/users", map[string]any{
			"name":     "testuser",
			"email":    "not-an-email",
			"password": "Test_1234!",
			"gender":   "other",
		}, nil)

		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("Login Unknown Email", func(t *testing.T) {
		status, _, env := ts.post(t, "/api/v2/login", map[string]any{
			"email":    "nobody@example.com",
			"password": "Test_1234!",
		}, nil)

		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "User not found", env.Message)
	})

	t.Run("Login Wrong Password", func(t *testing.T) {
		status, _, env := ts.post(t, "/api/v2/login", map[string]any{
			"email":    "user@example.com",
			"password": "Wrong_1234!",
		}, nil)

		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Invalid email or password", env.Message)
	})

	t.Run("Login And Logout", func(t *testing.T) {
		status, _, env := ts.post(t, "/api/v2/login", map[string]any{
			"email":    "user@example.com",
			"password": "Test_1234!",
		}, nil)
		assert.Equal(t, http.StatusOK, status)

		data := env.Data.(map[string]any)
		token := data["token"].(string)
		assert.NotEmpty(t, token)

		status, _, env = ts.post(t, "/api/v2/logout", nil, &token)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Logout successful", env.Message)
		assert.Nil(t, env.Data)

		// The revoked token no longer authenticates.
		status, _, _ = ts.post(t, "/api/v2/logout", nil, &token)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("Logout Without Token", func(t *testing.T) {
		status, _, _ := ts.post(t, "/api/v2/logout", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}

func TestBlogEndpoints(t *testing.T) {
	app, _, producer := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	token := registerAndLogin(t, ts, "author@example.com")

	var blogID string

	t.Run("Create Requires Auth", func(t *testing.T) {
		status, _, _ := ts.post(t, "/api/v2/blogs", map[string]any{
			"title":   "Unauthenticated Post",
			"content": "Body text.",
		}, nil)

		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("Create Blog", func(t *testing.T) {
		status, _, env := ts.post(t, "/api/v2/blogs", map[string]any{
			"title":       "My First Post!",
			"description": "An introduction",
			"content":     "Hello, world.",
		}, &token)

		assert.Equal(t, http.StatusCreated, status)
		assert.True(t, env.Success)

		data := env.Data.(map[string]any)
		blogID = data["id"].(string)
		assert.Equal(t, "my-first-post", data["slug"])

		// Creation published exactly one notification.
		assert.Len(t, producer.payloads, 1)

		var msg notifyservice.NotificationMessage
		assert.NoError(t, json.Unmarshal(producer.payloads[0], &msg))
		assert.Equal(t, notifyservice.MessageTypeNewBlogPost, msg.Type)
		assert.Equal(t, blogID, msg.BlogID)
	})

	t.Run("Duplicate Title", func(t *testing.T) {
		status, _, env := ts.post(t, "/api/v2/blogs", map[string]any{
			"title":   "My First Post",
			"content": "Different body.",
		}, &token)

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "A blog with this title already exists. Please use a different title.", env.Message)
		// The failed create published nothing.
		assert.Len(t, producer.payloads, 1)
	})

	t.Run("Get Blog", func(t *testing.T) {
		status, _, env := ts.get(t, "/api/v2/blogs/"+blogID, nil)

		assert.Equal(t, http.StatusOK, status)
		data := env.Data.(map[string]any)
		assert.Equal(t, "My First Post!", data["title"])
	})

	t.Run("Like Toggle", func(t *testing.T) {
		status, _, env := ts.post(t, "/api/v2/blogs/"+blogID+"/like", nil, &token)
		assert.Equal(t, http.StatusCreated, status)
		assert.Equal(t, "Blog liked successfully", env.Message)

		status, _, env = ts.post(t, "/api/v2/blogs/"+blogID+"/like", nil, &token)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Blog unliked successfully", env.Message)
	})

	t.Run("Likes For Unknown Blog", func(t *testing.T) {
		status, _, env := ts.get(t, "/api/v2/blogs/"+uuid.NewString()+"/likes", nil)

		assert.Equal(t, http.StatusOK, status)
		data := env.Data.(map[string]any)
		assert.Equal(t, float64(0), data["count"])
	})

	t.Run("Comment On Missing Blog", func(t *testing.T) {
		status, _, env := ts.post(t, "/api/v2/comments/"+uuid.NewString()+"/message", map[string]any{
			"content": "Hello?",
		}, &token)

		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "Blog not found", env.Message)
	})

	t.Run("Comment", func(t *testing.T) {
		status, _, _ := ts.post(t, "/api/v2/comments/"+blogID+"/message", map[string]any{
			"content": "Nice post!",
		}, &token)
		assert.Equal(t, http.StatusCreated, status)

		status, _, env := ts.get(t, "/api/v2/comments/"+blogID, nil)
		assert.Equal(t, http.StatusOK, status)
		comments := env.Data.([]any)
		assert.Len(t, comments, 1)
	})

	t.Run("Update By Stranger", func(t *testing.T) {
		stranger := registerAndLogin(t, ts, "stranger@example.com")

		status, _, _ := ts.put(t, "/api/v2/blogs/"+blogID, &stranger, map[string]any{
			"title": "Hijacked Title",
		})
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("Delete And Refetch", func(t *testing.T) {
		status, _, _ := ts.delete(t, "/api/v2/blogs/"+blogID, &token)
		assert.Equal(t, http.StatusOK, status)

		status, _, env := ts.get(t, "/api/v2/blogs/"+blogID, nil)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "Blog not found", env.Message)
	})
}

func TestSubscriberEndpoints(t *testing.T) {
	app, db, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	t.Run("Subscribe", func(t *testing.T) {
		status, _, env := ts.post(t, "/api/v2/subscribers/subscribe", map[string]any{
			"email": "reader@example.com",
		}, nil)

		assert.Equal(t, http.StatusCreated, status)
		assert.True(t, env.Success)
	})

	t.Run("Subscribe Again Conflicts", func(t *testing.T) {
		status, _, env := ts.post(t, "/api/v2/subscribers/subscribe", map[string]any{
			"email": "reader@example.com",
		}, nil)

		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, "This email is already subscribed to our newsletter", env.Message)
	})

	t.Run("Unsubscribe", func(t *testing.T) {
		status, _, _ := ts.get(t, "/api/v2/subscribers/unsubscribe?email=reader%40example.com", nil)
		assert.Equal(t, http.StatusOK, status)
	})

	t.Run("Unsubscribe Again", func(t *testing.T) {
		status, _, env := ts.get(t, "/api/v2/subscribers/unsubscribe?email=reader%40example.com", nil)

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "This email is already unsubscribed", env.Message)
	})

	t.Run("Unsubscribe Unknown", func(t *testing.T) {
		status, _, env := ts.get(t, "/api/v2/subscribers/unsubscribe?email=nobody%40example.com", nil)

		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "Email not found in our subscription list", env.Message)
	})

	t.Run("Resubscribe", func(t *testing.T) {
		status, _, env := ts.post(t, "/api/v2/subscribers/subscribe", map[string]any{
			"email": "reader@example.com",
		}, nil)

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "You have resubscribed successfully", env.Message)
	})

	t.Run("List Requires Admin", func(t *testing.T) {
		status, _, _ := ts.get(t, "/api/v2/subscribers", nil)
		assert.Equal(t, http.StatusUnauthorized, status)

		token := registerAndLogin(t, ts, "plainuser@example.com")
		status, _, _ = ts.get(t, "/api/v2/subscribers", &token)
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("List As Admin", func(t *testing.T) {
		token := registerAndLogin(t, ts, "admin@example.com")

		_, err := db.Exec("UPDATE users SET role = 'admin' WHERE email = $1", "admin@example.com")
		assert.NoError(t, err)

		// Role lives in the token, so log in again after the promotion.
		status, _, env := ts.post(t, "/api/v2/login", map[string]any{
			"email":    "admin@example.com",
			"password": "Test_1234!",
		}, nil)
		assert.Equal(t, http.StatusOK, status)
		token = env.Data.(map[string]any)["token"].(string)

		status, _, env = ts.get(t, "/api/v2/subscribers", &token)
		assert.Equal(t, http.StatusOK, status)

		data := env.Data.(map[string]any)
		assert.Contains(t, data, "subscribers")
		assert.Contains(t, data, "pagination")
	})
}

package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecoverPanic(t *testing.T) {
	app, _, _ := newTestApplication(t)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("something went wrong")
	})

	middleware := app.recoverPanic(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res := httptest.NewRecorder()

	middleware.ServeHTTP(res, req)

	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.Equal(t, "close", res.Header().Get("Connection"))
}

func TestAuthenticateMalformedHeader(t *testing.T) {
	app, _, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	for _, header := range []string{"Bearer", "Basic abc123", "Bearer a b c"} {
		req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/v2/healthcheck", nil)
		assert.NoError(t, err)
		req.Header.Set("Authorization", header)

		res, err := ts.Client().Do(req)
		assert.NoError(t, err)

		status, _, _ := readResponse(t, res)
		assert.Equal(t, http.StatusUnauthorized, status)
	}
}

func TestAuthenticateInvalidToken(t *testing.T) {
	app, _, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	token := "not.a.real.token"
	status, _, env := ts.post(t, "/api/v2/logout", nil, &token)

	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)
}

// Anonymous requests pass straight through to public routes.
func TestAuthenticateAnonymous(t *testing.T) {
	app, _, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	status, _, _ := ts.get(t, "/api/v2/blogs", nil)
	assert.Equal(t, http.StatusOK, status)
}

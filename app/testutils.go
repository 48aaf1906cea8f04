package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blogmhq/blogm/internal/blogservice"
	"github.com/blogmhq/blogm/internal/common"
	"github.com/blogmhq/blogm/internal/mailservice"
	"github.com/blogmhq/blogm/internal/notifyservice"
	"github.com/blogmhq/blogm/internal/subscriberservice"
	"github.com/blogmhq/blogm/internal/userservice"
)

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

func readResponse(t *testing.T, res *http.Response) (int, http.Header, envelope) {
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}

	var env envelope
	err = json.Unmarshal(responseBody, &env)
	if err != nil {
		t.Fatal(err)
	}

	return res.StatusCode, res.Header, env
}

// recordingProducer stands in for the AMQP broker so handler tests observe
// published notifications without a running queue.
type recordingProducer struct {
	payloads [][]byte
}

func (p *recordingProducer) Publish(ctx context.Context, queue common.Queue, msg []byte) error {
	p.payloads = append(p.payloads, msg)
	return nil
}

func newTestApplication(t *testing.T) (*application, *sql.DB, *recordingProducer) {
	db := common.TestDB("file://../migrations", t)
	redisClient := common.TestRedis(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := &Config{
		Port:        ":0",
		Environment: "test",
		Version:     "2.0.0",
		WebsiteURL:  "http://localhost:4000",
		WebsiteName: "BlogM",
		JWTSecret:   "test-secret",
	}

	cache := common.NewCache(0, 0)
	mailer := &mailservice.MockMailer{}
	producer := &recordingProducer{}

	tokens := userservice.NewTokenManager(cfg.JWTSecret, userservice.AccessTokenTime)
	store := userservice.NewRedisTokenStore(redisClient)

	app := &application{
		config:            cfg,
		logger:            logger,
		userService:       userservice.NewUserService(db, tokens, store),
		blogService:       blogservice.NewBlogService(db, cache),
		subscriberService: subscriberservice.NewSubscriberService(db, mailer, logger, cfg.WebsiteURL, cfg.WebsiteName),
		notifier:          notifyservice.NewPublisher(producer, logger, cfg.WebsiteURL),
	}

	return app, db, producer
}

func (ts *testServer) post(t *testing.T, path string, data any, token *string) (int, http.Header, envelope) {
	jsonPayload, err := json.Marshal(data)
	if err != nil {
		t.Fatal(err)
	}

	body := bytes.NewReader(jsonPayload)
	req, err := http.NewRequest(http.MethodPost, ts.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != nil {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", *token))
	}
	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) get(t *testing.T, path string, token *string) (int, http.Header, envelope) {
	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if token != nil {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", *token))
	}
	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) put(t *testing.T, path string, token *string, payload any) (int, http.Header, envelope) {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}

	body := bytes.NewReader(jsonPayload)
	req, err := http.NewRequest(http.MethodPut, ts.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}
	if token != nil {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", *token))
	}
	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) delete(t *testing.T, path string, token *string) (int, http.Header, envelope) {
	req, err := http.NewRequest(http.MethodDelete, ts.URL+path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if token != nil {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", *token))
	}
	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

// registerAndLogin is a helper that creates an account and returns its token.
func registerAndLogin(t *testing.T, ts *testServer, email string) string {
	t.Helper()

	status, _, _ := ts.post(t, "/api/v2/users", map[string]any{
		"name":     "testuser",
		"email":    email,
		"password": "Test_1234!",
		"gender":   "other",
	}, nil)
	if status != http.StatusCreated {
		t.Fatalf("could not register user: status %d", status)
	}

	status, _, env := ts.post(t, "/api/v2/login", map[string]any{
		"email":    email,
		"password": "Test_1234!",
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("could not login: status %d", status)
	}

	data, ok := env.Data.(map[string]any)
	if !ok {
		t.Fatalf("unexpected login data: %v", env.Data)
	}
	token, _ := data["token"].(string)
	if token == "" {
		t.Fatal("login returned no token")
	}

	return token
}

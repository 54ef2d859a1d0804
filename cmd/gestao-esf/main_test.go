package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/esf/gestao-esf/internal/config"
	"github.com/esf/gestao-esf/internal/platform/auth"
	"github.com/esf/gestao-esf/internal/platform/notification"
	"github.com/esf/gestao-esf/internal/platform/websocket"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:                "0",
		Env:                 "development",
		AppID:               "esf-test",
		NotificationBackend: config.BackendMemory,
		CORSOrigins:         []string{"http://localhost:5173"},
		RateLimitRPS:        100,
		RateLimitBurst:      100,
		ToastTTL:            time.Minute,
		RequestTimeout:      5 * time.Second,
	}
}

func newTestApp(t *testing.T) *app {
	t.Helper()
	a, err := newApp(context.Background(), testConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	t.Cleanup(a.close)
	return a
}

func do(a *app, method, path, body string) *httptest.ResponseRecorder {
	return doAs(a, method, path, body, "")
}

func doAs(a *app, method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	a := newTestApp(t)

	rec := do(a, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["backend"] != "memory" {
		t.Errorf("unexpected body %v", body)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a request id header")
	}
}

func TestHealthDB_NotRegisteredWithoutPool(t *testing.T) {
	a := newTestApp(t)
	if rec := do(a, http.MethodGet, "/health/db", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestCatalogRoute(t *testing.T) {
	a := newTestApp(t)
	rec := do(a, http.MethodGet, "/api/v1/catalog/appointment-types", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Puericultura") {
		t.Errorf("expected appointment types in body, got %s", rec.Body.String())
	}
}

func TestToastFlow(t *testing.T) {
	a := newTestApp(t)

	client := &websocket.Client{
		ID:     "c1",
		UserID: "dev-user",
		Topics: websocket.DefaultTopics("dev-user"),
		Send:   make(chan []byte, 8),
	}
	a.hub.Register(client)
	defer a.hub.Unregister(client)

	rec := do(a, http.MethodPost, "/api/v1/toasts", `{"message":"Paciente salvo","type":"success"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(a, http.MethodGet, "/api/v1/toasts", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"message":"Paciente salvo"`) {
		t.Errorf("unexpected list %s", rec.Body.String())
	}

	select {
	case raw := <-client.Send:
		var ev websocket.Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		if ev.Type != websocket.EventToastsChanged || ev.Topic != "toasts/dev-user" {
			t.Errorf("unexpected event %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a toasts.changed event")
	}
}

func TestNotificationFlow(t *testing.T) {
	a := newTestApp(t)

	client := &websocket.Client{
		ID:     "c1",
		UserID: "dev-user",
		Topics: []string{websocket.TopicNotifications},
		Send:   make(chan []byte, 8),
	}
	a.hub.Register(client)
	defer a.hub.Unregister(client)

	rec := do(a, http.MethodPost, "/api/v1/notifications",
		`{"title":"Reunião","message":"Reunião de equipe às 14h","type":"mural"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var res notification.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.Delivered || res.ID == "" {
		t.Errorf("unexpected result %+v", res)
	}

	store := a.store.(*notification.MemoryStore)
	if store.Attempts() != 1 {
		t.Errorf("expected 1 store attempt, got %d", store.Attempts())
	}
	docs := store.Documents("artifacts/esf-test/public/data/notifications")
	if len(docs) != 1 || docs[0].Notification.Type != notification.CategoryMural {
		t.Fatalf("unexpected documents %+v", docs)
	}

	select {
	case raw := <-client.Send:
		if !bytes.Contains(raw, []byte(websocket.EventNotificationCreated)) {
			t.Errorf("unexpected event %s", raw)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a notification event")
	}
}

func TestBuildStore(t *testing.T) {
	ctx := context.Background()

	cfg := testConfig()
	store, pool, err := buildStore(ctx, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := store.(*notification.MemoryStore); !ok || pool != nil {
		t.Errorf("expected memory store without pool, got %T %v", store, pool)
	}

	cfg.NotificationBackend = config.BackendKafka
	cfg.KafkaBrokers = "localhost:9092, localhost:9093"
	cfg.KafkaTopic = "notifications"
	store, _, err = buildStore(ctx, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("kafka: %v", err)
	}
	if _, ok := store.(*notification.KafkaStore); !ok {
		t.Errorf("expected kafka store, got %T", store)
	}
	store.Close()

	cfg.KafkaBrokers = ""
	if _, _, err := buildStore(ctx, cfg, zerolog.Nop()); err == nil {
		t.Error("expected error for kafka without brokers")
	}

	cfg.NotificationBackend = config.BackendSQS
	cfg.SQSQueue = ""
	if _, _, err := buildStore(ctx, cfg, zerolog.Nop()); err == nil {
		t.Error("expected error for sqs without queue")
	}

	cfg.NotificationBackend = "firestore"
	if _, _, err := buildStore(ctx, cfg, zerolog.Nop()); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	prodLogger := newLogger("production", &buf)
	prodLogger.Info().Str("k", "v").Msg("hello")

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected a JSON line, got %q", buf.String())
	}
	if line["message"] != "hello" || line["k"] != "v" {
		t.Errorf("unexpected line %v", line)
	}

	buf.Reset()
	devLogger := newLogger("development", &buf)
	devLogger.Info().Msg("hello")
	if json.Valid(buf.Bytes()) {
		t.Errorf("expected console output in development, got %q", buf.String())
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out.String(), "1.6.0") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestCatalogValidateCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"catalog", "validate"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.HasPrefix(out.String(), "catalog ok") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestSignOutRevokesToken(t *testing.T) {
	cfg := testConfig()
	cfg.Env = "staging"
	cfg.AuthSigningKey = "staging-secret"
	a, err := newApp(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	defer a.close()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "session-1",
			Subject:   "ana",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Roles: []string{auth.RoleEnfermeira},
	}).SignedString([]byte(cfg.AuthSigningKey))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if rec := do(a, http.MethodGet, "/api/v1/toasts", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	if rec := doAs(a, http.MethodGet, "/api/v1/toasts", "", token); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}
	if rec := doAs(a, http.MethodPost, "/api/v1/session/logout", "", token); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec := doAs(a, http.MethodGet, "/api/v1/toasts", "", token); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 after sign-out, got %d", rec.Code)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("stdout closed") }

func TestNotifyCommand(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("NOTIFICATION_BACKEND", config.BackendMemory)

	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"notify", "--title", "Vacinação", "--message", "Campanha amanhã"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	var res notification.Result
	if err := json.Unmarshal(out.Bytes(), &res); err != nil {
		t.Fatalf("decode output %q: %v", out.String(), err)
	}
	if !res.Delivered {
		t.Errorf("expected delivered result, got %+v", res)
	}
}

func TestNotifyCommand_ReportsWriteFailure(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("NOTIFICATION_BACKEND", config.BackendMemory)

	cmd := rootCmd()
	cmd.SetOut(failingWriter{})
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"notify", "--title", "Vacinação"})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "write result") {
		t.Fatalf("expected write error, got %v", err)
	}
}

package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fishcatch/internal/agent"
	"fishcatch/internal/coach"
	"fishcatch/internal/config"
)

func testConfig() config.AuthConfig {
	return config.AuthConfig{
		Username:         "captain",
		Password:         "hooks-and-lines",
		JWTSecret:        "test-secret",
		TokenExpiryHours: 1,
	}
}

func TestLoginAndVerify(t *testing.T) {
	svc := NewService(testConfig())

	token, err := svc.Login("captain", "hooks-and-lines")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	subject, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if subject != "captain" {
		t.Errorf("subject = %q, want captain", subject)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := NewService(testConfig())

	if _, err := svc.Login("captain", "wrong"); err == nil {
		t.Error("expected error for wrong password")
	}
	if _, err := svc.Login("mate", "hooks-and-lines"); err == nil {
		t.Error("expected error for wrong username")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	svc := NewService(testConfig())

	token, err := svc.Login("captain", "hooks-and-lines")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := svc.Verify(token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	svc := NewService(testConfig())

	other := NewService(config.AuthConfig{
		Username: "captain", Password: "hooks-and-lines", JWTSecret: "different-secret",
	})
	token, err := other.Login("captain", "hooks-and-lines")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := svc.Verify(token); err == nil {
		t.Error("expected error for token signed with another secret")
	}
}

func TestLoginDisabledWithoutConfig(t *testing.T) {
	svc := NewService(config.AuthConfig{})
	if svc.Enabled() {
		t.Error("empty config must not enable auth")
	}
	if _, err := svc.Login("captain", ""); err == nil {
		t.Error("expected error when auth is not configured")
	}
}

func newTestAgent() *agent.Agent {
	return agent.New(coach.New(coach.NewMemStore()), nil, "", "fishing_agent_001")
}

func TestMiddlewareRejectsWithCoaching(t *testing.T) {
	svc := NewService(testConfig())
	handler := Middleware(svc, newTestAgent())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Unauthenticated access attempt") {
		t.Errorf("401 body should carry the coached explanation: %s", body)
	}
	if !strings.Contains(body, `"blocked":true`) {
		t.Errorf("401 body should report blocked: %s", body)
	}
}

func TestMiddlewarePassesValidToken(t *testing.T) {
	svc := NewService(testConfig())
	token, err := svc.Login("captain", "hooks-and-lines")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	handler := Middleware(svc, newTestAgent())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestMiddlewareOpenWhenDisabled(t *testing.T) {
	svc := NewService(config.AuthConfig{})
	handler := Middleware(svc, newTestAgent())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 with auth disabled", rec.Code)
	}
}

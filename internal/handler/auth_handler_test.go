package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/takumi/kaigihub/internal/middleware"
	"github.com/takumi/kaigihub/internal/model"
)

type mockAuthService struct {
	registerDeviceFn     func(ctx context.Context) (*model.Attendee, *model.AuthSession, error)
	getCurrentAttendeeFn func(ctx context.Context, sessionID string) (*model.Attendee, error)
	logoutFn             func(ctx context.Context, sessionID string) error
}

func (m *mockAuthService) RegisterDevice(ctx context.Context) (*model.Attendee, *model.AuthSession, error) {
	return m.registerDeviceFn(ctx)
}

func (m *mockAuthService) GetCurrentAttendee(ctx context.Context, sessionID string) (*model.Attendee, error) {
	return m.getCurrentAttendeeFn(ctx, sessionID)
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	return m.logoutFn(ctx, sessionID)
}

func testAuthConfig() AuthHandlerConfig {
	return AuthHandlerConfig{
		CookieSecure:  false,
		SessionMaxAge: 3600,
	}
}

// TestRegisterDevice はデバイス登録でセッションCookieが発行されることを検証する。
func TestRegisterDevice(t *testing.T) {
	service := &mockAuthService{
		registerDeviceFn: func(_ context.Context) (*model.Attendee, *model.AuthSession, error) {
			return &model.Attendee{ID: "attendee-1"},
				&model.AuthSession{
					ID:         "session-token",
					AttendeeID: "attendee-1",
					ExpiresAt:  time.Now().Add(time.Hour),
				}, nil
		},
	}
	h := NewAuthHandler(service, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/device", nil)
	w := httptest.NewRecorder()
	h.RegisterDevice(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}

	var resp attendeeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.AttendeeID != "attendee-1" {
		t.Errorf("attendee_id = %q, want attendee-1", resp.AttendeeID)
	}

	cookies := w.Result().Cookies()
	var sessionCookie *http.Cookie
	for _, c := range cookies {
		if c.Name == middleware.SessionCookieName {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("session cookie should be set")
	}
	if sessionCookie.Value != "session-token" {
		t.Errorf("cookie value = %q, want session-token", sessionCookie.Value)
	}
	if !sessionCookie.HttpOnly {
		t.Error("cookie should be HttpOnly")
	}
	if sessionCookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie SameSite = %v, want Lax", sessionCookie.SameSite)
	}
	if sessionCookie.MaxAge != 3600 {
		t.Errorf("cookie MaxAge = %d, want 3600", sessionCookie.MaxAge)
	}
}

// TestMe はセッションCookieありのリクエストで参加者情報が返ることを検証する。
func TestMe(t *testing.T) {
	service := &mockAuthService{
		getCurrentAttendeeFn: func(_ context.Context, sessionID string) (*model.Attendee, error) {
			if sessionID != "session-token" {
				t.Errorf("sessionID = %q, want session-token", sessionID)
			}
			return &model.Attendee{ID: "attendee-1"}, nil
		},
	}
	h := NewAuthHandler(service, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "session-token"})
	w := httptest.NewRecorder()
	h.Me(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp attendeeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.AttendeeID != "attendee-1" {
		t.Errorf("attendee_id = %q, want attendee-1", resp.AttendeeID)
	}
}

// TestMe_NoCookie はCookieなしのリクエストが401になることを検証する。
func TestMe_NoCookie(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	w := httptest.NewRecorder()
	h.Me(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	var resp apiErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Code != "UNAUTHORIZED" {
		t.Errorf("error code = %q, want UNAUTHORIZED", resp.Code)
	}
}

// TestMe_InvalidSession は無効なセッションが401になることを検証する。
func TestMe_InvalidSession(t *testing.T) {
	service := &mockAuthService{
		getCurrentAttendeeFn: func(_ context.Context, _ string) (*model.Attendee, error) {
			return nil, model.NewUnauthorizedError()
		},
	}
	h := NewAuthHandler(service, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "expired-token"})
	w := httptest.NewRecorder()
	h.Me(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// TestLogout はログアウトでセッションCookieが削除されることを検証する。
func TestLogout(t *testing.T) {
	logoutCalled := false
	service := &mockAuthService{
		logoutFn: func(_ context.Context, sessionID string) error {
			logoutCalled = true
			if sessionID != "session-token" {
				t.Errorf("sessionID = %q, want session-token", sessionID)
			}
			return nil
		},
	}
	h := NewAuthHandler(service, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "session-token"})
	w := httptest.NewRecorder()
	h.Logout(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if !logoutCalled {
		t.Error("Logout should be called on the service")
	}

	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("session cookie should be cleared")
	}
}

// TestLogout_NoCookie はCookieなしのログアウトでも204が返ることを検証する。
func TestLogout_NoCookie(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	w := httptest.NewRecorder()
	h.Logout(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
}

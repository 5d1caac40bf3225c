package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/takumi/kaigihub/internal/model"
)

type mockSessionFinder struct {
	session *model.AuthSession
	err     error
}

func (m *mockSessionFinder) FindByID(_ context.Context, _ string) (*model.AuthSession, error) {
	return m.session, m.err
}

func validSession() *model.AuthSession {
	return &model.AuthSession{
		ID:         "session-1",
		AttendeeID: "attendee-1",
		ExpiresAt:  time.Now().Add(time.Hour),
	}
}

func requestWithSessionCookie(value string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/bookmarks", nil)
	if value != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: value})
	}
	return req
}

// TestSessionMiddleware_ValidSession は有効なセッションで参加者IDが
// コンテキストに注入されることを検証する。
func TestSessionMiddleware_ValidSession(t *testing.T) {
	finder := &mockSessionFinder{session: validSession()}

	var gotAttendeeID string
	handler := NewSessionMiddleware(finder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAttendeeID, _ = AttendeeIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithSessionCookie("session-1"))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotAttendeeID != "attendee-1" {
		t.Errorf("attendeeID = %q, want attendee-1", gotAttendeeID)
	}
}

// TestSessionMiddleware_Unauthorized は未認証リクエストが401になることを検証する。
func TestSessionMiddleware_Unauthorized(t *testing.T) {
	tests := []struct {
		name   string
		finder *mockSessionFinder
		cookie string
	}{
		{"Cookieなし", &mockSessionFinder{session: validSession()}, ""},
		{"セッション未検出", &mockSessionFinder{session: nil}, "unknown"},
		{"検索エラー", &mockSessionFinder{err: errors.New("db error")}, "session-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := NewSessionMiddleware(tt.finder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, requestWithSessionCookie(tt.cookie))

			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
			}
			if called {
				t.Error("next handler should not be called")
			}
		})
	}
}

// TestOptionalSessionMiddleware_Anonymous は匿名リクエストが
// 認証なしで通過することを検証する。
func TestOptionalSessionMiddleware_Anonymous(t *testing.T) {
	finder := &mockSessionFinder{session: nil}

	var hadAttendee bool
	handler := NewOptionalSessionMiddleware(finder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := AttendeeIDFromContext(r.Context())
		hadAttendee = err == nil
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithSessionCookie(""))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if hadAttendee {
		t.Error("anonymous request should not carry an attendee ID")
	}
}

// TestOptionalSessionMiddleware_Authenticated は認証済みリクエストで
// 参加者IDが注入されることを検証する。
func TestOptionalSessionMiddleware_Authenticated(t *testing.T) {
	finder := &mockSessionFinder{session: validSession()}

	var gotAttendeeID string
	handler := NewOptionalSessionMiddleware(finder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAttendeeID, _ = AttendeeIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithSessionCookie("session-1"))

	if gotAttendeeID != "attendee-1" {
		t.Errorf("attendeeID = %q, want attendee-1", gotAttendeeID)
	}
}

// TestAttendeeIDFromContext_Missing はコンテキストに参加者IDがない場合に
// エラーを返すことを検証する。
func TestAttendeeIDFromContext_Missing(t *testing.T) {
	if _, err := AttendeeIDFromContext(context.Background()); err == nil {
		t.Error("expected error for missing attendee ID")
	}
}

// TestContextWithAttendeeID は注入と取得のラウンドトリップを検証する。
func TestContextWithAttendeeID(t *testing.T) {
	ctx := ContextWithAttendeeID(context.Background(), "attendee-9")
	got, err := AttendeeIDFromContext(ctx)
	if err != nil {
		t.Fatalf("AttendeeIDFromContext() error = %v", err)
	}
	if got != "attendee-9" {
		t.Errorf("attendeeID = %q, want attendee-9", got)
	}
}

package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/takumi/kaigihub/internal/middleware"
	"github.com/takumi/kaigihub/internal/model"
)

type mockSessionFinder struct {
	findByIDFn func(ctx context.Context, id string) (*model.AuthSession, error)
}

func (m *mockSessionFinder) FindByID(ctx context.Context, id string) (*model.AuthSession, error) {
	return m.findByIDFn(ctx, id)
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	finder := &mockSessionFinder{
		findByIDFn: func(_ context.Context, id string) (*model.AuthSession, error) {
			if id != "valid-session" {
				return nil, model.NewUnauthorizedError()
			}
			return &model.AuthSession{
				ID:         id,
				AttendeeID: "attendee-1",
				ExpiresAt:  time.Now().Add(time.Hour),
			}, nil
		},
	}

	deps := &RouterDeps{
		SessionFinder:     finder,
		CORSAllowedOrigin: "https://app.example.com",
		RateLimiter:       middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig()),
		AuthService: &mockAuthService{
			registerDeviceFn: func(_ context.Context) (*model.Attendee, *model.AuthSession, error) {
				return &model.Attendee{ID: "attendee-1"},
					&model.AuthSession{ID: "valid-session", AttendeeID: "attendee-1", ExpiresAt: time.Now().Add(time.Hour)}, nil
			},
			getCurrentAttendeeFn: func(_ context.Context, sessionID string) (*model.Attendee, error) {
				if sessionID != "valid-session" {
					return nil, model.NewUnauthorizedError()
				}
				return &model.Attendee{ID: "attendee-1"}, nil
			},
		},
		AuthConfig:     AuthHandlerConfig{SessionMaxAge: 3600},
		ProfileService: &mockProfileService{},
		TimetableService: &mockTimetableService{
			getTimetableFn: func(_ context.Context, _ string, _ model.Filters) (model.Timetable, error) {
				return model.Timetable{}, nil
			},
		},
		BookmarkService: &mockBookmarkService{
			toggleFn: func(_ context.Context, _ string, _ model.TimetableItemID) (bool, error) {
				return true, nil
			},
		},
		EventLister: &mockEventLister{
			listAllFn: func(_ context.Context) ([]model.EventMapEvent, error) { return nil, nil },
		},
		DirectoryLister: &mockDirectoryLister{},
		NewsLister:      &mockNewsLister{},
	}

	return NewRouter(deps)
}

// fetchCSRFToken は安全なメソッドのリクエストでCSRFトークンCookieを取得する。
func fetchCSRFToken(t *testing.T, router http.Handler) *http.Cookie {
	t.Helper()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	for _, c := range w.Result().Cookies() {
		if c.Name == "csrf_token" {
			return c
		}
	}
	t.Fatal("csrf_token cookie should be set on safe method requests")
	return nil
}

// withCSRF はCSRFトークンのCookieとヘッダーをリクエストに付与する。
func withCSRF(req *http.Request, token *http.Cookie) *http.Request {
	req.AddCookie(token)
	req.Header.Set("X-CSRF-Token", token.Value)
	return req
}

// TestRouterHealthz はヘルスチェックエンドポイントを検証する。
func TestRouterHealthz(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != "ok" {
		t.Errorf("body = %q, want ok", w.Body.String())
	}
}

// TestRouterPublicRouteAnonymous は公開ルートが匿名でアクセスできることを検証する。
func TestRouterPublicRouteAnonymous(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/timetable", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
}

// TestRouterPublicRouteInvalidSession は無効なセッションCookieでも公開ルートが閲覧できることを検証する。
func TestRouterPublicRouteInvalidSession(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/timetable", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "expired-session"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

// TestRouterAuthRequiredRoute は認証必須ルートのアクセス制御を検証する。
func TestRouterAuthRequiredRoute(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name       string
		cookie     *http.Cookie
		wantStatus int
	}{
		{
			name:       "Cookieなしは401",
			cookie:     nil,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "無効なセッションは401",
			cookie:     &http.Cookie{Name: middleware.SessionCookieName, Value: "expired-session"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "有効なセッションは200",
			cookie:     &http.Cookie{Name: middleware.SessionCookieName, Value: "valid-session"},
			wantStatus: http.StatusOK,
		},
	}

	csrf := fetchCSRFToken(t, router)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withCSRF(httptest.NewRequest(http.MethodPost, "/api/sessions/session-1/bookmark", nil), csrf)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

// TestRouterDeviceRegistration はデバイス登録のルーティングを検証する。
func TestRouterDeviceRegistration(t *testing.T) {
	router := newTestRouter(t)

	req := withCSRF(httptest.NewRequest(http.MethodPost, "/auth/device", nil), fetchCSRFToken(t, router))
	req.RemoteAddr = "203.0.113.10:54321"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	var found bool
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookieName && c.Value == "valid-session" {
			found = true
		}
	}
	if !found {
		t.Error("session cookie should be set")
	}
}

// TestRouterCSRFProtection はCSRFトークンなしの状態変更リクエストが拒否されることを検証する。
func TestRouterCSRFProtection(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/device", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

// TestRouterSecurityHeaders は全レスポンスにセキュリティヘッダーが付くことを検証する。
func TestRouterSecurityHeaders(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
}
